package usage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/estuda/estuda/internal/apperr"
	"github.com/estuda/estuda/internal/clock"
	"github.com/estuda/estuda/internal/logging"
	"github.com/estuda/estuda/internal/store"
)

// Decision is the answer to a quota check. Period, Used and Limit describe
// the refusing window, or the tightest one when allowed.
type Decision struct {
	Allowed   bool   `json:"allowed"`
	Owner     string `json:"owner"`
	Kind      Kind   `json:"kind"`
	Period    Period `json:"period"`
	Used      int64  `json:"used"`
	Limit     Limit  `json:"limit"`
	Requested int64  `json:"requested"`
}

// Err returns a *apperr.QuotaExceededError for a refusal, nil otherwise.
func (d *Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &apperr.QuotaExceededError{
		Owner:     d.Owner,
		Kind:      string(d.Kind),
		Period:    string(d.Period),
		Used:      d.Used,
		Limit:     int64(d.Limit),
		Requested: d.Requested,
	}
}

// Counter is one reported usage window.
type Counter struct {
	Kind   Kind   `json:"kind"`
	Period Period `json:"period"`
	Key    string `json:"key"`
	Used   int64  `json:"used"`
	Limit  Limit  `json:"limit"`
}

// Limiter checks quotas before work starts and records consumption after it
// succeeds. It holds no counters itself.
type Limiter struct {
	counters Counters
	subs     store.SubscriptionRepo
	plans    Plans
	clock    clock.Clock
	log      *zap.Logger
}

// NewLimiter builds a limiter. A nil plans table uses DefaultPlans.
func NewLimiter(counters Counters, subs store.SubscriptionRepo, plans Plans, clk clock.Clock, log *zap.Logger) *Limiter {
	if plans == nil {
		plans = DefaultPlans()
	}
	if clk == nil {
		clk = clock.System{}
	}
	return &Limiter{counters: counters, subs: subs, plans: plans, clock: clk, log: logging.OrNop(log)}
}

// Plan returns owner's plan name.
func (l *Limiter) Plan(ctx context.Context, owner string) (string, error) {
	plan, err := l.subs.Plan(ctx, owner)
	if err != nil {
		return "", fmt.Errorf("load plan: %w", err)
	}
	if plan == "" {
		plan = DefaultPlan
	}
	return plan, nil
}

// SetPlan subscribes owner to a known plan.
func (l *Limiter) SetPlan(ctx context.Context, owner, plan string) error {
	if _, ok := l.plans[plan]; !ok {
		return apperr.Invalid("plan", "unknown plan %q", plan)
	}
	return l.subs.SetPlan(ctx, owner, plan, l.clock.Now())
}

// CheckAndReserve reports whether owner may consume amount of kind in every
// period. Nothing is charged; call Record after the work succeeds.
func (l *Limiter) CheckAndReserve(ctx context.Context, owner string, kind Kind, amount int64) (*Decision, error) {
	if amount < 0 {
		return nil, apperr.Invalid("amount", "must not be negative")
	}
	limits, err := l.limits(ctx, owner, kind)
	if err != nil {
		return nil, err
	}

	now := l.clock.Now()
	var tightest *Decision
	for _, p := range Periods {
		limit := limits.For(p)
		used, err := l.counters.Used(ctx, owner, kind, p.Key(now))
		if err != nil {
			return nil, fmt.Errorf("read %s usage: %w", p, err)
		}

		d := &Decision{
			Allowed:   limit.Allows(used, amount),
			Owner:     owner,
			Kind:      kind,
			Period:    p,
			Used:      used,
			Limit:     limit,
			Requested: amount,
		}
		if !d.Allowed {
			l.log.Info("quota exceeded",
				zap.String("owner", owner),
				zap.String("kind", string(kind)),
				zap.String("period", string(p)),
				zap.Int64("used", used),
				zap.Stringer("limit", limit),
				zap.Int64("requested", amount),
			)
			return d, nil
		}
		if tightest == nil || tighter(d, tightest) {
			tightest = d
		}
	}
	return tightest, nil
}

func tighter(a, b *Decision) bool {
	if a.Limit.IsUnlimited() {
		return false
	}
	if b.Limit.IsUnlimited() {
		return true
	}
	return a.Limit.Remaining(a.Used) < b.Limit.Remaining(b.Used)
}

// Record charges amount of kind to owner in every period.
func (l *Limiter) Record(ctx context.Context, owner string, kind Kind, amount int64) error {
	if amount <= 0 {
		return nil
	}
	now := l.clock.Now()
	for _, p := range Periods {
		if err := l.counters.Add(ctx, owner, kind, p.Key(now), amount); err != nil {
			return fmt.Errorf("record %s usage: %w", p, err)
		}
	}
	l.log.Debug("usage recorded",
		zap.String("owner", owner),
		zap.String("kind", string(kind)),
		zap.Int64("amount", amount),
	)
	return nil
}

// Usage reports the current windows of every kind on owner's plan.
func (l *Limiter) Usage(ctx context.Context, owner string) (string, []Counter, error) {
	plan, err := l.Plan(ctx, owner)
	if err != nil {
		return "", nil, err
	}
	kinds, ok := l.plans[plan]
	if !ok {
		return "", nil, fmt.Errorf("owner %s is on unknown plan %q", owner, plan)
	}

	now := l.clock.Now()
	var out []Counter
	for _, kind := range sortedKinds(kinds) {
		for _, p := range Periods {
			key := p.Key(now)
			used, err := l.counters.Used(ctx, owner, kind, key)
			if err != nil {
				return "", nil, err
			}
			out = append(out, Counter{Kind: kind, Period: p, Key: key, Used: used, Limit: kinds[kind].For(p)})
		}
	}
	return plan, out, nil
}

func (l *Limiter) limits(ctx context.Context, owner string, kind Kind) (Limits, error) {
	plan, err := l.Plan(ctx, owner)
	if err != nil {
		return Limits{}, err
	}
	return l.plans.Limits(plan, kind)
}
