// Package usage enforces per-owner daily and monthly quotas.
package usage

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/estuda/estuda/internal/clock"
)

// Kind names a quota-bound resource.
type Kind string

// KindGeneration counts generated artifacts.
const KindGeneration Kind = "generation"

// Period is a quota window.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// Periods lists the windows every kind is checked against, shortest first.
var Periods = []Period{PeriodDay, PeriodMonth}

// Key returns the counter key of the window containing t: "2006-01-02" for
// days and "2006-01" for months, both in UTC.
func (p Period) Key(t time.Time) string {
	t = clock.Day(t)
	if p == PeriodMonth {
		return t.Format("2006-01")
	}
	return t.Format(clock.DateLayout)
}

// Limit is a quota ceiling. Unlimited is a distinct value, never compared
// as a number.
type Limit int64

// Unlimited disables a quota. Any negative configured value maps to it.
const Unlimited Limit = -1

// IsUnlimited reports whether l imposes no ceiling.
func (l Limit) IsUnlimited() bool { return l < 0 }

// Allows reports whether amount more can be consumed on top of used.
func (l Limit) Allows(used, amount int64) bool {
	if l.IsUnlimited() {
		return true
	}
	return amount <= int64(l)-used
}

// Remaining returns what is left, or -1 when unlimited.
func (l Limit) Remaining(used int64) int64 {
	if l.IsUnlimited() {
		return -1
	}
	return max(0, int64(l)-used)
}

func (l Limit) String() string {
	if l.IsUnlimited() {
		return "unlimited"
	}
	return strconv.FormatInt(int64(l), 10)
}

// Limits are the ceilings of one kind on one plan.
type Limits struct {
	Daily   Limit `koanf:"daily" json:"daily"`
	Monthly Limit `koanf:"monthly" json:"monthly"`
}

// For returns the ceiling of period p.
func (l Limits) For(p Period) Limit {
	if p == PeriodMonth {
		return l.Monthly
	}
	return l.Daily
}

// DefaultPlan is assumed for owners without a subscription.
const DefaultPlan = "free"

// Plans maps plan name to per-kind limits.
type Plans map[string]map[Kind]Limits

// DefaultPlans returns the built-in plan table.
func DefaultPlans() Plans {
	return Plans{
		"free": {
			KindGeneration: {Daily: 20, Monthly: 200},
		},
		"pro": {
			KindGeneration: {Daily: 200, Monthly: Unlimited},
		},
		"unlimited": {
			KindGeneration: {Daily: Unlimited, Monthly: Unlimited},
		},
	}
}

// Limits returns the limits of kind on plan. A kind the plan does not list
// gets zero limits; an unknown plan is an error.
func (p Plans) Limits(plan string, kind Kind) (Limits, error) {
	kinds, ok := p[plan]
	if !ok {
		return Limits{}, fmt.Errorf("unknown plan %q", plan)
	}
	return kinds[kind], nil
}

func sortedKinds(m map[Kind]Limits) []Kind {
	return slices.Sorted(maps.Keys(m))
}
