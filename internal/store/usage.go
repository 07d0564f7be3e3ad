package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

const (
	usageTable         = "usage_counters"
	subscriptionsTable = "subscriptions"
)

type usageRepo struct {
	db *sql.DB
}

func (r *usageRepo) Used(ctx context.Context, ownerID, kind, period string) (int64, error) {
	sel := builder().Select("used").
		From(entsql.Table(usageTable)).
		Where(entsql.And(
			entsql.EQ("owner_id", ownerID),
			entsql.EQ("kind", kind),
			entsql.EQ("period", period),
		))

	var used int64
	if err := queryRow(ctx, r.db, sel, &used); err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("usage %s/%s/%s: %w", ownerID, kind, period, err)
	}
	return used, nil
}

// Add increments the counter, creating it on first use.
func (r *usageRepo) Add(ctx context.Context, ownerID, kind, period string, n int64, at time.Time) error {
	ts := formatTime(at)
	ins := builder().Insert(usageTable).
		Columns("owner_id", "kind", "period", "used", "updated_at").
		Values(ownerID, kind, period, n, ts).
		OnConflict(
			entsql.ConflictColumns("owner_id", "kind", "period"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.Add("used", n)
				u.Set("updated_at", ts)
			}),
		)
	if _, err := exec(ctx, r.db, ins); err != nil {
		return fmt.Errorf("add usage %s/%s/%s: %w", ownerID, kind, period, err)
	}
	return nil
}

func (r *usageRepo) List(ctx context.Context, ownerID string, periods []string) ([]UsageRow, error) {
	pred := entsql.EQ("owner_id", ownerID)
	if len(periods) > 0 {
		pred = entsql.And(pred, entsql.In("period", anys(periods)...))
	}
	sel := builder().Select("owner_id", "kind", "period", "used", "updated_at").
		From(entsql.Table(usageTable)).
		Where(pred).
		OrderBy(entsql.Asc("kind"), entsql.Asc("period"))

	var out []UsageRow
	err := queryRows(ctx, r.db, sel, func(rows *sql.Rows) error {
		var (
			u       UsageRow
			updated string
		)
		if err := rows.Scan(&u.OwnerID, &u.Kind, &u.Period, &u.Used, &updated); err != nil {
			return err
		}
		t, err := parseTime(updated)
		if err != nil {
			return err
		}
		u.UpdatedAt = t
		out = append(out, u)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list usage: %w", err)
	}
	return out, nil
}

type subscriptionRepo struct {
	db *sql.DB
}

func (r *subscriptionRepo) Plan(ctx context.Context, ownerID string) (string, error) {
	sel := builder().Select("plan").
		From(entsql.Table(subscriptionsTable)).
		Where(entsql.EQ("owner_id", ownerID))

	var plan string
	if err := queryRow(ctx, r.db, sel, &plan); err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("plan for %s: %w", ownerID, err)
	}
	return plan, nil
}

func (r *subscriptionRepo) SetPlan(ctx context.Context, ownerID, plan string, at time.Time) error {
	ins := builder().Insert(subscriptionsTable).
		Columns("owner_id", "plan", "updated_at").
		Values(ownerID, plan, formatTime(at)).
		OnConflict(
			entsql.ConflictColumns("owner_id"),
			entsql.ResolveWithNewValues(),
		)
	if _, err := exec(ctx, r.db, ins); err != nil {
		return fmt.Errorf("set plan for %s: %w", ownerID, err)
	}
	return nil
}
