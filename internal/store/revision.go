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
	revisionsTable      = "revision_items"
	revisionEventsTable = "revision_events"
)

var revisionColumns = []string{
	"id", "owner_id", "topic_id", "subtopic_id", "topic", "subtopic", "status", "due_date",
	"interval_days", "ease", "repetitions", "priority", "origin_session_id", "last_reviewed_at",
	"created_at", "updated_at",
}

var revisionEventColumns = []string{
	"id", "sequence", "revision_id", "quality", "time_spent_seconds",
	"previous_interval", "new_interval", "previous_ease", "new_ease",
	"previous_repetitions", "new_repetitions", "due_date", "timestamp",
}

type revisionRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *revisionRepo) Create(ctx context.Context, row *RevisionRow) error {
	return insertRevision(ctx, r.db, row)
}

func insertRevision(ctx context.Context, q execer, row *RevisionRow) error {
	ins := builder().Insert(revisionsTable).
		Columns(revisionColumns...).
		Values(
			row.ID, row.OwnerID, row.TopicID, row.SubtopicID, row.Topic, row.Subtopic, row.Status,
			formatDate(row.DueDate), row.IntervalDays, row.Ease, row.Repetitions, row.Priority,
			nullable(row.OriginSessionID), formatTimePtr(row.LastReviewedAt),
			formatTime(row.CreatedAt), formatTime(row.UpdatedAt),
		)
	if _, err := exec(ctx, q, ins); err != nil {
		return fmt.Errorf("insert revision: %w", err)
	}
	return nil
}

func (r *revisionRepo) Get(ctx context.Context, ownerID, id string) (*RevisionRow, error) {
	sel := builder().Select(revisionColumns...).
		From(entsql.Table(revisionsTable)).
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("owner_id", ownerID)))

	query, args := sel.Query()
	row, err := scanRevision(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get revision %s: %w", id, err)
	}
	return row, nil
}

func (r *revisionRepo) ApplyReview(ctx context.Context, row *RevisionRow, ev *RevisionEventRow, from ...string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		upd := builder().Update(revisionsTable).
			Set("status", row.Status).
			Set("due_date", formatDate(row.DueDate)).
			Set("interval_days", row.IntervalDays).
			Set("ease", row.Ease).
			Set("repetitions", row.Repetitions).
			Set("last_reviewed_at", formatTimePtr(row.LastReviewedAt)).
			Set("updated_at", formatTime(row.UpdatedAt)).
			Where(entsql.And(
				entsql.EQ("id", row.ID),
				entsql.EQ("owner_id", row.OwnerID),
				entsql.In("status", anys(from)...),
			))
		n, err := exec(ctx, tx, upd)
		if err != nil {
			return fmt.Errorf("update revision %s: %w", row.ID, err)
		}
		if n == 0 {
			return ErrConflict
		}

		return insertRevisionEvent(ctx, tx, r.seq, row.ID, ev)
	})
}

// insertRevisionEvent appends ev to the review log of revisionID, taking the
// next global sequence number inside tx.
func insertRevisionEvent(ctx context.Context, tx *sql.Tx, sc *sequenceCounter, revisionID string, ev *RevisionEventRow) error {
	seq, err := sc.Next(ctx, tx)
	if err != nil {
		return err
	}
	ev.Sequence = seq
	ev.RevisionID = revisionID

	ins := builder().Insert(revisionEventsTable).
		Columns(revisionEventColumns[1:]...).
		Values(
			ev.Sequence, ev.RevisionID, ev.Quality, ev.TimeSpentSeconds,
			ev.PreviousInterval, ev.NewInterval, ev.PreviousEase, ev.NewEase,
			ev.PreviousRepetitions, ev.NewRepetitions, formatDate(ev.DueDate), formatTime(ev.Timestamp),
		)
	query, args := ins.Query()
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("insert revision event: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		ev.ID = id
	}
	return nil
}

func (r *revisionRepo) SetStatus(ctx context.Context, ownerID, id, status string, at time.Time, from ...string) error {
	upd := builder().Update(revisionsTable).
		Set("status", status).
		Set("updated_at", formatTime(at)).
		Where(entsql.And(
			entsql.EQ("id", id),
			entsql.EQ("owner_id", ownerID),
			entsql.In("status", anys(from)...),
		))
	n, err := exec(ctx, r.db, upd)
	if err != nil {
		return fmt.Errorf("set revision %s status: %w", id, err)
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

func (r *revisionRepo) MarkOverdue(ctx context.Context, today time.Time, at time.Time) (int64, error) {
	upd := builder().Update(revisionsTable).
		Set("status", "overdue").
		Set("updated_at", formatTime(at)).
		Where(entsql.And(
			entsql.EQ("status", "pending"),
			entsql.LT("due_date", formatDate(today)),
		))
	n, err := exec(ctx, r.db, upd)
	if err != nil {
		return 0, fmt.Errorf("mark overdue: %w", err)
	}
	return n, nil
}

func (r *revisionRepo) Due(ctx context.Context, ownerID string, today time.Time, limit int) ([]RevisionRow, error) {
	sel := builder().Select(revisionColumns...).
		From(entsql.Table(revisionsTable)).
		Where(entsql.And(
			entsql.EQ("owner_id", ownerID),
			entsql.In("status", "pending", "overdue"),
			entsql.LTE("due_date", formatDate(today)),
		)).
		OrderBy(entsql.Asc("due_date"), entsql.Desc("priority"), entsql.Asc("id"))
	if limit > 0 {
		sel.Limit(limit)
	}
	rows, err := r.list(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("due revisions: %w", err)
	}
	return rows, nil
}

func (r *revisionRepo) List(ctx context.Context, ownerID string, statuses []string, limit int) ([]RevisionRow, error) {
	pred := entsql.EQ("owner_id", ownerID)
	if len(statuses) > 0 {
		pred = entsql.And(pred, entsql.In("status", anys(statuses)...))
	}
	sel := builder().Select(revisionColumns...).
		From(entsql.Table(revisionsTable)).
		Where(pred).
		OrderBy(entsql.Asc("due_date"), entsql.Asc("id"))
	if limit > 0 {
		sel.Limit(limit)
	}
	rows, err := r.list(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	return rows, nil
}

func (r *revisionRepo) list(ctx context.Context, sel *entsql.Selector) ([]RevisionRow, error) {
	var out []RevisionRow
	err := queryRows(ctx, r.db, sel, func(rows *sql.Rows) error {
		rev, err := scanRevision(rows)
		if err != nil {
			return err
		}
		out = append(out, *rev)
		return nil
	})
	return out, err
}

func (r *revisionRepo) Events(ctx context.Context, revisionID string) ([]RevisionEventRow, error) {
	sel := builder().Select(revisionEventColumns...).
		From(entsql.Table(revisionEventsTable)).
		Where(entsql.EQ("revision_id", revisionID)).
		OrderBy(entsql.Asc("sequence"))

	var out []RevisionEventRow
	err := queryRows(ctx, r.db, sel, func(rows *sql.Rows) error {
		var (
			ev         RevisionEventRow
			due, stamp string
		)
		if err := rows.Scan(
			&ev.ID, &ev.Sequence, &ev.RevisionID, &ev.Quality, &ev.TimeSpentSeconds,
			&ev.PreviousInterval, &ev.NewInterval, &ev.PreviousEase, &ev.NewEase,
			&ev.PreviousRepetitions, &ev.NewRepetitions, &due, &stamp,
		); err != nil {
			return err
		}
		var err error
		if ev.DueDate, err = parseDate(due); err != nil {
			return err
		}
		if ev.Timestamp, err = parseTime(stamp); err != nil {
			return err
		}
		out = append(out, ev)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("revision events %s: %w", revisionID, err)
	}
	return out, nil
}

func scanRevision(sc rowScanner) (*RevisionRow, error) {
	var (
		r                     RevisionRow
		due, created, updated string
		origin, lastReviewed  sql.NullString
	)
	err := sc.Scan(
		&r.ID, &r.OwnerID, &r.TopicID, &r.SubtopicID, &r.Topic, &r.Subtopic, &r.Status, &due,
		&r.IntervalDays, &r.Ease, &r.Repetitions, &r.Priority, &origin, &lastReviewed,
		&created, &updated,
	)
	if err != nil {
		return nil, err
	}
	if r.DueDate, err = parseDate(due); err != nil {
		return nil, err
	}
	r.OriginSessionID = stringPtr(origin)
	if r.LastReviewedAt, err = parseTimePtr(lastReviewed); err != nil {
		return nil, err
	}
	if r.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if r.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &r, nil
}
