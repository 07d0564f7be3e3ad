package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

const sessionsTable = "study_sessions"

var sessionColumns = []string{
	"id", "owner_id", "topic_id", "subtopic_id", "topic", "subtopic", "method", "status",
	"started_at", "paused_at", "paused_seconds", "ended_at", "duration_seconds",
	"questions_attempted", "questions_correct", "created_at", "updated_at",
}

type sessionRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *sessionRepo) Create(ctx context.Context, row *SessionRow) error {
	ins := builder().Insert(sessionsTable).
		Columns(sessionColumns...).
		Values(
			row.ID, row.OwnerID, row.TopicID, row.SubtopicID, row.Topic, row.Subtopic, row.Method, row.Status,
			formatTime(row.StartedAt), formatTimePtr(row.PausedAt), row.PausedSeconds, formatTimePtr(row.EndedAt),
			row.DurationSeconds, row.QuestionsAttempted, row.QuestionsCorrect,
			formatTime(row.CreatedAt), formatTime(row.UpdatedAt),
		)
	if _, err := exec(ctx, r.db, ins); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *sessionRepo) Get(ctx context.Context, ownerID, id string) (*SessionRow, error) {
	sel := builder().Select(sessionColumns...).
		From(entsql.Table(sessionsTable)).
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("owner_id", ownerID)))

	query, args := sel.Query()
	row, err := scanSession(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return row, nil
}

func (r *sessionRepo) Update(ctx context.Context, row *SessionRow, from ...string) error {
	return updateSession(ctx, r.db, row, from)
}

func (r *sessionRepo) Finish(ctx context.Context, row *SessionRow, rev *RevisionRow, ev *RevisionEventRow, from ...string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := updateSession(ctx, tx, row, from); err != nil {
			return err
		}
		if rev == nil {
			return nil
		}
		if err := insertRevision(ctx, tx, rev); err != nil {
			return err
		}
		if ev == nil {
			return nil
		}
		return insertRevisionEvent(ctx, tx, r.seq, rev.ID, ev)
	})
}

func (r *sessionRepo) List(ctx context.Context, ownerID string, limit int) ([]SessionRow, error) {
	sel := builder().Select(sessionColumns...).
		From(entsql.Table(sessionsTable)).
		Where(entsql.EQ("owner_id", ownerID)).
		OrderBy(entsql.Desc("started_at"))
	if limit > 0 {
		sel.Limit(limit)
	}

	var out []SessionRow
	err := queryRows(ctx, r.db, sel, func(rows *sql.Rows) error {
		s, err := scanSession(rows)
		if err != nil {
			return err
		}
		out = append(out, *s)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return out, nil
}

func updateSession(ctx context.Context, q execer, row *SessionRow, from []string) error {
	upd := builder().Update(sessionsTable).
		Set("status", row.Status).
		Set("paused_at", formatTimePtr(row.PausedAt)).
		Set("paused_seconds", row.PausedSeconds).
		Set("ended_at", formatTimePtr(row.EndedAt)).
		Set("duration_seconds", row.DurationSeconds).
		Set("questions_attempted", row.QuestionsAttempted).
		Set("questions_correct", row.QuestionsCorrect).
		Set("updated_at", formatTime(row.UpdatedAt)).
		Where(entsql.And(
			entsql.EQ("id", row.ID),
			entsql.EQ("owner_id", row.OwnerID),
			entsql.In("status", anys(from)...),
		))

	n, err := exec(ctx, q, upd)
	if err != nil {
		return fmt.Errorf("update session %s: %w", row.ID, err)
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(sc rowScanner) (*SessionRow, error) {
	var (
		s                          SessionRow
		startedAt, created, update string
		pausedAt, endedAt          sql.NullString
	)
	err := sc.Scan(
		&s.ID, &s.OwnerID, &s.TopicID, &s.SubtopicID, &s.Topic, &s.Subtopic, &s.Method, &s.Status,
		&startedAt, &pausedAt, &s.PausedSeconds, &endedAt, &s.DurationSeconds,
		&s.QuestionsAttempted, &s.QuestionsCorrect, &created, &update,
	)
	if err != nil {
		return nil, err
	}
	if s.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, err
	}
	if s.PausedAt, err = parseTimePtr(pausedAt); err != nil {
		return nil, err
	}
	if s.EndedAt, err = parseTimePtr(endedAt); err != nil {
		return nil, err
	}
	if s.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = parseTime(update); err != nil {
		return nil, err
	}
	return &s, nil
}
