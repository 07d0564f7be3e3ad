// Package session records timed study sessions. Finishing a session is the
// only place a revision can be seeded from study activity.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/estuda/estuda/internal/apperr"
	"github.com/estuda/estuda/internal/clock"
	"github.com/estuda/estuda/internal/logging"
	"github.com/estuda/estuda/internal/spacedrep"
	"github.com/estuda/estuda/internal/store"
)

// StartInput opens a session.
type StartInput struct {
	Topic    string `json:"topic" validate:"required,max=200"`
	Subtopic string `json:"subtopic" validate:"max=200"`
	Method   Method `json:"method" validate:"required,oneof=questions reading flashcards video review summary"`
}

// FinishInput closes a session. Both metrics are required, even when zero.
type FinishInput struct {
	QuestionsAttempted *int `json:"questions_attempted" validate:"required,min=0"`
	QuestionsCorrect   *int `json:"questions_correct" validate:"required,min=0"`
	CreateRevision     bool `json:"create_revision"`
	Priority           int  `json:"priority" validate:"omitempty,min=1,max=5"`
}

// Result is the outcome of finishing a session.
type Result struct {
	Session  *Session        `json:"session"`
	Accuracy float64         `json:"accuracy"`
	Revision *spacedrep.Item `json:"revision,omitempty"`
}

// Tracker records study sessions for any owner.
type Tracker struct {
	repo    store.SessionRepo
	catalog store.CatalogRepo
	clock   clock.Clock
	log     *zap.Logger
}

// NewTracker creates a tracker backed by the given repositories.
func NewTracker(repo store.SessionRepo, catalog store.CatalogRepo, clk clock.Clock, log *zap.Logger) *Tracker {
	if clk == nil {
		clk = clock.System{}
	}
	return &Tracker{repo: repo, catalog: catalog, clock: clk, log: logging.OrNop(log)}
}

// Start opens an active session for owner.
func (t *Tracker) Start(ctx context.Context, owner string, in StartInput) (*Session, error) {
	if err := apperr.ValidateStruct(in); err != nil {
		return nil, err
	}
	topic, err := spacedrep.ResolveTopic(ctx, t.catalog, in.Topic, in.Subtopic)
	if err != nil {
		return nil, err
	}

	now := t.clock.Now()
	s := &Session{
		ID:        uuid.NewString(),
		OwnerID:   owner,
		TopicRef:  topic,
		Method:    in.Method,
		Status:    StatusActive,
		StartedAt: now,
	}
	if err := t.repo.Create(ctx, s.row(now)); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	t.log.Info("session started",
		zap.String("owner", owner),
		zap.String("session_id", s.ID),
		zap.String("method", string(s.Method)),
	)
	return s, nil
}

// Get returns one session of owner.
func (t *Tracker) Get(ctx context.Context, owner, id string) (*Session, error) {
	row, err := t.repo.Get(ctx, owner, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("session %s: %w", id, apperr.ErrNotFound)
		}
		return nil, err
	}
	return fromRow(row), nil
}

// List returns owner's most recent sessions.
func (t *Tracker) List(ctx context.Context, owner string, limit int) ([]*Session, error) {
	rows, err := t.repo.List(ctx, owner, limit)
	if err != nil {
		return nil, err
	}
	out := make([]*Session, len(rows))
	for i := range rows {
		out[i] = fromRow(&rows[i])
	}
	return out, nil
}

// Pause stops the clock of an active session.
func (t *Tracker) Pause(ctx context.Context, owner, id string) (*Session, error) {
	return t.mutate(ctx, owner, id, StatusPaused, "pause", func(s *Session) {
		now := t.clock.Now()
		s.Status = StatusPaused
		s.PausedAt = &now
	})
}

// Resume restarts the clock of a paused session.
func (t *Tracker) Resume(ctx context.Context, owner, id string) (*Session, error) {
	return t.mutate(ctx, owner, id, StatusActive, "resume", func(s *Session) {
		if s.PausedAt != nil {
			s.PausedSeconds += secondsBetween(*s.PausedAt, t.clock.Now())
		}
		s.Status = StatusActive
		s.PausedAt = nil
	})
}

// Cancel abandons a session. No revision is seeded.
func (t *Tracker) Cancel(ctx context.Context, owner, id string) (*Session, error) {
	return t.mutate(ctx, owner, id, StatusCancelled, "cancel", func(s *Session) {
		s.close(StatusCancelled, t.clock.Now())
	})
}

// Finish closes a session with its metrics. When requested it seeds exactly
// one revision in the same transaction; a finished session can never be
// finished again, so it can never seed a second one.
func (t *Tracker) Finish(ctx context.Context, owner, id string, in FinishInput) (*Result, error) {
	if err := apperr.ValidateStruct(in); err != nil {
		return nil, err
	}
	if *in.QuestionsCorrect > *in.QuestionsAttempted {
		return nil, apperr.Invalid("questions_correct", "cannot exceed questions_attempted (%d > %d)",
			*in.QuestionsCorrect, *in.QuestionsAttempted)
	}

	s, err := t.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if !s.Status.CanTransition(StatusFinished) {
		return nil, &apperr.InvalidStateError{Entity: "session", ID: id, State: string(s.Status), Op: "finish"}
	}

	prev := s.Status
	now := t.clock.Now()
	s.QuestionsAttempted = *in.QuestionsAttempted
	s.QuestionsCorrect = *in.QuestionsCorrect
	s.close(StatusFinished, now)

	var rev *spacedrep.Item
	var revRow *store.RevisionRow
	var seedEv *store.RevisionEventRow
	if in.CreateRevision {
		q := spacedrep.SeedQuality(s.QuestionsAttempted, s.QuestionsCorrect)
		rev, err = spacedrep.Seed(owner, s.ID, s.TopicRef, in.Priority, q, now)
		if err != nil {
			return nil, err
		}
		revRow = rev.Row()
		seedEv = spacedrep.SeedEvent(rev, q, int(s.DurationSeconds))
	}

	if err := t.repo.Finish(ctx, s.row(now), revRow, seedEv, string(prev)); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, t.stateError(ctx, owner, id, "finish")
		}
		return nil, fmt.Errorf("finish session: %w", err)
	}

	fields := []zap.Field{
		zap.String("owner", owner),
		zap.String("session_id", id),
		zap.Int64("duration_seconds", s.DurationSeconds),
		zap.Int("attempted", s.QuestionsAttempted),
		zap.Int("correct", s.QuestionsCorrect),
	}
	if rev != nil {
		fields = append(fields, zap.String("revision_id", rev.ID), zap.Time("revision_due", rev.DueDate))
	}
	t.log.Info("session finished", fields...)

	return &Result{Session: s, Accuracy: s.Accuracy(), Revision: rev}, nil
}

// mutate applies fn to the session if it may move to `to`, guarding the
// write on the status that was read.
func (t *Tracker) mutate(ctx context.Context, owner, id string, to Status, op string, fn func(*Session)) (*Session, error) {
	s, err := t.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if !s.Status.CanTransition(to) {
		return nil, &apperr.InvalidStateError{Entity: "session", ID: id, State: string(s.Status), Op: op}
	}

	prev := s.Status
	fn(s)
	if err := t.repo.Update(ctx, s.row(t.clock.Now()), string(prev)); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, t.stateError(ctx, owner, id, op)
		}
		return nil, fmt.Errorf("%s session: %w", op, err)
	}

	t.log.Debug("session "+op, zap.String("owner", owner), zap.String("session_id", id))
	return s, nil
}

func (t *Tracker) stateError(ctx context.Context, owner, id, op string) error {
	s, err := t.Get(ctx, owner, id)
	if err != nil {
		return err
	}
	return &apperr.InvalidStateError{Entity: "session", ID: id, State: string(s.Status), Op: op}
}
