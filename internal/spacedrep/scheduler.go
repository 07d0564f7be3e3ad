package spacedrep

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/estuda/estuda/internal/apperr"
	"github.com/estuda/estuda/internal/clock"
	"github.com/estuda/estuda/internal/logging"
	"github.com/estuda/estuda/internal/store"
)

// DefaultPriority is used when a revision is created without one.
const DefaultPriority = 3

// Scheduler manages revision items: creation, reviews, lifecycle
// transitions and the overdue sweep.
type Scheduler struct {
	repo    store.RevisionRepo
	catalog store.CatalogRepo
	clock   clock.Clock
	log     *zap.Logger
}

// NewScheduler creates a scheduler backed by the given repositories.
func NewScheduler(repo store.RevisionRepo, catalog store.CatalogRepo, clk clock.Clock, log *zap.Logger) *Scheduler {
	if clk == nil {
		clk = clock.System{}
	}
	return &Scheduler{
		repo:    repo,
		catalog: catalog,
		clock:   clk,
		log:     logging.OrNop(log),
	}
}

// CreateInput describes a revision created explicitly by its owner.
type CreateInput struct {
	Topic    string     `json:"topic" validate:"required,max=200"`
	Subtopic string     `json:"subtopic" validate:"max=200"`
	Priority int        `json:"priority" validate:"omitempty,min=1,max=5"`
	DueDate  *time.Time `json:"due_date"`
}

// ReviewInput grades one review of an item.
type ReviewInput struct {
	Quality          *int `json:"quality" validate:"required,min=0,max=5"`
	TimeSpentSeconds int  `json:"time_spent_seconds" validate:"min=0"`
}

// ReviewResult is the updated item together with the log entry written.
type ReviewResult struct {
	Item  *Item `json:"item"`
	Event Event `json:"event"`
}

// ResolveTopic resolves topic names to catalog ids, creating missing nodes.
func ResolveTopic(ctx context.Context, catalog store.CatalogRepo, topic, subtopic string) (TopicRef, error) {
	topic = strings.TrimSpace(topic)
	subtopic = strings.TrimSpace(subtopic)
	if topic == "" {
		return TopicRef{}, apperr.Invalid("topic", "is required")
	}

	names := []string{topic}
	if subtopic != "" {
		names = append(names, subtopic)
	}
	ids, err := catalog.ResolvePath(ctx, names)
	if err != nil {
		return TopicRef{}, fmt.Errorf("resolve topic: %w", err)
	}

	ref := TopicRef{TopicID: ids[0], Topic: topic}
	if len(ids) > 1 {
		ref.SubtopicID = ids[1]
		ref.Subtopic = subtopic
	}
	return ref, nil
}

// NewItem builds a pending item due on dueDate with default SM-2 state.
func NewItem(owner string, topic TopicRef, priority int, dueDate, now time.Time) *Item {
	if priority == 0 {
		priority = DefaultPriority
	}
	return &Item{
		ID:          uuid.NewString(),
		OwnerID:     owner,
		TopicRef:    topic,
		Status:      StatusPending,
		DueDate:     clock.Day(dueDate),
		Interval:    1,
		Ease:        DefaultEase,
		Repetitions: 0,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Seed builds the item created when a study session finishes. The session
// counts as the first review: its accuracy grades an SM-2 step from a fresh
// state, so a well-answered session starts the repetition chain.
func Seed(owner, sessionID string, topic TopicRef, priority, quality int, now time.Time) (*Item, error) {
	out, err := Schedule(quality, 0, DefaultEase, 1, now)
	if err != nil {
		return nil, err
	}
	it := NewItem(owner, topic, priority, out.DueDate, now)
	it.Repetitions = out.Repetitions
	it.Interval = out.Interval
	it.Ease = out.Ease
	it.OriginSessionID = &sessionID
	return it, nil
}

// SeedEvent is the first log entry of a seeded item: the step from a fresh
// state that Seed applied.
func SeedEvent(it *Item, quality, timeSpentSeconds int) *store.RevisionEventRow {
	return &store.RevisionEventRow{
		Quality:             quality,
		TimeSpentSeconds:    timeSpentSeconds,
		PreviousInterval:    1,
		NewInterval:         it.Interval,
		PreviousEase:        DefaultEase,
		NewEase:             it.Ease,
		PreviousRepetitions: 0,
		NewRepetitions:      it.Repetitions,
		DueDate:             it.DueDate,
		Timestamp:           it.CreatedAt,
	}
}

// Create adds a revision for owner. Without a due date it is due tomorrow.
func (s *Scheduler) Create(ctx context.Context, owner string, in CreateInput) (*Item, error) {
	if err := apperr.ValidateStruct(in); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	due := clock.Day(now).AddDate(0, 0, 1)
	if in.DueDate != nil {
		due = clock.Day(*in.DueDate)
	}

	topic, err := ResolveTopic(ctx, s.catalog, in.Topic, in.Subtopic)
	if err != nil {
		return nil, err
	}

	it := NewItem(owner, topic, in.Priority, due, now)
	if err := s.repo.Create(ctx, it.Row()); err != nil {
		return nil, fmt.Errorf("create revision: %w", err)
	}

	s.log.Debug("revision created",
		zap.String("owner", owner),
		zap.String("revision_id", it.ID),
		zap.Time("due_date", it.DueDate),
	)
	return it, nil
}

// Get returns one item of owner.
func (s *Scheduler) Get(ctx context.Context, owner, id string) (*Item, error) {
	row, err := s.repo.Get(ctx, owner, id)
	if err != nil {
		return nil, mapStoreErr("revision", id, err)
	}
	return itemFromRow(row), nil
}

// Review grades a review of the item, reschedules it with SM-2 and appends
// a log entry. The item ends pending with its new due date.
func (s *Scheduler) Review(ctx context.Context, owner, id string, in ReviewInput) (*ReviewResult, error) {
	if err := apperr.ValidateStruct(in); err != nil {
		return nil, err
	}

	it, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(reviewableFrom(), string(it.Status)) {
		return nil, &apperr.InvalidStateError{Entity: "revision", ID: id, State: string(it.Status), Op: "review"}
	}

	now := s.clock.Now()
	out, err := Schedule(*in.Quality, it.Repetitions, it.Ease, it.Interval, now)
	if err != nil {
		return nil, err
	}

	ev := &store.RevisionEventRow{
		Quality:             *in.Quality,
		TimeSpentSeconds:    in.TimeSpentSeconds,
		PreviousInterval:    it.Interval,
		NewInterval:         out.Interval,
		PreviousEase:        it.Ease,
		NewEase:             out.Ease,
		PreviousRepetitions: it.Repetitions,
		NewRepetitions:      out.Repetitions,
		DueDate:             out.DueDate,
		Timestamp:           now,
	}

	prev := it.Status
	it.Status = StatusPending
	it.Repetitions = out.Repetitions
	it.Interval = out.Interval
	it.Ease = out.Ease
	it.DueDate = out.DueDate
	it.LastReviewedAt = &now
	it.UpdatedAt = now

	// Guard on the status we read so a concurrent archive wins.
	if err := s.repo.ApplyReview(ctx, it.Row(), ev, string(prev)); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, s.stateError(ctx, owner, id, "review")
		}
		return nil, fmt.Errorf("apply review: %w", err)
	}

	s.log.Info("revision reviewed",
		zap.String("owner", owner),
		zap.String("revision_id", id),
		zap.Int("quality", *in.Quality),
		zap.Int("interval", out.Interval),
		zap.Float64("ease", out.Ease),
	)
	return &ReviewResult{Item: it, Event: eventFromRow(ev)}, nil
}

// Complete closes the current cycle without rescheduling.
func (s *Scheduler) Complete(ctx context.Context, owner, id string) (*Item, error) {
	return s.transition(ctx, owner, id, StatusDone, "complete")
}

// Archive retires the item. Archived items accept no further transitions.
func (s *Scheduler) Archive(ctx context.Context, owner, id string) (*Item, error) {
	return s.transition(ctx, owner, id, StatusArchived, "archive")
}

func (s *Scheduler) transition(ctx context.Context, owner, id string, to Status, op string) (*Item, error) {
	now := s.clock.Now()
	err := s.repo.SetStatus(ctx, owner, id, string(to), now, sourcesOf(to)...)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, s.stateError(ctx, owner, id, op)
		}
		return nil, fmt.Errorf("%s revision: %w", op, err)
	}
	return s.Get(ctx, owner, id)
}

// Sweep marks every pending item due before today (UTC) as overdue. It is
// a single conditional update and safe to run concurrently or repeatedly.
func (s *Scheduler) Sweep(ctx context.Context) (int64, error) {
	now := s.clock.Now()
	n, err := s.repo.MarkOverdue(ctx, clock.Day(now), now)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("overdue sweep", zap.Int64("marked", n))
	}
	return n, nil
}

// Due lists owner's items to review today, earliest due first.
func (s *Scheduler) Due(ctx context.Context, owner string, limit int) ([]*Item, error) {
	rows, err := s.repo.Due(ctx, owner, clock.Today(s.clock), limit)
	if err != nil {
		return nil, err
	}
	return itemsFromRows(rows), nil
}

// List returns owner's items, optionally filtered by status.
func (s *Scheduler) List(ctx context.Context, owner string, statuses []Status, limit int) ([]*Item, error) {
	var filter []string
	for _, st := range statuses {
		if !st.Valid() {
			return nil, apperr.Invalid("status", "unknown status %q", st)
		}
		filter = append(filter, string(st))
	}
	rows, err := s.repo.List(ctx, owner, filter, limit)
	if err != nil {
		return nil, err
	}
	return itemsFromRows(rows), nil
}

// History returns the review log of one item, oldest first.
func (s *Scheduler) History(ctx context.Context, owner, id string) ([]Event, error) {
	if _, err := s.Get(ctx, owner, id); err != nil {
		return nil, err
	}
	rows, err := s.repo.Events(ctx, id)
	if err != nil {
		return nil, err
	}
	events := make([]Event, len(rows))
	for i := range rows {
		events[i] = eventFromRow(&rows[i])
	}
	return events, nil
}

// stateError re-reads the item to report the state that blocked op.
func (s *Scheduler) stateError(ctx context.Context, owner, id, op string) error {
	it, err := s.Get(ctx, owner, id)
	if err != nil {
		return err
	}
	return &apperr.InvalidStateError{Entity: "revision", ID: id, State: string(it.Status), Op: op}
}

func itemsFromRows(rows []store.RevisionRow) []*Item {
	items := make([]*Item, len(rows))
	for i := range rows {
		items[i] = itemFromRow(&rows[i])
	}
	return items
}

func mapStoreErr(entity, id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%s %s: %w", entity, id, apperr.ErrNotFound)
	}
	return err
}
