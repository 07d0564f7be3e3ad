package spacedrep

import (
	"slices"
	"time"

	"github.com/estuda/estuda/internal/store"
)

// Status is the lifecycle state of a revision item.
type Status string

const (
	StatusPending  Status = "pending"
	StatusOverdue  Status = "overdue"
	StatusDone     Status = "done"
	StatusArchived Status = "archived"
)

// transitions lists the allowed moves out of each status. Archived is
// terminal. Done reopens to pending only through a new review.
var transitions = map[Status][]Status{
	StatusPending:  {StatusOverdue, StatusDone, StatusArchived},
	StatusOverdue:  {StatusDone, StatusArchived},
	StatusDone:     {StatusPending, StatusArchived},
	StatusArchived: nil,
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether an item in status s may move to to.
func (s Status) CanTransition(to Status) bool {
	return slices.Contains(transitions[s], to)
}

// sourcesOf returns every status that may move to to, in a stable order.
func sourcesOf(to Status) []string {
	var out []string
	for _, from := range []Status{StatusPending, StatusOverdue, StatusDone, StatusArchived} {
		if from.CanTransition(to) {
			out = append(out, string(from))
		}
	}
	return out
}

// reviewableFrom lists the statuses a review may start from. A review
// closes the current cycle and reopens the item as pending, so anything
// that can reach done qualifies, and so does done itself.
func reviewableFrom() []string {
	return append(sourcesOf(StatusDone), string(StatusDone))
}

// TopicRef names the (topic, sub-topic) pair under review together with
// its catalog ids. SubtopicID is 0 when there is no sub-topic.
type TopicRef struct {
	TopicID    int64  `json:"topic_id"`
	SubtopicID int64  `json:"subtopic_id,omitempty"`
	Topic      string `json:"topic"`
	Subtopic   string `json:"subtopic,omitempty"`
}

// Path renders "Topic > Subtopic", or just the topic.
func (t TopicRef) Path() string {
	if t.Subtopic == "" {
		return t.Topic
	}
	return t.Topic + " > " + t.Subtopic
}

// Item is a scheduled revision of one topic for one owner.
type Item struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	TopicRef
	Status          Status     `json:"status"`
	DueDate         time.Time  `json:"due_date"`
	Interval        int        `json:"interval"`
	Ease            float64    `json:"ease"`
	Repetitions     int        `json:"repetitions"`
	Priority        int        `json:"priority"`
	OriginSessionID *string    `json:"origin_session_id,omitempty"`
	LastReviewedAt  *time.Time `json:"last_reviewed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// IsDue reports whether the item should be reviewed on day today.
func (it *Item) IsDue(today time.Time) bool {
	if it.Status != StatusPending && it.Status != StatusOverdue {
		return false
	}
	return !it.DueDate.After(today)
}

// Event is one entry of an item's review log.
type Event struct {
	Sequence            int64     `json:"sequence"`
	RevisionID          string    `json:"revision_id"`
	Quality             int       `json:"quality"`
	TimeSpentSeconds    int       `json:"time_spent_seconds"`
	PreviousInterval    int       `json:"previous_interval"`
	NewInterval         int       `json:"new_interval"`
	PreviousEase        float64   `json:"previous_ease"`
	NewEase             float64   `json:"new_ease"`
	PreviousRepetitions int       `json:"previous_repetitions"`
	NewRepetitions      int       `json:"new_repetitions"`
	DueDate             time.Time `json:"due_date"`
	Timestamp           time.Time `json:"timestamp"`
}

// Row converts the item to its persisted form.
func (it *Item) Row() *store.RevisionRow {
	return &store.RevisionRow{
		ID:              it.ID,
		OwnerID:         it.OwnerID,
		TopicID:         it.TopicID,
		SubtopicID:      it.SubtopicID,
		Topic:           it.Topic,
		Subtopic:        it.Subtopic,
		Status:          string(it.Status),
		DueDate:         it.DueDate,
		IntervalDays:    it.Interval,
		Ease:            it.Ease,
		Repetitions:     it.Repetitions,
		Priority:        it.Priority,
		OriginSessionID: it.OriginSessionID,
		LastReviewedAt:  it.LastReviewedAt,
		CreatedAt:       it.CreatedAt,
		UpdatedAt:       it.UpdatedAt,
	}
}

func itemFromRow(r *store.RevisionRow) *Item {
	return &Item{
		ID:      r.ID,
		OwnerID: r.OwnerID,
		TopicRef: TopicRef{
			TopicID:    r.TopicID,
			SubtopicID: r.SubtopicID,
			Topic:      r.Topic,
			Subtopic:   r.Subtopic,
		},
		Status:          Status(r.Status),
		DueDate:         r.DueDate,
		Interval:        r.IntervalDays,
		Ease:            r.Ease,
		Repetitions:     r.Repetitions,
		Priority:        r.Priority,
		OriginSessionID: r.OriginSessionID,
		LastReviewedAt:  r.LastReviewedAt,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func eventFromRow(r *store.RevisionEventRow) Event {
	return Event{
		Sequence:            r.Sequence,
		RevisionID:          r.RevisionID,
		Quality:             r.Quality,
		TimeSpentSeconds:    r.TimeSpentSeconds,
		PreviousInterval:    r.PreviousInterval,
		NewInterval:         r.NewInterval,
		PreviousEase:        r.PreviousEase,
		NewEase:             r.NewEase,
		PreviousRepetitions: r.PreviousRepetitions,
		NewRepetitions:      r.NewRepetitions,
		DueDate:             r.DueDate,
		Timestamp:           r.Timestamp,
	}
}
