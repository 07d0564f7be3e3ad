package session

import (
	"slices"
	"time"

	"github.com/estuda/estuda/internal/spacedrep"
	"github.com/estuda/estuda/internal/store"
)

// Status is the lifecycle state of a study session.
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusFinished  Status = "finished"
	StatusCancelled Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusActive:    {StatusPaused, StatusFinished, StatusCancelled},
	StatusPaused:    {StatusActive, StatusFinished, StatusCancelled},
	StatusFinished:  nil,
	StatusCancelled: nil,
}

// CanTransition reports whether a session in status s may move to to.
func (s Status) CanTransition(to Status) bool {
	return slices.Contains(transitions[s], to)
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Method is the study activity of a session.
type Method string

const (
	MethodQuestions  Method = "questions"
	MethodReading    Method = "reading"
	MethodFlashcards Method = "flashcards"
	MethodVideo      Method = "video"
	MethodReview     Method = "review"
	MethodSummary    Method = "summary"
)

// Methods lists every accepted study method.
var Methods = []Method{MethodQuestions, MethodReading, MethodFlashcards, MethodVideo, MethodReview, MethodSummary}

// Session is a timed unit of study against one topic.
type Session struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	spacedrep.TopicRef
	Method             Method     `json:"method"`
	Status             Status     `json:"status"`
	StartedAt          time.Time  `json:"started_at"`
	PausedAt           *time.Time `json:"paused_at,omitempty"`
	PausedSeconds      int64      `json:"paused_seconds"`
	EndedAt            *time.Time `json:"ended_at,omitempty"`
	DurationSeconds    int64      `json:"duration_seconds"`
	QuestionsAttempted int        `json:"questions_attempted"`
	QuestionsCorrect   int        `json:"questions_correct"`
}

// Accuracy returns correct/attempted, or 0 when nothing was attempted.
func (s *Session) Accuracy() float64 {
	if s.QuestionsAttempted == 0 {
		return 0
	}
	return float64(s.QuestionsCorrect) / float64(s.QuestionsAttempted)
}

// close stamps the end of the session at now and computes its duration from
// the recorded timestamps, excluding paused time.
func (s *Session) close(status Status, now time.Time) {
	if s.PausedAt != nil {
		s.PausedSeconds += secondsBetween(*s.PausedAt, now)
		s.PausedAt = nil
	}
	s.Status = status
	s.EndedAt = &now
	s.DurationSeconds = max(0, secondsBetween(s.StartedAt, now)-s.PausedSeconds)
}

func secondsBetween(from, to time.Time) int64 {
	d := to.Sub(from)
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}

func (s *Session) row(updatedAt time.Time) *store.SessionRow {
	return &store.SessionRow{
		ID:                 s.ID,
		OwnerID:            s.OwnerID,
		TopicID:            s.TopicID,
		SubtopicID:         s.SubtopicID,
		Topic:              s.Topic,
		Subtopic:           s.Subtopic,
		Method:             string(s.Method),
		Status:             string(s.Status),
		StartedAt:          s.StartedAt,
		PausedAt:           s.PausedAt,
		PausedSeconds:      s.PausedSeconds,
		EndedAt:            s.EndedAt,
		DurationSeconds:    s.DurationSeconds,
		QuestionsAttempted: s.QuestionsAttempted,
		QuestionsCorrect:   s.QuestionsCorrect,
		CreatedAt:          s.StartedAt,
		UpdatedAt:          updatedAt,
	}
}

func fromRow(r *store.SessionRow) *Session {
	return &Session{
		ID:      r.ID,
		OwnerID: r.OwnerID,
		TopicRef: spacedrep.TopicRef{
			TopicID:    r.TopicID,
			SubtopicID: r.SubtopicID,
			Topic:      r.Topic,
			Subtopic:   r.Subtopic,
		},
		Method:             Method(r.Method),
		Status:             Status(r.Status),
		StartedAt:          r.StartedAt,
		PausedAt:           r.PausedAt,
		PausedSeconds:      r.PausedSeconds,
		EndedAt:            r.EndedAt,
		DurationSeconds:    r.DurationSeconds,
		QuestionsAttempted: r.QuestionsAttempted,
		QuestionsCorrect:   r.QuestionsCorrect,
	}
}
