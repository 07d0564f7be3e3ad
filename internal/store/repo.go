package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// SessionRow is the persisted form of a study session.
type SessionRow struct {
	ID                 string
	OwnerID            string
	TopicID            int64
	SubtopicID         int64
	Topic              string
	Subtopic           string
	Method             string
	Status             string
	StartedAt          time.Time
	PausedAt           *time.Time
	PausedSeconds      int64
	EndedAt            *time.Time
	DurationSeconds    int64
	QuestionsAttempted int
	QuestionsCorrect   int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// RevisionRow is the persisted form of a revision item.
type RevisionRow struct {
	ID              string
	OwnerID         string
	TopicID         int64
	SubtopicID      int64
	Topic           string
	Subtopic        string
	Status          string
	DueDate         time.Time
	IntervalDays    int
	Ease            float64
	Repetitions     int
	Priority        int
	OriginSessionID *string
	LastReviewedAt  *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// RevisionEventRow is one append-only review log entry.
type RevisionEventRow struct {
	ID                  int64
	Sequence            int64
	RevisionID          string
	Quality             int
	TimeSpentSeconds    int
	PreviousInterval    int
	NewInterval         int
	PreviousEase        float64
	NewEase             float64
	PreviousRepetitions int
	NewRepetitions      int
	DueDate             time.Time
	Timestamp           time.Time
}

// ArtifactRow is a generated artifact with its denormalized request config.
type ArtifactRow struct {
	ID            string
	BatchID       string
	OwnerID       string
	TopicPath     string
	TopicIDs      string // comma-separated catalog ids, root first
	Format        string
	Difficulty    string
	SourceStyle   string
	Payload       string // JSON
	RequestConfig string // JSON
	Attempts      int
	Model         string
	CreatedAt     time.Time
}

// UsageRow is one owner/kind/period counter.
type UsageRow struct {
	OwnerID   string
	Kind      string
	Period    string
	Used      int64
	UpdatedAt time.Time
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a persisted LLM request event.
type LLMRequestEvent struct {
	ID        int64
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsageRow aggregates LLM events per model and purpose.
type LLMUsageRow struct {
	Model        string
	Purpose      string
	Requests     int
	Failures     int
	InputTokens  int64
	OutputTokens int64
	AvgLatencyMs float64
}

// SessionRepo persists study sessions.
type SessionRepo interface {
	Create(ctx context.Context, row *SessionRow) error

	// Get returns ErrNotFound when the session does not exist for owner.
	Get(ctx context.Context, ownerID, id string) (*SessionRow, error)

	// Update writes the mutable columns of row if its current status is one
	// of from. Returns ErrConflict otherwise.
	Update(ctx context.Context, row *SessionRow, from ...string) error

	// Finish is Update plus an optional revision insert, and that revision's
	// first log entry, in one transaction.
	Finish(ctx context.Context, row *SessionRow, rev *RevisionRow, ev *RevisionEventRow, from ...string) error

	List(ctx context.Context, ownerID string, limit int) ([]SessionRow, error)
}

// RevisionRepo persists revision items and their review log.
type RevisionRepo interface {
	Create(ctx context.Context, row *RevisionRow) error

	// Get returns ErrNotFound when the item does not exist for owner.
	Get(ctx context.Context, ownerID, id string) (*RevisionRow, error)

	// ApplyReview updates the item (if its status is one of from) and
	// appends ev in one transaction. The event's Sequence and ID are set.
	ApplyReview(ctx context.Context, row *RevisionRow, ev *RevisionEventRow, from ...string) error

	// SetStatus moves an item from one of from to status.
	SetStatus(ctx context.Context, ownerID, id, status string, at time.Time, from ...string) error

	// MarkOverdue flips every pending item due strictly before today to
	// overdue and reports how many rows changed.
	MarkOverdue(ctx context.Context, today time.Time, at time.Time) (int64, error)

	// Due lists pending or overdue items due on or before today, earliest
	// first then highest priority.
	Due(ctx context.Context, ownerID string, today time.Time, limit int) ([]RevisionRow, error)

	List(ctx context.Context, ownerID string, statuses []string, limit int) ([]RevisionRow, error)

	Events(ctx context.Context, revisionID string) ([]RevisionEventRow, error)
}

// ArtifactRepo persists generated artifacts.
type ArtifactRepo interface {
	// SaveBatch inserts all rows in one transaction.
	SaveBatch(ctx context.Context, rows []ArtifactRow) error
	ListByBatch(ctx context.Context, ownerID, batchID string) ([]ArtifactRow, error)
	List(ctx context.Context, ownerID string, limit int) ([]ArtifactRow, error)
}

// UsageRepo persists per-period quota counters.
type UsageRepo interface {
	Used(ctx context.Context, ownerID, kind, period string) (int64, error)
	Add(ctx context.Context, ownerID, kind, period string, n int64, at time.Time) error
	List(ctx context.Context, ownerID string, periods []string) ([]UsageRow, error)
}

// SubscriptionRepo maps owners to plans.
type SubscriptionRepo interface {
	// Plan returns "" when the owner has no subscription row.
	Plan(ctx context.Context, ownerID string) (string, error)
	SetPlan(ctx context.Context, ownerID, plan string, at time.Time) error
}

// CatalogRepo resolves topic names to stable ids.
type CatalogRepo interface {
	// GetOrCreate returns the id of (parentID, name), inserting it if absent.
	GetOrCreate(ctx context.Context, parentID int64, name string) (int64, error)

	// ResolvePath resolves a root-first topic path, creating missing nodes.
	ResolvePath(ctx context.Context, names []string) ([]int64, error)
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	QueryLLMRequests(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	LLMUsage(ctx context.Context) ([]LLMUsageRow, error)
}
