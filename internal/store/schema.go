package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Timestamps are stored as fixed-width UTC text so that lexical order is
// chronological; calendar days use the 2006-01-02 layout.
const (
	timestampLayout = "2006-01-02T15:04:05.000000Z"
	dateLayout      = "2006-01-02"
)

var (
	// TopicsColumns holds the columns for the "topics" table.
	TopicsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "parent_id", Type: field.TypeInt64, Default: 0},
		{Name: "name", Type: field.TypeString},
		{Name: "created_at", Type: field.TypeString},
	}
	// TopicsTable holds the schema information for the "topics" table.
	TopicsTable = &schema.Table{
		Name:       "topics",
		Columns:    TopicsColumns,
		PrimaryKey: []*schema.Column{TopicsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "topic_parent_id_name",
				Unique:  true,
				Columns: []*schema.Column{TopicsColumns[1], TopicsColumns[2]},
			},
		},
	}

	// StudySessionsColumns holds the columns for the "study_sessions" table.
	StudySessionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "owner_id", Type: field.TypeString},
		{Name: "topic_id", Type: field.TypeInt64},
		{Name: "subtopic_id", Type: field.TypeInt64, Default: 0},
		{Name: "topic", Type: field.TypeString},
		{Name: "subtopic", Type: field.TypeString, Default: ""},
		{Name: "method", Type: field.TypeString},
		{Name: "status", Type: field.TypeString},
		{Name: "started_at", Type: field.TypeString},
		{Name: "paused_at", Type: field.TypeString, Nullable: true},
		{Name: "paused_seconds", Type: field.TypeInt64, Default: 0},
		{Name: "ended_at", Type: field.TypeString, Nullable: true},
		{Name: "duration_seconds", Type: field.TypeInt64, Default: 0},
		{Name: "questions_attempted", Type: field.TypeInt, Default: 0},
		{Name: "questions_correct", Type: field.TypeInt, Default: 0},
		{Name: "created_at", Type: field.TypeString},
		{Name: "updated_at", Type: field.TypeString},
	}
	// StudySessionsTable holds the schema information for the "study_sessions" table.
	StudySessionsTable = &schema.Table{
		Name:       "study_sessions",
		Columns:    StudySessionsColumns,
		PrimaryKey: []*schema.Column{StudySessionsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "studysession_owner_id_started_at",
				Columns: []*schema.Column{StudySessionsColumns[1], StudySessionsColumns[8]},
			},
		},
	}

	// RevisionItemsColumns holds the columns for the "revision_items" table.
	RevisionItemsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "owner_id", Type: field.TypeString},
		{Name: "topic_id", Type: field.TypeInt64},
		{Name: "subtopic_id", Type: field.TypeInt64, Default: 0},
		{Name: "topic", Type: field.TypeString},
		{Name: "subtopic", Type: field.TypeString, Default: ""},
		{Name: "status", Type: field.TypeString},
		{Name: "due_date", Type: field.TypeString},
		{Name: "interval_days", Type: field.TypeInt},
		{Name: "ease", Type: field.TypeFloat64},
		{Name: "repetitions", Type: field.TypeInt},
		{Name: "priority", Type: field.TypeInt},
		{Name: "last_reviewed_at", Type: field.TypeString, Nullable: true},
		{Name: "created_at", Type: field.TypeString},
		{Name: "updated_at", Type: field.TypeString},
		{Name: "origin_session_id", Type: field.TypeString, Nullable: true},
	}
	// RevisionItemsTable holds the schema information for the "revision_items" table.
	RevisionItemsTable = &schema.Table{
		Name:       "revision_items",
		Columns:    RevisionItemsColumns,
		PrimaryKey: []*schema.Column{RevisionItemsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "revision_items_study_sessions_revisions",
				Columns:    []*schema.Column{RevisionItemsColumns[15]},
				RefColumns: []*schema.Column{StudySessionsColumns[0]},
				OnDelete:   schema.SetNull,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "revisionitem_owner_id_status_due_date",
				Columns: []*schema.Column{RevisionItemsColumns[1], RevisionItemsColumns[6], RevisionItemsColumns[7]},
			},
			{
				Name:    "revisionitem_status_due_date",
				Columns: []*schema.Column{RevisionItemsColumns[6], RevisionItemsColumns[7]},
			},
			{
				// One seeded revision per session at most.
				Name:    "revisionitem_origin_session_id",
				Unique:  true,
				Columns: []*schema.Column{RevisionItemsColumns[15]},
			},
		},
	}

	// RevisionEventsColumns holds the columns for the "revision_events" table.
	RevisionEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "sequence", Type: field.TypeInt64},
		{Name: "quality", Type: field.TypeInt},
		{Name: "time_spent_seconds", Type: field.TypeInt},
		{Name: "previous_interval", Type: field.TypeInt},
		{Name: "new_interval", Type: field.TypeInt},
		{Name: "previous_ease", Type: field.TypeFloat64},
		{Name: "new_ease", Type: field.TypeFloat64},
		{Name: "previous_repetitions", Type: field.TypeInt},
		{Name: "new_repetitions", Type: field.TypeInt},
		{Name: "due_date", Type: field.TypeString},
		{Name: "timestamp", Type: field.TypeString},
		{Name: "revision_id", Type: field.TypeString},
	}
	// RevisionEventsTable holds the schema information for the "revision_events" table.
	RevisionEventsTable = &schema.Table{
		Name:       "revision_events",
		Columns:    RevisionEventsColumns,
		PrimaryKey: []*schema.Column{RevisionEventsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "revision_events_revision_items_events",
				Columns:    []*schema.Column{RevisionEventsColumns[12]},
				RefColumns: []*schema.Column{RevisionItemsColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "revisionevent_sequence",
				Unique:  true,
				Columns: []*schema.Column{RevisionEventsColumns[1]},
			},
			{
				Name:    "revisionevent_revision_id",
				Columns: []*schema.Column{RevisionEventsColumns[12]},
			},
		},
	}

	// GeneratedArtifactsColumns holds the columns for the "generated_artifacts" table.
	GeneratedArtifactsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "batch_id", Type: field.TypeString},
		{Name: "owner_id", Type: field.TypeString},
		{Name: "topic_path", Type: field.TypeString},
		{Name: "topic_ids", Type: field.TypeString},
		{Name: "format", Type: field.TypeString},
		{Name: "difficulty", Type: field.TypeString},
		{Name: "source_style", Type: field.TypeString},
		{Name: "payload", Type: field.TypeString},
		{Name: "request_config", Type: field.TypeString},
		{Name: "attempts", Type: field.TypeInt},
		{Name: "model", Type: field.TypeString, Default: ""},
		{Name: "created_at", Type: field.TypeString},
	}
	// GeneratedArtifactsTable holds the schema information for the "generated_artifacts" table.
	GeneratedArtifactsTable = &schema.Table{
		Name:       "generated_artifacts",
		Columns:    GeneratedArtifactsColumns,
		PrimaryKey: []*schema.Column{GeneratedArtifactsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "generatedartifact_owner_id_batch_id",
				Columns: []*schema.Column{GeneratedArtifactsColumns[2], GeneratedArtifactsColumns[1]},
			},
		},
	}

	// UsageCountersColumns holds the columns for the "usage_counters" table.
	UsageCountersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "owner_id", Type: field.TypeString},
		{Name: "kind", Type: field.TypeString},
		{Name: "period", Type: field.TypeString},
		{Name: "used", Type: field.TypeInt64, Default: 0},
		{Name: "updated_at", Type: field.TypeString},
	}
	// UsageCountersTable holds the schema information for the "usage_counters" table.
	UsageCountersTable = &schema.Table{
		Name:       "usage_counters",
		Columns:    UsageCountersColumns,
		PrimaryKey: []*schema.Column{UsageCountersColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "usagecounter_owner_id_kind_period",
				Unique:  true,
				Columns: []*schema.Column{UsageCountersColumns[1], UsageCountersColumns[2], UsageCountersColumns[3]},
			},
		},
	}

	// SubscriptionsColumns holds the columns for the "subscriptions" table.
	SubscriptionsColumns = []*schema.Column{
		{Name: "owner_id", Type: field.TypeString},
		{Name: "plan", Type: field.TypeString},
		{Name: "updated_at", Type: field.TypeString},
	}
	// SubscriptionsTable holds the schema information for the "subscriptions" table.
	SubscriptionsTable = &schema.Table{
		Name:       "subscriptions",
		Columns:    SubscriptionsColumns,
		PrimaryKey: []*schema.Column{SubscriptionsColumns[0]},
	}

	// LlmRequestEventsColumns holds the columns for the "llm_request_events" table.
	LlmRequestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "sequence", Type: field.TypeInt64},
		{Name: "timestamp", Type: field.TypeString},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt},
		{Name: "output_tokens", Type: field.TypeInt},
		{Name: "latency_ms", Type: field.TypeInt64},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Default: ""},
		{Name: "response_body", Type: field.TypeString, Default: ""},
	}
	// LlmRequestEventsTable holds the schema information for the "llm_request_events" table.
	LlmRequestEventsTable = &schema.Table{
		Name:       "llm_request_events",
		Columns:    LlmRequestEventsColumns,
		PrimaryKey: []*schema.Column{LlmRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "llmrequestevent_sequence",
				Unique:  true,
				Columns: []*schema.Column{LlmRequestEventsColumns[1]},
			},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		TopicsTable,
		StudySessionsTable,
		RevisionItemsTable,
		RevisionEventsTable,
		GeneratedArtifactsTable,
		UsageCountersTable,
		SubscriptionsTable,
		LlmRequestEventsTable,
	}
)

func init() {
	RevisionItemsTable.ForeignKeys[0].RefTable = StudySessionsTable
	RevisionEventsTable.ForeignKeys[0].RefTable = RevisionItemsTable
}
