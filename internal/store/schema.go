package store

import (
	"context"
	"database/sql"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// eventColumns are the fields every event table starts with: a row id, the
// global sequence and the wall-clock timestamp in Unix milliseconds.
func eventColumns() []*schema.Column {
	return []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeInt64},
		{Name: "session_id", Type: field.TypeString},
	}
}

var (
	sessionEventsColumns = append(eventColumns(),
		&schema.Column{Name: "action", Type: field.TypeString},
		&schema.Column{Name: "quiz_id", Type: field.TypeString, Default: ""},
		&schema.Column{Name: "quiz_title", Type: field.TypeString, Default: ""},
		&schema.Column{Name: "student", Type: field.TypeString, Default: ""},
		&schema.Column{Name: "total_questions", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "score", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "duration_secs", Type: field.TypeInt, Default: 0},
	)
	sessionEventsSchema = &schema.Table{
		Name:       "session_events",
		Columns:    sessionEventsColumns,
		PrimaryKey: []*schema.Column{sessionEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "session_events_session_id", Columns: []*schema.Column{sessionEventsColumns[3]}},
			{Name: "session_events_timestamp", Columns: []*schema.Column{sessionEventsColumns[2]}},
		},
	}

	answerEventsColumns = append(eventColumns(),
		&schema.Column{Name: "question_index", Type: field.TypeInt},
		&schema.Column{Name: "question_text", Type: field.TypeString},
		&schema.Column{Name: "subtopic", Type: field.TypeString, Default: ""},
		&schema.Column{Name: "correct_answer", Type: field.TypeString},
		&schema.Column{Name: "learner_answer", Type: field.TypeString, Nullable: true},
		&schema.Column{Name: "correct", Type: field.TypeBool},
		&schema.Column{Name: "advance_trigger", Type: field.TypeString},
		&schema.Column{Name: "seconds_remaining", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "time_ms", Type: field.TypeInt64, Default: 0},
	)
	answerEventsSchema = &schema.Table{
		Name:       "answer_events",
		Columns:    answerEventsColumns,
		PrimaryKey: []*schema.Column{answerEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "answer_events_session_id", Columns: []*schema.Column{answerEventsColumns[3]}},
		},
	}

	// tables lists every ent-managed table.
	tables = []*schema.Table{sessionEventsSchema, answerEventsSchema}
)

// migrate creates or upgrades the event tables through ent's migration engine.
// The global_sequence table is managed by the sequence counter.
func migrate(ctx context.Context, db *sql.DB) error {
	m, err := schema.NewMigrate(entsql.OpenDB(dialect.SQLite, db))
	if err != nil {
		return err
	}
	return m.Create(ctx, tables...)
}
