package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

const sessionEventsTable = "session_events"

var sessionColumns = []string{
	"sequence", "timestamp", "session_id", "action", "quiz_id", "quiz_title",
	"student", "total_questions", "score", "duration_secs",
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// eventRepo implements EventRepo on the SQL builder and the global sequence counter.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

func toMillis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	switch data.Action {
	case ActionStart, ActionEnd, ActionCancel:
	default:
		return fmt.Errorf("save session event: unknown action %q", data.Action)
	}

	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := builder().Insert(sessionEventsTable).
		Columns(sessionColumns...).
		Values(
			seqNum, toMillis(time.Now()), data.SessionID, data.Action, data.QuizID,
			data.QuizTitle, data.Student, data.TotalQuestions, data.Score, data.DurationSecs,
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) ListSessions(ctx context.Context, opts QueryOpts) ([]SessionRecord, error) {
	sel := builder().Select(sessionColumns...).
		From(entsql.Table(sessionEventsTable)).
		Where(entsql.In("action", ActionEnd, ActionCancel)).
		OrderBy(entsql.Desc("sequence"))
	applyOpts(sel, opts)

	events, err := r.querySessionEvents(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}

	records := make([]SessionRecord, len(events))
	for i, e := range events {
		records[i] = e.record()
		records[i].StartedAt = e.timestamp.Add(-time.Duration(e.DurationSecs) * time.Second)
	}
	return records, nil
}

func (r *eventRepo) GetSession(ctx context.Context, sessionID string) (*SessionRecord, error) {
	sel := builder().Select(sessionColumns...).
		From(entsql.Table(sessionEventsTable)).
		Where(entsql.EQ("session_id", sessionID)).
		OrderBy("sequence")

	events, err := r.querySessionEvents(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query session %s: %w", sessionID, err)
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}

	last := events[len(events)-1]
	rec := last.record()
	rec.StartedAt = events[0].timestamp
	if events[0].Action != ActionStart {
		rec.StartedAt = last.timestamp.Add(-time.Duration(last.DurationSecs) * time.Second)
	}
	return &rec, nil
}

type sessionEventRow struct {
	SessionEventData
	sequence  int64
	timestamp time.Time
}

func (e sessionEventRow) record() SessionRecord {
	return SessionRecord{
		SessionID:      e.SessionID,
		Sequence:       e.sequence,
		UpdatedAt:      e.timestamp,
		Status:         e.Action,
		QuizID:         e.QuizID,
		QuizTitle:      e.QuizTitle,
		Student:        e.Student,
		TotalQuestions: e.TotalQuestions,
		Score:          e.Score,
		DurationSecs:   e.DurationSecs,
	}
}

func (r *eventRepo) querySessionEvents(ctx context.Context, sel *entsql.Selector) ([]sessionEventRow, error) {
	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []sessionEventRow
	for rows.Next() {
		var e sessionEventRow
		var ts int64
		if err := rows.Scan(
			&e.sequence, &ts, &e.SessionID, &e.Action, &e.QuizID, &e.QuizTitle,
			&e.Student, &e.TotalQuestions, &e.Score, &e.DurationSecs,
		); err != nil {
			return nil, err
		}
		e.timestamp = fromMillis(ts)
		events = append(events, e)
	}
	return events, rows.Err()
}

// applyOpts adds the QueryOpts filters to a selector over an event table.
func applyOpts(sel *entsql.Selector, opts QueryOpts) {
	if opts.After > 0 {
		sel.Where(entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		sel.Where(entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE("timestamp", toMillis(opts.From)))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE("timestamp", toMillis(opts.To)))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
}
