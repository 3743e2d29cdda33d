package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

const answerEventsTable = "answer_events"

var answerColumns = []string{
	"sequence", "timestamp", "session_id", "question_index", "question_text",
	"subtopic", "correct_answer", "learner_answer", "correct", "advance_trigger",
	"seconds_remaining", "time_ms",
}

func (r *eventRepo) AppendAnswerEvents(ctx context.Context, data []AnswerEventData) error {
	if len(data) == 0 {
		return nil
	}

	first, err := r.seq.NextN(ctx, len(data))
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin answer events: %w", err)
	}
	defer tx.Rollback()

	now := toMillis(time.Now())
	for i, d := range data {
		if err := insertAnswer(ctx, tx, first+int64(i), now, d); err != nil {
			return fmt.Errorf("save answer event %d: %w", d.QuestionIndex, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit answer events: %w", err)
	}
	return nil
}

func insertAnswer(ctx context.Context, ex execer, seq, ts int64, d AnswerEventData) error {
	var learner sql.NullString
	if d.LearnerAnswer != nil {
		learner = sql.NullString{String: *d.LearnerAnswer, Valid: true}
	}

	query, args := builder().Insert(answerEventsTable).
		Columns(answerColumns...).
		Values(
			seq, ts, d.SessionID, d.QuestionIndex, d.QuestionText, d.Subtopic,
			d.CorrectAnswer, learner, d.Correct, d.Trigger, d.SecondsRemaining, d.TimeMs,
		).
		Query()
	_, err := ex.ExecContext(ctx, query, args...)
	return err
}

func (r *eventRepo) SessionAnswers(ctx context.Context, sessionID string) ([]AnswerRecord, error) {
	query, args := builder().Select(answerColumns...).
		From(entsql.Table(answerEventsTable)).
		Where(entsql.EQ("session_id", sessionID)).
		OrderBy("question_index", "sequence").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer rows.Close()

	var records []AnswerRecord
	for rows.Next() {
		var (
			a       AnswerRecord
			ts      int64
			session string
			learner sql.NullString
		)
		if err := rows.Scan(
			&a.Sequence, &ts, &session, &a.QuestionIndex, &a.QuestionText, &a.Subtopic,
			&a.CorrectAnswer, &learner, &a.Correct, &a.Trigger, &a.SecondsRemaining, &a.TimeMs,
		); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		a.Timestamp = fromMillis(ts)
		if learner.Valid {
			v := learner.String
			a.LearnerAnswer = &v
		}
		records = append(records, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	return records, nil
}
