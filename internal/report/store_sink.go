package report

import (
	"context"
	"fmt"

	"github.com/abhisek/quizdesk/internal/store"
)

// StoreSink persists the answers and the end event of a session.
type StoreSink struct {
	Repo store.EventRepo
}

func (StoreSink) String() string { return "store" }

func (s StoreSink) Deliver(ctx context.Context, o Outcome) error {
	answers := make([]store.AnswerEventData, 0, len(o.Questions))
	for i, q := range o.Questions {
		d := store.AnswerEventData{
			SessionID:     o.SessionID,
			QuestionIndex: i,
			QuestionText:  q.Text,
			Subtopic:      q.Subtopic,
			CorrectAnswer: q.CorrectAnswer,
		}
		if i < len(o.Answers) {
			d.LearnerAnswer = o.Answers[i].Ptr()
			d.Correct = q.IsCorrect(o.Answers[i])
		}
		if i < len(o.Records) {
			r := o.Records[i]
			d.Trigger = string(r.Trigger)
			d.SecondsRemaining = r.SecondsRemaining
			d.TimeMs = r.Elapsed.Milliseconds()
		}
		answers = append(answers, d)
	}

	if err := s.Repo.AppendAnswerEvents(ctx, answers); err != nil {
		return fmt.Errorf("store answers: %w", err)
	}

	err := s.Repo.AppendSessionEvent(ctx, store.SessionEventData{
		SessionID:      o.SessionID,
		Action:         store.ActionEnd,
		QuizID:         o.QuizID,
		QuizTitle:      o.QuizTitle,
		Student:        o.Student.Name,
		TotalQuestions: o.TotalQuestions,
		Score:          o.Score,
		DurationSecs:   int(o.TimeTaken.Seconds()),
	})
	if err != nil {
		return fmt.Errorf("store end event: %w", err)
	}
	return nil
}
