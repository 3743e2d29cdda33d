// Package report turns a finished session into an Outcome and delivers it
// to sinks (event store, markdown export, UI) without blocking the quiz.
package report

import (
	"time"

	"github.com/abhisek/quizdesk/internal/analysis"
	"github.com/abhisek/quizdesk/internal/quiz"
	"github.com/abhisek/quizdesk/internal/session"
	"github.com/abhisek/quizdesk/internal/store"
)

// CelebrationRatio is the score ratio at which a session is celebrated.
const CelebrationRatio = 0.8

// Student identifies who took the quiz.
type Student struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Outcome is everything downstream consumers need about a finished session.
type Outcome struct {
	SessionID      string           `json:"sessionId"`
	QuizID         string           `json:"quizId"`
	QuizTitle      string           `json:"quizTitle"`
	Student        Student          `json:"student"`
	Score          int              `json:"score"`
	TotalQuestions int              `json:"totalQuestions"`
	Questions      []quiz.Question  `json:"questions"`
	Answers        []quiz.Answer    `json:"answers"`
	Records        []session.Record `json:"records,omitempty"`
	Performance    analysis.Report  `json:"performance"`
	Celebrate      bool             `json:"celebrate"`
	StartedAt      time.Time        `json:"startedAt"`
	TimeTaken      time.Duration    `json:"timeTaken"`
}

// NewOutcome builds the outcome of a completed session over set.
func NewOutcome(set quiz.Set, res session.Result, student Student) Outcome {
	return Outcome{
		SessionID:      res.SessionID,
		QuizID:         set.ID,
		QuizTitle:      set.Title,
		Student:        student,
		Score:          res.Score,
		TotalQuestions: res.Total,
		Questions:      set.Questions,
		Answers:        res.Answers,
		Records:        res.Records,
		Performance:    analysis.Analyze(set.Questions, res.Answers, analysis.FallbackSubtopic),
		Celebrate:      Celebrates(res.Score, res.Total),
		StartedAt:      res.StartedAt,
		TimeTaken:      res.Duration,
	}
}

// FromRecords rebuilds an outcome from the event log.
func FromRecords(rec store.SessionRecord, answers []store.AnswerRecord) Outcome {
	o := Outcome{
		SessionID:      rec.SessionID,
		QuizID:         rec.QuizID,
		QuizTitle:      rec.QuizTitle,
		Student:        Student{Name: rec.Student},
		Score:          rec.Score,
		TotalQuestions: rec.TotalQuestions,
		StartedAt:      rec.StartedAt,
		TimeTaken:      time.Duration(rec.DurationSecs) * time.Second,
	}
	for _, a := range answers {
		o.Questions = append(o.Questions, quiz.Question{
			Text:          a.QuestionText,
			CorrectAnswer: a.CorrectAnswer,
			Subtopic:      a.Subtopic,
		})
		ans := quiz.Unanswered
		if a.LearnerAnswer != nil {
			ans = quiz.Chose(*a.LearnerAnswer)
		}
		o.Answers = append(o.Answers, ans)
		o.Records = append(o.Records, session.Record{
			Index:            a.QuestionIndex,
			Answer:           ans,
			Correct:          a.Correct,
			Trigger:          session.Trigger(a.Trigger),
			SecondsRemaining: a.SecondsRemaining,
			Elapsed:          time.Duration(a.TimeMs) * time.Millisecond,
		})
	}
	if o.TotalQuestions == 0 {
		o.TotalQuestions = len(o.Questions)
	}
	o.Performance = analysis.Analyze(o.Questions, o.Answers, analysis.FallbackSubtopic)
	o.Celebrate = Celebrates(o.Score, o.TotalQuestions)
	return o
}

// Celebrates reports whether a score earns the celebration: at least 80%,
// or at most one question missed.
func Celebrates(score, total int) bool {
	if total <= 0 {
		return false
	}
	if float64(score)/float64(total) >= CelebrationRatio {
		return true
	}
	return score == total || score == total-1
}

// Ratio returns score/total, or 0 for an empty quiz.
func (o Outcome) Ratio() float64 {
	if o.TotalQuestions == 0 {
		return 0
	}
	return float64(o.Score) / float64(o.TotalQuestions)
}
