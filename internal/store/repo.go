package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a session has no recorded events.
var ErrNotFound = errors.New("not found")

// Session event actions.
const (
	ActionStart  = "start"
	ActionEnd    = "end"
	ActionCancel = "cancel"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// SessionEventData captures a session lifecycle transition.
type SessionEventData struct {
	SessionID      string
	Action         string // ActionStart, ActionEnd or ActionCancel
	QuizID         string
	QuizTitle      string
	Student        string
	TotalQuestions int
	Score          int
	DurationSecs   int
}

// AnswerEventData captures the answer recorded for one question.
type AnswerEventData struct {
	SessionID     string
	QuestionIndex int
	QuestionText  string
	Subtopic      string
	CorrectAnswer string
	// LearnerAnswer is nil when the question was left unanswered.
	LearnerAnswer    *string
	Correct          bool
	Trigger          string
	SecondsRemaining int
	TimeMs           int64
}

// SessionRecord is a session as read back from the event log.
type SessionRecord struct {
	SessionID      string    `json:"sessionId"`
	Sequence       int64     `json:"sequence"`
	StartedAt      time.Time `json:"startedAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	Status         string    `json:"status"` // last action recorded
	QuizID         string    `json:"quizId"`
	QuizTitle      string    `json:"quizTitle"`
	Student        string    `json:"student"`
	TotalQuestions int       `json:"totalQuestions"`
	Score          int       `json:"score"`
	DurationSecs   int       `json:"durationSecs"`
}

// AnswerRecord is a stored answer event.
type AnswerRecord struct {
	Sequence  int64     `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`

	QuestionIndex    int     `json:"questionIndex"`
	QuestionText     string  `json:"questionText"`
	Subtopic         string  `json:"subtopic,omitempty"`
	CorrectAnswer    string  `json:"correctAnswer"`
	LearnerAnswer    *string `json:"learnerAnswer"`
	Correct          bool    `json:"correct"`
	Trigger          string  `json:"trigger"`
	SecondsRemaining int     `json:"secondsRemaining"`
	TimeMs           int64   `json:"timeMs"`
}

// EventRepo provides append and query access to quiz events.
type EventRepo interface {
	// AppendSessionEvent records a session lifecycle event.
	AppendSessionEvent(ctx context.Context, data SessionEventData) error

	// AppendAnswerEvents records the answers of a session in one transaction.
	AppendAnswerEvents(ctx context.Context, data []AnswerEventData) error

	// ListSessions returns finished (ended or cancelled) sessions, newest first.
	ListSessions(ctx context.Context, opts QueryOpts) ([]SessionRecord, error)

	// GetSession folds every event of a session into one record.
	// It returns ErrNotFound for an unknown session.
	GetSession(ctx context.Context, sessionID string) (*SessionRecord, error)

	// SessionAnswers returns the answers of a session in question order.
	SessionAnswers(ctx context.Context, sessionID string) ([]AnswerRecord, error)
}
