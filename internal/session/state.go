package session

import (
	"time"

	"github.com/abhisek/quizdesk/internal/quiz"
)

// QuestionSeconds is the fixed countdown for every question.
const QuestionSeconds = 30

// DefaultGuardGrace is how long the advance guard stays held after a
// transition has been applied.
const DefaultGuardGrace = 100 * time.Millisecond

// MaxGuardGrace caps the guard grace below one countdown tick, so the guard
// is always free again before the next question can time out.
const MaxGuardGrace = 900 * time.Millisecond

// Status is the lifecycle state of a session.
type Status int

const (
	StatusNotStarted Status = iota
	StatusInProgress
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusNotStarted:
		return "not-started"
	case StatusInProgress:
		return "in-progress"
	case StatusCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Trigger identifies what caused an advance.
type Trigger string

const (
	TriggerTimeout Trigger = "timeout"
	TriggerManual  Trigger = "manual"
)

// Record is the replayable entry written for each question as it is advanced past.
type Record struct {
	Index            int           `json:"index"`
	Answer           quiz.Answer   `json:"answer"`
	Correct          bool          `json:"correct"`
	Trigger          Trigger       `json:"trigger"`
	SecondsRemaining int           `json:"secondsRemaining"`
	Elapsed          time.Duration `json:"elapsed"`
}

// Result is emitted once when a session completes.
type Result struct {
	SessionID string
	Score     int
	Total     int
	Answers   []quiz.Answer
	Records   []Record
	StartedAt time.Time
	Duration  time.Duration
}

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	SessionID        string
	Status           Status
	Cancelled        bool
	Index            int
	Total            int
	Question         quiz.Question
	Selected         quiz.Answer
	Locked           bool
	Answers          []quiz.Answer
	Score            int
	SecondsRemaining int
	Expired          bool
	NextEnabled      bool
}

// Hooks are the callbacks a Controller reports through. They run after the
// controller lock is released, on whichever goroutine triggered the change
// (the clock's goroutine for ticks and timeouts). Every field is optional.
type Hooks struct {
	// OnTick fires after each one-second tick of the current question.
	OnTick func(index, secondsRemaining int)
	// OnAdvance fires once per question as it is advanced past.
	OnAdvance func(rec Record, next Snapshot)
	// OnComplete fires exactly once when the last question is advanced past.
	OnComplete func(res Result)
	// OnCancel fires exactly once when Cancel is called before completion.
	OnCancel func()
}

// Options configures a Controller.
type Options struct {
	// SessionID identifies the session; a UUID is generated when empty.
	SessionID string
	// Clock defaults to SystemClock.
	Clock Clock
	// GuardGrace defaults to DefaultGuardGrace and is capped at MaxGuardGrace.
	GuardGrace time.Duration
	// LockOnSelect makes the first selection for a question final. The
	// default lets the learner change their choice until the question advances.
	LockOnSelect bool
	Hooks        Hooks
}
