package quiz

import (
	sess "github.com/abhisek/quizdesk/internal/session"
)

// countdownMsg carries one controller tick.
type countdownMsg struct {
	Index     int
	Remaining int
}

// advanceMsg is sent when the controller moves past a question.
type advanceMsg struct {
	Record sess.Record
	Next   sess.Snapshot
}

// completeMsg is sent once when the last question is advanced past.
type completeMsg struct {
	Result sess.Result
}

// persistMsg reports the outcome of a store write.
type persistMsg struct {
	Err error
}
