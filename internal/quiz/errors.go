package quiz

import (
	"errors"
	"fmt"
)

// ContentError indicates the question content cannot be used to run a session.
type ContentError struct {
	Source string
	Err    error
}

func (e *ContentError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("quiz content %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("quiz content: %v", e.Err)
}

func (e *ContentError) Unwrap() error { return e.Err }

// ErrNoQuestions is wrapped by every ContentError raised for an empty or
// absent question set.
var ErrNoQuestions = errors.New("question set is empty")

// ErrEmptySet is the ContentError returned when a session is started without questions.
var ErrEmptySet = &ContentError{Err: ErrNoQuestions}
