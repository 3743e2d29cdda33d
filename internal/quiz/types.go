package quiz

import (
	"encoding/json"
	"strings"
)

// Question is a single multiple-choice item in a question set.
type Question struct {
	Text          string   `json:"text" yaml:"text"`
	Options       []string `json:"options" yaml:"options"`
	CorrectAnswer string   `json:"correctAnswer" yaml:"correctAnswer"`
	Explanation   string   `json:"explanation,omitempty" yaml:"explanation,omitempty"`
	Subtopic      string   `json:"subtopic,omitempty" yaml:"subtopic,omitempty"`
}

// IsCorrect reports whether a is the correct answer for q.
// An unset answer is never correct.
func (q Question) IsCorrect(a Answer) bool {
	return a.Answered && a.Option == q.CorrectAnswer
}

// Set is an ordered, externally supplied question set. It is treated as
// immutable once a session has started.
type Set struct {
	ID            string     `json:"id,omitempty" yaml:"id,omitempty"`
	Title         string     `json:"title,omitempty" yaml:"title,omitempty"`
	SchemaVersion string     `json:"schemaVersion,omitempty" yaml:"schemaVersion,omitempty"`
	Questions     []Question `json:"questions" yaml:"questions"`
}

// Len returns the number of questions in the set.
func (s Set) Len() int {
	return len(s.Questions)
}

// Answer is a learner's answer to one question. The zero value is unset.
type Answer struct {
	Option   string
	Answered bool
}

// Unanswered is the unset answer.
var Unanswered = Answer{}

// Chose returns an answer selecting option.
func Chose(option string) Answer {
	return Answer{Option: option, Answered: true}
}

// String returns the option, or "-" for an unset answer.
func (a Answer) String() string {
	if !a.Answered {
		return "-"
	}
	return a.Option
}

// Ptr returns the option as a pointer, nil when unset.
func (a Answer) Ptr() *string {
	if !a.Answered {
		return nil
	}
	s := a.Option
	return &s
}

// MarshalJSON encodes an unset answer as null and a selection as a string.
func (a Answer) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Ptr())
}

// UnmarshalJSON accepts null or a string.
func (a *Answer) UnmarshalJSON(data []byte) error {
	if strings.TrimSpace(string(data)) == "null" {
		*a = Unanswered
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*a = Chose(s)
	return nil
}
