package quiz

import (
	"fmt"
	"strings"
)

// Severity ranks a lint issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is an authoring problem found in a question set.
type Issue struct {
	Index    int // question index, -1 for set-level issues
	Severity Severity
	Message  string
}

func (i Issue) String() string {
	if i.Index < 0 {
		return fmt.Sprintf("%s: %s", i.Severity, i.Message)
	}
	return fmt.Sprintf("%s: question %d: %s", i.Severity, i.Index+1, i.Message)
}

// Lint reports authoring problems. Sessions run regardless of lint results: a
// correct answer missing from the options simply never scores.
func Lint(set Set) []Issue {
	var issues []Issue
	if len(set.Questions) == 0 {
		issues = append(issues, Issue{Index: -1, Severity: SeverityError, Message: "no questions"})
	}

	for i, q := range set.Questions {
		if strings.TrimSpace(q.Text) == "" {
			issues = append(issues, Issue{Index: i, Severity: SeverityError, Message: "empty question text"})
		}
		if len(q.Options) < 2 {
			issues = append(issues, Issue{Index: i, Severity: SeverityError,
				Message: fmt.Sprintf("needs at least 2 options, has %d", len(q.Options))})
		}

		seen := make(map[string]bool, len(q.Options))
		found := false
		for _, opt := range q.Options {
			if seen[opt] {
				issues = append(issues, Issue{Index: i, Severity: SeverityWarning,
					Message: fmt.Sprintf("duplicate option %q", opt)})
			}
			seen[opt] = true
			if opt == q.CorrectAnswer {
				found = true
			}
		}
		if !found {
			issues = append(issues, Issue{Index: i, Severity: SeverityError,
				Message: fmt.Sprintf("correct answer %q is not one of the options", q.CorrectAnswer)})
		}

		if q.Subtopic != "" && strings.TrimSpace(q.Subtopic) != q.Subtopic {
			issues = append(issues, Issue{Index: i, Severity: SeverityWarning,
				Message: fmt.Sprintf("subtopic %q has surrounding whitespace and is reported as its own group", q.Subtopic)})
		}
	}
	return issues
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}
