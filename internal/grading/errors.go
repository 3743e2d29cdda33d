package grading

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when no grading URL is set.
var ErrNotConfigured = errors.New("grading service not configured")

// TransportError indicates the submission did not get a usable answer from
// the grading service: a network failure, a timeout or a non-2xx status.
// The submission can be retried unchanged.
type TransportError struct {
	StatusCode int // zero when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("grading service returned HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("grading service unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Retryable reports whether trying again may succeed.
func (e *TransportError) Retryable() bool { return true }

// RejectedError indicates the service answered with success=false.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return "submission rejected"
	}
	return fmt.Sprintf("submission rejected: %s", e.Message)
}

// IsRetryable reports whether err is worth resubmitting.
func IsRetryable(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
