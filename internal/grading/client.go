// Package grading submits finished quizzes to a remote grading service,
// which returns the official score.
package grading

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/abhisek/quizdesk/internal/report"
)

// AnswerEntry is one answer in a submission. A nil SelectedAnswer means the
// question was left unanswered.
type AnswerEntry struct {
	SelectedAnswer *string `json:"selectedAnswer"`
}

// Submission is the request body sent to the grading service.
type Submission struct {
	QuizID      string        `json:"quizId"`
	StudentID   string        `json:"studentId"`
	StudentName string        `json:"studentName"`
	Answers     []AnswerEntry `json:"answers"`
	TimeTaken   int           `json:"timeTaken"` // seconds
}

// Result is the grading service's response.
type Result struct {
	Success        bool   `json:"success"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"totalQuestions"`
	Error          string `json:"error,omitempty"`
}

// NewSubmission builds the payload for a finished session. Answers keep
// question order; unanswered questions are sent as null.
func NewSubmission(o report.Outcome) Submission {
	answers := make([]AnswerEntry, o.TotalQuestions)
	for i := range answers {
		if i < len(o.Answers) {
			answers[i].SelectedAnswer = o.Answers[i].Ptr()
		}
	}
	return Submission{
		QuizID:      o.QuizID,
		StudentID:   o.Student.ID,
		StudentName: o.Student.Name,
		Answers:     answers,
		TimeTaken:   int(o.TimeTaken.Round(time.Second) / time.Second),
	}
}

// RetryConfig configures automatic resubmission after transport failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultRetryConfig returns the retry settings used by NewClient.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 500 * time.Millisecond,
		MaxWait:     5 * time.Second,
		Multiplier:  2.0,
	}
}

// Client talks to the grading service.
type Client struct {
	url        string
	httpClient *http.Client
	retry      RetryConfig
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetry replaces the default retry settings.
func WithRetry(cfg RetryConfig) Option {
	return func(c *Client) { c.retry = cfg }
}

// NewClient returns a client posting submissions to url.
func NewClient(url string, opts ...Option) *Client {
	c := &Client{
		url:        url,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		retry:      DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.retry.MaxAttempts < 1 {
		c.retry.MaxAttempts = 1
	}
	return c
}

// Submit sends sub and returns the official result. Transport failures are
// retried with backoff; a rejection is returned at once as *RejectedError.
func (c *Client) Submit(ctx context.Context, sub Submission) (*Result, error) {
	if c.url == "" {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("encode submission: %w", err)
	}

	var lastErr error
	for attempt := range c.retry.MaxAttempts {
		res, err := c.post(ctx, body)
		if err == nil {
			return res, nil
		}
		lastErr = err

		if !IsRetryable(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		if attempt == c.retry.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, &TransportError{Err: ctx.Err()}
		case <-time.After(c.backoff(attempt)):
		}
	}
	return nil, lastErr
}

func (c *Client) post(ctx context.Context, body []byte) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: err}
	}

	var res Result
	decodeErr := json.Unmarshal(data, &res)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// A 4xx carrying an explicit rejection is final.
		if resp.StatusCode < 500 && decodeErr == nil && !res.Success && res.Error != "" {
			return nil, &RejectedError{Message: res.Error}
		}
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}
	if decodeErr != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", decodeErr)}
	}
	if !res.Success {
		return nil, &RejectedError{Message: res.Error}
	}
	return &res, nil
}

func (c *Client) backoff(attempt int) time.Duration {
	wait := float64(c.retry.InitialWait) * math.Pow(c.retry.Multiplier, float64(attempt))
	if c.retry.MaxWait > 0 && wait > float64(c.retry.MaxWait) {
		wait = float64(c.retry.MaxWait)
	}

	// Add ±20% jitter.
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}
