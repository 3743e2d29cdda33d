package grading

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizdesk/internal/quiz"
	"github.com/abhisek/quizdesk/internal/report"
)

func fastRetry() Option {
	return WithRetry(RetryConfig{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: 2 * time.Millisecond, Multiplier: 2})
}

func TestNewSubmission(t *testing.T) {
	o := report.Outcome{
		QuizID:         "quiz-7",
		Student:        report.Student{ID: "s-1", Name: "Ada"},
		TotalQuestions: 3,
		Answers:        []quiz.Answer{quiz.Chose("A"), quiz.Unanswered, quiz.Chose("X")},
		TimeTaken:      61600 * time.Millisecond,
	}

	sub := NewSubmission(o)
	data, err := json.Marshal(sub)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"quizId": "quiz-7",
		"studentId": "s-1",
		"studentName": "Ada",
		"answers": [{"selectedAnswer": "A"}, {"selectedAnswer": null}, {"selectedAnswer": "X"}],
		"timeTaken": 62
	}`, string(data))
}

func TestSubmit_Success(t *testing.T) {
	var got Submission
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"success": true, "score": 2, "totalQuestions": 3}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	res, err := c.Submit(context.Background(), Submission{QuizID: "q", Answers: []AnswerEntry{{}}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Score)
	assert.Equal(t, 3, res.TotalQuestions)
	assert.Equal(t, "q", got.QuizID)
	require.Len(t, got.Answers, 1)
	assert.Nil(t, got.Answers[0].SelectedAnswer)
}

func TestSubmit_Rejected(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"success": false, "error": "quiz closed"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, fastRetry()).Submit(context.Background(), Submission{})

	var rej *RejectedError
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, "quiz closed", rej.Message)
	assert.False(t, IsRetryable(err))
	assert.Equal(t, int32(1), calls.Load(), "rejections are not retried")
}

func TestSubmit_RejectedWithClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success": false, "error": "unknown quiz"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, fastRetry()).Submit(context.Background(), Submission{})
	var rej *RejectedError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "unknown quiz", rej.Message)
}

func TestSubmit_ServerErrorIsRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"success": true, "score": 1, "totalQuestions": 1}`))
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL, fastRetry()).Submit(context.Background(), Submission{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Score)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSubmit_TransportErrorAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, fastRetry()).Submit(context.Background(), Submission{})

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusServiceUnavailable, te.StatusCode)
	assert.True(t, IsRetryable(err))
	assert.Equal(t, int32(3), calls.Load())
}

func TestSubmit_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, WithRetry(RetryConfig{MaxAttempts: 1})).Submit(context.Background(), Submission{})
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Zero(t, te.StatusCode)
	assert.Contains(t, te.Error(), "unreachable")
}

func TestSubmit_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, WithRetry(RetryConfig{MaxAttempts: 1})).Submit(context.Background(), Submission{})
	assert.True(t, IsRetryable(err))
}

func TestSubmit_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer func() {
		close(release)
		srv.CloseClientConnections()
		srv.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := NewClient(srv.URL).Submit(ctx, Submission{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second, "cancelled submissions are not retried")
}

func TestSubmit_NotConfigured(t *testing.T) {
	_, err := NewClient("").Submit(context.Background(), Submission{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
