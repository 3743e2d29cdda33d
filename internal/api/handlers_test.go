package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizdesk/internal/store"
)

func strPtr(s string) *string { return &s }

func newTestServer(t *testing.T) (*httptest.Server, store.EventRepo) {
	t.Helper()
	s, err := store.Open("file:" + t.Name() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	repo := s.EventRepo()
	srv := httptest.NewServer(NewRouter(repo, Options{}))
	t.Cleanup(srv.Close)
	return srv, repo
}

func seed(t *testing.T, repo store.EventRepo, id string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, repo.AppendSessionEvent(ctx, store.SessionEventData{
		SessionID: id, Action: store.ActionStart, QuizTitle: "Optics", Student: "Ada", TotalQuestions: 2,
	}))
	require.NoError(t, repo.AppendAnswerEvents(ctx, []store.AnswerEventData{
		{SessionID: id, QuestionIndex: 0, QuestionText: "Q1", Subtopic: "Lenses", CorrectAnswer: "A", LearnerAnswer: strPtr("A"), Correct: true, Trigger: "manual"},
		{SessionID: id, QuestionIndex: 1, QuestionText: "Q2", Subtopic: "Mirrors", CorrectAnswer: "B", Trigger: "timeout"},
	}))
	require.NoError(t, repo.AppendSessionEvent(ctx, store.SessionEventData{
		SessionID: id, Action: store.ActionEnd, QuizTitle: "Optics", Student: "Ada", TotalQuestions: 2, Score: 1, DurationSecs: 40,
	}))
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := get(t, srv.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestListSessions(t *testing.T) {
	srv, repo := newTestServer(t)

	resp, body := get(t, srv.URL+"/api/sessions")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))

	seed(t, repo, "one")
	seed(t, repo, "two")

	resp, body = get(t, srv.URL+"/api/sessions?limit=1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var list []store.SessionRecord
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "two", list[0].SessionID)
	assert.Equal(t, 1, list[0].Score)
}

func TestListSessions_BadLimit(t *testing.T) {
	srv, _ := newTestServer(t)
	for _, l := range []string{"0", "-3", "abc", "501"} {
		resp, _ := get(t, srv.URL+"/api/sessions?limit="+l)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "limit=%s", l)
	}
}

func TestListSessions_BadBefore(t *testing.T) {
	srv, _ := newTestServer(t)
	for _, b := range []string{"abc", "-1", "1.5"} {
		resp, _ := get(t, srv.URL+"/api/sessions?before="+b)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "before=%s", b)
	}

	resp, _ := get(t, srv.URL+"/api/sessions?before=0")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetSession(t *testing.T) {
	srv, repo := newTestServer(t)
	seed(t, repo, "abc")

	resp, body := get(t, srv.URL+"/api/sessions/abc")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var detail SessionDetail
	require.NoError(t, json.Unmarshal(body, &detail))
	assert.Equal(t, "abc", detail.Session.SessionID)
	assert.Equal(t, store.ActionEnd, detail.Session.Status)
	require.Len(t, detail.Answers, 2)
	assert.Nil(t, detail.Answers[1].LearnerAnswer)
	assert.Equal(t, 100.0, detail.Performance.SubtopicScores["Lenses"])
	assert.Equal(t, 0.0, detail.Performance.SubtopicScores["Mirrors"])
	assert.Equal(t, 50.0, detail.Performance.Average)
	assert.True(t, detail.Celebrate, "1 of 2 misses one question")
}

func TestGetSession_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := get(t, srv.URL+"/api/sessions/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), "session not found")
}

func TestSessionMarkdown(t *testing.T) {
	srv, repo := newTestServer(t)
	seed(t, repo, "md")

	resp, body := get(t, srv.URL+"/api/sessions/md/report.md")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/markdown"))
	assert.Contains(t, string(body), "# Optics")
	assert.Contains(t, string(body), "| Lenses | 1 | 1 | 100.0% |")
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/sessions", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
