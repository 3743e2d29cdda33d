package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/abhisek/quizdesk/internal/analysis"
	"github.com/abhisek/quizdesk/internal/report"
	"github.com/abhisek/quizdesk/internal/store"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// SessionDetail is the body of GET /api/sessions/{id}.
type SessionDetail struct {
	Session     store.SessionRecord  `json:"session"`
	Answers     []store.AnswerRecord `json:"answers"`
	Performance analysis.Report      `json:"performance"`
	Celebrate   bool                 `json:"celebrate"`
}

// HealthHandler answers GET /healthz.
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// GET /api/sessions?limit=50&before=<sequence>
func ListSessionsHandler(repo store.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		limit := parseIntDefault(q.Get("limit"), defaultLimit)
		if limit <= 0 || limit > maxLimit {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		before, err := parseSequence(q.Get("before"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "before must be a non-negative sequence number")
			return
		}

		list, err := repo.ListSessions(r.Context(), store.QueryOpts{Limit: limit, Before: before})
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if list == nil {
			list = []store.SessionRecord{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /api/sessions/{sessionID}
func GetSessionHandler(repo store.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		o, rec, answers, ok := loadOutcome(w, r, repo)
		if !ok {
			return
		}
		if answers == nil {
			answers = []store.AnswerRecord{}
		}
		writeJSON(w, http.StatusOK, SessionDetail{
			Session:     *rec,
			Answers:     answers,
			Performance: o.Performance,
			Celebrate:   o.Celebrate,
		})
	}
}

// GET /api/sessions/{sessionID}/report.md
func SessionMarkdownHandler(repo store.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		o, _, _, ok := loadOutcome(w, r, repo)
		if !ok {
			return
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		if err := report.RenderMarkdown(w, o); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
	}
}

func loadOutcome(w http.ResponseWriter, r *http.Request, repo store.EventRepo) (report.Outcome, *store.SessionRecord, []store.AnswerRecord, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "sessionID"))

	rec, err := repo.GetSession(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return report.Outcome{}, nil, nil, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return report.Outcome{}, nil, nil, false
	}

	answers, err := repo.SessionAnswers(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return report.Outcome{}, nil, nil, false
	}
	return report.FromRecords(*rec, answers), rec, answers, true
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}

// parseSequence reads an optional event sequence cursor; empty means none.
func parseSequence(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative sequence %d", n)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
