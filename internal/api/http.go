package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/hireagent/internal/session"
	"github.com/kalambet/hireagent/internal/storage"
)

const maxRequestBodySize = 1 << 20 // 1MB

// MessageRequest is the body of POST /sessions/{id}/messages.
type MessageRequest struct {
	Text string `json:"text"`
}

// NewHandler returns the HTTP chat surface.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", handleCreateSession(deps))
		r.Get("/{id}", handleGetSession(deps))
		r.Post("/{id}/messages", handlePostMessage(deps))
		r.Get("/{id}/transcript", handleTranscript(deps))
	})

	r.Get("/structured-data", handleListStructuredData(deps))
	r.Get("/structured-data/columns", handleColumns(deps))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func handleCreateSession(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, deps.Sessions.Start())
	}
}

func handleGetSession(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := deps.Sessions.Session(chi.URLParam(r, "id"))
		if err != nil {
			sessionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func handlePostMessage(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req MessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		reply, err := deps.Sessions.Handle(r.Context(), chi.URLParam(r, "id"), req.Text)
		if err != nil {
			sessionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, reply)
	}
}

func handleTranscript(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text, err := deps.Sessions.Transcript(chi.URLParam(r, "id"))
		if err != nil {
			sessionError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(text))
	}
}

func handleListStructuredData(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Leads == nil {
			httpError(w, http.StatusServiceUnavailable, "api_error", "structured store not configured")
			return
		}
		limit := 0
		if s := r.URL.Query().Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "limit must be a non-negative integer")
				return
			}
			limit = n
		}

		rows, err := deps.Leads.ListStructuredLogs(r.Context(), clampLimit(limit))
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "listing structured data: %v", err)
			return
		}
		if rows == nil {
			rows = []storage.StructuredLogRow{}
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

func handleColumns(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Leads == nil {
			httpError(w, http.StatusServiceUnavailable, "api_error", "structured store not configured")
			return
		}
		cols, err := deps.Leads.Columns(r.Context())
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "reading columns: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, cols)
	}
}

func sessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		httpError(w, http.StatusNotFound, "not_found_error", "%v", err)
	case errors.Is(err, session.ErrEmptyInput):
		httpError(w, http.StatusBadRequest, "invalid_request_error", "text is required and must not be empty")
	default:
		httpError(w, http.StatusInternalServerError, "api_error", "%v", err)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
