// Package api serves the reading backend over HTTP as JSON.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/p-n-ai/prost/internal/progress"
	"github.com/p-n-ai/prost/internal/reading"
	"github.com/p-n-ai/prost/internal/vocabulary"
)

// Content is the read-only catalog of passages and exams.
type Content interface {
	Passages(level string) []reading.Passage
	Passage(id string) (reading.Passage, bool)
	Exams() []reading.Exam
	Exam(id string) (reading.Exam, bool)
	Subject(id string) (reading.Subject, bool)
}

// Check reports whether a collaborator is healthy.
type Check func(ctx context.Context) error

// Config holds the handler dependencies.
type Config struct {
	Content Content
	Tracker *progress.Tracker
	Words   *vocabulary.Service
	// Checks are run by /readyz, keyed by collaborator name.
	Checks map[string]Check
}

// Handler routes API requests.
type Handler struct {
	content Content
	tracker *progress.Tracker
	words   *vocabulary.Service
	checks  map[string]Check
}

// NewHandler creates a handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		content: cfg.Content,
		tracker: cfg.Tracker,
		words:   cfg.Words,
		checks:  cfg.Checks,
	}
}

// Routes returns the HTTP router.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.handleHealthz)
	mux.HandleFunc("GET /readyz", h.handleReadyz)

	mux.HandleFunc("GET /levels/{level}/passages", h.handleListPassages)
	mux.HandleFunc("GET /passages/{id}", h.handleGetPassage)
	mux.HandleFunc("GET /exams", h.handleListExams)
	mux.HandleFunc("GET /exams/{id}", h.handleGetExam)

	mux.HandleFunc("POST /users/{userID}/completions", h.handleRecordCompletion)
	mux.HandleFunc("GET /users/{userID}/progress", h.handleProgress)
	mux.HandleFunc("GET /users/{userID}/progress/{level}", h.handleLevelProgress)
	mux.HandleFunc("GET /users/{userID}/history/{subjectID}", h.handleHistory)
	mux.HandleFunc("GET /users/{userID}/report.xlsx", h.handleReport)

	mux.HandleFunc("GET /users/{userID}/words", h.handleListWords)
	mux.HandleFunc("POST /users/{userID}/words", h.handleAddWord)
	mux.HandleFunc("DELETE /users/{userID}/words/{id}", h.handleRemoveWord)
	mux.HandleFunc("POST /users/{userID}/words/{id}/favorite", h.handleToggleFavorite)
	mux.HandleFunc("PUT /users/{userID}/words/{id}/notes", h.handleUpdateNotes)
	return mux
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	failed := map[string]string{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			slog.Warn("readiness check failed", "check", name, "error", err)
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "checks": failed})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeInternal(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
