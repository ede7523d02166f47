package api

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/p-n-ai/prost/internal/progress"
	"github.com/p-n-ai/prost/internal/reading"
	"github.com/p-n-ai/prost/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type completionRequest struct {
	SubjectID string          `json:"subject_id"`
	Answers   reading.Answers `json:"answers"`
}

type completionResponse struct {
	progress.Outcome
	Message string `json:"message"`
}

func (h *Handler) handleRecordCompletion(w http.ResponseWriter, r *http.Request) {
	var req completionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	subject, ok := h.content.Subject(req.SubjectID)
	if !ok {
		writeError(w, http.StatusNotFound, "subject not found")
		return
	}

	out, err := h.tracker.Record(r.Context(), r.PathValue("userID"), subject, req.Answers)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, completionResponse{Outcome: out, Message: out.Comparison.Message()})
}

func (h *Handler) handleProgress(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.tracker.Dashboard(r.Context(), r.PathValue("userID"))
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	views := make([]progress.SummaryView, 0, len(summaries))
	for _, s := range summaries {
		views = append(views, progress.Describe(s))
	}
	writeJSON(w, http.StatusOK, views)
}

// handleLevelProgress serves one level's snapshot. kind defaults to the kind
// tracked at that level.
func (h *Handler) handleLevelProgress(w http.ResponseWriter, r *http.Request) {
	level := strings.ToUpper(r.PathValue("level"))
	if !validLevel(level) {
		writeError(w, http.StatusNotFound, "unknown level")
		return
	}

	kind := h.tracker.KindFor(level)
	switch k := reading.Kind(r.URL.Query().Get("kind")); k {
	case "":
	case reading.KindPassage, reading.KindExam:
		kind = k
	default:
		writeError(w, http.StatusBadRequest, "kind must be 'passage' or 'exam'")
		return
	}

	p, err := h.tracker.Progress(r.Context(), r.PathValue("userID"), level, kind)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.tracker.History(r.Context(), r.PathValue("userID"), r.PathValue("subjectID"))
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	if history == nil {
		history = []reading.Completion{}
	}
	writeJSON(w, http.StatusOK, history)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	summaries, err := h.tracker.Dashboard(r.Context(), userID)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	completions, err := h.tracker.Completions(r.Context(), userID)
	if err != nil {
		writeInternal(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteProgress(&buf, userFor(userID), summaries, completions, h.titles()); err != nil {
		writeInternal(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="progress.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) titles() map[string]string {
	titles := make(map[string]string)
	for _, level := range reading.Levels {
		for _, p := range h.content.Passages(level) {
			titles[p.ID] = p.Title
		}
	}
	for _, e := range h.content.Exams() {
		titles[e.ID] = e.Title
	}
	return titles
}

func userFor(id string) reading.User {
	if id == reading.DemoUserID {
		return reading.DemoUser()
	}
	return reading.User{ID: id, Name: id}
}
