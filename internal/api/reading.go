package api

import (
	"net/http"
	"strings"

	"github.com/p-n-ai/prost/internal/passages"
	"github.com/p-n-ai/prost/internal/progress"
	"github.com/p-n-ai/prost/internal/reading"
)

type passageSummary struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Level         string   `json:"level"`
	Tags          []string `json:"tags"`
	QuestionCount int      `json:"question_count"`
	Attempts      int      `json:"attempts"`
	BestScorePct  *int     `json:"best_score_pct,omitempty"`
}

type passageList struct {
	Level         string           `json:"level"`
	FiltersActive bool             `json:"filters_active"`
	Sort          string           `json:"sort"`
	Status        string           `json:"status"`
	Tags          []string         `json:"tags"`
	Passages      []passageSummary `json:"passages"`
}

func (h *Handler) handleListPassages(w http.ResponseWriter, r *http.Request) {
	level := strings.ToUpper(r.PathValue("level"))
	if !validLevel(level) {
		writeError(w, http.StatusNotFound, "unknown level")
		return
	}

	q := r.URL.Query()
	sortOpt, err := passages.ParseSortOption(q.Get("sort"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	status, err := passages.ParseCompletionFilter(q.Get("status"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	filters := passages.Filters{
		SearchText:   strings.TrimSpace(q.Get("q")),
		SelectedTags: q["tag"],
		Completion:   status,
		Sort:         sortOpt,
	}

	info := map[string]progress.CompletionInfo{}
	if userID := q.Get("user"); userID != "" {
		info, err = h.tracker.CompletionInfo(r.Context(), userID)
		if err != nil {
			writeInternal(w, r, err)
			return
		}
	}

	all := h.content.Passages(level)
	out := passageList{
		Level:         level,
		FiltersActive: filters.IsActive(),
		Sort:          sortOpt.Label(),
		Status:        status.Label(),
		Tags:          passages.Tags(all),
		Passages:      []passageSummary{},
	}
	for _, p := range passages.Apply(all, filters, info) {
		s := passageSummary{
			ID:            p.ID,
			Title:         p.Title,
			Level:         p.Level,
			Tags:          p.Tags,
			QuestionCount: len(p.Questions),
		}
		if ci, ok := info[p.ID]; ok {
			best := reading.Percentage(ci.BestScore)
			s.Attempts = ci.Attempts
			s.BestScorePct = &best
		}
		out.Passages = append(out.Passages, s)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetPassage(w http.ResponseWriter, r *http.Request) {
	p, ok := h.content.Passage(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "passage not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) handleListExams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.content.Exams())
}

func (h *Handler) handleGetExam(w http.ResponseWriter, r *http.Request) {
	e, ok := h.content.Exam(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "exam not found")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func validLevel(level string) bool {
	for _, l := range reading.Levels {
		if l == level {
			return true
		}
	}
	return false
}
