package api

import (
	"errors"
	"net/http"

	"github.com/p-n-ai/prost/internal/vocabulary"
)

type addWordRequest struct {
	Word            string `json:"word"`
	Context         string `json:"context"`
	SourcePassageID string `json:"source_passage_id"`
	Level           string `json:"level"`
}

type notesRequest struct {
	Notes string `json:"notes"`
}

func (h *Handler) handleListWords(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	q := r.URL.Query()

	var (
		words []vocabulary.Word
		err   error
	)
	switch {
	case q.Get("favorites") == "true":
		words, err = h.words.Favorites(r.Context(), userID)
	case q.Get("level") != "":
		words, err = h.words.ByLevel(r.Context(), userID, q.Get("level"))
	default:
		words, err = h.words.Search(r.Context(), userID, q.Get("q"))
	}
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, words)
}

func (h *Handler) handleAddWord(w http.ResponseWriter, r *http.Request) {
	var req addWordRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Word == "" {
		writeError(w, http.StatusBadRequest, "word is required")
		return
	}

	word := vocabulary.Word{
		UserID:          r.PathValue("userID"),
		Word:            req.Word,
		Context:         req.Context,
		SourcePassageID: req.SourcePassageID,
		Level:           req.Level,
	}
	if p, ok := h.content.Passage(req.SourcePassageID); ok {
		word.SourcePassageTitle = p.Title
		if word.Level == "" {
			word.Level = p.Level
		}
	}

	saved, added, err := h.words.Add(r.Context(), word)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	writeJSON(w, status, saved)
}

func (h *Handler) handleRemoveWord(w http.ResponseWriter, r *http.Request) {
	err := h.words.Remove(r.Context(), r.PathValue("userID"), r.PathValue("id"))
	if errors.Is(err, vocabulary.ErrNotFound) {
		writeError(w, http.StatusNotFound, "word not found")
		return
	}
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	word, err := h.words.ToggleFavorite(r.Context(), r.PathValue("userID"), r.PathValue("id"))
	h.writeWord(w, r, word, err)
}

func (h *Handler) handleUpdateNotes(w http.ResponseWriter, r *http.Request) {
	var req notesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	word, err := h.words.UpdateNotes(r.Context(), r.PathValue("userID"), r.PathValue("id"), req.Notes)
	h.writeWord(w, r, word, err)
}

func (h *Handler) writeWord(w http.ResponseWriter, r *http.Request, word vocabulary.Word, err error) {
	if errors.Is(err, vocabulary.ErrNotFound) {
		writeError(w, http.StatusNotFound, "word not found")
		return
	}
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, word)
}
