package vocabulary

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Service answers word-list queries on top of a Store.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates a service over store.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Add saves a word for its user. Saving a word twice keeps the first entry.
func (s *Service) Add(ctx context.Context, w Word) (Word, bool, error) {
	w.Word = strings.TrimSpace(w.Word)
	if w.Word == "" {
		return Word{}, false, fmt.Errorf("word is required")
	}
	if w.UserID == "" {
		return Word{}, false, fmt.Errorf("user_id is required")
	}
	if w.AddedAt.IsZero() {
		w.AddedAt = s.now()
	}
	return s.store.Add(ctx, w)
}

func (s *Service) Remove(ctx context.Context, userID, id string) error {
	return s.store.Remove(ctx, userID, id)
}

func (s *Service) ToggleFavorite(ctx context.Context, userID, id string) (Word, error) {
	return s.store.ToggleFavorite(ctx, userID, id)
}

// UpdateNotes replaces the notes of a word. Blank notes clear them.
func (s *Service) UpdateNotes(ctx context.Context, userID, id, notes string) (Word, error) {
	var n *string
	if trimmed := strings.TrimSpace(notes); trimmed != "" {
		n = &trimmed
	}
	return s.store.UpdateNotes(ctx, userID, id, n)
}

// List returns the user's words, most recently added first.
func (s *Service) List(ctx context.Context, userID string) ([]Word, error) {
	words, err := s.store.Words(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list words: %w", err)
	}
	sort.SliceStable(words, func(i, j int) bool {
		return words[i].AddedAt.After(words[j].AddedAt)
	})
	return words, nil
}

// ByLevel returns the user's words saved from passages of level.
func (s *Service) ByLevel(ctx context.Context, userID, level string) ([]Word, error) {
	return s.filter(ctx, userID, func(w Word) bool { return w.Level == level })
}

// Favorites returns the user's favorite words.
func (s *Service) Favorites(ctx context.Context, userID string) ([]Word, error) {
	return s.filter(ctx, userID, func(w Word) bool { return w.IsFavorite })
}

// Search matches query case-insensitively against word, context and notes.
// An empty query returns every word.
func (s *Service) Search(ctx context.Context, userID, query string) ([]Word, error) {
	fold := cases.Fold()
	q := fold.String(query)
	if q == "" {
		return s.List(ctx, userID)
	}
	return s.filter(ctx, userID, func(w Word) bool {
		if strings.Contains(fold.String(w.Word), q) || strings.Contains(fold.String(w.Context), q) {
			return true
		}
		return w.Notes != nil && strings.Contains(fold.String(*w.Notes), q)
	})
}

// IsSaved reports whether the user already saved word.
func (s *Service) IsSaved(ctx context.Context, userID, word string) (bool, error) {
	words, err := s.store.Words(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("list words: %w", err)
	}
	key := Key(word)
	for _, w := range words {
		if Key(w.Word) == key {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) filter(ctx context.Context, userID string, keep func(Word) bool) ([]Word, error) {
	words, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := []Word{}
	for _, w := range words {
		if keep(w) {
			out = append(out, w)
		}
	}
	return out, nil
}
