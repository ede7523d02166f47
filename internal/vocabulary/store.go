package vocabulary

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store persists vocabulary words.
type Store interface {
	// Add saves w unless the user already saved the same word. It returns the
	// stored word and whether it was newly added.
	Add(ctx context.Context, w Word) (Word, bool, error)
	Remove(ctx context.Context, userID, id string) error
	ToggleFavorite(ctx context.Context, userID, id string) (Word, error)
	UpdateNotes(ctx context.Context, userID, id string, notes *string) (Word, error)
	// Words returns the user's words in insertion order.
	Words(ctx context.Context, userID string) ([]Word, error)
}

// MemoryStore is an in-memory implementation of Store.
type MemoryStore struct {
	words []Word
	mu    sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Add(_ context.Context, w Word) (Word, bool, error) {
	if w.UserID == "" || Key(w.Word) == "" {
		return Word{}, false, fmt.Errorf("user_id and word are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := Key(w.Word)
	for _, existing := range s.words {
		if existing.UserID == w.UserID && Key(existing.Word) == key {
			return existing, false, nil
		}
	}

	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.AddedAt.IsZero() {
		w.AddedAt = time.Now()
	}
	s.words = append(s.words, w)
	return w, true, nil
}

func (s *MemoryStore) Remove(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(userID, id)
	if i < 0 {
		return fmt.Errorf("remove %s: %w", id, ErrNotFound)
	}
	s.words = append(s.words[:i], s.words[i+1:]...)
	return nil
}

func (s *MemoryStore) ToggleFavorite(_ context.Context, userID, id string) (Word, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(userID, id)
	if i < 0 {
		return Word{}, fmt.Errorf("toggle favorite %s: %w", id, ErrNotFound)
	}
	s.words[i].IsFavorite = !s.words[i].IsFavorite
	return s.words[i], nil
}

func (s *MemoryStore) UpdateNotes(_ context.Context, userID, id string, notes *string) (Word, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(userID, id)
	if i < 0 {
		return Word{}, fmt.Errorf("update notes %s: %w", id, ErrNotFound)
	}
	s.words[i].Notes = notes
	return s.words[i], nil
}

func (s *MemoryStore) Words(_ context.Context, userID string) ([]Word, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Word{}
	for _, w := range s.words {
		if w.UserID == userID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (s *MemoryStore) indexOf(userID, id string) int {
	for i, w := range s.words {
		if w.ID == id && w.UserID == userID {
			return i
		}
	}
	return -1
}
