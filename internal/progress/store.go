package progress

import (
	"context"
	"fmt"
	"sync"

	"github.com/p-n-ai/prost/internal/reading"
)

// CompletionLog is the append-only record of finished attempts.
type CompletionLog interface {
	Append(ctx context.Context, c reading.Completion) error
	// ListByUser returns a user's completions in insertion order.
	ListByUser(ctx context.Context, userID string) ([]reading.Completion, error)
}

// MemoryLog is an in-memory implementation of CompletionLog.
type MemoryLog struct {
	completions []reading.Completion
	ids         map[string]bool
	mu          sync.RWMutex
}

// NewMemoryLog creates an empty in-memory completion log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{
		ids: make(map[string]bool),
	}
}

func (l *MemoryLog) Append(_ context.Context, c reading.Completion) error {
	if c.ID == "" {
		return fmt.Errorf("completion id is required")
	}
	if c.UserID == "" {
		return fmt.Errorf("user_id is required")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ids[c.ID] {
		return fmt.Errorf("completion already recorded: %s", c.ID)
	}
	l.ids[c.ID] = true
	l.completions = append(l.completions, c)
	return nil
}

func (l *MemoryLog) ListByUser(_ context.Context, userID string) ([]reading.Completion, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := []reading.Completion{}
	for _, c := range l.completions {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

// Len returns the number of completions across all users.
func (l *MemoryLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.completions)
}
