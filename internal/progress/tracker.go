package progress

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/p-n-ai/prost/internal/reading"
)

const defaultSnapshotTTL = 10 * time.Minute

// SnapshotCache stores serialized progress snapshots.
type SnapshotCache interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
}

// TrackerConfig holds dependencies for the tracker.
type TrackerConfig struct {
	Log        CompletionLog
	Cache      SnapshotCache // optional
	CacheTTL   time.Duration // default 10m
	Events     EventLogger   // optional
	ExamLevels []string      // levels shown as Goethe summaries (default A1)
	Now        func() time.Time
}

// Tracker records completions and serves progress derived from the log.
type Tracker struct {
	log        CompletionLog
	cache      SnapshotCache
	cacheTTL   time.Duration
	events     EventLogger
	examLevels []string
	now        func() time.Time

	// mu makes append-to-log and recompute a single unit.
	mu sync.Mutex
}

// Outcome is returned by Record.
type Outcome struct {
	Completion reading.Completion `json:"completion"`
	Progress   reading.Progress   `json:"progress"`
	Comparison Comparison         `json:"comparison"`
}

// NewTracker creates a tracker. A nil Log falls back to an in-memory log.
func NewTracker(cfg TrackerConfig) *Tracker {
	log := cfg.Log
	if log == nil {
		log = NewMemoryLog()
	}
	events := cfg.Events
	if events == nil {
		events = NopEventLogger{}
	}
	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = defaultSnapshotTTL
	}
	examLevels := cfg.ExamLevels
	if len(examLevels) == 0 {
		examLevels = []string{"A1"}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		log:        log,
		cache:      cfg.Cache,
		cacheTTL:   ttl,
		events:     events,
		examLevels: examLevels,
		now:        now,
	}
}

// Record grades answers, appends the completion and returns the refreshed
// progress for the subject's level.
func (t *Tracker) Record(ctx context.Context, userID string, subject reading.Subject, answers reading.Answers) (Outcome, error) {
	if userID == "" {
		return Outcome{}, fmt.Errorf("user_id is required")
	}
	if subject == nil {
		return Outcome{}, fmt.Errorf("subject is required")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	history, err := t.log.ListByUser(ctx, userID)
	if err != nil {
		return Outcome{}, fmt.Errorf("load completions: %w", err)
	}

	previous := History(userID, subject.SubjectID(), history)
	_, c, p := RecordCompletion(history, userID, subject, answers, t.now())

	if err := t.log.Append(ctx, c); err != nil {
		return Outcome{}, fmt.Errorf("append completion: %w", err)
	}

	t.storeSnapshot(ctx, p)

	out := Outcome{
		Completion: c,
		Progress:   p,
		Comparison: CompareScore(previous, c.Score),
	}

	if err := t.events.LogEvent(ctx, Event{
		UserID:    userID,
		EventType: EventCompletionRecorded,
		Data: map[string]any{
			"subject_id":     c.SubjectID,
			"kind":           string(c.Kind),
			"level":          c.Level,
			"score":          c.Score,
			"attempt_number": c.AttemptNumber,
			"is_passed":      c.IsPassed,
		},
		CreatedAt: c.CompletedAt,
	}); err != nil {
		slog.Warn("failed to log completion event", "error", err)
	}

	slog.Info("completion recorded",
		"user_id", userID,
		"subject_id", c.SubjectID,
		"kind", c.Kind,
		"score_pct", c.ScorePercentage(),
		"attempt", c.AttemptNumber,
		"trend", out.Comparison.Trend,
	)
	return out, nil
}

// Progress returns the user's progress at level for one kind of subject.
func (t *Tracker) Progress(ctx context.Context, userID, level string, kind reading.Kind) (reading.Progress, error) {
	key := snapshotKey(userID, level, kind)
	if t.cache != nil {
		var p reading.Progress
		found, err := t.cache.GetJSON(ctx, key, &p)
		if err != nil {
			slog.Warn("progress cache read failed", "key", key, "error", err)
		} else if found {
			return p, nil
		}
	}

	// Fold and snapshot write form one unit with Record.
	t.mu.Lock()
	defer t.mu.Unlock()

	all, err := t.log.ListByUser(ctx, userID)
	if err != nil {
		return reading.Progress{}, fmt.Errorf("load completions: %w", err)
	}
	p := RecomputeProgress(userID, level, OfKind(all, kind))
	p.Kind = kind
	t.storeSnapshot(ctx, p)
	return p, nil
}

// KindFor returns the kind of subject tracked at level: exams at exam levels,
// passages everywhere else.
func (t *Tracker) KindFor(level string) reading.Kind {
	if t.isExamLevel(level) {
		return reading.KindExam
	}
	return reading.KindPassage
}

// Dashboard returns one Goethe summary per exam level and one level summary
// for every other level, in display order.
func (t *Tracker) Dashboard(ctx context.Context, userID string) ([]Summary, error) {
	all, err := t.log.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load completions: %w", err)
	}
	exams := OfKind(all, reading.KindExam)
	passages := OfKind(all, reading.KindPassage)

	var summaries []Summary
	for _, level := range reading.Levels {
		if t.isExamLevel(level) {
			p := RecomputeProgress(userID, level, exams)
			p.Kind = reading.KindExam
			summaries = append(summaries, GoetheSummary{Progress: p})
			continue
		}
		p := RecomputeProgress(userID, level, passages)
		p.Kind = reading.KindPassage
		summaries = append(summaries, LevelSummary{Progress: p})
	}
	SortSummaries(summaries)
	return summaries, nil
}

// CompletionInfo returns per-subject attempt info for the user.
func (t *Tracker) CompletionInfo(ctx context.Context, userID string) (map[string]CompletionInfo, error) {
	all, err := t.log.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load completions: %w", err)
	}
	return BuildCompletionInfo(userID, all), nil
}

// History returns the user's attempts at one subject, oldest first.
func (t *Tracker) History(ctx context.Context, userID, subjectID string) ([]reading.Completion, error) {
	all, err := t.log.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load completions: %w", err)
	}
	return History(userID, subjectID, all), nil
}

// Completions returns every completion of the user in insertion order.
func (t *Tracker) Completions(ctx context.Context, userID string) ([]reading.Completion, error) {
	return t.log.ListByUser(ctx, userID)
}

func (t *Tracker) isExamLevel(level string) bool {
	for _, l := range t.examLevels {
		if l == level {
			return true
		}
	}
	return false
}

func (t *Tracker) storeSnapshot(ctx context.Context, p reading.Progress) {
	if t.cache == nil {
		return
	}
	key := snapshotKey(p.UserID, p.Level, p.Kind)
	if err := t.cache.SetJSON(ctx, key, p, t.cacheTTL); err != nil {
		slog.Warn("progress cache write failed", "key", key, "error", err)
	}
}

func snapshotKey(userID, level string, kind reading.Kind) string {
	return "progress:" + userID + ":" + level + ":" + string(kind)
}
