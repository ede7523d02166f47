package progress

import (
	"fmt"
	"sort"

	"github.com/p-n-ai/prost/internal/reading"
)

// Status is the display state of a progress summary.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusPassed     Status = "passed"
)

func statusOf(p reading.Progress) Status {
	switch {
	case p.TotalAttempts == 0:
		return StatusNotStarted
	case p.IsPassed:
		return StatusPassed
	default:
		return StatusInProgress
	}
}

// Summary is one dashboard entry. The concrete types are GoetheSummary and
// LevelSummary.
type Summary interface {
	Type() string
	Status() Status
	SortKey() string
	Snapshot() reading.Progress
	isSummary()
}

// GoetheSummary is the progress of the 3-part exam format at one level.
type GoetheSummary struct {
	reading.Progress
}

func (s GoetheSummary) Type() string { return "goethe" }
func (s GoetheSummary) Status() Status { return statusOf(s.Progress) }
func (s GoetheSummary) SortKey() string { return "0:" + levelKey(s.Level) }
func (s GoetheSummary) Snapshot() reading.Progress { return s.Progress }
func (GoetheSummary) isSummary() {}

// LevelSummary is the progress over leveled passages.
type LevelSummary struct {
	reading.Progress
}

func (s LevelSummary) Type() string { return "level" }
func (s LevelSummary) Status() Status { return statusOf(s.Progress) }
func (s LevelSummary) SortKey() string { return "1:" + levelKey(s.Level) }
func (s LevelSummary) Snapshot() reading.Progress { return s.Progress }
func (LevelSummary) isSummary() {}

func levelKey(level string) string {
	for i, l := range reading.Levels {
		if l == level {
			return fmt.Sprintf("%02d", i)
		}
	}
	return "99:" + level
}

// SortSummaries orders summaries by SortKey: exam formats first, then levels
// in CEFR order.
func SortSummaries(summaries []Summary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].SortKey() < summaries[j].SortKey()
	})
}

// SummaryView is the serialized form of a Summary.
type SummaryView struct {
	Type     string           `json:"type"`
	Status   Status           `json:"status"`
	SortKey  string           `json:"sort_key"`
	Progress reading.Progress `json:"progress"`
}

// Describe flattens a summary for serialization.
func Describe(s Summary) SummaryView {
	return SummaryView{
		Type:     s.Type(),
		Status:   s.Status(),
		SortKey:  s.SortKey(),
		Progress: s.Snapshot(),
	}
}
