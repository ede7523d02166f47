// Package progress records completed attempts and derives per-level progress
// from the completion log.
package progress

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/p-n-ai/prost/internal/reading"
)

// sameScoreTolerance is the band within which two scores count as unchanged.
const sameScoreTolerance = 0.01

// floatGuard keeps 0.68-0.67 (0.010000000000000009) inside the tolerance band.
const floatGuard = 1e-9

// NewCompletion grades answers against subject and builds the next completion
// for userID. The attempt number counts every earlier completion of the same
// user and subject in log.
func NewCompletion(log []reading.Completion, userID string, subject reading.Subject, answers reading.Answers, at time.Time) reading.Completion {
	result := subject.Grade(answers)
	score := result.Score()

	var parts []reading.PartScore
	if subject.SubjectKind() == reading.KindExam {
		parts = result.Parts
	}

	return reading.NewCompletion(reading.Completion{
		ID:            uuid.NewString(),
		UserID:        userID,
		SubjectID:     subject.SubjectID(),
		Kind:          subject.SubjectKind(),
		Level:         subject.SubjectLevel(),
		Score:         score,
		CompletedAt:   at,
		AttemptNumber: countAttempts(log, userID, subject.SubjectID()) + 1,
		IsPassed:      reading.Passed(score),
		Parts:         parts,
	})
}

// RecordCompletion appends a new completion to log and returns it along with
// the recomputed progress for the user and the subject's level and kind.
func RecordCompletion(log []reading.Completion, userID string, subject reading.Subject, answers reading.Answers, at time.Time) ([]reading.Completion, reading.Completion, reading.Progress) {
	c := NewCompletion(log, userID, subject, answers, at)
	log = append(log, c)
	p := RecomputeProgress(userID, c.Level, OfKind(log, c.Kind))
	p.Kind = c.Kind
	return log, c, p
}

// RecomputeProgress folds every completion of userID at level into a Progress.
// Both predicates apply. The result does not depend on input order except
// where completions share the latest CompletedAt, in which case the later one
// in input order supplies LatestScore.
func RecomputeProgress(userID, level string, completions []reading.Completion) reading.Progress {
	p := reading.Progress{
		UserID:       userID,
		Level:        level,
		CompletedIDs: []string{},
	}

	var (
		scores     []float64
		seen       = make(map[string]bool)
		partScores = make(map[int][]float64)
		latest     *reading.Completion
	)
	for i := range completions {
		c := completions[i]
		if c.UserID != userID || c.Level != level {
			continue
		}
		scores = append(scores, c.Score)
		if !seen[c.SubjectID] {
			seen[c.SubjectID] = true
			p.CompletedIDs = append(p.CompletedIDs, c.SubjectID)
		}
		if c.IsPassed {
			p.IsPassed = true
		}
		if c.Score > p.BestScore {
			p.BestScore = c.Score
		}
		if latest == nil || !c.CompletedAt.Before(latest.CompletedAt) {
			latest = &completions[i]
		}
		for _, ps := range c.Parts {
			partScores[ps.Part] = append(partScores[ps.Part], ps.Score())
		}
	}

	sort.Strings(p.CompletedIDs)
	p.TotalAttempts = len(scores)
	p.AverageScore = mean(scores)
	if latest != nil {
		p.LatestScore = latest.Score
		p.LastActivityAt = latest.CompletedAt
	}

	if len(partScores) > 0 {
		numbers := make([]int, 0, len(partScores))
		for n := range partScores {
			numbers = append(numbers, n)
		}
		sort.Ints(numbers)
		for _, n := range numbers {
			p.PartAverages = append(p.PartAverages, reading.PartAverage{
				Part:    n,
				Average: mean(partScores[n]),
				Samples: len(partScores[n]),
			})
		}
	}

	return p
}

// mean sums in ascending order so that equal multisets give identical bits.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	var sum float64
	for _, v := range sorted {
		sum += v
	}
	return sum / float64(len(sorted))
}

// OfKind returns the completions of one kind, in input order.
func OfKind(completions []reading.Completion, kind reading.Kind) []reading.Completion {
	out := make([]reading.Completion, 0, len(completions))
	for _, c := range completions {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// History returns a user's completions of one subject, oldest first. Ties keep
// input order.
func History(userID, subjectID string, completions []reading.Completion) []reading.Completion {
	var out []reading.Completion
	for _, c := range completions {
		if c.UserID == userID && c.SubjectID == subjectID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompletedAt.Before(out[j].CompletedAt)
	})
	return out
}

func countAttempts(log []reading.Completion, userID, subjectID string) int {
	n := 0
	for _, c := range log {
		if c.UserID == userID && c.SubjectID == subjectID {
			n++
		}
	}
	return n
}

// Trend classifies a new score against the previous attempt.
type Trend string

const (
	TrendFirstAttempt Trend = "first_attempt"
	TrendImproved     Trend = "improved"
	TrendDecreased    Trend = "decreased"
	TrendSame         Trend = "same"
)

// Comparison is the outcome of CompareScore.
type Comparison struct {
	Trend    Trend   `json:"trend"`
	Previous float64 `json:"previous,omitempty"`
	Current  float64 `json:"current"`
}

// Message is the user-facing summary of the comparison.
func (c Comparison) Message() string {
	from, to := reading.Percentage(c.Previous), reading.Percentage(c.Current)
	switch c.Trend {
	case TrendImproved:
		return fmt.Sprintf("Improved from %d%% to %d%%!", from, to)
	case TrendDecreased:
		return fmt.Sprintf("Score: %d%% (previous: %d%%)", to, from)
	case TrendSame:
		return fmt.Sprintf("Score: %d%% (same as before)", from)
	default:
		return "First attempt complete!"
	}
}

// CompareScore compares newScore with the chronologically last of previous.
// previous must hold earlier attempts of one subject and must not include the
// attempt that produced newScore.
func CompareScore(previous []reading.Completion, newScore float64) Comparison {
	if len(previous) == 0 {
		return Comparison{Trend: TrendFirstAttempt, Current: newScore}
	}

	last := previous[0]
	for _, c := range previous[1:] {
		if !c.CompletedAt.Before(last.CompletedAt) {
			last = c
		}
	}

	delta := newScore - last.Score
	cmp := Comparison{Previous: last.Score, Current: newScore}
	switch {
	case math.Abs(delta) <= sameScoreTolerance+floatGuard:
		cmp.Trend = TrendSame
	case delta > 0:
		cmp.Trend = TrendImproved
	default:
		cmp.Trend = TrendDecreased
	}
	return cmp
}

// CompletionInfo summarizes a user's attempts at one subject.
type CompletionInfo struct {
	Attempts      int       `json:"attempts"`
	BestScore     float64   `json:"best_score"`
	LastAttemptAt time.Time `json:"last_attempt_at"`
}

// BuildCompletionInfo indexes a user's completions by subject ID. Subjects
// without completions are absent from the map.
func BuildCompletionInfo(userID string, completions []reading.Completion) map[string]CompletionInfo {
	info := make(map[string]CompletionInfo)
	for _, c := range completions {
		if c.UserID != userID {
			continue
		}
		ci := info[c.SubjectID]
		ci.Attempts++
		if c.Score > ci.BestScore {
			ci.BestScore = c.Score
		}
		if c.CompletedAt.After(ci.LastAttemptAt) {
			ci.LastAttemptAt = c.CompletedAt
		}
		info[c.SubjectID] = ci
	}
	return info
}
