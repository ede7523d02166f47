package reading

import (
	"math"
	"time"
)

// PassThreshold is the minimum score percentage of a passed attempt.
const PassThreshold = 60

// percentEpsilon absorbs float noise such as 0.29*100 = 28.999999999999996.
const percentEpsilon = 1e-9

// Percentage truncates a [0,1] score to a whole percentage.
func Percentage(score float64) int {
	return int(math.Floor(score*100 + percentEpsilon))
}

// Passed applies the fixed pass policy to a score.
func Passed(score float64) bool {
	return Percentage(score) >= PassThreshold
}

// Clamp limits a score to [0,1].
func Clamp(score float64) float64 {
	if math.IsNaN(score) || score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// Completion is an immutable record of one finished attempt.
type Completion struct {
	ID            string      `json:"id"`
	UserID        string      `json:"user_id"`
	SubjectID     string      `json:"subject_id"`
	Kind          Kind        `json:"kind"`
	Level         string      `json:"level"`
	Score         float64     `json:"score"`
	CompletedAt   time.Time   `json:"completed_at"`
	AttemptNumber int         `json:"attempt_number"`
	IsPassed      bool        `json:"is_passed"`
	Parts         []PartScore `json:"parts,omitempty"`
	TimeSpent     int         `json:"time_spent,omitempty"` // seconds
}

// NewCompletion clamps the score to [0,1] and the attempt number to at least 1.
func NewCompletion(c Completion) Completion {
	c.Score = Clamp(c.Score)
	if c.AttemptNumber < 1 {
		c.AttemptNumber = 1
	}
	return c
}

// ScorePercentage returns the truncated score percentage.
func (c Completion) ScorePercentage() int { return Percentage(c.Score) }

// IsPerfect reports a full score.
func (c Completion) IsPerfect() bool { return c.Score == 1 }

// PartScore returns the recorded result for an exam part.
func (c Completion) PartScore(part int) (PartScore, bool) {
	for _, p := range c.Parts {
		if p.Part == part {
			return p, true
		}
	}
	return PartScore{}, false
}

// PartAverage is the mean score of one exam part across attempts.
type PartAverage struct {
	Part    int     `json:"part"`
	Average float64 `json:"average"`
	Samples int     `json:"samples"`
}

// Progress is the aggregate of a user's completions for one level and kind.
// It is always derived from the completion log, never stored on its own.
type Progress struct {
	UserID         string        `json:"user_id"`
	Level          string        `json:"level"`
	Kind           Kind          `json:"kind"`
	CompletedIDs   []string      `json:"completed_ids"`
	TotalAttempts  int           `json:"total_attempts"`
	AverageScore   float64       `json:"average_score"`
	BestScore      float64       `json:"best_score"`
	LatestScore    float64       `json:"latest_score"`
	IsPassed       bool          `json:"is_passed"`
	LastActivityAt time.Time     `json:"last_activity_at"`
	PartAverages   []PartAverage `json:"part_averages,omitempty"`
}

func (p Progress) CompletedCount() int { return len(p.CompletedIDs) }
func (p Progress) AverageScorePercentage() int { return Percentage(p.AverageScore) }
func (p Progress) BestScorePercentage() int { return Percentage(p.BestScore) }
func (p Progress) LatestScorePercentage() int { return Percentage(p.LatestScore) }

// PartAverage returns the average for one exam part, 0 when never recorded.
func (p Progress) PartAverage(part int) float64 {
	for _, pa := range p.PartAverages {
		if pa.Part == part {
			return pa.Average
		}
	}
	return 0
}
