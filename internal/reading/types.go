// Package reading defines the reading-practice domain: users, passages, Goethe
// exams, completions and aggregated progress.
package reading

import (
	"fmt"
	"time"
)

// Levels lists the CEFR levels in display order.
var Levels = []string{"A1", "A2", "B1", "B2"}

// User is a learner. Users are created once and never mutated.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// DemoUserID is the ID of the seeded demo user.
const DemoUserID = "00000000-0000-0000-0000-000000000001"

// DemoUser returns the seeded demo user.
func DemoUser() User {
	return User{
		ID:    DemoUserID,
		Name:  "Demo User",
		Email: "demo@prost.app",
	}
}

// QuestionType describes how a question is answered.
type QuestionType string

const (
	QuestionTrueFalse      QuestionType = "true_false"
	QuestionBinaryChoice   QuestionType = "binary_choice"
	QuestionMultipleChoice QuestionType = "multiple_choice"
)

// Option is one answer choice.
type Option struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Value string `json:"value,omitempty"`
}

// Question has two or more options and exactly one correct option.
type Question struct {
	ID              string       `json:"id"`
	Number          int          `json:"number,omitempty"`
	Prompt          string       `json:"prompt"`
	Type            QuestionType `json:"type"`
	Options         []Option     `json:"options"`
	CorrectOptionID string       `json:"correct_option_id"`
}

// IsCorrect reports whether optionID is the correct answer.
func (q Question) IsCorrect(optionID string) bool {
	return optionID != "" && optionID == q.CorrectOptionID
}

// CorrectOption returns the correct option, if present.
func (q Question) CorrectOption() (Option, bool) {
	for _, o := range q.Options {
		if o.ID == q.CorrectOptionID {
			return o, true
		}
	}
	return Option{}, false
}

// Validate checks the option invariants of a question.
func (q Question) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("question id is required")
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("question %s: need at least 2 options, got %d", q.ID, len(q.Options))
	}
	if _, ok := q.CorrectOption(); !ok {
		return fmt.Errorf("question %s: correct option %q is not one of its options", q.ID, q.CorrectOptionID)
	}
	return nil
}

// Answers maps a question ID to the chosen option ID. Entries may be missing.
type Answers map[string]string
