// Package vocabulary manages the words a learner saves while reading.
package vocabulary

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrNotFound is returned when a word does not exist for the user.
var ErrNotFound = errors.New("word not found")

// Word is a saved vocabulary entry. A user saves each word at most once,
// compared case-insensitively.
type Word struct {
	ID                 string    `json:"id" db:"id"`
	UserID             string    `json:"user_id" db:"user_id"`
	Word               string    `json:"word" db:"word"`
	Context            string    `json:"context" db:"context"`
	SourcePassageID    string    `json:"source_passage_id,omitempty" db:"source_passage_id"`
	SourcePassageTitle string    `json:"source_passage_title,omitempty" db:"source_passage_title"`
	Level              string    `json:"level" db:"level"`
	Notes              *string   `json:"notes,omitempty" db:"notes"`
	IsFavorite         bool      `json:"is_favorite" db:"is_favorite"`
	AddedAt            time.Time `json:"added_at" db:"added_at"`
}

// Key is the uniqueness key of a word.
func Key(word string) string {
	return cases.Lower(language.German).String(strings.TrimSpace(word))
}
