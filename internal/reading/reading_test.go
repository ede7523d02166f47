package reading_test

import (
	"testing"

	"github.com/p-n-ai/prost/internal/reading"
)

func question(id string, correct string, opts ...string) reading.Question {
	q := reading.Question{ID: id, Prompt: id, CorrectOptionID: correct}
	for _, o := range opts {
		q.Options = append(q.Options, reading.Option{ID: o, Text: o})
	}
	return q
}

func TestPassage_Grade(t *testing.T) {
	p := reading.Passage{
		ID:    "p1",
		Level: "A2",
		Questions: []reading.Question{
			question("q1", "a", "a", "b", "c"),
			question("q2", "b", "a", "b", "c"),
			question("q3", "c", "a", "b", "c"),
		},
	}

	r := p.Grade(reading.Answers{"q1": "a", "q2": "b", "q3": "a"})
	if r.Correct != 2 || r.Total != 3 {
		t.Fatalf("Grade() = %d/%d, want 2/3", r.Correct, r.Total)
	}
	if r.Score() != 2.0/3.0 {
		t.Errorf("Score() = %v, want 2/3", r.Score())
	}
	if got := reading.Percentage(r.Score()); got != 66 {
		t.Errorf("Percentage() = %d, want 66", got)
	}
}

func TestPassage_Grade_MissingAnswersAreWrong(t *testing.T) {
	p := reading.Passage{
		ID:        "p1",
		Questions: []reading.Question{question("q1", "a", "a", "b")},
	}

	r := p.Grade(nil)
	if r.Correct != 0 || r.Total != 1 {
		t.Errorf("Grade(nil) = %d/%d, want 0/1", r.Correct, r.Total)
	}
}

func TestExam_Grade_UsesRawCounts(t *testing.T) {
	exam := reading.Exam{
		ID: "e1",
		Parts: []reading.Part{
			{Number: 1, Questions: []reading.Question{question("q1", "r", "r", "f")}},
			{Number: 2, Questions: []reading.Question{
				question("q2", "a", "a", "b"),
				question("q3", "a", "a", "b"),
				question("q4", "a", "a", "b"),
			}},
		},
	}

	// Part 1: 1/1, part 2: 0/3. Mean of part scores would be 0.5; raw count is 1/4.
	r := exam.Grade(reading.Answers{"q1": "r", "q2": "b", "q3": "b", "q4": "b"})
	if r.Score() != 0.25 {
		t.Errorf("Score() = %v, want 0.25", r.Score())
	}
	if len(r.Parts) != 2 {
		t.Fatalf("len(Parts) = %d, want 2", len(r.Parts))
	}
	if r.Parts[0].Score() != 1 || r.Parts[1].Score() != 0 {
		t.Errorf("part scores = %v, %v; want 1, 0", r.Parts[0].Score(), r.Parts[1].Score())
	}
}

func TestPassed_Boundary(t *testing.T) {
	tests := []struct {
		name    string
		score   float64
		percent int
		passed  bool
	}{
		{"nine of fifteen", 9.0 / 15.0, 60, true},
		{"fifty-nine", 0.59, 59, false},
		{"eight of fifteen", 8.0 / 15.0, 53, false},
		{"perfect", 1, 100, true},
		{"zero", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reading.Percentage(tt.score); got != tt.percent {
				t.Errorf("Percentage(%v) = %d, want %d", tt.score, got, tt.percent)
			}
			if got := reading.Passed(tt.score); got != tt.passed {
				t.Errorf("Passed(%v) = %v, want %v", tt.score, got, tt.passed)
			}
		})
	}
}

func TestNewCompletion_Clamps(t *testing.T) {
	c := reading.NewCompletion(reading.Completion{Score: 1.7, AttemptNumber: 0})
	if c.Score != 1 {
		t.Errorf("Score = %v, want 1", c.Score)
	}
	if c.AttemptNumber != 1 {
		t.Errorf("AttemptNumber = %d, want 1", c.AttemptNumber)
	}

	c = reading.NewCompletion(reading.Completion{Score: -0.2, AttemptNumber: 3})
	if c.Score != 0 {
		t.Errorf("Score = %v, want 0", c.Score)
	}
	if c.AttemptNumber != 3 {
		t.Errorf("AttemptNumber = %d, want 3", c.AttemptNumber)
	}
}

func TestQuestion_Validate(t *testing.T) {
	tests := []struct {
		name    string
		q       reading.Question
		wantErr bool
	}{
		{"valid", question("q1", "a", "a", "b"), false},
		{"one option", question("q1", "a", "a"), true},
		{"foreign correct option", question("q1", "z", "a", "b"), true},
		{"missing id", question("", "a", "a", "b"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExam_Validate(t *testing.T) {
	numbered := func(id string, n int) reading.Question {
		q := question(id, "r", "r", "f")
		q.Number = n
		return q
	}

	exam := reading.Exam{
		ID:             "e1",
		TotalQuestions: 3,
		Parts: []reading.Part{
			{Number: 1, Questions: []reading.Question{numbered("q1", 1), numbered("q2", 2)}},
			{Number: 2, Questions: []reading.Question{numbered("q3", 3)}},
		},
	}
	if err := exam.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	exam.TotalQuestions = 4
	if err := exam.Validate(); err == nil {
		t.Error("Validate() should fail when total_questions does not match parts")
	}

	exam.TotalQuestions = 3
	exam.Parts[1].Questions[0].Number = 5
	if err := exam.Validate(); err == nil {
		t.Error("Validate() should fail on non-contiguous numbering")
	}
}
