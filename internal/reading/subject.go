package reading

import "fmt"

// Kind tells passages and exams apart.
type Kind string

const (
	KindPassage Kind = "passage"
	KindExam    Kind = "exam"
)

// Subject is something a completion is recorded against.
type Subject interface {
	SubjectID() string
	SubjectLevel() string
	SubjectKind() Kind
	Grade(answers Answers) Result
}

// PartScore is the raw result of one exam part.
type PartScore struct {
	Part    int `json:"part"`
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// Score returns Correct/Total, or 0 for an empty part.
func (p PartScore) Score() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Correct) / float64(p.Total)
}

// Result is the graded outcome of one attempt.
type Result struct {
	Correct int         `json:"correct"`
	Total   int         `json:"total"`
	Parts   []PartScore `json:"parts,omitempty"`
}

// Score is computed from raw counts across all parts, not from part percentages.
func (r Result) Score() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Total)
}

// Passage is a generic leveled reading exercise.
type Passage struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Level     string     `json:"level"`
	Text      string     `json:"text"`
	Questions []Question `json:"questions"`
	Tags      []string   `json:"tags"`
}

func (p Passage) SubjectID() string { return p.ID }
func (p Passage) SubjectLevel() string { return p.Level }
func (p Passage) SubjectKind() Kind { return KindPassage }

// Grade counts answers matching the correct option. Missing answers are wrong.
func (p Passage) Grade(answers Answers) Result {
	r := Result{Total: len(p.Questions)}
	for _, q := range p.Questions {
		if q.IsCorrect(answers[q.ID]) {
			r.Correct++
		}
	}
	return r
}

// HasTag reports whether the passage carries tag.
func (p Passage) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Validate checks every question of the passage.
func (p Passage) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("passage id is required")
	}
	if len(p.Questions) == 0 {
		return fmt.Errorf("passage %s has no questions", p.ID)
	}
	for _, q := range p.Questions {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("passage %s: %w", p.ID, err)
		}
	}
	return nil
}

// Text is one text snippet of an exam part.
type Text struct {
	ID      string `json:"id"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
	Number  int    `json:"number,omitempty"`
}

// Part is one of the three sections of a Goethe exam.
type Part struct {
	ID           string     `json:"id"`
	Number       int        `json:"number"`
	Title        string     `json:"title"`
	Instructions string     `json:"instructions"`
	TextType     string     `json:"text_type"`
	Texts        []Text     `json:"texts"`
	Questions    []Question `json:"questions"`
}

// Exam is a Goethe-format exam with three parts.
type Exam struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Level           string   `json:"level"`
	ExamType        string   `json:"exam_type"`
	DurationMinutes int      `json:"duration_minutes"`
	TotalQuestions  int      `json:"total_questions"`
	Parts           []Part   `json:"parts"`
	Tags            []string `json:"tags"`
}

func (e Exam) SubjectID() string { return e.ID }
func (e Exam) SubjectLevel() string { return e.Level }
func (e Exam) SubjectKind() Kind { return KindExam }

// Grade scores each part and the exam as a whole.
func (e Exam) Grade(answers Answers) Result {
	var r Result
	for _, part := range e.Parts {
		ps := PartScore{Part: part.Number, Total: len(part.Questions)}
		for _, q := range part.Questions {
			if q.IsCorrect(answers[q.ID]) {
				ps.Correct++
			}
		}
		r.Correct += ps.Correct
		r.Total += ps.Total
		r.Parts = append(r.Parts, ps)
	}
	return r
}

// Part returns the part with the given number.
func (e Exam) Part(number int) (Part, bool) {
	for _, p := range e.Parts {
		if p.Number == number {
			return p, true
		}
	}
	return Part{}, false
}

// Questions returns every question in part order.
func (e Exam) Questions() []Question {
	var qs []Question
	for _, p := range e.Parts {
		qs = append(qs, p.Questions...)
	}
	return qs
}

// Validate checks the question count and numbering invariants.
func (e Exam) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("exam id is required")
	}
	next := 1
	for _, p := range e.Parts {
		if p.Number < 1 || p.Number > 3 {
			return fmt.Errorf("exam %s: part number %d out of range", e.ID, p.Number)
		}
		for _, q := range p.Questions {
			if q.Number != next {
				return fmt.Errorf("exam %s: question %s numbered %d, want %d", e.ID, q.ID, q.Number, next)
			}
			if err := q.Validate(); err != nil {
				return fmt.Errorf("exam %s: %w", e.ID, err)
			}
			next++
		}
	}
	if total := next - 1; total != e.TotalQuestions {
		return fmt.Errorf("exam %s: total_questions = %d, parts hold %d", e.ID, e.TotalQuestions, total)
	}
	return nil
}
