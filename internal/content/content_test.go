package content_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/p-n-ai/prost/internal/content"
	"github.com/p-n-ai/prost/internal/reading"
)

const seedRoot = "../../content"

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const trueFalseDoc = `{
  "exam": "Goethe-Zertifikat A1",
  "section": "Lesen",
  "part": 1,
  "instructions_de": "Richtig oder Falsch?",
  "tests": [
    {"id": "t1", "text": "Hallo Lisa,\nwie geht es dir?", "statements": [
      {"id": 1, "statement": "Lisa schreibt.", "answer": "F"},
      {"id": 2, "statement": "Es ist ein Gruß.", "answer": "R"}
    ]},
    {"id": "t2", "text": "Donaudampfschifffahrtsgesellschaftskapitän schreibt einen langen Brief", "statements": [
      {"id": 1, "statement": "Der Brief ist lang.", "answer": "R"}
    ]}
  ]
}`

func TestLoadTrueFalsePractices(t *testing.T) {
	path := writeFile(t, t.TempDir(), "part1.json", trueFalseDoc)

	practices, err := content.LoadTrueFalsePractices(path)
	if err != nil {
		t.Fatalf("LoadTrueFalsePractices() error = %v", err)
	}
	if len(practices) != 2 {
		t.Fatalf("len(practices) = %d, want 2", len(practices))
	}

	p := practices[0]
	if p.Title != "Practice 1: Hallo Lisa," {
		t.Errorf("Title = %q", p.Title)
	}
	if p.Level != "A1" || !p.HasTag("richtig-falsch") || !p.HasTag("part1") {
		t.Errorf("Level/Tags = %s/%v", p.Level, p.Tags)
	}

	q1, q2 := p.Questions[0], p.Questions[1]
	if q1.Options[0].Text != "Richtig" || q1.Options[1].Text != "Falsch" {
		t.Errorf("options = %+v, want Richtig, Falsch", q1.Options)
	}
	if q1.CorrectOptionID != q1.Options[1].ID {
		t.Error("F should map to the second option")
	}
	if q2.CorrectOptionID != q2.Options[0].ID {
		t.Error("R should map to the first option")
	}
	if err := p.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	long := practices[1].Title
	if !strings.HasSuffix(long, "...") || len([]rune(strings.TrimPrefix(long, "Practice 2: "))) != 33 {
		t.Errorf("long title = %q, want 30 characters plus ...", long)
	}
}

func TestLoadTrueFalsePractices_StableIDs(t *testing.T) {
	dir := t.TempDir()
	first, err := content.LoadTrueFalsePractices(writeFile(t, dir, "a.json", trueFalseDoc))
	if err != nil {
		t.Fatal(err)
	}
	second, err := content.LoadTrueFalsePractices(writeFile(t, dir, "moved/b.json", trueFalseDoc))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("loading the same document twice should yield identical IDs")
	}
}

func TestLoaders_ErrorKinds(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		path string
		load func(string) ([]reading.Passage, error)
		want error
	}{
		{
			name: "missing file",
			path: filepath.Join(dir, "missing.json"),
			load: content.LoadTrueFalsePractices,
			want: content.ErrNotFound,
		},
		{
			name: "invalid json",
			path: writeFile(t, dir, "broken.json", `{"exam": `),
			load: content.LoadTrueFalsePractices,
			want: content.ErrMalformed,
		},
		{
			name: "unknown answer code",
			path: writeFile(t, dir, "answer.json", strings.Replace(trueFalseDoc, `"answer": "F"`, `"answer": "X"`, 1)),
			load: content.LoadTrueFalsePractices,
			want: content.ErrMalformed,
		},
		{
			name: "no tests",
			path: writeFile(t, dir, "empty.json", `{"exam":"A1","section":"Lesen","part":1,"instructions_de":"","tests":[]}`),
			load: content.LoadTrueFalsePractices,
			want: content.ErrEmpty,
		},
		{
			name: "no choice questions",
			path: writeFile(t, dir, "empty2.json", `{"exam":"A1","section":"Lesen","difficulty":"A1","questions":[]}`),
			load: content.LoadChoicePractices,
			want: content.ErrEmpty,
		},
		{
			name: "choice document missing fields",
			path: writeFile(t, dir, "partial.json", `{"exam":"A1","questions":[]}`),
			load: content.LoadChoicePractices,
			want: content.ErrMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.load(tt.path)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			if got != nil {
				t.Errorf("passages = %v, want nil on error", got)
			}
		})
	}
}

func TestLoadChoicePractices(t *testing.T) {
	practices, err := content.LoadChoicePractices(filepath.Join(seedRoot, "goethe", "a1", "practice", "part2.json"))
	if err != nil {
		t.Fatalf("LoadChoicePractices() error = %v", err)
	}
	if len(practices) != 2 {
		t.Fatalf("len(practices) = %d, want 2", len(practices))
	}

	p := practices[0]
	if p.Title != "Practice 1: Situation Choice" {
		t.Errorf("Title = %q", p.Title)
	}
	wantTags := []string{"leisure", "part2", "situation", "a-b-choice"}
	if !reflect.DeepEqual(p.Tags, wantTags) {
		t.Errorf("Tags = %v, want %v", p.Tags, wantTags)
	}
	q := p.Questions[0]
	if q.Options[0].Text != "Text A" || q.Options[1].Text != "Text B" {
		t.Errorf("options = %+v", q.Options)
	}
	if q.CorrectOptionID != q.Options[1].ID {
		t.Error("B should map to the second option")
	}
	if !strings.Contains(q.Prompt, "Text A:\n") || !strings.Contains(q.Prompt, "Text B:\n") {
		t.Errorf("Prompt = %q, want both texts inline", q.Prompt)
	}
}

func TestLoadExam(t *testing.T) {
	dir := filepath.Join(seedRoot, "goethe", "a1", "exams", "1")
	exam, err := content.LoadExam(1,
		filepath.Join(dir, "part1.json"),
		filepath.Join(dir, "part2.json"),
		filepath.Join(dir, "part3.json"),
	)
	if err != nil {
		t.Fatalf("LoadExam() error = %v", err)
	}

	if exam.TotalQuestions != 15 || len(exam.Questions()) != 15 {
		t.Errorf("TotalQuestions = %d, questions = %d, want 15", exam.TotalQuestions, len(exam.Questions()))
	}
	for i, q := range exam.Questions() {
		if q.Number != i+1 {
			t.Errorf("question %d numbered %d", i+1, q.Number)
		}
	}

	wantTitles := []string{"Part 1: Short Informal Texts", "Part 2: Situation-Based Texts", "Part 3: Signs and Notices"}
	for i, p := range exam.Parts {
		if p.Number != i+1 || p.Title != wantTitles[i] {
			t.Errorf("part %d = %d %q", i+1, p.Number, p.Title)
		}
	}
	if exam.Title != "Goethe A1 Reading Practice 1" || exam.DurationMinutes != 25 || exam.Level != "A1" {
		t.Errorf("exam = %q, %d min, %s", exam.Title, exam.DurationMinutes, exam.Level)
	}
	if part2, _ := exam.Part(2); part2.Questions[0].Type != reading.QuestionBinaryChoice {
		t.Errorf("part 2 type = %s, want binary_choice", part2.Questions[0].Type)
	}
}

func TestLoadExam_PartMismatch(t *testing.T) {
	dir := filepath.Join(seedRoot, "goethe", "a1", "exams", "1")

	_, err := content.LoadExam(1,
		filepath.Join(dir, "part3.json"),
		filepath.Join(dir, "part2.json"),
		filepath.Join(dir, "part3.json"),
	)
	if !errors.Is(err, content.ErrMalformed) {
		t.Errorf("error = %v, want ErrMalformed", err)
	}
}

const passageYAML = `
title: Der Markt
level: A2
tags: [food]
text: Am Samstag ist Markt.
questions:
  - prompt: Wann ist Markt?
    options:
      - text: Am Samstag
        correct: true
      - text: Am Sonntag
`

func TestLoadPassages(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a2/markt.yaml", passageYAML)
	writeFile(t, dir, "notes.txt", "ignored")

	passages, err := content.LoadPassages(dir)
	if err != nil {
		t.Fatalf("LoadPassages() error = %v", err)
	}
	if len(passages) != 1 {
		t.Fatalf("len(passages) = %d, want 1", len(passages))
	}
	p := passages[0]
	if p.Title != "Der Markt" || p.Level != "A2" || len(p.Questions) != 1 {
		t.Errorf("passage = %+v", p)
	}
	if p.Questions[0].CorrectOptionID != p.Questions[0].Options[0].ID {
		t.Error("correct flag not mapped")
	}
}

func TestLoadPassages_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"two correct options", strings.Replace(passageYAML, "text: Am Sonntag", "text: Am Sonntag\n        correct: true", 1), content.ErrMalformed},
		{"unknown level", strings.Replace(passageYAML, "level: A2", "level: C2", 1), content.ErrMalformed},
		{"invalid yaml", "title: [unclosed", content.ErrMalformed},
		{"no questions", "title: Leer\nlevel: A1\n", content.ErrEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, "p.yaml", tt.body)
			if _, err := content.LoadPassages(dir); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := content.LoadPassages(filepath.Join(t.TempDir(), "nope")); !errors.Is(err, content.ErrNotFound) {
		t.Errorf("missing dir error = %v, want ErrNotFound", err)
	}
}

func TestLibrary_SeedContent(t *testing.T) {
	lib, err := content.NewLibrary(seedRoot)
	if err != nil {
		t.Fatalf("NewLibrary() error = %v", err)
	}

	if got := len(lib.Passages("A1")); got != 4 {
		t.Errorf("A1 passages = %d, want 4", got)
	}
	a2 := lib.Passages("A2")
	if len(a2) != 1 || a2[0].Title != "Ein Tag in Berlin" {
		t.Errorf("A2 passages = %v", a2)
	}
	if got := lib.Levels(); !reflect.DeepEqual(got, []string{"A1", "A2", "B1"}) {
		t.Errorf("Levels() = %v", got)
	}

	exams := lib.Exams()
	if len(exams) != 1 {
		t.Fatalf("Exams() = %d, want 1", len(exams))
	}
	subject, ok := lib.Subject(exams[0].ID)
	if !ok || subject.SubjectKind() != reading.KindExam {
		t.Errorf("Subject(exam) = %v, %v", subject, ok)
	}
	subject, ok = lib.Subject(a2[0].ID)
	if !ok || subject.SubjectKind() != reading.KindPassage {
		t.Errorf("Subject(passage) = %v, %v", subject, ok)
	}
	if _, ok := lib.Subject("unknown"); ok {
		t.Error("Subject(unknown) should not be found")
	}
}

func TestLibrary_EmptyDir(t *testing.T) {
	lib, err := content.NewLibrary(t.TempDir())
	if err != nil {
		t.Fatalf("NewLibrary() error = %v", err)
	}
	if len(lib.Passages("A1")) != 0 || len(lib.Exams()) != 0 {
		t.Error("empty dir should load no content")
	}
}

func TestLibrary_MissingRoot(t *testing.T) {
	_, err := content.NewLibrary(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, content.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
