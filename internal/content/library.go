// Package content loads reading passages and Goethe exams from a content
// directory.
package content

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/p-n-ai/prost/internal/reading"
)

// Library loads and caches content from the filesystem.
//
// Layout under the root directory:
//
//	passages/**/*.yaml                 leveled passages
//	goethe/a1/practice/part1.json      Richtig/Falsch practices
//	goethe/a1/practice/part2.json      A/B practices
//	goethe/a1/exams/<n>/part{1,2,3}.json
type Library struct {
	rootDir  string
	passages []reading.Passage
	byID     map[string]reading.Passage
	exams    []reading.Exam
	examByID map[string]reading.Exam
	mu       sync.RWMutex
}

// NewLibrary creates a library and loads all content under rootDir.
func NewLibrary(rootDir string) (*Library, error) {
	if _, err := os.Stat(rootDir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading content: %s: %w", rootDir, ErrNotFound)
		}
		return nil, fmt.Errorf("loading content: %w", err)
	}

	l := &Library{
		rootDir:  rootDir,
		byID:     make(map[string]reading.Passage),
		examByID: make(map[string]reading.Exam),
	}
	if err := l.loadAll(); err != nil {
		return nil, fmt.Errorf("loading content: %w", err)
	}

	slog.Info("content loaded", "path", rootDir, "passages", len(l.passages), "exams", len(l.exams))
	return l, nil
}

// Passages returns the passages of level in load order.
func (l *Library) Passages(level string) []reading.Passage {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := []reading.Passage{}
	for _, p := range l.passages {
		if p.Level == level {
			out = append(out, p)
		}
	}
	return out
}

// Passage returns a passage by ID.
func (l *Library) Passage(id string) (reading.Passage, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.byID[id]
	return p, ok
}

// Exams returns all exams ordered by number.
func (l *Library) Exams() []reading.Exam {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]reading.Exam{}, l.exams...)
}

// Exam returns an exam by ID.
func (l *Library) Exam(id string) (reading.Exam, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.examByID[id]
	return e, ok
}

// Subject returns the passage or exam with the given ID.
func (l *Library) Subject(id string) (reading.Subject, bool) {
	if p, ok := l.Passage(id); ok {
		return p, true
	}
	if e, ok := l.Exam(id); ok {
		return e, true
	}
	return nil, false
}

// Levels returns the levels that have content, in CEFR order.
func (l *Library) Levels() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	has := make(map[string]bool)
	for _, p := range l.passages {
		has[p.Level] = true
	}
	for _, e := range l.exams {
		has[e.Level] = true
	}
	levels := []string{}
	for _, level := range reading.Levels {
		if has[level] {
			levels = append(levels, level)
		}
	}
	return levels
}

func (l *Library) loadAll() error {
	passages, err := LoadPassages(filepath.Join(l.rootDir, "passages"))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	l.addPassages(passages)

	a1 := filepath.Join(l.rootDir, "goethe", "a1")
	for _, load := range []struct {
		path string
		fn   func(string) ([]reading.Passage, error)
	}{
		{filepath.Join(a1, "practice", "part1.json"), LoadTrueFalsePractices},
		{filepath.Join(a1, "practice", "part2.json"), LoadChoicePractices},
	} {
		ps, err := load.fn(load.path)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		l.addPassages(ps)
	}

	return l.loadExams(filepath.Join(a1, "exams"))
}

func (l *Library) loadExams(dir string) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", dir, err)
	}

	var numbers []int
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		n, err := strconv.Atoi(e.Name())
		if err != nil || n < 1 {
			slog.Warn("skipping exam directory", "path", filepath.Join(dir, e.Name()))
			continue
		}
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	for _, n := range numbers {
		examDir := filepath.Join(dir, strconv.Itoa(n))
		exam, err := LoadExam(n,
			filepath.Join(examDir, "part1.json"),
			filepath.Join(examDir, "part2.json"),
			filepath.Join(examDir, "part3.json"),
		)
		if err != nil {
			return err
		}
		l.mu.Lock()
		l.exams = append(l.exams, exam)
		l.examByID[exam.ID] = exam
		l.mu.Unlock()
	}
	return nil
}

func (l *Library) addPassages(ps []reading.Passage) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range ps {
		if _, dup := l.byID[p.ID]; dup {
			slog.Warn("skipping duplicate passage", "id", p.ID, "title", p.Title)
			continue
		}
		l.byID[p.ID] = p
		l.passages = append(l.passages, p)
	}
}
