package content

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/p-n-ai/prost/internal/reading"
)

// LoadPassages walks dir for *.yaml passage files in lexical path order.
// A missing dir is ErrNotFound; an empty dir yields no passages.
func LoadPassages(dir string) ([]reading.Passage, error) {
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", dir, ErrNotFound)
		}
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}

	var passages []reading.Passage
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !(strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml")) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		p, err := loadPassage(path, filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		passages = append(passages, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return passages, nil
}

func loadPassage(path, rel string) (reading.Passage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return reading.Passage{}, fmt.Errorf("read %s: %w", path, err)
	}

	var f passageFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return reading.Passage{}, fmt.Errorf("%s: %w: %v", path, ErrMalformed, err)
	}
	if f.Title == "" || !isLevel(f.Level) {
		return reading.Passage{}, fmt.Errorf("%s: %w: title and a level in %v are required", path, ErrMalformed, reading.Levels)
	}
	if len(f.Questions) == 0 {
		return reading.Passage{}, fmt.Errorf("%s: %w", path, ErrEmpty)
	}

	slug := f.ID
	if slug == "" {
		slug = strings.TrimSuffix(rel, filepath.Ext(rel))
	}
	key := "passage/" + slug

	p := reading.Passage{
		ID:    contentID(key),
		Title: f.Title,
		Level: f.Level,
		Text:  f.Text,
		Tags:  f.Tags,
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	for i, qf := range f.Questions {
		qKey := key + "/" + strconv.Itoa(i+1)
		q := reading.Question{
			ID:     contentID(qKey),
			Number: i + 1,
			Prompt: qf.Prompt,
			Type:   reading.QuestionMultipleChoice,
		}
		correct := 0
		for j, of := range qf.Options {
			o := reading.Option{ID: contentID(qKey, strconv.Itoa(j+1)), Text: of.Text}
			if of.Correct {
				q.CorrectOptionID = o.ID
				correct++
			}
			q.Options = append(q.Options, o)
		}
		if correct != 1 {
			return reading.Passage{}, fmt.Errorf("%s: %w: question %d has %d correct options, want 1", path, ErrMalformed, i+1, correct)
		}
		p.Questions = append(p.Questions, q)
	}

	if err := p.Validate(); err != nil {
		return reading.Passage{}, fmt.Errorf("%s: %w: %v", path, ErrMalformed, err)
	}
	return p, nil
}

func isLevel(level string) bool {
	for _, l := range reading.Levels {
		if l == level {
			return true
		}
	}
	return false
}
