// Package passages filters and orders passage lists for display.
package passages

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/p-n-ai/prost/internal/progress"
	"github.com/p-n-ai/prost/internal/reading"
)

// CompletionFilter selects passages by whether the user has attempted them.
type CompletionFilter string

const (
	CompletionAll        CompletionFilter = "all"
	CompletionCompleted  CompletionFilter = "completed"
	CompletionIncomplete CompletionFilter = "incomplete"
)

// Label is the display name of the filter.
func (f CompletionFilter) Label() string {
	switch f {
	case CompletionCompleted:
		return "Completed"
	case CompletionIncomplete:
		return "Not Started"
	default:
		return "All"
	}
}

// ParseCompletionFilter parses a query value. Empty means CompletionAll.
func ParseCompletionFilter(s string) (CompletionFilter, error) {
	switch f := CompletionFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return CompletionAll, nil
	case CompletionAll, CompletionCompleted, CompletionIncomplete:
		return f, nil
	default:
		return "", fmt.Errorf("unknown completion filter %q", s)
	}
}

// SortOption is the display order of a passage list.
type SortOption string

const (
	SortTitle     SortOption = "title"
	SortDateAdded SortOption = "date_added"
	SortBestScore SortOption = "best_score"
	SortAttempts  SortOption = "attempts"
)

// Label is the display name of the sort option.
func (o SortOption) Label() string {
	switch o {
	case SortDateAdded:
		return "Recently Added"
	case SortBestScore:
		return "Best Score"
	case SortAttempts:
		return "Most Attempts"
	default:
		return "Title"
	}
}

// ParseSortOption parses a query value. Empty means SortTitle.
func ParseSortOption(s string) (SortOption, error) {
	switch o := SortOption(strings.ToLower(strings.TrimSpace(s))); o {
	case "":
		return SortTitle, nil
	case SortTitle, SortDateAdded, SortBestScore, SortAttempts:
		return o, nil
	default:
		return "", fmt.Errorf("unknown sort option %q", s)
	}
}

// Filters is the user's current list view.
type Filters struct {
	SearchText   string
	SelectedTags []string
	Completion   CompletionFilter
	Sort         SortOption
}

// IsActive reports whether any filter narrows the list.
func (f Filters) IsActive() bool {
	return f.SearchText != "" ||
		len(f.SelectedTags) > 0 ||
		(f.Completion != "" && f.Completion != CompletionAll)
}

// Apply filters and sorts passages. The result depends only on its inputs;
// the passages slice is not modified.
func Apply(passages []reading.Passage, f Filters, info map[string]progress.CompletionInfo) []reading.Passage {
	fold := cases.Fold()
	needle := fold.String(f.SearchText)

	out := make([]reading.Passage, 0, len(passages))
	for _, p := range passages {
		if needle != "" && !strings.Contains(fold.String(p.Title), needle) {
			continue
		}
		if !hasAllTags(p, f.SelectedTags) {
			continue
		}
		_, attempted := info[p.ID]
		switch f.Completion {
		case CompletionCompleted:
			if !attempted {
				continue
			}
		case CompletionIncomplete:
			if attempted {
				continue
			}
		}
		out = append(out, p)
	}

	sortPassages(out, f.Sort, info)
	return out
}

func hasAllTags(p reading.Passage, tags []string) bool {
	for _, tag := range tags {
		if !p.HasTag(tag) {
			return false
		}
	}
	return true
}

func sortPassages(ps []reading.Passage, opt SortOption, info map[string]progress.CompletionInfo) {
	if opt == SortDateAdded {
		return
	}

	// Collators keep internal buffers; one per call.
	col := collate.New(language.German, collate.IgnoreCase)
	byTitle := func(a, b reading.Passage) bool {
		return col.CompareString(a.Title, b.Title) < 0
	}

	switch opt {
	case SortBestScore:
		best := func(p reading.Passage) float64 {
			if i, ok := info[p.ID]; ok {
				return i.BestScore
			}
			return -1
		}
		sort.SliceStable(ps, func(i, j int) bool {
			bi, bj := best(ps[i]), best(ps[j])
			if bi != bj {
				return bi > bj
			}
			return byTitle(ps[i], ps[j])
		})
	case SortAttempts:
		sort.SliceStable(ps, func(i, j int) bool {
			ai, aj := info[ps[i].ID].Attempts, info[ps[j].ID].Attempts
			if ai != aj {
				return ai > aj
			}
			return byTitle(ps[i], ps[j])
		})
	default:
		sort.SliceStable(ps, func(i, j int) bool {
			return byTitle(ps[i], ps[j])
		})
	}
}

// Tags returns the distinct tags of passages in sorted order.
func Tags(passages []reading.Passage) []string {
	seen := make(map[string]bool)
	tags := []string{}
	for _, p := range passages {
		for _, t := range p.Tags {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	sort.Strings(tags)
	return tags
}
