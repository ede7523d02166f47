// Package report exports a learner's progress as an XLSX workbook.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/prost/internal/progress"
	"github.com/p-n-ai/prost/internal/reading"
)

const (
	progressSheet = "Progress"
	attemptsSheet = "Attempts"
	headerRow     = 2
)

var (
	progressHeader = []any{"Type", "Level", "Status", "Completed", "Attempts", "Average %", "Best %", "Latest %", "Part 1 %", "Part 2 %", "Part 3 %", "Last Activity"}
	attemptsHeader = []any{"Completed At", "Subject", "Kind", "Level", "Attempt", "Score %", "Passed", "Part 1", "Part 2", "Part 3"}
)

// WriteProgress writes a workbook with one row per dashboard summary on the
// Progress sheet and one row per completion, oldest first, on the Attempts
// sheet. titles maps subject IDs to display titles; unknown IDs are written as-is.
func WriteProgress(w io.Writer, user reading.User, summaries []progress.Summary, completions []reading.Completion, titles map[string]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", progressSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(attemptsSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	title := fmt.Sprintf("Reading progress: %s <%s>", user.Name, user.Email)
	for _, sheet := range []string{progressSheet, attemptsSheet} {
		if err := f.SetCellValue(sheet, "A1", title); err != nil {
			return err
		}
	}

	if err := writeRows(f, progressSheet, progressHeader, len(summaries), func(i int) []any {
		return summaryRow(summaries[i])
	}); err != nil {
		return err
	}

	ordered := chronological(completions)
	if err := writeRows(f, attemptsSheet, attemptsHeader, len(ordered), func(i int) []any {
		return attemptRow(ordered[i], titles)
	}); err != nil {
		return err
	}

	for sheet, header := range map[string][]any{progressSheet: progressHeader, attemptsSheet: attemptsHeader} {
		if err := styleSheet(f, sheet, len(header), bold); err != nil {
			return fmt.Errorf("style %s: %w", sheet, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, header []any, n int, row func(int) []any) error {
	cell, _ := excelize.CoordinatesToCellName(1, headerRow)
	if err := f.SetSheetRow(sheet, cell, &header); err != nil {
		return fmt.Errorf("%s header: %w", sheet, err)
	}
	for i := 0; i < n; i++ {
		values := row(i)
		cell, _ := excelize.CoordinatesToCellName(1, headerRow+1+i)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func styleSheet(f *excelize.File, sheet string, columns, bold int) error {
	if err := f.SetCellStyle(sheet, "A1", "A1", bold); err != nil {
		return err
	}
	start, _ := excelize.CoordinatesToCellName(1, headerRow)
	end, _ := excelize.CoordinatesToCellName(columns, headerRow)
	if err := f.SetCellStyle(sheet, start, end, bold); err != nil {
		return err
	}
	last, _ := excelize.ColumnNumberToName(columns)
	return f.SetColWidth(sheet, "A", last, 16)
}

// chronological returns a copy of completions ordered by CompletedAt.
func chronological(completions []reading.Completion) []reading.Completion {
	out := append([]reading.Completion{}, completions...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompletedAt.Before(out[j].CompletedAt)
	})
	return out
}

func summaryRow(s progress.Summary) []any {
	p := s.Snapshot()
	row := []any{
		s.Type(),
		p.Level,
		string(s.Status()),
		p.CompletedCount(),
		p.TotalAttempts,
		p.AverageScorePercentage(),
		p.BestScorePercentage(),
		p.LatestScorePercentage(),
	}
	for part := 1; part <= 3; part++ {
		if s.Type() == "goethe" && p.TotalAttempts > 0 {
			row = append(row, reading.Percentage(p.PartAverage(part)))
		} else {
			row = append(row, "")
		}
	}
	if p.LastActivityAt.IsZero() {
		row = append(row, "")
	} else {
		row = append(row, p.LastActivityAt.UTC().Format("2006-01-02 15:04"))
	}
	return row
}

func attemptRow(c reading.Completion, titles map[string]string) []any {
	subject := c.SubjectID
	if t, ok := titles[c.SubjectID]; ok {
		subject = t
	}
	passed := "no"
	if c.IsPassed {
		passed = "yes"
	}
	row := []any{
		c.CompletedAt.UTC().Format("2006-01-02 15:04"),
		subject,
		string(c.Kind),
		c.Level,
		c.AttemptNumber,
		c.ScorePercentage(),
		passed,
	}
	for part := 1; part <= 3; part++ {
		if ps, ok := c.PartScore(part); ok {
			row = append(row, fmt.Sprintf("%d/%d", ps.Correct, ps.Total))
		} else {
			row = append(row, "")
		}
	}
	return row
}
