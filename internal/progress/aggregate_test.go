package progress_test

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/p-n-ai/prost/internal/progress"
	"github.com/p-n-ai/prost/internal/reading"
)

var t0 = time.Date(2025, 12, 13, 9, 0, 0, 0, time.UTC)

func completion(id, user, subject, level string, score float64, at time.Time) reading.Completion {
	return reading.Completion{
		ID:            id,
		UserID:        user,
		SubjectID:     subject,
		Kind:          reading.KindPassage,
		Level:         level,
		Score:         score,
		CompletedAt:   at,
		AttemptNumber: 1,
		IsPassed:      reading.Passed(score),
	}
}

func threeQuestionPassage() reading.Passage {
	q := func(id, correct string) reading.Question {
		return reading.Question{
			ID:              id,
			Options:         []reading.Option{{ID: id + "-a"}, {ID: id + "-b"}, {ID: id + "-c"}},
			CorrectOptionID: correct,
		}
	}
	return reading.Passage{
		ID:        "berlin",
		Title:     "Ein Tag in Berlin",
		Level:     "A2",
		Questions: []reading.Question{q("q1", "q1-a"), q("q2", "q2-a"), q("q3", "q3-c")},
	}
}

func TestRecordCompletion_PassageScore(t *testing.T) {
	p := threeQuestionPassage()

	log, c, prog := progress.RecordCompletion(nil, "u1", p, reading.Answers{
		"q1": "q1-a",
		"q2": "q2-a",
		"q3": "q3-b",
	}, t0)

	if c.Score != 2.0/3.0 {
		t.Errorf("Score = %v, want 2/3", c.Score)
	}
	if c.ScorePercentage() != 66 {
		t.Errorf("ScorePercentage() = %d, want 66", c.ScorePercentage())
	}
	if !c.IsPassed {
		t.Error("IsPassed = false, want true for 66%")
	}
	if len(log) != 1 {
		t.Errorf("len(log) = %d, want 1", len(log))
	}
	if prog.TotalAttempts != 1 || prog.Level != "A2" || prog.Kind != reading.KindPassage {
		t.Errorf("progress = %+v, want one A2 passage attempt", prog)
	}
	if c.Parts != nil {
		t.Errorf("Parts = %v, want nil for passages", c.Parts)
	}
}

func TestRecordCompletion_AttemptNumbers(t *testing.T) {
	p := threeQuestionPassage()
	other := reading.Passage{ID: "other", Level: "A2"}

	var log []reading.Completion
	var c reading.Completion

	log, c, _ = progress.RecordCompletion(log, "u1", p, nil, t0)
	if c.AttemptNumber != 1 {
		t.Fatalf("first AttemptNumber = %d, want 1", c.AttemptNumber)
	}

	// Interleave other users and other subjects.
	log, _, _ = progress.RecordCompletion(log, "u2", p, nil, t0.Add(time.Minute))
	log, _, _ = progress.RecordCompletion(log, "u1", other, nil, t0.Add(2*time.Minute))

	_, c, _ = progress.RecordCompletion(log, "u1", p, nil, t0.Add(3*time.Minute))
	if c.AttemptNumber != 2 {
		t.Errorf("second AttemptNumber = %d, want 2", c.AttemptNumber)
	}
}

func TestRecordCompletion_ExamPassThreshold(t *testing.T) {
	exam := fifteenQuestionExam()

	tests := []struct {
		name    string
		correct int
		passed  bool
	}{
		{"nine correct passes", 9, true},
		{"eight correct fails", 8, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, c, _ := progress.RecordCompletion(nil, "u1", exam, answerFirst(exam, tt.correct), t0)
			if c.IsPassed != tt.passed {
				t.Errorf("IsPassed = %v, want %v (score %v)", c.IsPassed, tt.passed, c.Score)
			}
			if len(c.Parts) != 3 {
				t.Errorf("len(Parts) = %d, want 3", len(c.Parts))
			}
		})
	}
}

func TestRecomputeProgress_FiltersByUserAndLevel(t *testing.T) {
	completions := []reading.Completion{
		completion("c1", "A", "p1", "A1", 0.5, t0),
		completion("c2", "A", "p2", "A2", 0.9, t0.Add(time.Minute)),
		completion("c3", "A", "p3", "A1", 0.7, t0.Add(2*time.Minute)),
		completion("c4", "B", "p1", "A1", 1.0, t0.Add(3*time.Minute)),
	}

	got := progress.RecomputeProgress("A", "A1", completions)
	if got.TotalAttempts != 2 {
		t.Errorf("TotalAttempts = %d, want 2 (A2 and other users excluded)", got.TotalAttempts)
	}
	if got.BestScore != 0.7 {
		t.Errorf("BestScore = %v, want 0.7", got.BestScore)
	}
	if !reflect.DeepEqual(got.CompletedIDs, []string{"p1", "p3"}) {
		t.Errorf("CompletedIDs = %v, want [p1 p3]", got.CompletedIDs)
	}
	if got.LatestScore != 0.7 {
		t.Errorf("LatestScore = %v, want 0.7", got.LatestScore)
	}
	if !got.IsPassed {
		t.Error("IsPassed = false, want true (0.7 passed)")
	}

	a2 := progress.RecomputeProgress("A", "A2", completions)
	if a2.TotalAttempts != 1 {
		t.Errorf("A2 TotalAttempts = %d, want 1", a2.TotalAttempts)
	}
}

func TestRecomputeProgress_Empty(t *testing.T) {
	got := progress.RecomputeProgress("nobody", "B2", nil)
	if got.TotalAttempts != 0 || got.AverageScore != 0 || got.BestScore != 0 || got.LatestScore != 0 {
		t.Errorf("empty progress = %+v, want zeros", got)
	}
	if got.IsPassed {
		t.Error("IsPassed = true for empty history")
	}
	if !got.LastActivityAt.IsZero() {
		t.Errorf("LastActivityAt = %v, want zero", got.LastActivityAt)
	}
	if got.CompletedIDs == nil || len(got.CompletedIDs) != 0 {
		t.Errorf("CompletedIDs = %#v, want empty slice", got.CompletedIDs)
	}
}

func TestRecomputeProgress_OrderIndependent(t *testing.T) {
	a := []reading.Completion{
		completion("c1", "u", "p1", "B1", 0.1, t0),
		completion("c2", "u", "p2", "B1", 0.7, t0.Add(time.Hour)),
		completion("c3", "u", "p1", "B1", 0.3, t0.Add(2*time.Hour)),
		completion("c4", "u", "p3", "B1", 0.9, t0.Add(30*time.Minute)),
	}
	b := []reading.Completion{a[3], a[1], a[2], a[0]}

	pa := progress.RecomputeProgress("u", "B1", a)
	pb := progress.RecomputeProgress("u", "B1", b)
	if !reflect.DeepEqual(pa, pb) {
		t.Errorf("progress depends on insertion order:\n%+v\n%+v", pa, pb)
	}
	if pa.LatestScore != 0.3 {
		t.Errorf("LatestScore = %v, want 0.3 (max CompletedAt, not last inserted)", pa.LatestScore)
	}
	if !pa.LastActivityAt.Equal(t0.Add(2 * time.Hour)) {
		t.Errorf("LastActivityAt = %v, want %v", pa.LastActivityAt, t0.Add(2*time.Hour))
	}
}

func TestRecomputeProgress_LatestTieUsesInsertionOrder(t *testing.T) {
	completions := []reading.Completion{
		completion("c1", "u", "p1", "A2", 0.4, t0),
		completion("c2", "u", "p2", "A2", 0.8, t0),
	}

	if got := progress.RecomputeProgress("u", "A2", completions).LatestScore; got != 0.8 {
		t.Errorf("LatestScore = %v, want 0.8 (last inserted among ties)", got)
	}

	reversed := []reading.Completion{completions[1], completions[0]}
	if got := progress.RecomputeProgress("u", "A2", reversed).LatestScore; got != 0.4 {
		t.Errorf("LatestScore = %v, want 0.4 (last inserted among ties)", got)
	}
}

func TestRecomputeProgress_PartAveragesUseFullHistory(t *testing.T) {
	exam := func(id string, at time.Time, parts ...reading.PartScore) reading.Completion {
		c := completion(id, "u", "exam-1", "A1", 0.5, at)
		c.Kind = reading.KindExam
		c.Parts = parts
		return c
	}

	completions := []reading.Completion{
		exam("c1", t0,
			reading.PartScore{Part: 1, Correct: 4, Total: 5},
			reading.PartScore{Part: 2, Correct: 3, Total: 5},
			reading.PartScore{Part: 3, Correct: 2, Total: 5},
		),
		exam("c2", t0.Add(time.Hour),
			reading.PartScore{Part: 1, Correct: 2, Total: 5},
			reading.PartScore{Part: 3, Correct: 4, Total: 5},
		),
	}

	got := progress.RecomputeProgress("u", "A1", completions)
	if len(got.PartAverages) != 3 {
		t.Fatalf("len(PartAverages) = %d, want 3", len(got.PartAverages))
	}
	if v := got.PartAverage(1); !approx(v, 0.6) {
		t.Errorf("part 1 average = %v, want 0.6", v)
	}
	// The second attempt has no part 2 result, so only the first counts.
	if v := got.PartAverage(2); !approx(v, 0.6) {
		t.Errorf("part 2 average = %v, want 0.6", v)
	}
	if got.PartAverages[1].Samples != 1 {
		t.Errorf("part 2 samples = %d, want 1", got.PartAverages[1].Samples)
	}
	if v := got.PartAverage(3); !approx(v, 0.6) {
		t.Errorf("part 3 average = %v, want 0.6", v)
	}
}

func TestCompareScore(t *testing.T) {
	prev := []reading.Completion{
		completion("c2", "u", "p", "A2", 0.67, t0.Add(time.Hour)),
		completion("c1", "u", "p", "A2", 0.20, t0),
	}

	tests := []struct {
		name     string
		previous []reading.Completion
		score    float64
		want     progress.Trend
	}{
		{"first attempt", nil, 0.5, progress.TrendFirstAttempt},
		{"at tolerance boundary", prev, 0.68, progress.TrendSame},
		{"below tolerance", prev, 0.665, progress.TrendSame},
		{"improved", prev, 0.70, progress.TrendImproved},
		{"decreased", prev, 0.50, progress.TrendDecreased},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := progress.CompareScore(tt.previous, tt.score)
			if got.Trend != tt.want {
				t.Errorf("Trend = %q, want %q", got.Trend, tt.want)
			}
		})
	}

	// Chronologically last, not list order.
	got := progress.CompareScore(prev, 0.70)
	if got.Previous != 0.67 || got.Current != 0.70 {
		t.Errorf("Improved(%v, %v), want Improved(0.67, 0.70)", got.Previous, got.Current)
	}
}

func TestComparison_Message(t *testing.T) {
	tests := []struct {
		cmp  progress.Comparison
		want string
	}{
		{progress.Comparison{Trend: progress.TrendFirstAttempt, Current: 0.5}, "First attempt complete!"},
		{progress.Comparison{Trend: progress.TrendImproved, Previous: 0.5, Current: 0.8}, "Improved from 50% to 80%!"},
		{progress.Comparison{Trend: progress.TrendDecreased, Previous: 0.8, Current: 0.5}, "Score: 50% (previous: 80%)"},
		{progress.Comparison{Trend: progress.TrendSame, Previous: 0.6, Current: 0.6}, "Score: 60% (same as before)"},
	}

	for _, tt := range tests {
		if got := tt.cmp.Message(); got != tt.want {
			t.Errorf("Message() = %q, want %q", got, tt.want)
		}
	}
}

func TestBuildCompletionInfo(t *testing.T) {
	completions := []reading.Completion{
		completion("c1", "u", "p1", "A2", 0.4, t0),
		completion("c2", "u", "p1", "A2", 0.9, t0.Add(time.Hour)),
		completion("c3", "u", "p2", "A2", 0.5, t0),
		completion("c4", "other", "p3", "A2", 1.0, t0),
	}

	info := progress.BuildCompletionInfo("u", completions)
	if len(info) != 2 {
		t.Fatalf("len(info) = %d, want 2", len(info))
	}
	if info["p1"].Attempts != 2 || info["p1"].BestScore != 0.9 {
		t.Errorf("info[p1] = %+v, want 2 attempts, best 0.9", info["p1"])
	}
	if _, ok := info["p3"]; ok {
		t.Error("info should not include other users' subjects")
	}
}

func TestHistory_Chronological(t *testing.T) {
	completions := []reading.Completion{
		completion("late", "u", "p1", "A2", 0.4, t0.Add(time.Hour)),
		completion("early", "u", "p1", "A2", 0.9, t0),
		completion("other", "u", "p2", "A2", 0.5, t0),
	}

	got := progress.History("u", "p1", completions)
	if len(got) != 2 || got[0].ID != "early" || got[1].ID != "late" {
		t.Errorf("History() = %v, want [early late]", got)
	}
}

func fifteenQuestionExam() reading.Exam {
	exam := reading.Exam{ID: "exam-1", Level: "A1", TotalQuestions: 15}
	n := 1
	for part := 1; part <= 3; part++ {
		p := reading.Part{Number: part}
		for i := 0; i < 5; i++ {
			id := "q" + string(rune('a'+n))
			p.Questions = append(p.Questions, reading.Question{
				ID:              id,
				Number:          n,
				Options:         []reading.Option{{ID: id + "-r"}, {ID: id + "-f"}},
				CorrectOptionID: id + "-r",
			})
			n++
		}
		exam.Parts = append(exam.Parts, p)
	}
	return exam
}

func answerFirst(exam reading.Exam, correct int) reading.Answers {
	answers := reading.Answers{}
	for i, q := range exam.Questions() {
		if i < correct {
			answers[q.ID] = q.CorrectOptionID
		} else {
			answers[q.ID] = q.ID + "-f"
		}
	}
	return answers
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
