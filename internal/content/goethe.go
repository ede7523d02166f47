package content

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/p-n-ai/prost/internal/reading"
)

const (
	examType     = "goethe_a1_reading"
	examLevel    = "A1"
	examDuration = 25

	choiceInstructions = "Lesen Sie die Texte und die Aufgaben. Wo finden Sie Informationen? Kreuzen Sie an: a oder b."
)

var examTags = []string{"goethe", "a1", "practice", "reading"}

// LoadTrueFalsePractices loads a Richtig/Falsch document as standalone A1
// practices, one passage per text.
func LoadTrueFalsePractices(path string) ([]reading.Passage, error) {
	var doc trueFalseDoc
	if err := readDocument(path, trueFalseSchema, &doc); err != nil {
		return nil, err
	}

	var practices []reading.Passage
	for i, test := range doc.Tests {
		key := trueFalseKey(doc, test)
		p := reading.Passage{
			ID:    contentID(key),
			Title: fmt.Sprintf("Practice %d: %s", i+1, practiceTitle(test.Text)),
			Level: examLevel,
			Text:  test.Text,
			Tags:  []string{"part1", "informal-text", "richtig-falsch"},
		}
		for _, s := range test.Statements {
			p.Questions = append(p.Questions, trueFalseQuestion(key, s, 0))
		}
		if len(p.Questions) == 0 {
			continue
		}
		practices = append(practices, p)
	}

	if len(practices) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmpty)
	}
	return practices, nil
}

// LoadChoicePractices loads an A/B document as standalone A1 practices, one
// passage per situation.
func LoadChoicePractices(path string) ([]reading.Passage, error) {
	var doc choiceDoc
	if err := readDocument(path, choiceSchema, &doc); err != nil {
		return nil, err
	}
	if len(doc.Questions) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmpty)
	}

	practices := make([]reading.Passage, 0, len(doc.Questions))
	for _, q := range doc.Questions {
		key := choiceKey(doc, q)
		tags := append(append([]string{}, q.Tags...), "part2", "situation", "a-b-choice")
		practices = append(practices, reading.Passage{
			ID:        contentID(key),
			Title:     fmt.Sprintf("Practice %d: Situation Choice", q.ID),
			Level:     examLevel,
			Text:      q.Situation,
			Questions: []reading.Question{choiceQuestionOf(key, q, 0, true)},
			Tags:      tags,
		})
	}
	return practices, nil
}

// LoadExam assembles a three-part exam. Parts 1 and 3 are Richtig/Falsch
// documents and part 2 is an A/B document. Questions are numbered
// contiguously across parts.
func LoadExam(number int, part1Path, part2Path, part3Path string) (reading.Exam, error) {
	var p1, p3 trueFalseDoc
	var p2 choiceDoc
	if err := readDocument(part1Path, trueFalseSchema, &p1); err != nil {
		return reading.Exam{}, err
	}
	if err := readDocument(part2Path, choiceSchema, &p2); err != nil {
		return reading.Exam{}, err
	}
	if err := readDocument(part3Path, trueFalseSchema, &p3); err != nil {
		return reading.Exam{}, err
	}

	examKey := "exam/" + examType + "/" + strconv.Itoa(number)
	next := 1

	part1, err := trueFalsePart(examKey, 1, part1Path, p1, &next)
	if err != nil {
		return reading.Exam{}, err
	}
	part2, err := choicePart(examKey, part2Path, p2, &next)
	if err != nil {
		return reading.Exam{}, err
	}
	part3, err := trueFalsePart(examKey, 3, part3Path, p3, &next)
	if err != nil {
		return reading.Exam{}, err
	}

	exam := reading.Exam{
		ID:              contentID(examKey),
		Title:           fmt.Sprintf("Goethe A1 Reading Practice %d", number),
		Level:           examLevel,
		ExamType:        examType,
		DurationMinutes: examDuration,
		TotalQuestions:  next - 1,
		Parts:           []reading.Part{part1, part2, part3},
		Tags:            append([]string{}, examTags...),
	}
	if err := exam.Validate(); err != nil {
		return reading.Exam{}, fmt.Errorf("exam %d: %w: %v", number, ErrMalformed, err)
	}
	return exam, nil
}

func trueFalsePart(examKey string, number int, path string, doc trueFalseDoc, next *int) (reading.Part, error) {
	if doc.Part != number {
		return reading.Part{}, fmt.Errorf("%s: %w: document is part %d, expected part %d", path, ErrMalformed, doc.Part, number)
	}
	partKey := examKey + "/part" + strconv.Itoa(number)
	part := newPart(partKey, number, doc.InstructionsDE)
	for i, test := range doc.Tests {
		part.Texts = append(part.Texts, reading.Text{
			ID:      contentID(partKey, "text", test.ID),
			Content: test.Text,
			Number:  i + 1,
		})
		for _, s := range test.Statements {
			part.Questions = append(part.Questions, trueFalseQuestion(partKey+"/"+test.ID, s, *next))
			*next++
		}
	}
	if len(part.Questions) == 0 {
		return reading.Part{}, fmt.Errorf("%s: %w", path, ErrEmpty)
	}
	return part, nil
}

func choicePart(examKey, path string, doc choiceDoc, next *int) (reading.Part, error) {
	partKey := examKey + "/part2"
	part := newPart(partKey, 2, choiceInstructions)
	for _, q := range doc.Questions {
		n := *next
		part.Texts = append(part.Texts,
			reading.Text{ID: contentID(partKey, "text", strconv.Itoa(q.ID), "a"), Title: "Text A", Content: q.TextA, Number: n},
			reading.Text{ID: contentID(partKey, "text", strconv.Itoa(q.ID), "b"), Title: "Text B", Content: q.TextB, Number: n},
		)
		part.Questions = append(part.Questions, choiceQuestionOf(partKey+"/"+strconv.Itoa(q.ID), q, n, false))
		*next++
	}
	if len(part.Questions) == 0 {
		return reading.Part{}, fmt.Errorf("%s: %w", path, ErrEmpty)
	}
	return part, nil
}

func newPart(key string, number int, instructions string) reading.Part {
	return reading.Part{
		ID:           contentID(key),
		Number:       number,
		Title:        partTitle(number),
		Instructions: instructions,
		TextType:     partTextType(number),
	}
}

// trueFalseQuestion maps R to the first option and F to the second.
func trueFalseQuestion(key string, s trueFalseStatement, number int) reading.Question {
	qKey := key + "/" + strconv.Itoa(s.ID)
	richtig := reading.Option{ID: contentID(qKey, "R"), Text: "Richtig", Value: "True"}
	falsch := reading.Option{ID: contentID(qKey, "F"), Text: "Falsch", Value: "False"}

	correct := falsch.ID
	if s.Answer == "R" {
		correct = richtig.ID
	}
	return reading.Question{
		ID:              contentID(qKey),
		Number:          number,
		Prompt:          s.Statement,
		Type:            reading.QuestionTrueFalse,
		Options:         []reading.Option{richtig, falsch},
		CorrectOptionID: correct,
	}
}

// choiceQuestionOf maps A to the first option and B to the second. Standalone
// practices carry both texts in the prompt; exam questions reference the
// part's texts instead.
func choiceQuestionOf(key string, q choiceQuestion, number int, inlineTexts bool) reading.Question {
	a := reading.Option{ID: contentID(key, "A"), Text: "Text A", Value: "A"}
	b := reading.Option{ID: contentID(key, "B"), Text: "Text B", Value: "B"}

	correct := b.ID
	if q.Answer == "A" {
		correct = a.ID
	}
	prompt := q.Situation
	if inlineTexts {
		prompt = q.Situation + "\n\nText A:\n" + q.TextA + "\n\nText B:\n" + q.TextB
	}
	return reading.Question{
		ID:              contentID(key),
		Number:          number,
		Prompt:          prompt,
		Type:            reading.QuestionBinaryChoice,
		Options:         []reading.Option{a, b},
		CorrectOptionID: correct,
	}
}

func trueFalseKey(doc trueFalseDoc, test trueFalseTest) string {
	return "practice/" + doc.Exam + "/" + doc.Section + "/part" + strconv.Itoa(doc.Part) + "/" + test.ID
}

func choiceKey(doc choiceDoc, q choiceQuestion) string {
	return "practice/" + doc.Exam + "/" + doc.Section + "/part2/" + strconv.Itoa(q.ID)
}

// practiceTitle is the first four words of the first line, cut at 30 characters.
func practiceTitle(text string) string {
	var first string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			first = line
			break
		}
	}
	if first == "" {
		return "Informal Text"
	}

	words := strings.Fields(first)
	if len(words) > 4 {
		words = words[:4]
	}
	title := strings.Join(words, " ")
	if utf8.RuneCountInString(title) > 30 {
		return string([]rune(title)[:30]) + "..."
	}
	return title
}

func partTitle(number int) string {
	switch number {
	case 1:
		return "Part 1: Short Informal Texts"
	case 2:
		return "Part 2: Situation-Based Texts"
	case 3:
		return "Part 3: Signs and Notices"
	default:
		return fmt.Sprintf("Part %d", number)
	}
}

func partTextType(number int) string {
	switch number {
	case 1:
		return "informal_texts"
	case 2:
		return "situation_based"
	case 3:
		return "notices_signs"
	default:
		return "other"
	}
}
