package content

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"
)

var (
	// ErrNotFound means the document does not exist.
	ErrNotFound = errors.New("content not found")
	// ErrMalformed means the document exists but cannot be parsed or fails validation.
	ErrMalformed = errors.New("content malformed")
	// ErrEmpty means the document parsed but holds no questions.
	ErrEmpty = errors.New("content empty")
)

//go:embed schema/true_false.json
var trueFalseSchemaJSON string

//go:embed schema/choice.json
var choiceSchemaJSON string

var (
	trueFalseSchema = mustSchema(trueFalseSchemaJSON)
	choiceSchema    = mustSchema(choiceSchemaJSON)
)

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("content: invalid embedded schema: %v", err))
	}
	return s
}

// trueFalseDoc is a Richtig/Falsch part: texts with statements about each.
type trueFalseDoc struct {
	Exam           string          `json:"exam"`
	Section        string          `json:"section"`
	Part           int             `json:"part"`
	InstructionsDE string          `json:"instructions_de"`
	Tests          []trueFalseTest `json:"tests"`
}

type trueFalseTest struct {
	ID         string               `json:"id"`
	Text       string               `json:"text"`
	Statements []trueFalseStatement `json:"statements"`
}

type trueFalseStatement struct {
	ID        int    `json:"id"`
	Statement string `json:"statement"`
	Answer    string `json:"answer"`
}

// choiceDoc is an A/B part: a situation and two candidate texts per question.
type choiceDoc struct {
	Exam       string           `json:"exam"`
	Section    string           `json:"section"`
	Difficulty string           `json:"difficulty"`
	Questions  []choiceQuestion `json:"questions"`
}

type choiceQuestion struct {
	ID          int      `json:"id"`
	Situation   string   `json:"situation"`
	TextA       string   `json:"textA"`
	TextB       string   `json:"textB"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation"`
	Tags        []string `json:"tags,omitempty"`
}

// readDocument reads path, validates it against schema and decodes it into dst.
func readDocument(path string, schema *gojsonschema.Schema, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%s: %w: %v", path, ErrMalformed, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%s: %w: %s", path, ErrMalformed, strings.Join(msgs, "; "))
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%s: %w: %v", path, ErrMalformed, err)
	}
	return nil
}

var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://prost.app/content"))

// contentID derives a stable ID from a content key so that completions stay
// attached to the same subject across restarts.
func contentID(parts ...string) string {
	return uuid.NewSHA1(namespace, []byte(strings.Join(parts, "/"))).String()
}
