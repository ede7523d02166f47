package content

// passageFile is a leveled reading passage loaded from YAML.
type passageFile struct {
	ID        string         `yaml:"id"`
	Title     string         `yaml:"title"`
	Level     string         `yaml:"level"`
	Tags      []string       `yaml:"tags"`
	Text      string         `yaml:"text"`
	Questions []questionFile `yaml:"questions"`
}

// questionFile is a multiple-choice question. Exactly one option is correct.
type questionFile struct {
	Prompt  string       `yaml:"prompt"`
	Options []optionFile `yaml:"options"`
}

type optionFile struct {
	Text    string `yaml:"text"`
	Correct bool   `yaml:"correct"`
}
