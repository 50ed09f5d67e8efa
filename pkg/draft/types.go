package draft

import (
	"errors"
	"strconv"
	"strings"
)

// QuestionType selects the answer shape of every question in a survey.
type QuestionType string

const (
	// ShortAnswer questions accept free text. The backend calls them "fillup".
	ShortAnswer QuestionType = "fillup"
	// MultipleChoice questions carry a fixed option set.
	MultipleChoice QuestionType = "multiple_choice"
)

// ParseQuestionType maps wire and display spellings onto a QuestionType.
func ParseQuestionType(raw string) (QuestionType, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "fillup", "fill-up", "short_answer", "short-answer", "shortanswer":
		return ShortAnswer, true
	case "multiple_choice", "multiple-choice", "multiplechoice", "mc":
		return MultipleChoice, true
	default:
		return "", false
	}
}

// Label returns a human readable name.
func (t QuestionType) Label() string {
	if t == MultipleChoice {
		return "Multiple Choice"
	}
	return "Fill-up (Short Answer)"
}

// InputMode records where question text comes from.
type InputMode string

const (
	Manual     InputMode = "manual"
	FileImport InputMode = "file"
)

// ImportedFile is the raw questions file attached in FileImport mode. The
// content is kept so the submission can forward the original bytes.
type ImportedFile struct {
	Name    string
	Content []byte
}

func (f *ImportedFile) clone() *ImportedFile {
	if f == nil {
		return nil
	}
	return &ImportedFile{
		Name:    f.Name,
		Content: append([]byte(nil), f.Content...),
	}
}

// Question is a single survey question. Options is nil for short answer
// surveys and holds at least two entries for multiple choice surveys.
type Question struct {
	Text    string   `json:"text" yaml:"text"`
	Options []string `json:"options" yaml:"options,omitempty"`
}

func (q Question) clone() Question {
	out := Question{Text: q.Text}
	if q.Options != nil {
		out.Options = append([]string{}, q.Options...)
	}
	return out
}

// Draft is the unsaved survey definition owned by one authoring form.
type Draft struct {
	Title          string
	RecipientEmail string
	QuestionType   QuestionType
	// QuestionCount is the raw count input; "" when cleared.
	QuestionCount string
	Questions     []Question
	InputMode     InputMode
	File          *ImportedFile
}

// New returns an empty draft in manual short answer mode.
func New() Draft {
	return Draft{
		QuestionType: ShortAnswer,
		InputMode:    Manual,
	}
}

// Type returns the question type, treating the zero value as ShortAnswer.
func (d Draft) Type() QuestionType {
	if d.QuestionType == MultipleChoice {
		return MultipleChoice
	}
	return ShortAnswer
}

// Mode returns the input mode, treating the zero value as Manual.
func (d Draft) Mode() InputMode {
	if d.InputMode == FileImport {
		return FileImport
	}
	return Manual
}

// MaxQuestions bounds the question list of a single survey.
const MaxQuestions = 200

// Count parses QuestionCount. ok is false unless it is an integer between 1
// and MaxQuestions.
func (d Draft) Count() (int, bool) {
	n, ok := parseCount(d.QuestionCount)
	if !ok || n > MaxQuestions {
		return 0, false
	}
	return n, true
}

// CountTooLarge reports whether raw is a whole number above MaxQuestions.
func CountTooLarge(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		var numErr *strconv.NumError
		return errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) && !strings.HasPrefix(trimmed, "-")
	}
	return n > MaxQuestions
}

// HasFile reports whether a questions file is attached.
func (d Draft) HasFile() bool {
	return d.File != nil
}

// Clone returns a deep copy of the draft.
func (d Draft) Clone() Draft {
	out := d
	out.File = d.File.clone()
	if d.Questions != nil {
		out.Questions = make([]Question, len(d.Questions))
		for i, q := range d.Questions {
			out.Questions[i] = q.clone()
		}
	}
	return out
}

func parseCount(raw string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
