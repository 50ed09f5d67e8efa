package draft

import (
	"strconv"
	"strings"
)

// minOptions is the smallest option set a multiple choice question may hold.
const minOptions = 2

// WithTitle sets the survey title.
func (d Draft) WithTitle(title string) Draft {
	out := d.Clone()
	out.Title = title
	return out
}

// WithRecipientEmail sets the recipient address.
func (d Draft) WithRecipientEmail(email string) Draft {
	out := d.Clone()
	out.RecipientEmail = email
	return out
}

// WithQuestionCount records the raw count input and regenerates the question
// list. Any previous question text is discarded, whether the count grows or
// shrinks. An invalid count, or one above MaxQuestions, clears the questions
// and is reported as a FieldError on QuestionCountKey; the returned draft is
// still usable.
func (d Draft) WithQuestionCount(raw string) (Draft, error) {
	out := d.Clone()
	out.QuestionCount = raw

	n, ok := parseCount(raw)
	if !ok || n > MaxQuestions {
		out.Questions = nil
		message := MessageInvalidCount
		if CountTooLarge(raw) {
			message = MessageTooManyQuestions
		}
		return out, FieldError{Key: QuestionCountKey(), Message: message}
	}

	out.Questions = blankQuestions(n, out.Type())
	return out, nil
}

// WithQuestionText updates the text of question i. Imported question text is
// read-only, so the call is a no-op in FileImport mode.
func (d Draft) WithQuestionText(i int, text string) Draft {
	if d.Mode() == FileImport || !d.hasQuestion(i) {
		return d
	}
	out := d.Clone()
	out.Questions[i].Text = text
	return out
}

// WithOptionText updates option j of question i.
func (d Draft) WithOptionText(i, j int, text string) Draft {
	if !d.hasOption(i, j) {
		return d
	}
	out := d.Clone()
	out.Questions[i].Options[j] = text
	return out
}

// AddOption appends an empty option to question i. Only multiple choice
// surveys carry options.
func (d Draft) AddOption(i int) Draft {
	if d.Type() != MultipleChoice || !d.hasQuestion(i) {
		return d
	}
	out := d.Clone()
	out.Questions[i].Options = append(out.Questions[i].Options, "")
	return out
}

// RemoveOption drops option j of question i unless the question is already
// at the two option minimum, in which case the draft is returned unchanged.
func (d Draft) RemoveOption(i, j int) Draft {
	if !d.hasOption(i, j) || len(d.Questions[i].Options) <= minOptions {
		return d
	}
	out := d.Clone()
	opts := out.Questions[i].Options
	out.Questions[i].Options = append(opts[:j], opts[j+1:]...)
	return out
}

// ImportQuestions replaces the question list with one question per non-blank
// line of file. A file without any usable line, or with more than
// MaxQuestions, yields an *ImportError and the receiver is returned untouched.
func (d Draft) ImportQuestions(file ImportedFile) (Draft, error) {
	lines := SplitQuestionLines(string(file.Content))
	if len(lines) == 0 {
		return d, &ImportError{Reason: ImportReasonEmpty, File: file.Name}
	}
	if len(lines) > MaxQuestions {
		return d, &ImportError{Reason: ImportReasonTooMany, File: file.Name}
	}

	out := d.Clone()
	out.InputMode = FileImport
	out.File = file.clone()
	out.QuestionCount = strconv.Itoa(len(lines))
	out.Questions = make([]Question, len(lines))
	for idx, line := range lines {
		out.Questions[idx] = Question{
			Text:    line,
			Options: defaultOptions(out.Type()),
		}
	}
	return out, nil
}

// WithQuestionType switches the question type. The option shape differs
// between types, so the count, the questions and any imported file are
// cleared and the draft returns to manual input.
func (d Draft) WithQuestionType(t QuestionType) Draft {
	out := d.Clone()
	out.QuestionType = t
	out.QuestionCount = ""
	out.Questions = nil
	out.File = nil
	out.InputMode = Manual
	return out
}

// WithInputMode switches between manual entry and file import. Returning to
// manual entry clears the imported questions, the count and the file;
// switching to file import waits for a file before touching the questions.
// Selecting the current mode is a no-op.
func (d Draft) WithInputMode(mode InputMode) Draft {
	if mode == d.Mode() {
		return d
	}
	out := d.Clone()
	if mode == FileImport {
		out.InputMode = FileImport
		return out
	}
	out.InputMode = Manual
	out.File = nil
	out.Questions = nil
	out.QuestionCount = ""
	return out
}

// SplitQuestionLines splits file content on line breaks, trims every line and
// drops the blank ones.
func SplitQuestionLines(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

func (d Draft) hasQuestion(i int) bool {
	return i >= 0 && i < len(d.Questions)
}

func (d Draft) hasOption(i, j int) bool {
	return d.hasQuestion(i) && j >= 0 && j < len(d.Questions[i].Options)
}

func blankQuestions(n int, t QuestionType) []Question {
	out := make([]Question, n)
	for i := range out {
		out[i] = Question{Options: defaultOptions(t)}
	}
	return out
}

func defaultOptions(t QuestionType) []string {
	if t != MultipleChoice {
		return nil
	}
	return make([]string, minOptions)
}
