// Package preview derives the read-only view of a survey draft shown when the
// author toggles away from the editing form.
package preview

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-surveyform/pkg/draft"
)

const (
	UntitledSurvey = "Untitled Survey"
	NoQuestions    = "No questions added yet."
)

// Option is one rendered answer choice.
type Option struct {
	Label string `json:"label"`
	// Placeholder is true when the author has not filled the option yet.
	Placeholder bool `json:"placeholder,omitempty"`
}

// Question is one numbered question in the preview.
type Question struct {
	Number  int      `json:"number"`
	Text    string   `json:"text"`
	Options []Option `json:"options,omitempty"`
}

// View is the preview of a draft. Text fields hold exactly what the author
// typed, trimmed.
type View struct {
	Title          string     `json:"title"`
	RecipientEmail string     `json:"recipient_email,omitempty"`
	QuestionType   string     `json:"question_type"`
	TypeLabel      string     `json:"type_label"`
	Questions      []Question `json:"questions,omitempty"`
	Empty          bool       `json:"empty"`
	EmptyMessage   string     `json:"empty_message,omitempty"`
}

// Build derives the preview of d. It is a pure function of the draft.
func Build(d draft.Draft) View {
	view := View{
		Title:          clean(d.Title),
		RecipientEmail: clean(d.RecipientEmail),
		QuestionType:   string(d.Type()),
		TypeLabel:      d.Type().Label(),
	}
	if view.Title == "" {
		view.Title = UntitledSurvey
	}
	if len(d.Questions) == 0 {
		view.Empty = true
		view.EmptyMessage = NoQuestions
		return view
	}

	multipleChoice := d.Type() == draft.MultipleChoice
	view.Questions = make([]Question, len(d.Questions))
	for i, q := range d.Questions {
		item := Question{Number: i + 1, Text: clean(q.Text)}
		if multipleChoice {
			item.Options = make([]Option, len(q.Options))
			for j, opt := range q.Options {
				label := clean(opt)
				if label == "" {
					item.Options[j] = Option{Label: "Option " + strconv.Itoa(j+1), Placeholder: true}
					continue
				}
				item.Options[j] = Option{Label: label}
			}
		}
		view.Questions[i] = item
	}
	return view
}

// clean trims author text. Markup is kept as typed; renderers escape it for
// their output format.
func clean(raw string) string {
	return strings.TrimSpace(raw)
}
