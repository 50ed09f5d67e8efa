package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/goliatone/go-surveyform/pkg/draft"
)

const (
	MessageTitleRequired = "Survey title is required"
	MessageCountRequired = "Please specify the number of questions (at least 1)"
	MessageEmailRequired = "Recipient email is required"
	MessageEmailInvalid  = "Please enter a valid email address"
	MessageFileRequired  = "Please upload a questions file."
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Validate runs every rule against d and returns the complete error map. It
// never stops at the first failure; an empty map means the draft may be
// submitted.
func Validate(d draft.Draft) draft.FieldErrors {
	errs := draft.FieldErrors{}

	if strings.TrimSpace(d.Title) == "" {
		errs.Set(draft.TitleKey(), MessageTitleRequired)
	}

	if _, ok := d.Count(); !ok {
		message := MessageCountRequired
		if draft.CountTooLarge(d.QuestionCount) {
			message = draft.MessageTooManyQuestions
		}
		errs.Set(draft.QuestionCountKey(), message)
	}

	// The address is matched as typed since it is submitted untrimmed.
	switch {
	case strings.TrimSpace(d.RecipientEmail) == "":
		errs.Set(draft.EmailKey(), MessageEmailRequired)
	case !ValidEmail(d.RecipientEmail):
		errs.Set(draft.EmailKey(), MessageEmailInvalid)
	}

	if d.Mode() == draft.FileImport && !d.HasFile() {
		errs.Set(draft.QuestionsFileKey(), MessageFileRequired)
	}

	multipleChoice := d.Type() == draft.MultipleChoice
	for i, q := range d.Questions {
		if strings.TrimSpace(q.Text) == "" {
			errs.Set(draft.QuestionTextKey(i), QuestionTextRequired(i))
		}
		if !multipleChoice {
			continue
		}
		seen := make(map[string]struct{}, len(q.Options))
		duplicate := false
		for j, option := range q.Options {
			value := strings.TrimSpace(option)
			if value == "" {
				errs.Set(draft.OptionKey(i, j), OptionRequired(i, j))
			}
			if _, ok := seen[value]; ok {
				duplicate = true
			}
			seen[value] = struct{}{}
		}
		if duplicate {
			errs.Set(draft.DuplicateOptionsKey(i), OptionsNotUnique(i))
		}
	}

	return errs
}

// ValidEmail reports whether value looks like an address: non-blank text, an
// @, and a dot somewhere in the domain part.
func ValidEmail(value string) bool {
	return emailPattern.MatchString(value)
}

func QuestionTextRequired(i int) string {
	return fmt.Sprintf("Question %d text is required", i+1)
}

func OptionRequired(i, j int) string {
	return fmt.Sprintf("Option %d for Question %d is required", j+1, i+1)
}

func OptionsNotUnique(i int) string {
	return fmt.Sprintf("Options for Question %d must be unique", i+1)
}
