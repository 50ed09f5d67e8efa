package draft

import "fmt"

const (
	// MessageInvalidCount is reported when the count input changes to a value
	// that is not a positive integer.
	MessageInvalidCount = "Please enter a valid number of questions (at least 1)"

	// MessageTooManyQuestions is reported for counts above MaxQuestions.
	MessageTooManyQuestions = "A survey can have at most 200 questions"

	// ImportReasonEmpty marks a questions file without any usable line.
	ImportReasonEmpty = "empty"
	// ImportReasonTooMany marks a questions file with more than MaxQuestions
	// usable lines.
	ImportReasonTooMany = "too many questions"
)

// FieldError reports a problem with a single form field. Builder operations
// return it instead of failing so the caller can surface it inline.
type FieldError struct {
	Key     FieldKey
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("draft: %s: %s", e.Key.Path(), e.Message)
}

// ImportError is returned by ImportQuestions when a file cannot populate the
// question list.
type ImportError struct {
	Reason string
	File   string
}

func (e *ImportError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("draft: import %q: %s", e.File, e.Reason)
	}
	return "draft: import: " + e.Reason
}
