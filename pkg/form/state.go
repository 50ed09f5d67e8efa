package form

import "github.com/goliatone/go-surveyform/pkg/draft"

// Status is the lifecycle phase of the form. Inputs are accepted only while
// idle.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusSubmitting Status = "submitting"
	StatusImporting  Status = "importing"
)

// State is an immutable snapshot handed to renderers.
type State struct {
	Draft   draft.Draft
	Errors  draft.FieldErrors
	Status  Status
	Preview bool
	// FormErrors are server messages that could not be tied to a field.
	FormErrors []string
}

// Busy reports whether inputs are disabled.
func (s State) Busy() bool {
	return s.Status != StatusIdle
}

// Error returns the message recorded for key, if any.
func (s State) Error(key draft.FieldKey) string {
	return s.Errors.Get(key)
}
