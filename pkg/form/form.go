// Package form implements the survey authoring form: one draft, its field
// errors, a status and the preview toggle, with every edit serialized.
package form

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-surveyform/pkg/draft"
	"github.com/goliatone/go-surveyform/pkg/submission"
	"github.com/goliatone/go-surveyform/pkg/validation"
)

const (
	MessageFileNotText  = "Please upload a .txt file."
	MessageFileEmpty    = "File must contain at least one question."
	MessageFileTooLarge = "Questions file is too large."
	MessageFileTooMany  = "File can contain at most 200 questions."

	// DefaultMaxFileSize caps imported questions files.
	DefaultMaxFileSize = 1 << 20
)

var (
	// ErrBusy is returned for edits attempted while a submit or import runs.
	ErrBusy = errors.New("form: busy")
	// ErrInvalid is returned by Submit when validation fails. The field
	// errors are available from Snapshot.
	ErrInvalid = errors.New("form: draft has validation errors")
)

// Submitter sends a validated draft. *submission.Coordinator implements it.
type Submitter interface {
	Submit(ctx context.Context, d draft.Draft) (submission.Outcome, error)
}

// Form owns a draft and mediates every change to it.
type Form struct {
	mu sync.Mutex

	draft      draft.Draft
	errors     draft.FieldErrors
	formErrors []string
	status     Status
	preview    bool

	submitter   Submitter
	logger      *zap.Logger
	maxFileSize int64
}

// Option configures a Form.
type Option func(*Form)

// WithDraft seeds the form with an existing draft.
func WithDraft(d draft.Draft) Option {
	return func(f *Form) {
		f.draft = d.Clone()
	}
}

// WithErrors seeds the form with previously computed field errors.
func WithErrors(errs draft.FieldErrors) Option {
	return func(f *Form) {
		f.errors = errs.Clone()
	}
}

// WithPreview seeds the preview flag.
func WithPreview(on bool) Option {
	return func(f *Form) {
		f.preview = on
	}
}

// WithLogger attaches a zap logger.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Form) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithMaxFileSize overrides DefaultMaxFileSize.
func WithMaxFileSize(n int64) Option {
	return func(f *Form) {
		if n > 0 {
			f.maxFileSize = n
		}
	}
}

// New constructs an idle form with an empty draft.
func New(submitter Submitter, opts ...Option) *Form {
	f := &Form{
		draft:       draft.New(),
		errors:      draft.FieldErrors{},
		status:      StatusIdle,
		submitter:   submitter,
		logger:      zap.NewNop(),
		maxFileSize: DefaultMaxFileSize,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Snapshot returns a copy of the current state.
func (f *Form) Snapshot() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return State{
		Draft:      f.draft.Clone(),
		Errors:     f.errors.Clone(),
		Status:     f.status,
		Preview:    f.preview,
		FormErrors: append([]string(nil), f.formErrors...),
	}
}

// edit applies fn while idle. fn returns the next draft.
func (f *Form) edit(fn func(d draft.Draft) draft.Draft) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status != StatusIdle {
		return ErrBusy
	}
	f.draft = fn(f.draft)
	return nil
}

func (f *Form) SetTitle(title string) error {
	return f.edit(func(d draft.Draft) draft.Draft {
		f.errors.Clear(draft.TitleKey())
		return d.WithTitle(title)
	})
}

func (f *Form) SetRecipientEmail(email string) error {
	return f.edit(func(d draft.Draft) draft.Draft {
		f.errors.Clear(draft.EmailKey())
		return d.WithRecipientEmail(email)
	})
}

// SetQuestionType switches the type, which discards the questions and any
// imported file.
func (f *Form) SetQuestionType(t draft.QuestionType) error {
	return f.edit(func(d draft.Draft) draft.Draft {
		f.clearQuestionErrors()
		f.errors.Clear(draft.QuestionCountKey())
		f.errors.Clear(draft.QuestionsFileKey())
		return d.WithQuestionType(t)
	})
}

// SetInputMode switches between manual entry and file import.
func (f *Form) SetInputMode(mode draft.InputMode) error {
	return f.edit(func(d draft.Draft) draft.Draft {
		next := d.WithInputMode(mode)
		if next.Mode() != d.Mode() {
			f.clearQuestionErrors()
			f.errors.Clear(draft.QuestionsFileKey())
			if mode == draft.Manual {
				f.errors.Clear(draft.QuestionCountKey())
			}
		}
		return next
	})
}

// ClearFile detaches the imported file and returns to manual entry.
func (f *Form) ClearFile() error {
	return f.SetInputMode(draft.Manual)
}

// SetQuestionCount regenerates the question list. An invalid count is
// recorded on the count field instead of being returned.
func (f *Form) SetQuestionCount(raw string) error {
	return f.edit(func(d draft.Draft) draft.Draft {
		next, err := d.WithQuestionCount(raw)
		f.clearQuestionErrors()
		var fieldErr draft.FieldError
		if errors.As(err, &fieldErr) {
			f.errors.Set(fieldErr.Key, fieldErr.Message)
		} else {
			f.errors.Clear(draft.QuestionCountKey())
		}
		return next
	})
}

func (f *Form) SetQuestionText(i int, text string) error {
	return f.edit(func(d draft.Draft) draft.Draft {
		f.errors.Clear(draft.QuestionTextKey(i))
		return d.WithQuestionText(i, text)
	})
}

func (f *Form) SetOptionText(i, j int, text string) error {
	return f.edit(func(d draft.Draft) draft.Draft {
		f.errors.Clear(draft.OptionKey(i, j))
		f.errors.Clear(draft.DuplicateOptionsKey(i))
		return d.WithOptionText(i, j, text)
	})
}

func (f *Form) AddOption(i int) error {
	return f.edit(func(d draft.Draft) draft.Draft {
		return d.AddOption(i)
	})
}

// RemoveOption drops an option. Option errors of that question are cleared
// because the remaining options shift position.
func (f *Form) RemoveOption(i, j int) error {
	return f.edit(func(d draft.Draft) draft.Draft {
		next := d.RemoveOption(i, j)
		if len(next.Questions) > i && i >= 0 && len(next.Questions[i].Options) != len(d.Questions[i].Options) {
			for _, key := range f.errors.Keys() {
				if key.Question == i && (key.Scope == draft.ScopeOption || key.Scope == draft.ScopeDuplicateOptions) {
					f.errors.Clear(key)
				}
			}
		}
		return next
	})
}

// AttachFile reads a questions file and imports it. The form reports
// StatusImporting while the reader is consumed. Rejected files leave the
// questions untouched and return the draft.FieldError recorded on the file
// field.
func (f *Form) AttachFile(ctx context.Context, name string, r io.Reader) error {
	f.mu.Lock()
	if f.status != StatusIdle {
		f.mu.Unlock()
		return ErrBusy
	}
	if !strings.EqualFold(filepath.Ext(name), ".txt") {
		err := f.rejectFile(MessageFileNotText)
		f.mu.Unlock()
		return err
	}
	f.status = StatusImporting
	f.mu.Unlock()

	content, readErr := readLimited(ctx, r, f.maxFileSize)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = StatusIdle

	if readErr != nil {
		if errors.Is(readErr, errTooLarge) {
			return f.rejectFile(MessageFileTooLarge)
		}
		return fmt.Errorf("form: read questions file: %w", readErr)
	}

	next, err := f.draft.ImportQuestions(draft.ImportedFile{Name: filepath.Base(name), Content: content})
	var importErr *draft.ImportError
	if errors.As(err, &importErr) {
		if importErr.Reason == draft.ImportReasonTooMany {
			return f.rejectFile(MessageFileTooMany)
		}
		return f.rejectFile(MessageFileEmpty)
	}
	if err != nil {
		return err
	}

	f.draft = next
	f.clearQuestionErrors()
	f.errors.Clear(draft.QuestionsFileKey())
	f.errors.Clear(draft.QuestionCountKey())
	f.logger.Debug("questions imported",
		zap.String("file", filepath.Base(name)),
		zap.Int("questions", len(next.Questions)),
	)
	return nil
}

func (f *Form) rejectFile(message string) error {
	f.errors.Set(draft.QuestionsFileKey(), message)
	return draft.FieldError{Key: draft.QuestionsFileKey(), Message: message}
}

// TogglePreview flips between the editing form and the preview and returns
// the new flag. The draft is not touched.
func (f *Form) TogglePreview() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.preview = !f.preview
	return f.preview
}

// SetPreview sets the preview flag explicitly.
func (f *Form) SetPreview(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.preview = on
}

// Validate recomputes and stores the field errors.
func (f *Form) Validate() draft.FieldErrors {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = validation.Validate(f.draft)
	return f.errors.Clone()
}

// Submit validates the draft and, when it is clean, hands it to the
// submitter. Validation errors return ErrInvalid without any call. A
// successful submit resets the form to an empty draft; a failed one keeps
// every field so the author can retry.
func (f *Form) Submit(ctx context.Context) (submission.Outcome, error) {
	f.mu.Lock()
	if f.status != StatusIdle {
		f.mu.Unlock()
		return submission.Outcome{}, ErrBusy
	}
	f.errors = validation.Validate(f.draft)
	f.formErrors = nil
	if len(f.errors) > 0 {
		f.mu.Unlock()
		return submission.Outcome{}, ErrInvalid
	}
	if f.submitter == nil {
		f.mu.Unlock()
		return submission.Outcome{}, errors.New("form: submitter is not configured")
	}
	f.status = StatusSubmitting
	snapshot := f.draft.Clone()
	f.mu.Unlock()

	f.logger.Debug("submitting survey", zap.String("title", snapshot.Title), zap.Int("questions", len(snapshot.Questions)))
	outcome, err := f.submitter.Submit(ctx, snapshot)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = StatusIdle
	if err != nil {
		for _, key := range outcome.Errors.Fields.Keys() {
			f.errors.Set(key, outcome.Errors.Fields.Get(key))
		}
		f.formErrors = outcome.Errors.Form
		return outcome, err
	}

	f.draft = draft.New()
	f.errors = draft.FieldErrors{}
	f.preview = false
	return outcome, nil
}

// Reset discards the draft and all errors.
func (f *Form) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status != StatusIdle {
		return ErrBusy
	}
	f.draft = draft.New()
	f.errors = draft.FieldErrors{}
	f.formErrors = nil
	f.preview = false
	return nil
}

func (f *Form) clearQuestionErrors() {
	for _, key := range f.errors.Keys() {
		switch key.Scope {
		case draft.ScopeQuestionText, draft.ScopeOption, draft.ScopeDuplicateOptions:
			f.errors.Clear(key)
		}
	}
}
