// Package tui drives the survey authoring form from an interactive terminal.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goliatone/go-surveyform/pkg/draft"
	"github.com/goliatone/go-surveyform/pkg/form"
	"github.com/goliatone/go-surveyform/pkg/notify"
	"github.com/goliatone/go-surveyform/pkg/preview"
	"github.com/goliatone/go-surveyform/pkg/render"
	"github.com/goliatone/go-surveyform/pkg/submission"
)

type action string

const (
	actionPreview      action = "Preview survey"
	actionEditDetails  action = "Edit title and recipient"
	actionEditQuestion action = "Edit a question"
	actionEditOption   action = "Edit an option"
	actionAddOption    action = "Add an option"
	actionRemoveOption action = "Remove an option"
	actionRestart      action = "Start the questions over"
	actionSubmit       action = "Create survey"
	actionQuit         action = "Quit without saving"
)

const pastedFileName = "questions.txt"

var (
	typeChoices = []draft.QuestionType{draft.ShortAnswer, draft.MultipleChoice}
	modeLabels  = []string{"Enter questions manually", "Import questions from a .txt file", "Paste questions"}
)

// Session walks an author through a form: details, questions, then an action
// menu until the survey is created or the author quits. It also implements
// notify.Sink so submission results are printed inline.
type Session struct {
	driver  PromptDriver
	preview render.Renderer
	open    func(path string) (io.ReadCloser, error)
	theme   Theme
}

var _ notify.Sink = (*Session)(nil)

// New constructs a Session. Without WithPromptDriver the survey/v2 terminal
// driver is used.
func New(options ...Option) *Session {
	s := &Session{
		open:  openFile,
		theme: DefaultTheme,
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.driver == nil {
		s.driver = NewSurveyDriver()
	}
	return s
}

// Notify prints a notification.
func (s *Session) Notify(kind notify.Kind, message string) {
	prefix := s.theme.SuccessPrefix
	if kind == notify.Danger {
		prefix = s.theme.ErrorPrefix
	}
	_ = s.driver.Info(context.Background(), prefix+message)
}

// Run drives f until a survey is created. It returns ErrAborted when the
// author quits.
func (s *Session) Run(ctx context.Context, f *form.Form) (submission.Outcome, error) {
	if f == nil {
		return submission.Outcome{}, errors.New("tui: form is required")
	}
	if err := s.promptDetails(ctx, f); err != nil {
		return submission.Outcome{}, err
	}
	if err := s.promptType(ctx, f); err != nil {
		return submission.Outcome{}, err
	}
	if err := s.promptQuestions(ctx, f, true); err != nil {
		return submission.Outcome{}, err
	}
	return s.menu(ctx, f)
}

func (s *Session) promptDetails(ctx context.Context, f *form.Form) error {
	d := f.Snapshot().Draft
	title, err := s.driver.Input(ctx, InputConfig{Message: "Survey title", Default: d.Title})
	if err != nil {
		return err
	}
	if err := f.SetTitle(title); err != nil {
		return err
	}
	email, err := s.driver.Input(ctx, InputConfig{
		Message: "Recipient email",
		Default: d.RecipientEmail,
		Help:    "This email will receive the survey link after approval.",
	})
	if err != nil {
		return err
	}
	return f.SetRecipientEmail(email)
}

func (s *Session) promptType(ctx context.Context, f *form.Form) error {
	current := f.Snapshot().Draft.Type()
	labels := make([]string, len(typeChoices))
	defaultIdx := 0
	for i, t := range typeChoices {
		labels[i] = t.Label()
		if t == current {
			defaultIdx = i
		}
	}
	idx, err := s.driver.Select(ctx, SelectConfig{Message: "Question type", Options: labels, DefaultIndex: defaultIdx})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(typeChoices) {
		return ErrAborted
	}
	if typeChoices[idx] == current {
		return nil
	}
	return f.SetQuestionType(typeChoices[idx])
}

// promptQuestions fills the question list. When keepExisting is set and the
// draft already has questions, the author may keep them.
func (s *Session) promptQuestions(ctx context.Context, f *form.Form, keepExisting bool) error {
	d := f.Snapshot().Draft
	if keepExisting && len(d.Questions) > 0 {
		keep, err := s.driver.Confirm(ctx, ConfirmConfig{
			Message: fmt.Sprintf("Keep the %d existing questions?", len(d.Questions)),
			Default: true,
		})
		if err != nil {
			return err
		}
		if keep {
			return nil
		}
	}

	defaultMode := 0
	if d.Mode() == draft.FileImport {
		defaultMode = 1
	}
	idx, err := s.driver.Select(ctx, SelectConfig{Message: "How do you want to add questions?", Options: modeLabels, DefaultIndex: defaultMode})
	if err != nil {
		return err
	}
	switch idx {
	case 0:
		if err := f.SetInputMode(draft.Manual); err != nil {
			return err
		}
		if err := s.promptCount(ctx, f); err != nil {
			return err
		}
		if err := s.promptTexts(ctx, f); err != nil {
			return err
		}
	case 1:
		if err := f.SetInputMode(draft.FileImport); err != nil {
			return err
		}
		if err := s.promptFile(ctx, f); err != nil {
			return err
		}
	case 2:
		if err := f.SetInputMode(draft.FileImport); err != nil {
			return err
		}
		if err := s.promptPaste(ctx, f); err != nil {
			return err
		}
	default:
		return ErrAborted
	}
	return s.promptAllOptions(ctx, f)
}

func (s *Session) promptCount(ctx context.Context, f *form.Form) error {
	for {
		raw, err := s.driver.Input(ctx, InputConfig{Message: "Number of questions", Default: f.Snapshot().Draft.QuestionCount})
		if err != nil {
			return err
		}
		if err := f.SetQuestionCount(raw); err != nil {
			return err
		}
		if msg := f.Snapshot().Error(draft.QuestionCountKey()); msg != "" {
			s.errorf(ctx, msg)
			continue
		}
		return nil
	}
}

func (s *Session) promptTexts(ctx context.Context, f *form.Form) error {
	for i := range f.Snapshot().Draft.Questions {
		text, err := s.driver.Input(ctx, InputConfig{Message: fmt.Sprintf("Question %d", i+1)})
		if err != nil {
			return err
		}
		if err := f.SetQuestionText(i, text); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) promptFile(ctx context.Context, f *form.Form) error {
	for {
		path, err := s.driver.Input(ctx, InputConfig{
			Message: "Path to questions file",
			Help:    "Plain text, one question per line. Blank lines are ignored.",
		})
		if err != nil {
			return err
		}
		path = strings.TrimSpace(path)
		file, err := s.open(path)
		if err != nil {
			s.errorf(ctx, "Could not open "+path+": "+err.Error())
			continue
		}
		err = f.AttachFile(ctx, path, file)
		file.Close()

		var fieldErr draft.FieldError
		if errors.As(err, &fieldErr) {
			s.errorf(ctx, fieldErr.Message)
			continue
		}
		if err != nil {
			return err
		}
		s.infof(ctx, fmt.Sprintf("Imported %d questions.", len(f.Snapshot().Draft.Questions)))
		return nil
	}
}

// promptPaste imports a pasted list as if it were a questions file named
// pastedFileName.
func (s *Session) promptPaste(ctx context.Context, f *form.Form) error {
	for {
		content, err := s.driver.TextArea(ctx, TextAreaConfig{
			Message: "Questions",
			Help:    "One question per line. Blank lines are ignored.",
		})
		if err != nil {
			return err
		}
		err = f.AttachFile(ctx, pastedFileName, strings.NewReader(content))
		var fieldErr draft.FieldError
		if errors.As(err, &fieldErr) {
			s.errorf(ctx, fieldErr.Message)
			continue
		}
		if err != nil {
			return err
		}
		s.infof(ctx, fmt.Sprintf("Imported %d questions.", len(f.Snapshot().Draft.Questions)))
		return nil
	}
}

func (s *Session) promptAllOptions(ctx context.Context, f *form.Form) error {
	d := f.Snapshot().Draft
	if d.Type() != draft.MultipleChoice {
		return nil
	}
	for i, q := range d.Questions {
		for j := range q.Options {
			if err := s.promptOption(ctx, f, i, j); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Session) promptOption(ctx context.Context, f *form.Form, i, j int) error {
	d := f.Snapshot().Draft
	value, err := s.driver.Input(ctx, InputConfig{
		Message: fmt.Sprintf("Question %d, option %d", i+1, j+1),
		Default: d.Questions[i].Options[j],
		Help:    d.Questions[i].Text,
	})
	if err != nil {
		return err
	}
	return f.SetOptionText(i, j, value)
}

func (s *Session) menu(ctx context.Context, f *form.Form) (submission.Outcome, error) {
	for {
		actions := s.actions(f.Snapshot().Draft)
		labels := make([]string, len(actions))
		for i, a := range actions {
			labels[i] = string(a)
		}
		idx, err := s.driver.Select(ctx, SelectConfig{Message: "What next?", Options: labels, DefaultIndex: 0})
		if err != nil {
			return submission.Outcome{}, err
		}
		if idx < 0 || idx >= len(actions) {
			return submission.Outcome{}, ErrAborted
		}

		switch actions[idx] {
		case actionSubmit:
			outcome, err := f.Submit(ctx)
			switch {
			case err == nil:
				return outcome, nil
			case errors.Is(err, form.ErrInvalid):
				s.reportErrors(ctx, f.Snapshot())
				continue
			case errors.Is(err, form.ErrBusy):
				return submission.Outcome{}, err
			default:
				if ctx.Err() != nil {
					return submission.Outcome{}, err
				}
				// The coordinator already notified; the draft is intact so
				// the author may retry.
				s.reportErrors(ctx, f.Snapshot())
				continue
			}
		case actionQuit:
			return submission.Outcome{}, ErrAborted
		default:
			if err := s.apply(ctx, f, actions[idx]); err != nil {
				return submission.Outcome{}, err
			}
		}
	}
}

func (s *Session) actions(d draft.Draft) []action {
	out := []action{actionSubmit, actionPreview, actionEditDetails}
	if len(d.Questions) > 0 && d.Mode() == draft.Manual {
		out = append(out, actionEditQuestion)
	}
	if d.Type() == draft.MultipleChoice && len(d.Questions) > 0 {
		out = append(out, actionEditOption, actionAddOption, actionRemoveOption)
	}
	return append(out, actionRestart, actionQuit)
}

func (s *Session) apply(ctx context.Context, f *form.Form, a action) error {
	switch a {
	case actionPreview:
		return s.showPreview(ctx, f)
	case actionEditDetails:
		return s.promptDetails(ctx, f)
	case actionRestart:
		if err := s.promptType(ctx, f); err != nil {
			return err
		}
		return s.promptQuestions(ctx, f, false)
	case actionEditQuestion:
		i, ok, err := s.pickQuestion(ctx, f)
		if err != nil || !ok {
			return err
		}
		current := f.Snapshot().Draft.Questions[i].Text
		text, err := s.driver.Input(ctx, InputConfig{Message: fmt.Sprintf("Question %d", i+1), Default: current})
		if err != nil {
			return err
		}
		return f.SetQuestionText(i, text)
	case actionEditOption:
		i, ok, err := s.pickQuestion(ctx, f)
		if err != nil || !ok {
			return err
		}
		j, ok, err := s.pickOption(ctx, f, i)
		if err != nil || !ok {
			return err
		}
		return s.promptOption(ctx, f, i, j)
	case actionAddOption:
		i, ok, err := s.pickQuestion(ctx, f)
		if err != nil || !ok {
			return err
		}
		if err := f.AddOption(i); err != nil {
			return err
		}
		return s.promptOption(ctx, f, i, len(f.Snapshot().Draft.Questions[i].Options)-1)
	case actionRemoveOption:
		i, ok, err := s.pickQuestion(ctx, f)
		if err != nil || !ok {
			return err
		}
		if len(f.Snapshot().Draft.Questions[i].Options) <= 2 {
			s.errorf(ctx, "A question needs at least two options.")
			return nil
		}
		j, ok, err := s.pickOption(ctx, f, i)
		if err != nil || !ok {
			return err
		}
		return f.RemoveOption(i, j)
	}
	return nil
}

func (s *Session) pickQuestion(ctx context.Context, f *form.Form) (int, bool, error) {
	questions := f.Snapshot().Draft.Questions
	labels := make([]string, len(questions))
	for i, q := range questions {
		labels[i] = strconv.Itoa(i+1) + ". " + blankOr(q.Text, "(no text)")
	}
	idx, err := s.driver.Select(ctx, SelectConfig{Message: "Which question?", Options: labels, PageSize: 10})
	if err != nil {
		return 0, false, err
	}
	return idx, idx >= 0 && idx < len(questions), nil
}

func (s *Session) pickOption(ctx context.Context, f *form.Form, i int) (int, bool, error) {
	options := f.Snapshot().Draft.Questions[i].Options
	labels := make([]string, len(options))
	for j, opt := range options {
		labels[j] = strconv.Itoa(j+1) + ". " + blankOr(opt, "(empty)")
	}
	idx, err := s.driver.Select(ctx, SelectConfig{Message: "Which option?", Options: labels})
	if err != nil {
		return 0, false, err
	}
	return idx, idx >= 0 && idx < len(options), nil
}

func (s *Session) showPreview(ctx context.Context, f *form.Form) error {
	f.SetPreview(true)
	defer f.SetPreview(false)

	view := preview.Build(f.Snapshot().Draft)
	if s.preview == nil {
		s.infof(ctx, view.Title)
		return nil
	}
	out, err := s.preview.Render(ctx, view, render.RenderOptions{})
	if err != nil {
		return fmt.Errorf("tui: render preview: %w", err)
	}
	s.infof(ctx, strings.TrimRight(string(out), "\n"))
	return nil
}

func (s *Session) reportErrors(ctx context.Context, state form.State) {
	for _, key := range state.Errors.Keys() {
		s.errorf(ctx, state.Errors.Get(key))
	}
	for _, msg := range state.FormErrors {
		s.errorf(ctx, msg)
	}
}

func (s *Session) infof(ctx context.Context, msg string) {
	_ = s.driver.Info(ctx, s.theme.InfoPrefix+msg)
}

func (s *Session) errorf(ctx context.Context, msg string) {
	_ = s.driver.Info(ctx, s.theme.ErrorPrefix+msg)
}

func blankOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
