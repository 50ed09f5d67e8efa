package tui_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-surveyform/pkg/client"
	"github.com/goliatone/go-surveyform/pkg/draft"
	"github.com/goliatone/go-surveyform/pkg/form"
	"github.com/goliatone/go-surveyform/pkg/renderers/text"
	"github.com/goliatone/go-surveyform/pkg/renderers/tui"
	"github.com/goliatone/go-surveyform/pkg/submission"
	"github.com/goliatone/go-surveyform/pkg/testsupport"
)

type stubDriver struct {
	inputs   []string
	selects  []int
	confirms []bool

	prompts []string
	info    []string
}

func (d *stubDriver) Input(_ context.Context, cfg tui.InputConfig) (string, error) {
	d.prompts = append(d.prompts, cfg.Message)
	if len(d.inputs) == 0 {
		return "", tui.ErrAborted
	}
	v := d.inputs[0]
	d.inputs = d.inputs[1:]
	return v, nil
}

func (d *stubDriver) Confirm(_ context.Context, cfg tui.ConfirmConfig) (bool, error) {
	d.prompts = append(d.prompts, cfg.Message)
	if len(d.confirms) == 0 {
		return false, tui.ErrAborted
	}
	v := d.confirms[0]
	d.confirms = d.confirms[1:]
	return v, nil
}

func (d *stubDriver) Select(_ context.Context, cfg tui.SelectConfig) (int, error) {
	d.prompts = append(d.prompts, cfg.Message)
	if len(d.selects) == 0 {
		return 0, tui.ErrAborted
	}
	v := d.selects[0]
	d.selects = d.selects[1:]
	return v, nil
}

func (d *stubDriver) TextArea(_ context.Context, cfg tui.TextAreaConfig) (string, error) {
	return d.Input(context.Background(), tui.InputConfig{Message: cfg.Message})
}

func (d *stubDriver) Info(_ context.Context, msg string) error {
	d.info = append(d.info, msg)
	return nil
}

func (d *stubDriver) printed(substr string) bool {
	for _, line := range d.info {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

func newSession(t *testing.T, driver *stubDriver, svc *testsupport.FakeService, opts ...tui.Option) (*tui.Session, *form.Form) {
	t.Helper()
	session := tui.New(append([]tui.Option{tui.WithPromptDriver(driver)}, opts...)...)
	coordinator := submission.New(svc, session)
	return session, form.New(coordinator)
}

func TestSessionRun_ManualShortAnswer(t *testing.T) {
	driver := &stubDriver{
		inputs:  []string{"Onboarding", "hr@example.com", "0", "2", "How was day one?", "Anything missing?"},
		selects: []int{0, 0, 0},
	}
	svc := testsupport.NewFakeService()
	session, f := newSession(t, driver, svc)

	outcome, err := session.Run(context.Background(), f)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if outcome.Redirect != "/surveys/1" {
		t.Fatalf("unexpected redirect %q", outcome.Redirect)
	}
	if !driver.printed(draft.MessageInvalidCount) {
		t.Fatalf("expected count error to be printed, got %v", driver.info)
	}
	if !driver.printed(submission.MessageCreated) {
		t.Fatalf("expected success notification, got %v", driver.info)
	}

	want := client.NewSurvey{
		Title:          "Onboarding",
		QuestionType:   "fillup",
		RecipientEmail: "hr@example.com",
		Questions: []client.Question{
			{Text: "How was day one?"},
			{Text: "Anything missing?"},
		},
	}
	if len(svc.Requests) != 1 {
		t.Fatalf("expected one create, got %d", len(svc.Requests))
	}
	if diff := cmp.Diff(want, svc.Requests[0].Survey); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
	if svc.Requests[0].Multipart {
		t.Fatalf("manual draft must be sent as JSON")
	}
}

func TestSessionRun_MultipleChoiceImport(t *testing.T) {
	files := map[string]string{
		"empty.txt":     "\n \n",
		"questions.txt": "Where?\nWhen?\n",
	}
	opener := func(path string) (io.ReadCloser, error) {
		content, ok := files[path]
		if !ok {
			return nil, errors.New("no such file")
		}
		return io.NopCloser(strings.NewReader(content)), nil
	}
	driver := &stubDriver{
		inputs: []string{
			"Lunch", "team@example.com",
			"missing.txt", "empty.txt", "questions.txt",
			"Pizza", "Sushi", "Noon", "One",
		},
		selects: []int{1, 1, 0},
	}
	svc := testsupport.NewFakeService()
	session, f := newSession(t, driver, svc, tui.WithFileOpener(opener))

	if _, err := session.Run(context.Background(), f); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !driver.printed("Could not open missing.txt") || !driver.printed(form.MessageFileEmpty) {
		t.Fatalf("expected file errors to be printed, got %v", driver.info)
	}

	req := svc.Requests[0]
	if !req.Multipart || req.File == nil || req.File.Name != "questions.txt" {
		t.Fatalf("expected multipart request with file, got %#v", req)
	}
	want := []client.Question{
		{Text: "Where?", Options: []string{"Pizza", "Sushi"}},
		{Text: "When?", Options: []string{"Noon", "One"}},
	}
	if diff := cmp.Diff(want, req.Survey.Questions); diff != "" {
		t.Fatalf("questions mismatch (-want +got):\n%s", diff)
	}
}

func TestSessionRun_InvalidSubmitThenQuit(t *testing.T) {
	driver := &stubDriver{
		inputs:  []string{"", "not-an-email", "1", "Q"},
		selects: []int{0, 0, 0, 5},
	}
	svc := testsupport.NewFakeService()
	session, f := newSession(t, driver, svc)

	_, err := session.Run(context.Background(), f)
	if !errors.Is(err, tui.ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	if !driver.printed("Survey title is required") || !driver.printed("Please enter a valid email address") {
		t.Fatalf("expected validation errors, got %v", driver.info)
	}
	if len(svc.Requests) != 0 {
		t.Fatalf("invalid draft must not be sent")
	}
	if got := f.Snapshot().Draft.Questions[0].Text; got != "Q" {
		t.Fatalf("draft should be kept, got %q", got)
	}
}

func TestSessionRun_ServerFailureKeepsDraft(t *testing.T) {
	driver := &stubDriver{
		inputs:  []string{"T", "a@b.com", "1", "Q"},
		selects: []int{0, 0, 0, 0, 5},
	}
	svc := testsupport.NewFakeService()
	svc.CreateErr = &client.APIError{Status: 500, Detail: "database unavailable"}
	session, f := newSession(t, driver, svc)

	_, err := session.Run(context.Background(), f)
	if !errors.Is(err, tui.ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	if len(svc.Requests) != 2 {
		t.Fatalf("expected a retry, got %d requests", len(svc.Requests))
	}
	if !driver.printed("database unavailable") {
		t.Fatalf("expected server detail, got %v", driver.info)
	}
	if f.Snapshot().Draft.Title != "T" {
		t.Fatalf("draft should survive a failed submit")
	}
}

func TestSessionRun_PreviewAndOptionEditing(t *testing.T) {
	renderer, err := text.New()
	if err != nil {
		t.Fatalf("text renderer: %v", err)
	}
	driver := &stubDriver{
		inputs: []string{
			"Colors", "a@b.com", "1", "Favorite?", "Red", "Blue",
			"Green",
		},
		// type MC, manual, menu: add option (question 1), preview, remove option (question 1, option 2), submit
		selects: []int{1, 0, 5, 0, 1, 6, 0, 1, 0},
	}
	svc := testsupport.NewFakeService()
	session, f := newSession(t, driver, svc, tui.WithPreviewRenderer(renderer))

	if _, err := session.Run(context.Background(), f); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !driver.printed("   ( ) Green") {
		t.Fatalf("expected preview output, got %v", driver.info)
	}
	want := []client.Question{{Text: "Favorite?", Options: []string{"Red", "Green"}}}
	if diff := cmp.Diff(want, svc.Requests[0].Survey.Questions); diff != "" {
		t.Fatalf("questions mismatch (-want +got):\n%s", diff)
	}
}

func TestSessionRun_PastedQuestions(t *testing.T) {
	driver := &stubDriver{
		inputs:  []string{"Retro", "team@example.com", "  \n", "What went well?\n\nWhat to change?"},
		selects: []int{0, 2, 0},
	}
	svc := testsupport.NewFakeService()
	session, f := newSession(t, driver, svc)

	if _, err := session.Run(context.Background(), f); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !driver.printed(form.MessageFileEmpty) || !driver.printed("Imported 2 questions.") {
		t.Fatalf("expected empty paste error then import, got %v", driver.info)
	}

	got := svc.Requests[0]
	if !got.Multipart || got.File == nil || got.File.Name != "questions.txt" {
		t.Fatalf("expected multipart create with pasted file, got %#v", got)
	}
	if diff := cmp.Diff("What went well?\n\nWhat to change?", string(got.File.Content)); diff != "" {
		t.Fatalf("file content mismatch (-want +got):\n%s", diff)
	}
}
