package form_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-surveyform/pkg/client"
	"github.com/goliatone/go-surveyform/pkg/draft"
	"github.com/goliatone/go-surveyform/pkg/form"
	"github.com/goliatone/go-surveyform/pkg/submission"
	"github.com/goliatone/go-surveyform/pkg/validation"
)

type stubSubmitter struct {
	calls   []draft.Draft
	outcome submission.Outcome
	err     error
	block   chan struct{}
	started chan struct{}
}

func (s *stubSubmitter) Submit(_ context.Context, d draft.Draft) (submission.Outcome, error) {
	s.calls = append(s.calls, d)
	if s.started != nil {
		close(s.started)
	}
	if s.block != nil {
		<-s.block
	}
	return s.outcome, s.err
}

func fillValid(t *testing.T, f *form.Form) {
	t.Helper()
	steps := []error{
		f.SetTitle("Colors"),
		f.SetRecipientEmail("a@b.co"),
		f.SetQuestionType(draft.MultipleChoice),
		f.SetQuestionCount("1"),
		f.SetQuestionText(0, "Favorite Color?"),
		f.SetOptionText(0, 0, "Red"),
		f.SetOptionText(0, 1, "Blue"),
	}
	for i, err := range steps {
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
}

func TestSubmit_InvalidDoesNotCallService(t *testing.T) {
	sub := &stubSubmitter{}
	f := form.New(sub)

	_, err := f.Submit(context.Background())
	if !errors.Is(err, form.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if len(sub.calls) != 0 {
		t.Fatalf("service must not be called")
	}

	state := f.Snapshot()
	wantPaths := []string{"title", "recipient_email", "num_questions"}
	var gotPaths []string
	for _, key := range state.Errors.Keys() {
		gotPaths = append(gotPaths, key.Path())
	}
	if diff := cmp.Diff(wantPaths, gotPaths); diff != "" {
		t.Fatalf("error paths mismatch (-want +got):\n%s", diff)
	}
	if state.Status != form.StatusIdle {
		t.Fatalf("expected idle status, got %s", state.Status)
	}
}

func TestSubmit_SuccessResetsDraft(t *testing.T) {
	sub := &stubSubmitter{outcome: submission.Outcome{Survey: client.Survey{ID: 1}, Redirect: "/surveys/1"}}
	f := form.New(sub)
	fillValid(t, f)
	f.TogglePreview()

	outcome, err := f.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if outcome.Redirect != "/surveys/1" {
		t.Fatalf("unexpected redirect %q", outcome.Redirect)
	}
	if len(sub.calls) != 1 || sub.calls[0].Title != "Colors" {
		t.Fatalf("unexpected submitter calls %+v", sub.calls)
	}

	state := f.Snapshot()
	if diff := cmp.Diff(draft.New(), state.Draft); diff != "" {
		t.Fatalf("expected fresh draft (-want +got):\n%s", diff)
	}
	if state.Preview || len(state.Errors) != 0 {
		t.Fatalf("expected clean state, got %+v", state)
	}
}

func TestSubmit_FailureKeepsDraft(t *testing.T) {
	sub := &stubSubmitter{
		err: errors.New("submission: create survey: boom"),
		outcome: submission.Outcome{
			Message: "Server error",
			Errors: submission.ErrorMapping{
				Fields: draft.FieldErrors{draft.EmailKey(): "value is not a valid email address"},
				Form:   []string{"Try again later"},
			},
		},
	}
	f := form.New(sub)
	fillValid(t, f)
	before := f.Snapshot().Draft

	if _, err := f.Submit(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	state := f.Snapshot()
	if diff := cmp.Diff(before, state.Draft); diff != "" {
		t.Fatalf("draft changed on failure (-want +got):\n%s", diff)
	}
	if state.Error(draft.EmailKey()) != "value is not a valid email address" {
		t.Fatalf("expected server field error, got %v", state.Errors.Paths())
	}
	if diff := cmp.Diff([]string{"Try again later"}, state.FormErrors); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmit_FromPreviewIsIdentical(t *testing.T) {
	sub := &stubSubmitter{}
	f := form.New(sub)
	fillValid(t, f)
	if !f.TogglePreview() {
		t.Fatalf("expected preview on")
	}
	if _, err := f.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(sub.calls) != 1 {
		t.Fatalf("expected one call")
	}
}

func TestBusyWhileSubmitting(t *testing.T) {
	sub := &stubSubmitter{block: make(chan struct{}), started: make(chan struct{})}
	f := form.New(sub)
	fillValid(t, f)

	done := make(chan error, 1)
	go func() {
		_, err := f.Submit(context.Background())
		done <- err
	}()
	<-sub.started

	if got := f.Snapshot().Status; got != form.StatusSubmitting {
		t.Fatalf("expected submitting status, got %s", got)
	}
	if err := f.SetTitle("changed"); !errors.Is(err, form.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if _, err := f.Submit(context.Background()); !errors.Is(err, form.ErrBusy) {
		t.Fatalf("expected ErrBusy for second submit, got %v", err)
	}
	if err := f.AttachFile(context.Background(), "q.txt", strings.NewReader("Q")); !errors.Is(err, form.ErrBusy) {
		t.Fatalf("expected ErrBusy for import, got %v", err)
	}

	close(sub.block)
	if err := <-done; err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(sub.calls) != 1 {
		t.Fatalf("expected exactly one service call, got %d", len(sub.calls))
	}
}

func TestEditingClearsFieldError(t *testing.T) {
	f := form.New(&stubSubmitter{})
	_, _ = f.Submit(context.Background())
	if !f.Snapshot().Errors.Has(draft.TitleKey()) {
		t.Fatalf("expected title error")
	}
	if err := f.SetTitle("x"); err != nil {
		t.Fatalf("set title: %v", err)
	}
	state := f.Snapshot()
	if state.Errors.Has(draft.TitleKey()) {
		t.Fatalf("title error should clear on edit")
	}
	if !state.Errors.Has(draft.EmailKey()) {
		t.Fatalf("other errors must stay")
	}
}

func TestSetQuestionCount_RecordsError(t *testing.T) {
	f := form.New(&stubSubmitter{})
	if err := f.SetQuestionCount("0"); err != nil {
		t.Fatalf("set count: %v", err)
	}
	if got := f.Snapshot().Error(draft.QuestionCountKey()); got != draft.MessageInvalidCount {
		t.Fatalf("unexpected count error %q", got)
	}
	_ = f.SetQuestionCount("2")
	state := f.Snapshot()
	if state.Errors.Has(draft.QuestionCountKey()) || len(state.Draft.Questions) != 2 {
		t.Fatalf("expected cleared error and 2 questions, got %+v", state)
	}
}

func TestAttachFile(t *testing.T) {
	f := form.New(&stubSubmitter{})
	_ = f.SetInputMode(draft.FileImport)

	err := f.AttachFile(context.Background(), "questions.csv", strings.NewReader("Q1"))
	var fieldErr draft.FieldError
	if !errors.As(err, &fieldErr) || fieldErr.Message != form.MessageFileNotText {
		t.Fatalf("expected .txt rejection, got %v", err)
	}

	err = f.AttachFile(context.Background(), "blank.txt", strings.NewReader("  \n \n"))
	if !errors.As(err, &fieldErr) || fieldErr.Message != form.MessageFileEmpty {
		t.Fatalf("expected empty file rejection, got %v", err)
	}
	if state := f.Snapshot(); len(state.Draft.Questions) != 0 || state.Draft.HasFile() {
		t.Fatalf("questions must stay untouched on rejection")
	}

	if err := f.AttachFile(context.Background(), "dir/questions.TXT", strings.NewReader("Q1\nQ2\n\n")); err != nil {
		t.Fatalf("attach: %v", err)
	}
	state := f.Snapshot()
	if state.Draft.QuestionCount != "2" || state.Draft.File.Name != "questions.TXT" {
		t.Fatalf("unexpected draft %+v", state.Draft)
	}
	if state.Errors.Has(draft.QuestionsFileKey()) || state.Status != form.StatusIdle {
		t.Fatalf("expected clean idle state, got %+v", state)
	}

	if err := f.ClearFile(); err != nil {
		t.Fatalf("clear file: %v", err)
	}
	if state := f.Snapshot(); state.Draft.HasFile() || state.Draft.Mode() != draft.Manual {
		t.Fatalf("expected manual mode without file")
	}
}

func TestAttachFile_TooManyQuestions(t *testing.T) {
	f := form.New(&stubSubmitter{})
	_ = f.SetInputMode(draft.FileImport)

	content := strings.Repeat("Q\n", draft.MaxQuestions+1)
	err := f.AttachFile(context.Background(), "many.txt", strings.NewReader(content))
	var fieldErr draft.FieldError
	if !errors.As(err, &fieldErr) || fieldErr.Message != form.MessageFileTooMany {
		t.Fatalf("expected too many questions rejection, got %v", err)
	}
	if state := f.Snapshot(); len(state.Draft.Questions) != 0 || state.Draft.HasFile() {
		t.Fatalf("questions must stay untouched on rejection")
	}
}

func TestAttachFile_TooLarge(t *testing.T) {
	f := form.New(&stubSubmitter{}, form.WithMaxFileSize(4))
	err := f.AttachFile(context.Background(), "q.txt", strings.NewReader("Question one"))
	var fieldErr draft.FieldError
	if !errors.As(err, &fieldErr) || fieldErr.Message != form.MessageFileTooLarge {
		t.Fatalf("expected size rejection, got %v", err)
	}
}

func TestTogglePreview_DoesNotTouchDraft(t *testing.T) {
	f := form.New(&stubSubmitter{})
	fillValid(t, f)
	before := f.Snapshot()

	f.TogglePreview()
	f.TogglePreview()

	after := f.Snapshot()
	if after.Preview {
		t.Fatalf("expected preview off after two toggles")
	}
	if diff := cmp.Diff(before.Draft, after.Draft); diff != "" {
		t.Fatalf("draft changed (-want +got):\n%s", diff)
	}
}

func TestRemoveOption_ClearsShiftedErrors(t *testing.T) {
	f := form.New(&stubSubmitter{})
	fillValid(t, f)
	_ = f.AddOption(0)
	_, _ = f.Submit(context.Background())
	if !f.Snapshot().Errors.Has(draft.OptionKey(0, 2)) {
		t.Fatalf("expected error on the empty third option")
	}
	if err := f.RemoveOption(0, 2); err != nil {
		t.Fatalf("remove: %v", err)
	}
	state := f.Snapshot()
	if len(state.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", state.Errors.Paths())
	}
	if got := validation.Validate(state.Draft); len(got) != 0 {
		t.Fatalf("draft should now be valid, got %v", got.Paths())
	}
}
