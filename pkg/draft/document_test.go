package draft_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-surveyform/pkg/draft"
)

func TestDocumentApply_InlineMultipleChoice(t *testing.T) {
	doc, err := draft.ParseDocument([]byte(`
title: Team lunch
recipient_email: team@example.com
question_type: multiple_choice
questions:
  - text: Where?
    options: [Pizza, Sushi, Tacos]
  - text: When?
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	d, err := doc.Apply(draft.New(), nil)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	want := []draft.Question{
		{Text: "Where?", Options: []string{"Pizza", "Sushi", "Tacos"}},
		{Text: "When?", Options: []string{"", ""}},
	}
	if diff := cmp.Diff(want, d.Questions); diff != "" {
		t.Fatalf("questions mismatch (-want +got):\n%s", diff)
	}
	if d.QuestionCount != "2" || d.Title != "Team lunch" || d.RecipientEmail != "team@example.com" {
		t.Fatalf("unexpected draft fields: %#v", d)
	}
}

func TestLoadDocument_QuestionsFileRelativeToDocument(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "questions.txt"), []byte("One\nTwo\n"), 0o644); err != nil {
		t.Fatalf("write questions: %v", err)
	}
	docPath := filepath.Join(dir, "draft.yaml")
	if err := os.WriteFile(docPath, []byte("title: T\nrecipient_email: a@b.com\nquestions_file: questions.txt\n"), 0o644); err != nil {
		t.Fatalf("write doc: %v", err)
	}

	doc, err := draft.LoadDocument(docPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	d, err := doc.Apply(draft.New(), nil)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	if d.Mode() != draft.FileImport || d.File == nil || d.File.Name != "questions.txt" {
		t.Fatalf("expected attached questions file, got %#v", d.File)
	}
	if diff := cmp.Diff([]draft.Question{{Text: "One"}, {Text: "Two"}}, d.Questions); diff != "" {
		t.Fatalf("questions mismatch (-want +got):\n%s", diff)
	}
}

func TestDocumentApply_Errors(t *testing.T) {
	if _, err := (draft.Document{QuestionType: "essay"}).Apply(draft.New(), nil); err == nil {
		t.Fatalf("expected unknown question type error")
	}

	empty := func(string) ([]byte, error) { return []byte("\n\n"), nil }
	_, err := (draft.Document{QuestionsFile: "blank.txt"}).Apply(draft.New(), empty)
	var importErr *draft.ImportError
	if !errors.As(err, &importErr) {
		t.Fatalf("expected ImportError, got %v", err)
	}

	if _, err := draft.ParseDocument([]byte("  ")); err == nil {
		t.Fatalf("expected empty document error")
	}
}

func TestSaveDocument_ReloadsSameQuestions(t *testing.T) {
	d, err := draft.New().
		WithTitle("Team lunch").
		WithRecipientEmail("team@example.com").
		WithQuestionType(draft.MultipleChoice).
		ImportQuestions(draft.ImportedFile{Name: "q.txt", Content: []byte("Where?\nWhen?")})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	d = d.WithOptionText(0, 0, "Pizza").WithOptionText(0, 1, "Sushi").AddOption(0).WithOptionText(0, 2, "Tacos")

	path := filepath.Join(t.TempDir(), "saved.yaml")
	if err := draft.SaveDocument(path, d); err != nil {
		t.Fatalf("save: %v", err)
	}
	doc, err := draft.LoadDocument(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.QuestionsFile != "" {
		t.Fatalf("imported file must be inlined, got %q", doc.QuestionsFile)
	}
	reloaded, err := doc.Apply(draft.New(), nil)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	if diff := cmp.Diff(d.Questions, reloaded.Questions); diff != "" {
		t.Fatalf("questions mismatch (-want +got):\n%s", diff)
	}
	if reloaded.Mode() != draft.Manual || reloaded.Title != "Team lunch" {
		t.Fatalf("expected manual draft with title, got %#v", reloaded)
	}
}
