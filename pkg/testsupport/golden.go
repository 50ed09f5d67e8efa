// Package testsupport holds fakes and golden file helpers shared by tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-surveyform/pkg/draft"
)

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// MustLoadDraft reads a YAML draft document and applies it to an empty draft.
func MustLoadDraft(t *testing.T, path string) draft.Draft {
	t.Helper()
	doc, err := draft.LoadDocument(path)
	if err != nil {
		t.Fatalf("load draft: %v", err)
	}
	d, err := doc.Apply(draft.New(), nil)
	if err != nil {
		t.Fatalf("apply draft: %v", err)
	}
	return d
}

// MultipleChoiceDraft returns a valid two question multiple choice draft.
func MultipleChoiceDraft(t *testing.T) draft.Draft {
	t.Helper()
	d, err := draft.New().
		WithTitle("Team lunch").
		WithRecipientEmail("team@example.com").
		WithQuestionType(draft.MultipleChoice).
		WithQuestionCount("2")
	if err != nil {
		t.Fatalf("seed draft: %v", err)
	}
	return d.WithQuestionText(0, "Where?").
		WithOptionText(0, 0, "Pizza").
		WithOptionText(0, 1, "Sushi").
		WithQuestionText(1, "When?").
		WithOptionText(1, 0, "Noon").
		WithOptionText(1, 1, "One")
}
