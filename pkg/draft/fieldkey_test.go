package draft_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-surveyform/pkg/draft"
)

func TestFieldErrors_KeysFollowFormOrder(t *testing.T) {
	errs := draft.FieldErrors{}
	errs.Set(draft.DuplicateOptionsKey(0), "dup")
	errs.Set(draft.OptionKey(1, 0), "opt 1.0")
	errs.Set(draft.QuestionTextKey(1), "text 1")
	errs.Set(draft.OptionKey(0, 1), "opt 0.1")
	errs.Set(draft.EmailKey(), "email")
	errs.Set(draft.TitleKey(), "title")
	errs.Set(draft.QuestionCountKey(), "count")

	var got []string
	for _, key := range errs.Keys() {
		got = append(got, key.Path())
	}
	want := []string{
		"title",
		"recipient_email",
		"num_questions",
		"questions.0.options.1",
		"questions.0.options",
		"questions.1.text",
		"questions.1.options.0",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("key order mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldErrors_SetEmptyClears(t *testing.T) {
	errs := draft.FieldErrors{}
	errs.Set(draft.TitleKey(), "required")
	errs.Set(draft.TitleKey(), "")
	if errs.Has(draft.TitleKey()) {
		t.Fatalf("expected key cleared")
	}
	if errs.Paths() != nil {
		t.Fatalf("expected nil paths for empty errors")
	}
}
