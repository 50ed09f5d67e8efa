package validation

import (
	"strings"

	"github.com/goliatone/go-surveyform/pkg/draft"
)

// Issue is a single validation problem addressed by dotted field path.
type Issue struct {
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// Result captures validation outcomes for JSON and CLI output.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// Summarize flattens errs into a Result ordered the way the form lays out its
// fields.
func Summarize(errs draft.FieldErrors) Result {
	result := Result{Valid: len(errs) == 0}
	for _, key := range errs.Keys() {
		result.Issues = append(result.Issues, Issue{
			Path:    key.Path(),
			Message: errs.Get(key),
		})
	}
	return result
}

// Check validates d and summarizes the outcome in one step.
func Check(d draft.Draft) Result {
	return Summarize(Validate(d))
}

// FieldPathFromPointer converts a JSON pointer such as
// "/questions/0/options/1" or "#/properties/title" into the dotted path used
// by Issue.Path.
func FieldPathFromPointer(pointer string) string {
	trimmed := strings.TrimSpace(pointer)
	trimmed = strings.TrimPrefix(trimmed, "#")
	trimmed = strings.TrimPrefix(trimmed, "/")
	if trimmed == "" {
		return ""
	}

	parts := strings.Split(trimmed, "/")
	out := make([]string, 0, len(parts))
	for idx := 0; idx < len(parts); idx++ {
		segment := unescapePointer(parts[idx])
		switch segment {
		case "":
			continue
		case "properties":
			if idx+1 < len(parts) {
				out = append(out, unescapePointer(parts[idx+1]))
				idx++
			}
		case "items":
			continue
		default:
			out = append(out, segment)
		}
	}
	return strings.Join(out, ".")
}

// JoinPath renders pointer segments, as reported by schema validators, in
// dotted form.
func JoinPath(segments []string) string {
	if len(segments) == 0 {
		return ""
	}
	return FieldPathFromPointer("/" + strings.Join(segments, "/"))
}

func unescapePointer(segment string) string {
	segment = strings.ReplaceAll(segment, "~1", "/")
	return strings.ReplaceAll(segment, "~0", "~")
}
