package submission

import (
	"sort"
	"strings"

	"github.com/goliatone/go-surveyform/pkg/draft"
)

// ErrorMapping splits server reported errors into draft field errors and
// form-level messages.
type ErrorMapping struct {
	Fields draft.FieldErrors
	Form   []string
}

// MapServerErrors resolves backend error paths against the fields d actually
// has. Paths may use dots, slashes or JSON pointer syntax and may be wrapped
// in body/request/payload/data segments. Unknown paths become form-level
// messages so nothing is lost.
func MapServerErrors(d draft.Draft, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: draft.FieldErrors{}}
	if len(payload) == 0 {
		return mapping
	}

	known := fieldPaths(d)
	paths := make([]string, 0, len(payload))
	for rawPath := range payload {
		paths = append(paths, rawPath)
	}
	sort.Strings(paths)

	for _, rawPath := range paths {
		normalized := normalizeMessages(payload[rawPath])
		if len(normalized) == 0 {
			continue
		}
		key, ok := mapErrorPath(rawPath, known)
		if !ok {
			mapping.Form = append(mapping.Form, normalized...)
			continue
		}
		if existing := mapping.Fields.Get(key); existing != "" {
			normalized = append([]string{existing}, normalized...)
		}
		mapping.Fields.Set(key, strings.Join(normalizeMessages(normalized), " "))
	}

	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func fieldPaths(d draft.Draft) map[string]draft.FieldKey {
	keys := []draft.FieldKey{
		draft.TitleKey(),
		draft.EmailKey(),
		draft.QuestionCountKey(),
		draft.QuestionsFileKey(),
	}
	for i, q := range d.Questions {
		keys = append(keys, draft.QuestionTextKey(i), draft.DuplicateOptionsKey(i))
		for j := range q.Options {
			keys = append(keys, draft.OptionKey(i, j))
		}
	}

	out := make(map[string]draft.FieldKey, len(keys)+1)
	for _, key := range keys {
		out[key.Path()] = key
	}
	// The backend names the question list itself "questions".
	out["questions"] = draft.QuestionCountKey()
	return out
}

func mapErrorPath(raw string, known map[string]draft.FieldKey) (draft.FieldKey, bool) {
	trimmed := strings.TrimSpace(raw)
	if isFormLevelKey(trimmed) {
		return draft.FieldKey{}, false
	}
	segments := dropWrapperSegments(parsePathSegments(trimmed))
	for end := len(segments); end > 0; end-- {
		if key, ok := known[strings.Join(segments[:end], ".")]; ok {
			return key, true
		}
	}
	return draft.FieldKey{}, false
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	for strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, ".") || strings.HasPrefix(clean, "$") {
		clean = strings.TrimLeft(clean, "#/.$")
	}
	clean = strings.NewReplacer("[", ".", "]", "").Replace(clean)
	clean = strings.Trim(clean, "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

func dropWrapperSegments(segments []string) []string {
	out := segments
	for len(out) > 0 {
		switch strings.ToLower(out[0]) {
		case "body", "request", "payload", "data", "form":
			out = out[1:]
			continue
		}
		break
	}
	return out
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(key) {
	case "", ".", "/", "#", "$", "base", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
