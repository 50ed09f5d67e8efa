package draft

import (
	"sort"
	"strconv"
)

// Scope discriminates the form field a FieldKey addresses.
type Scope int

const (
	ScopeTitle Scope = iota
	ScopeEmail
	ScopeQuestionCount
	ScopeQuestionsFile
	ScopeQuestionText
	ScopeOption
	ScopeDuplicateOptions
)

// FieldKey identifies a field inside the authoring form. Question and Option
// are zero-based and only meaningful for the scopes that use them.
type FieldKey struct {
	Scope    Scope
	Question int
	Option   int
}

func TitleKey() FieldKey         { return FieldKey{Scope: ScopeTitle} }
func EmailKey() FieldKey         { return FieldKey{Scope: ScopeEmail} }
func QuestionCountKey() FieldKey { return FieldKey{Scope: ScopeQuestionCount} }
func QuestionsFileKey() FieldKey { return FieldKey{Scope: ScopeQuestionsFile} }

func QuestionTextKey(question int) FieldKey {
	return FieldKey{Scope: ScopeQuestionText, Question: question}
}

func OptionKey(question, option int) FieldKey {
	return FieldKey{Scope: ScopeOption, Question: question, Option: option}
}

func DuplicateOptionsKey(question int) FieldKey {
	return FieldKey{Scope: ScopeDuplicateOptions, Question: question}
}

// Path renders the key as the dotted path used by renderers and JSON
// payloads, matching the backend field names where one exists.
func (k FieldKey) Path() string {
	switch k.Scope {
	case ScopeTitle:
		return "title"
	case ScopeEmail:
		return "recipient_email"
	case ScopeQuestionCount:
		return "num_questions"
	case ScopeQuestionsFile:
		return "questions_file"
	case ScopeQuestionText:
		return "questions." + strconv.Itoa(k.Question) + ".text"
	case ScopeOption:
		return "questions." + strconv.Itoa(k.Question) + ".options." + strconv.Itoa(k.Option)
	case ScopeDuplicateOptions:
		return "questions." + strconv.Itoa(k.Question) + ".options"
	default:
		return ""
	}
}

func (k FieldKey) String() string { return k.Path() }

func (k FieldKey) less(other FieldKey) bool {
	if k.Scope <= ScopeQuestionsFile || other.Scope <= ScopeQuestionsFile {
		return k.Scope < other.Scope
	}
	if k.Question != other.Question {
		return k.Question < other.Question
	}
	if rankQuestionScope(k.Scope) != rankQuestionScope(other.Scope) {
		return rankQuestionScope(k.Scope) < rankQuestionScope(other.Scope)
	}
	return k.Option < other.Option
}

func rankQuestionScope(s Scope) int {
	switch s {
	case ScopeQuestionText:
		return 0
	case ScopeOption:
		return 1
	default:
		return 2
	}
}

// FieldErrors maps field keys to a single message each.
type FieldErrors map[FieldKey]string

// Set records a message; empty messages clear the key.
func (e FieldErrors) Set(key FieldKey, message string) {
	if message == "" {
		delete(e, key)
		return
	}
	e[key] = message
}

func (e FieldErrors) Get(key FieldKey) string {
	return e[key]
}

func (e FieldErrors) Has(key FieldKey) bool {
	_, ok := e[key]
	return ok
}

func (e FieldErrors) Clear(key FieldKey) {
	delete(e, key)
}

// Keys returns the keys in form order: top-level fields first, then each
// question's text, options and duplicate marker.
func (e FieldErrors) Keys() []FieldKey {
	keys := make([]FieldKey, 0, len(e))
	for key := range e {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].less(keys[j])
	})
	return keys
}

// Paths flattens the errors into dotted paths, the shape renderers and the
// JSON API consume.
func (e FieldErrors) Paths() map[string][]string {
	if len(e) == 0 {
		return nil
	}
	out := make(map[string][]string, len(e))
	for key, message := range e {
		path := key.Path()
		out[path] = append(out[path], message)
	}
	return out
}

// Clone copies the map.
func (e FieldErrors) Clone() FieldErrors {
	out := make(FieldErrors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}
