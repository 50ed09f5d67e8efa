package render

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Names of the hidden inputs that carry an imported questions file between
// server-rendered requests.
const (
	HiddenFileName    = "questions_file_name"
	HiddenFileContent = "questions_file_data"
)

// HiddenField is a hidden form input emitted alongside the visible controls.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// FileFields encodes an imported file so a stateless form round trip can
// submit it again. Content is base64 encoded.
func FileFields(name string, content []byte) []HiddenField {
	return []HiddenField{
		Hidden(HiddenFileName, name),
		Hidden(HiddenFileContent, base64.StdEncoding.EncodeToString(content)),
	}
}

// DecodeFileFields reverses FileFields. ok is false when no file was carried.
func DecodeFileFields(values url.Values) (name string, content []byte, ok bool, err error) {
	encoded := values.Get(HiddenFileContent)
	if encoded == "" {
		return "", nil, false, nil
	}
	content, err = base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, false, fmt.Errorf("render: decode carried file: %w", err)
	}
	return values.Get(HiddenFileName), content, true, nil
}

// MergeHiddenFields returns a copy of base with the provided fields applied.
// Empty names are ignored; later fields win on name collisions.
func MergeHiddenFields(base map[string]string, fields ...HiddenField) map[string]string {
	if len(base) == 0 && len(fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(fields))
	for key, value := range base {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			out[trimmed] = value
		}
	}
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}
		out[name] = field.Value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedHiddenFields orders hidden fields by name for deterministic output.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	if len(fields) == 0 {
		return nil
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		if strings.TrimSpace(name) != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	result := make([]HiddenField, 0, len(names))
	for _, name := range names {
		result = append(result, HiddenField{Name: strings.TrimSpace(name), Value: fields[name]})
	}
	return result
}
