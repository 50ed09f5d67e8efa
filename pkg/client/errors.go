package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
)

// APIError is returned when the backend answers with a non-2xx status.
type APIError struct {
	Status int
	// Detail is the human readable message from the response body, if any.
	Detail string
	// Fields holds validation messages keyed by dotted field path when the
	// backend reports a list of located errors.
	Fields    map[string][]string
	RequestID string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("client: %d %s: %s", e.Status, http.StatusText(e.Status), e.Detail)
	}
	return fmt.Sprintf("client: %d %s", e.Status, http.StatusText(e.Status))
}

// TransportError wraps failures that happen before a usable response exists:
// connection problems, cancelled contexts and undecodable bodies.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return "client: " + e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// DetailMessage extracts the backend supplied message from err.
func DetailMessage(err error) (string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Detail) != "" {
		return apiErr.Detail, true
	}
	return "", false
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

type locatedError struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// decodeAPIError builds an APIError from a failed response body. The detail
// member is either a plain string or a list of located validation errors.
func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return apiErr
	}

	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		apiErr.Detail = strings.TrimSpace(text)
		return apiErr
	}

	var located []locatedError
	if err := json.Unmarshal(envelope.Detail, &located); err != nil {
		return apiErr
	}
	fields := make(map[string][]string)
	var messages []string
	for _, item := range located {
		msg := strings.TrimSpace(item.Msg)
		if msg == "" {
			continue
		}
		path := locationPath(item.Loc)
		if path != "" {
			fields[path] = append(fields[path], msg)
			messages = append(messages, path+": "+msg)
			continue
		}
		messages = append(messages, msg)
	}
	if len(fields) > 0 {
		apiErr.Fields = fields
	}
	sort.Strings(messages)
	apiErr.Detail = strings.Join(messages, "; ")
	return apiErr
}

// locationPath drops the leading body/query marker and joins the rest.
func locationPath(loc []any) string {
	segments := make([]string, 0, len(loc))
	for idx, part := range loc {
		var segment string
		switch v := part.(type) {
		case string:
			segment = v
		case float64:
			segment = strconv.Itoa(int(v))
		default:
			continue
		}
		if idx == 0 {
			switch segment {
			case "body", "query", "path", "form":
				continue
			}
		}
		segments = append(segments, segment)
	}
	return strings.Join(segments, ".")
}
