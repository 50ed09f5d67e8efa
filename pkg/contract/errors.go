package contract

import (
	"errors"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Issue is a single schema violation addressed by JSON pointer.
type Issue struct {
	Pointer []string
	Message string
}

// Path renders the pointer in dotted form.
func (i Issue) Path() string {
	return strings.Join(i.Pointer, ".")
}

// ContractError reports a request body that does not satisfy the backend
// contract.
type ContractError struct {
	Operation string
	Issues    []Issue
}

func (e *ContractError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if path := issue.Path(); path != "" {
			parts = append(parts, path+": "+issue.Message)
			continue
		}
		parts = append(parts, issue.Message)
	}
	return "contract: " + e.Operation + ": " + strings.Join(parts, "; ")
}

func issuesFrom(err error) []Issue {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		var out []Issue
		for _, inner := range multi {
			out = append(out, issuesFrom(inner)...)
		}
		return out
	}

	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		return []Issue{{
			Pointer: schemaErr.JSONPointer(),
			Message: strings.TrimSpace(schemaErr.Reason),
		}}
	}
	return []Issue{{Message: strings.TrimSpace(err.Error())}}
}
