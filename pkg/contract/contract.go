// Package contract describes the survey backend API as an OpenAPI document and
// checks request bodies against it before they leave the client.
package contract

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

// Operation ids declared by the embedded document.
const (
	OpListSurveys   = "listSurveys"
	OpCreateSurvey  = "createSurvey"
	OpGetSurvey     = "getSurvey"
	OpApproveSurvey = "approveSurvey"
	OpDeleteSurvey  = "deleteSurvey"
)

//go:embed backend.yaml
var backendDocument []byte

// Operation is the method and path template of a backend route.
type Operation struct {
	ID      string
	Method  string
	Path    string
	Summary string
}

// Expand substitutes {name} placeholders in the path template.
func (o Operation) Expand(params map[string]string) string {
	path := o.Path
	for name, value := range params {
		path = strings.ReplaceAll(path, "{"+name+"}", value)
	}
	return path
}

// Contract is a loaded and validated backend description.
type Contract struct {
	doc        *openapi3.T
	operations map[string]Operation
	create     *openapi3.Schema
}

var (
	defaultOnce     sync.Once
	defaultContract *Contract
	defaultErr      error
)

// Default returns the contract built from the embedded document. It is
// loaded once per process.
func Default() (*Contract, error) {
	defaultOnce.Do(func() {
		defaultContract, defaultErr = Load(context.Background(), backendDocument)
	})
	return defaultContract, defaultErr
}

// Raw returns a copy of the embedded OpenAPI document.
func Raw() []byte {
	return append([]byte(nil), backendDocument...)
}

// Load parses and validates an OpenAPI document. The document must declare a
// createSurvey operation with a JSON request body.
func Load(ctx context.Context, raw []byte) (*Contract, error) {
	if len(raw) == 0 {
		return nil, errors.New("contract: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("contract: load document: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("contract: validate: %w", err)
	}

	c := &Contract{doc: doc, operations: make(map[string]Operation)}
	if doc.Paths != nil {
		for path, item := range doc.Paths.Map() {
			if item == nil {
				continue
			}
			for method, op := range item.Operations() {
				c.collect(strings.ToUpper(method), path, op)
			}
		}
	}

	create, ok := c.operations[OpCreateSurvey]
	if !ok {
		return nil, fmt.Errorf("contract: operation %q is not declared", OpCreateSurvey)
	}
	c.create = requestSchema(doc.Paths.Find(create.Path).GetOperation(create.Method), "application/json")
	if c.create == nil {
		return nil, fmt.Errorf("contract: operation %q has no JSON request schema", OpCreateSurvey)
	}
	return c, nil
}

func (c *Contract) collect(method, path string, op *openapi3.Operation) {
	if op == nil {
		return
	}
	id := op.OperationID
	if id == "" {
		id = strings.ToLower(method) + ":" + path
	}
	c.operations[id] = Operation{
		ID:      id,
		Method:  method,
		Path:    path,
		Summary: op.Summary,
	}
}

// Operation looks up a route by operation id.
func (c *Contract) Operation(id string) (Operation, bool) {
	if c == nil {
		return Operation{}, false
	}
	op, ok := c.operations[id]
	return op, ok
}

// Operations lists every route ordered by path then method.
func (c *Contract) Operations() []Operation {
	if c == nil {
		return nil
	}
	out := make([]Operation, 0, len(c.operations))
	for _, op := range c.operations {
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// Title returns the document title.
func (c *Contract) Title() string {
	if c == nil || c.doc == nil || c.doc.Info == nil {
		return ""
	}
	return c.doc.Info.Title
}

// ValidateCreate checks a JSON create body against the createSurvey request
// schema. Violations are reported together as a *ContractError.
func (c *Contract) ValidateCreate(ctx context.Context, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c == nil || c.create == nil {
		return errors.New("contract: create schema is not loaded")
	}

	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return &ContractError{
			Operation: OpCreateSurvey,
			Issues:    []Issue{{Message: "body is not valid JSON: " + err.Error()}},
		}
	}

	err := c.create.VisitJSON(value, openapi3.MultiErrors())
	if err == nil {
		return nil
	}
	return &ContractError{Operation: OpCreateSurvey, Issues: issuesFrom(err)}
}

func requestSchema(op *openapi3.Operation, mediaType string) *openapi3.Schema {
	if op == nil || op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	mt := op.RequestBody.Value.Content.Get(mediaType)
	if mt == nil || mt.Schema == nil {
		return nil
	}
	return mt.Schema.Value
}
