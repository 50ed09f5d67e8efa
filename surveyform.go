// Package surveyform wires the survey authoring packages together for the
// common cases: a backend client, a form bound to it, and preview rendering.
package surveyform

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/goliatone/go-surveyform/pkg/client"
	"github.com/goliatone/go-surveyform/pkg/contract"
	"github.com/goliatone/go-surveyform/pkg/draft"
	"github.com/goliatone/go-surveyform/pkg/form"
	"github.com/goliatone/go-surveyform/pkg/notify"
	"github.com/goliatone/go-surveyform/pkg/preview"
	"github.com/goliatone/go-surveyform/pkg/render"
	"github.com/goliatone/go-surveyform/pkg/renderers/html"
	"github.com/goliatone/go-surveyform/pkg/renderers/text"
	"github.com/goliatone/go-surveyform/pkg/submission"
)

// Draft is the unsaved survey definition.
type Draft = draft.Draft

// Survey is a survey as stored by the backend.
type Survey = client.Survey

// RenderOptions carries theme tokens and hidden fields to preview renderers.
type RenderOptions = render.RenderOptions

// NewClient returns a backend client that checks JSON create payloads
// against the embedded backend contract before sending them.
func NewClient(baseURL string, options ...client.Option) (*client.Client, error) {
	ct, err := contract.Default()
	if err != nil {
		return nil, err
	}
	return client.New(baseURL, append([]client.Option{client.WithContract(ct)}, options...)...)
}

// NewForm returns an authoring form that submits through service and
// reports results to sink.
func NewForm(service client.SurveyService, sink notify.Sink, options ...form.Option) *form.Form {
	return form.New(submission.New(service, sink), options...)
}

// NewPreviewRegistry registers the built in "text" and "html" renderers.
func NewPreviewRegistry() (*render.Registry, error) {
	registry := render.NewRegistry()
	textRenderer, err := text.New()
	if err != nil {
		return nil, err
	}
	htmlRenderer, err := html.New()
	if err != nil {
		return nil, err
	}
	registry.MustRegister(textRenderer)
	registry.MustRegister(htmlRenderer)
	return registry, nil
}

// RenderPreview renders the preview of d with a built in renderer. format is
// a renderer name or media type; "" selects the text renderer.
func RenderPreview(ctx context.Context, d Draft, format string, options RenderOptions) ([]byte, error) {
	registry, err := NewPreviewRegistry()
	if err != nil {
		return nil, err
	}
	renderer, err := registry.Resolve(format)
	if err != nil {
		return nil, fmt.Errorf("surveyform: %w", err)
	}
	return renderer.Render(ctx, preview.Build(d), options)
}

// EmbeddedTemplates exposes the built in HTML preview templates so callers
// can reuse or extend them.
func EmbeddedTemplates() fs.FS {
	return html.Templates()
}
