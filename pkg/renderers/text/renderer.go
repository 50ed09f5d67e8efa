// Package text renders survey previews as plain text for terminals and CLI
// output.
package text

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/goliatone/go-surveyform/pkg/preview"
	"github.com/goliatone/go-surveyform/pkg/render"
	"github.com/goliatone/go-surveyform/pkg/render/template"
	"github.com/goliatone/go-surveyform/pkg/render/template/pongo"
)

//go:embed templates/*.tpl
var embedded embed.FS

const templateName = "preview"

// Renderer renders previews with the embedded text template.
type Renderer struct {
	engine template.TemplateRenderer
}

var _ render.Renderer = (*Renderer)(nil)

// Option configures the renderer.
type Option func(*Renderer)

// WithEngine replaces the template engine. The engine must provide a
// "preview" template.
func WithEngine(engine template.TemplateRenderer) Option {
	return func(r *Renderer) {
		if engine != nil {
			r.engine = engine
		}
	}
}

// New constructs the renderer.
func New(opts ...Option) (*Renderer, error) {
	r := &Renderer{}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.engine == nil {
		files, err := fs.Sub(embedded, "templates")
		if err != nil {
			return nil, fmt.Errorf("text renderer: templates: %w", err)
		}
		engine, err := pongo.New(pongo.WithFS(files), pongo.WithName("text-preview"))
		if err != nil {
			return nil, fmt.Errorf("text renderer: %w", err)
		}
		r.engine = engine
	}
	return r, nil
}

func (r *Renderer) Name() string        { return "text" }
func (r *Renderer) ContentType() string { return "text/plain; charset=utf-8" }

// Render writes the preview as plain text.
func (r *Renderer) Render(ctx context.Context, view preview.View, _ render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := r.engine.RenderTemplate(templateName, map[string]any{"view": view})
	if err != nil {
		return nil, fmt.Errorf("text renderer: %w", err)
	}
	return []byte(out), nil
}
