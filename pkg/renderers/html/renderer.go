// Package html renders survey previews as an HTML fragment.
package html

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-surveyform/pkg/preview"
	"github.com/goliatone/go-surveyform/pkg/render"
	"github.com/goliatone/go-surveyform/pkg/render/template"
	"github.com/goliatone/go-surveyform/pkg/render/template/pongo"
)

//go:embed templates/*.tpl
var embedded embed.FS

const templateName = "preview"

// Renderer renders previews with the embedded HTML template. Author text is
// escaped by the template engine and the finished fragment is passed through
// a bluemonday policy that only admits the preview's own markup.
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

// Templates exposes the embedded templates so callers can layer overrides on
// top of them.
func Templates() fs.FS {
	files, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(err)
	}
	return files
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
		engine, err := pongo.New(pongo.WithFS(Templates()), pongo.WithName("html-preview"))
		if err != nil {
			return nil, fmt.Errorf("html renderer: %w", err)
		}
		r.engine = engine
	}
	return r, nil
}

func (r *Renderer) Name() string        { return "html" }
func (r *Renderer) ContentType() string { return "text/html; charset=utf-8" }

// Render writes the preview fragment. Theme tokens become CSS custom
// properties on the wrapper element.
func (r *Renderer) Render(ctx context.Context, view preview.View, options render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := r.engine.RenderTemplate(templateName, map[string]any{
		"view":       view,
		"tokens":     options.Tokens,
		"stylesheet": options.Stylesheet,
		"hidden":     options.Hidden,
	})
	if err != nil {
		return nil, fmt.Errorf("html renderer: %w", err)
	}
	return fragmentPolicy().SanitizeBytes([]byte(out)), nil
}

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// fragmentPolicy allows the elements and attributes the preview template
// emits. Escaped author text passes through as text.
func fragmentPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.NewPolicy()
		p.AllowElements("section", "h2", "p", "ol", "ul", "li", "label", "input", "link")
		p.AllowAttrs("class").Globally()
		p.AllowAttrs("style").Matching(regexp.MustCompile(`^(--[a-zA-Z0-9_-]+: [^;<>"]*;)*$`)).OnElements("section")
		p.AllowAttrs("rel").Matching(regexp.MustCompile(`^stylesheet$`)).OnElements("link")
		p.AllowAttrs("href").Matching(regexp.MustCompile(`^(/|https?://)[^\s"<>]*$`)).OnElements("link")
		p.AllowAttrs("type", "name", "value", "placeholder", "disabled").OnElements("input")
		policy = p
	})
	return policy
}
