// Package render defines the seam between survey previews and the output
// formats they are rendered to.
package render

import (
	"context"

	"github.com/goliatone/go-surveyform/pkg/preview"
)

// Renderer converts a preview view into a byte representation (plain text,
// HTML, etc.).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view preview.View, options RenderOptions) ([]byte, error)
}

// RenderOptions carry per-request presentation data that does not belong on
// the view itself.
type RenderOptions struct {
	// Tokens are theme design tokens (colours, spacing) exposed to templates.
	Tokens map[string]string
	// Stylesheet is an optional stylesheet URL for HTML output.
	Stylesheet string
	// Hidden fields are emitted by renderers that produce a form.
	Hidden []HiddenField
}
