package tui

import (
	"io"
	"os"

	"github.com/goliatone/go-surveyform/pkg/render"
)

// Theme holds the prefixes printed before session messages.
type Theme struct {
	InfoPrefix    string
	ErrorPrefix   string
	SuccessPrefix string
}

// DefaultTheme is used when no theme is configured.
var DefaultTheme = Theme{
	InfoPrefix:    "",
	ErrorPrefix:   "✖ ",
	SuccessPrefix: "✔ ",
}

// Option configures a Session.
type Option func(*Session)

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(s *Session) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithPreviewRenderer sets the renderer used for the preview action,
// normally the text renderer.
func WithPreviewRenderer(r render.Renderer) Option {
	return func(s *Session) {
		s.preview = r
	}
}

// WithFileOpener replaces os.Open for questions files.
func WithFileOpener(open func(path string) (io.ReadCloser, error)) Option {
	return func(s *Session) {
		if open != nil {
			s.open = open
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(s *Session) {
		s.theme = theme
	}
}

func openFile(path string) (io.ReadCloser, error) {
	return os.Open(path)
}
