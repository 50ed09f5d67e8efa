// Package web serves the survey list, detail and authoring pages, plus a
// small JSON API for draft validation and previews.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-surveyform/pkg/client"
	"github.com/goliatone/go-surveyform/pkg/form"
	"github.com/goliatone/go-surveyform/pkg/notify"
	"github.com/goliatone/go-surveyform/pkg/render"
	"github.com/goliatone/go-surveyform/pkg/render/template"
	"github.com/goliatone/go-surveyform/pkg/render/template/pongo"
	"github.com/goliatone/go-surveyform/pkg/renderers/html"
	"github.com/goliatone/go-surveyform/pkg/renderers/text"
	"github.com/goliatone/go-surveyform/pkg/submission"
)

//go:embed templates/*.tpl
var templateFiles embed.FS

//go:embed static/*
var staticFiles embed.FS

// DefaultRequestTimeout bounds each request, backend calls included.
const DefaultRequestTimeout = 30 * time.Second

// Server holds the handlers and their dependencies.
type Server struct {
	service     client.SurveyService
	coordinator *submission.Coordinator
	logger      *zap.Logger
	pages       template.TemplateRenderer
	previews    *render.Registry
	themes      theme.ThemeSelector
	themeName   string
	variant     string
	banner      *notify.Banner
	corsOrigins []string
	maxFileSize int64
	timeout     time.Duration
}

// Option configures a Server.
type Option func(*Server)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTheme selects the theme used for page tokens and the stylesheet.
func WithTheme(selector theme.ThemeSelector, name, variant string) Option {
	return func(s *Server) {
		if selector != nil {
			s.themes = selector
		}
		s.themeName = name
		s.variant = variant
	}
}

// WithBanner shares a banner with other components.
func WithBanner(banner *notify.Banner) Option {
	return func(s *Server) {
		if banner != nil {
			s.banner = banner
		}
	}
}

// WithCORSOrigins sets the origins allowed to call the JSON API.
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) {
		s.corsOrigins = append([]string(nil), origins...)
	}
}

// WithPages replaces the page template engine. It must provide the list,
// detail and new templates.
func WithPages(pages template.TemplateRenderer) Option {
	return func(s *Server) {
		if pages != nil {
			s.pages = pages
		}
	}
}

// WithPreviewRegistry replaces the preview renderers. The registry must hold
// an "html" renderer.
func WithPreviewRegistry(registry *render.Registry) Option {
	return func(s *Server) {
		if registry != nil {
			s.previews = registry
		}
	}
}

func WithMaxFileSize(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxFileSize = n
		}
	}
}

func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// Templates exposes the embedded page templates.
func Templates() fs.FS {
	files, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic(err)
	}
	return files
}

// New constructs a Server backed by service.
func New(service client.SurveyService, opts ...Option) (*Server, error) {
	if service == nil {
		return nil, errors.New("web: survey service is required")
	}
	s := &Server{
		service:     service,
		logger:      zap.NewNop(),
		maxFileSize: form.DefaultMaxFileSize,
		timeout:     DefaultRequestTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if s.banner == nil {
		s.banner = notify.NewBanner()
	}
	if s.pages == nil {
		engine, err := pongo.New(pongo.WithFS(Templates()), pongo.WithName("web-pages"))
		if err != nil {
			return nil, fmt.Errorf("web: page templates: %w", err)
		}
		s.pages = engine
	}
	if s.previews == nil {
		registry, err := defaultPreviews()
		if err != nil {
			return nil, err
		}
		s.previews = registry
	}
	if _, err := s.previews.Get("html"); err != nil {
		return nil, fmt.Errorf("web: html preview renderer: %w", err)
	}
	if s.themes == nil {
		selector, err := NewManifestSelector(DefaultManifest())
		if err != nil {
			return nil, err
		}
		s.themes = selector
	}

	sink := notify.Multi(s.banner, notify.LogSink{Logger: s.logger})
	s.coordinator = submission.New(service, sink)
	return s, nil
}

func defaultPreviews() (*render.Registry, error) {
	registry := render.NewRegistry()
	htmlRenderer, err := html.New()
	if err != nil {
		return nil, fmt.Errorf("web: %w", err)
	}
	textRenderer, err := text.New()
	if err != nil {
		return nil, fmt.Errorf("web: %w", err)
	}
	registry.MustRegister(htmlRenderer)
	registry.MustRegister(textRenderer)
	return registry, nil
}

// Banner returns the banner that receives page notifications.
func (s *Server) Banner() *notify.Banner {
	return s.banner
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(s.logger), middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, submission.ListPath, http.StatusFound)
	})
	r.Handle("/static/*", http.FileServer(http.FS(staticFiles)))

	r.Route("/surveys", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Get("/new", s.handleNew)
		r.Post("/new", s.handleNewEvent)
		r.Get("/{surveyID}", s.handleDetail)
		r.Post("/{surveyID}/approve", s.handleApprove)
		r.Post("/{surveyID}/delete", s.handleDelete)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.corsOrigins,
			AllowedMethods: []string{"POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"Content-Length", "X-Request-ID"},
			MaxAge:         300,
		}))
		r.Post("/drafts/validate", s.handleValidateDraft)
		r.Post("/drafts/preview", s.handlePreviewDraft)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("web: listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("server shutdown", zap.Error(err))
		return err
	}
	s.logger.Info("server stopped")
	return nil
}
