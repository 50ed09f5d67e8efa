package render

import (
	"errors"
	"fmt"
	"mime"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownFormat is returned when no preview renderer matches a format.
var ErrUnknownFormat = errors.New("render: unknown preview format")

// Registry keeps the preview renderers by name. The first renderer
// registered is the default.
type Registry struct {
	mu          sync.RWMutex
	renderers   map[string]Renderer
	defaultName string
}

func NewRegistry() *Registry {
	return &Registry{renderers: make(map[string]Renderer)}
}

// Register adds a renderer under its Name. Names are case insensitive and
// must be unique.
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return errors.New("render: renderer is required")
	}
	name := normalizeFormat(renderer.Name())
	if name == "" {
		return errors.New("render: renderer name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.renderers[name]; exists {
		return fmt.Errorf("render: preview renderer %q already registered", name)
	}
	r.renderers[name] = renderer
	if r.defaultName == "" {
		r.defaultName = name
	}
	return nil
}

// MustRegister panics on registration failure.
func (r *Registry) MustRegister(renderer Renderer) {
	if err := r.Register(renderer); err != nil {
		panic(err)
	}
}

// SetDefault picks the renderer used when no format is requested.
func (r *Registry) SetDefault(name string) error {
	name = normalizeFormat(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.renderers[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
	r.defaultName = name
	return nil
}

// Get returns the renderer registered under name.
func (r *Registry) Get(name string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	renderer, ok := r.renderers[normalizeFormat(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
	return renderer, nil
}

// Resolve finds a renderer for a requested format: a renderer name, a media
// type such as "text/html; charset=utf-8", or "" for the default.
func (r *Registry) Resolve(format string) (Renderer, error) {
	format = strings.TrimSpace(format)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if format == "" {
		if renderer, ok := r.renderers[r.defaultName]; ok {
			return renderer, nil
		}
		return nil, fmt.Errorf("%w: no renderers registered", ErrUnknownFormat)
	}
	if renderer, ok := r.renderers[normalizeFormat(format)]; ok {
		return renderer, nil
	}

	mediaType, _, err := mime.ParseMediaType(format)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	for _, name := range r.sortedNames() {
		renderer := r.renderers[name]
		if ct, _, err := mime.ParseMediaType(renderer.ContentType()); err == nil && ct == mediaType {
			return renderer, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// List returns the registered names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedNames()
}

// Has reports whether a renderer is registered under name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.renderers[normalizeFormat(name)]
	return ok
}

func (r *Registry) sortedNames() []string {
	names := make([]string, 0, len(r.renderers))
	for name := range r.renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalizeFormat(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
