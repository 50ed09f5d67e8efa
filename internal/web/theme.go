package web

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
)

// StylesheetAsset is the manifest asset key for the page stylesheet.
const StylesheetAsset = "web.stylesheet"

// DefaultManifest is the built in theme. It ships a light base and a dark
// variant.
func DefaultManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    "default",
		Version: "1.0.0",
		Tokens: map[string]string{
			"surface": "#ffffff",
			"text":    "#1f2933",
			"muted":   "#6b7280",
			"accent":  "#2563eb",
			"success": "#15803d",
			"danger":  "#b91c1c",
			"radius":  "6px",
		},
		Assets: theme.Assets{
			Prefix: "/static",
			Files: map[string]string{
				StylesheetAsset: "surveyform.css",
			},
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					"surface": "#111827",
					"text":    "#f9fafb",
					"muted":   "#9ca3af",
					"accent":  "#60a5fa",
				},
			},
		},
	}
}

// ManifestSelector resolves theme selections from registered manifests.
type ManifestSelector struct {
	mu        sync.RWMutex
	manifests map[string]*theme.Manifest
	fallback  string
}

var _ theme.ThemeSelector = (*ManifestSelector)(nil)

// NewManifestSelector registers manifests. The first one is used when a
// selection names an unknown theme.
func NewManifestSelector(manifests ...*theme.Manifest) (*ManifestSelector, error) {
	s := &ManifestSelector{manifests: map[string]*theme.Manifest{}}
	registry := theme.NewRegistry()
	for _, m := range manifests {
		if m == nil {
			continue
		}
		if err := registry.Register(m); err != nil {
			return nil, fmt.Errorf("web: register theme %q: %w", m.Name, err)
		}
		s.manifests[m.Name] = m
		if s.fallback == "" {
			s.fallback = m.Name
		}
	}
	if s.fallback == "" {
		return nil, fmt.Errorf("web: at least one theme manifest is required")
	}
	return s, nil
}

// Select returns the named theme and variant. Unknown themes fall back to
// the first manifest; unknown variants to the base tokens.
func (s *ManifestSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.manifests[name]
	if !ok {
		m = s.manifests[s.fallback]
	}
	if _, ok := m.Variants[variant]; !ok {
		variant = ""
	}
	return &theme.Selection{Theme: m.Name, Variant: variant, Manifest: m}, nil
}

// Themes lists registered theme names.
func (s *ManifestSelector) Themes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.manifests))
	for name := range s.manifests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// resolvedTheme is what pages need from a selection.
type resolvedTheme struct {
	Name       string
	Variant    string
	Tokens     map[string]string
	Stylesheet string
}

func resolveTheme(sel *theme.Selection) resolvedTheme {
	if sel == nil || sel.Manifest == nil {
		return resolvedTheme{}
	}
	m := sel.Manifest
	out := resolvedTheme{
		Name:    sel.Theme,
		Variant: sel.Variant,
		Tokens:  make(map[string]string, len(m.Tokens)),
	}
	for k, v := range m.Tokens {
		out.Tokens[k] = v
	}

	prefix := m.Assets.Prefix
	files := map[string]string{}
	for k, v := range m.Assets.Files {
		files[k] = v
	}
	if v, ok := m.Variants[sel.Variant]; ok {
		for k, val := range v.Tokens {
			out.Tokens[k] = val
		}
		if v.Assets.Prefix != "" {
			prefix = v.Assets.Prefix
		}
		for k, val := range v.Assets.Files {
			files[k] = val
		}
	}
	if file := files[StylesheetAsset]; file != "" {
		out.Stylesheet = assetURL(prefix, file)
	}
	return out
}

func assetURL(prefix, file string) string {
	if strings.HasPrefix(file, "/") || strings.Contains(file, "://") {
		return file
	}
	if prefix == "" {
		return "/" + file
	}
	return path.Join(prefix, file)
}
