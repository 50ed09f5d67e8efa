package web

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/goliatone/go-surveyform/pkg/notify"
)

type bannerView struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// render executes a page template with the shared layout data.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	sel, err := s.themes.Select(s.themeName, s.variant)
	if err != nil {
		s.logger.Warn("theme selection failed", zap.Error(err))
	}
	th := resolveTheme(sel)
	data["theme"] = map[string]any{
		"name":       th.Name,
		"variant":    th.Variant,
		"tokens":     th.Tokens,
		"stylesheet": th.Stylesheet,
	}
	if n, ok := s.banner.Current(); ok {
		data["banner"] = bannerView{Kind: string(n.Kind), Message: n.Message}
	}

	out, err := s.pages.RenderTemplate(page, data)
	if err != nil {
		s.logger.Error("render page", zap.String("page", page), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(out))
}

// flash notifies the banner and redirects with 303 See Other.
func (s *Server) flash(w http.ResponseWriter, r *http.Request, kind notify.Kind, message, location string) {
	s.banner.Notify(kind, message)
	http.Redirect(w, r, location, http.StatusSeeOther)
}
