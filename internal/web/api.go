package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-surveyform/pkg/draft"
	"github.com/goliatone/go-surveyform/pkg/preview"
	"github.com/goliatone/go-surveyform/pkg/validation"
)

// maxDraftBody caps JSON draft payloads.
const maxDraftBody = 1 << 20

var errFileReference = errors.New("questions_file is not supported over the API; send questions inline")

type apiError struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// decodeDraftBody reads a draft document from the request body.
func decodeDraftBody(r *http.Request) (draft.Draft, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxDraftBody+1))
	if err != nil {
		return draft.Draft{}, fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxDraftBody {
		return draft.Draft{}, errors.New("draft document is too large")
	}
	doc, err := draft.ParseDocument(body)
	if err != nil {
		return draft.Draft{}, err
	}
	return doc.Apply(draft.New(), func(string) ([]byte, error) {
		return nil, errFileReference
	})
}

// handleValidateDraft runs the form validator over a posted draft document.
func (s *Server) handleValidateDraft(w http.ResponseWriter, r *http.Request) {
	d, err := decodeDraftBody(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}
	result := validation.Check(d)
	status := http.StatusOK
	if !result.Valid {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, result)
}

// handlePreviewDraft returns the preview view as JSON, or rendered by the
// renderer named in ?format= (text, html).
func (s *Server) handlePreviewDraft(w http.ResponseWriter, r *http.Request) {
	d, err := decodeDraftBody(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}
	view := preview.Build(d)

	format := r.URL.Query().Get("format")
	if format == "" {
		format = acceptedPreviewType(r.Header.Get("Accept"))
	}
	if format == "" || format == "json" {
		writeJSON(w, http.StatusOK, view)
		return
	}
	renderer, err := s.previews.Resolve(format)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: fmt.Sprintf("unknown preview format %q", format)})
		return
	}
	out, err := renderer.Render(r.Context(), view, s.previewOptions())
	if err != nil {
		s.logger.Error("render preview", zap.String("format", format), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, apiError{Error: "preview rendering failed"})
		return
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	_, _ = w.Write(out)
}

// acceptedPreviewType returns the first non-JSON media type of an Accept
// header, or "" when the client wants JSON or anything.
func acceptedPreviewType(accept string) string {
	for _, part := range strings.Split(accept, ",") {
		mediaType := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		switch mediaType {
		case "", "*/*", "application/json":
			return ""
		case "text/plain", "text/html":
			return mediaType
		}
	}
	return ""
}
