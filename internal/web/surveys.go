package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/goliatone/go-surveyform/pkg/client"
	"github.com/goliatone/go-surveyform/pkg/notify"
	"github.com/goliatone/go-surveyform/pkg/submission"
)

const (
	MessageNoSurveys       = "No surveys available."
	MessageListFailed      = "Failed to fetch surveys. Please try again."
	MessageFetchFailed     = "Failed to fetch survey"
	MessageApproved        = "Survey approved successfully!"
	MessageApproveFailed   = "Failed to approve survey"
	MessageDeleted         = "Survey deleted successfully!"
	MessageDeleteFailed    = "Failed to delete survey"
	MessageInvalidSurveyID = "Invalid survey id"
)

// failure picks the backend detail when there is one.
func failure(err error, fallback string) string {
	if msg, ok := client.DetailMessage(err); ok {
		return msg
	}
	return fallback
}

func statusFor(err error) int {
	if client.IsNotFound(err) {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	surveys, err := s.service.List(r.Context())
	if err != nil {
		msg := failure(err, MessageListFailed)
		s.logger.Warn("list surveys", zap.Error(err))
		s.banner.Notify(notify.Danger, msg)
		s.render(w, r, statusFor(err), "list", map[string]any{"error": msg})
		return
	}
	s.render(w, r, http.StatusOK, "list", map[string]any{
		"surveys":       surveys,
		"empty":         len(surveys) == 0,
		"empty_message": MessageNoSurveys,
	})
}

func surveyID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "surveyID"), 10, 64)
	return id, err == nil && id > 0
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := surveyID(r)
	if !ok {
		s.render(w, r, http.StatusNotFound, "detail", map[string]any{"error": MessageInvalidSurveyID})
		return
	}
	survey, err := s.service.Get(r.Context(), id)
	if err != nil {
		msg := failure(err, MessageFetchFailed)
		s.logger.Warn("get survey", zap.Int64("id", id), zap.Error(err))
		s.banner.Notify(notify.Danger, msg)
		s.render(w, r, statusFor(err), "detail", map[string]any{"error": msg})
		return
	}
	s.render(w, r, http.StatusOK, "detail", map[string]any{
		"survey":      survey,
		"can_approve": survey.Status == client.StatusDraft,
	})
}

// ApprovedMessage is the success notice for an approval, followed by the
// backend's own message when it sent one.
func ApprovedMessage(result client.ApproveResult) string {
	if msg := strings.TrimSpace(result.Message); msg != "" {
		return MessageApproved + " " + msg
	}
	return MessageApproved
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	id, ok := surveyID(r)
	if !ok {
		s.flash(w, r, notify.Danger, MessageInvalidSurveyID, submission.ListPath)
		return
	}
	result, err := s.service.Approve(r.Context(), id)
	if err != nil {
		s.logger.Warn("approve survey", zap.Int64("id", id), zap.Error(err))
		s.flash(w, r, notify.Danger, failure(err, MessageApproveFailed), submission.DetailPath(id))
		return
	}
	s.flash(w, r, notify.Success, ApprovedMessage(result), submission.DetailPath(id))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := surveyID(r)
	if !ok {
		s.flash(w, r, notify.Danger, MessageInvalidSurveyID, submission.ListPath)
		return
	}
	if err := s.service.Delete(r.Context(), id); err != nil {
		s.logger.Warn("delete survey", zap.Int64("id", id), zap.Error(err))
		s.flash(w, r, notify.Danger, failure(err, MessageDeleteFailed), submission.DetailPath(id))
		return
	}
	s.flash(w, r, notify.Success, MessageDeleted, submission.ListPath)
}
