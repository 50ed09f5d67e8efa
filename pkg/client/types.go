// Package client talks to the survey backend over HTTP.
package client

import "context"

// Status is the lifecycle state reported by the backend.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusApproved Status = "approved"
	StatusDeleted  Status = "deleted"
)

// Question mirrors the backend question shape. Options is null for short
// answer surveys.
type Question struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// Survey is a survey as stored by the backend.
type Survey struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	FormURL        string     `json:"form_url,omitempty"`
	Status         Status     `json:"status"`
	CreatedAt      string     `json:"created_at,omitempty"`
	RecipientEmail string     `json:"recipient_email,omitempty"`
	QuestionType   string     `json:"question_type,omitempty"`
	Questions      []Question `json:"questions,omitempty"`
}

// NewSurvey is the create payload.
type NewSurvey struct {
	Title          string     `json:"title"`
	QuestionType   string     `json:"question_type"`
	Questions      []Question `json:"questions"`
	RecipientEmail string     `json:"recipient_email"`
}

// ApproveResult is the approve response. Message is empty when the backend
// sends no body.
type ApproveResult struct {
	Message string `json:"message"`
}

// Upload is a questions file forwarded as-is in a multipart create.
type Upload struct {
	Name    string
	Content []byte
}

// CreateRequest selects the create encoding. Multipart requests send the
// survey fields as form values, File as the questions_file part and the
// questions as JSON text when present.
type CreateRequest struct {
	Survey    NewSurvey
	Multipart bool
	File      *Upload
}

// SurveyService is the backend surface used by the authoring form and the
// list and detail views.
type SurveyService interface {
	List(ctx context.Context) ([]Survey, error)
	Create(ctx context.Context, req CreateRequest) (Survey, error)
	Get(ctx context.Context, id int64) (Survey, error)
	Approve(ctx context.Context, id int64) (ApproveResult, error)
	Delete(ctx context.Context, id int64) error
}
