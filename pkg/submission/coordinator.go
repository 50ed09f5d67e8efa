// Package submission turns a validated draft into a create request, sends it
// and reports the outcome.
package submission

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/goliatone/go-surveyform/pkg/client"
	"github.com/goliatone/go-surveyform/pkg/contract"
	"github.com/goliatone/go-surveyform/pkg/draft"
	"github.com/goliatone/go-surveyform/pkg/notify"
)

const (
	MessageCreated      = "Survey created successfully!"
	MessageCreateFailed = "Failed to create survey. Please try again."

	// ListPath is the survey list view.
	ListPath = "/surveys"
)

// DetailPath is the view for a single survey.
func DetailPath(id int64) string {
	return ListPath + "/" + strconv.FormatInt(id, 10)
}

// Navigator moves the user to another view.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// Outcome describes a finished submission.
type Outcome struct {
	Survey client.Survey
	// Redirect is the path handed to the navigator after a success.
	Redirect string
	Message  string
	// Errors holds server reported field errors on failure.
	Errors ErrorMapping
}

// Coordinator submits drafts through a SurveyService.
type Coordinator struct {
	service   client.SurveyService
	sink      notify.Sink
	navigator Navigator
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithNavigator sets where the user is sent after a successful create.
func WithNavigator(n Navigator) Option {
	return func(c *Coordinator) {
		c.navigator = n
	}
}

// New constructs a Coordinator. A nil sink drops notifications.
func New(service client.SurveyService, sink notify.Sink, opts ...Option) *Coordinator {
	if sink == nil {
		sink = notify.SinkFunc(func(notify.Kind, string) {})
	}
	c := &Coordinator{service: service, sink: sink}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Build serializes d into the request shape the backend expects. Manual
// drafts are sent as JSON. Imported drafts are sent as multipart with the
// original file; the questions travel alongside only for multiple choice,
// since only then do they carry data the file lacks.
func Build(d draft.Draft) client.CreateRequest {
	survey := client.NewSurvey{
		Title:          d.Title,
		QuestionType:   string(d.Type()),
		RecipientEmail: d.RecipientEmail,
		Questions:      questions(d),
	}

	if d.Mode() == draft.FileImport && d.HasFile() {
		if d.Type() != draft.MultipleChoice {
			survey.Questions = nil
		}
		return client.CreateRequest{
			Survey:    survey,
			Multipart: true,
			File: &client.Upload{
				Name:    d.File.Name,
				Content: append([]byte(nil), d.File.Content...),
			},
		}
	}
	return client.CreateRequest{Survey: survey}
}

func questions(d draft.Draft) []client.Question {
	out := make([]client.Question, len(d.Questions))
	for i, q := range d.Questions {
		out[i] = client.Question{Text: q.Text}
		if q.Options != nil {
			out[i].Options = append([]string(nil), q.Options...)
		}
	}
	return out
}

// Submit sends d. On success it notifies, navigates to the new survey and
// returns the outcome. On failure it notifies with the server message, or a
// generic one, and returns an error wrapping the cause; d is never touched.
func (c *Coordinator) Submit(ctx context.Context, d draft.Draft) (Outcome, error) {
	if c.service == nil {
		return Outcome{}, errors.New("submission: survey service is not configured")
	}

	survey, err := c.service.Create(ctx, Build(d))
	if err != nil {
		outcome := Outcome{Message: FailureMessage(err), Errors: serverErrors(d, err)}
		c.sink.Notify(notify.Danger, outcome.Message)
		return outcome, fmt.Errorf("submission: create survey: %w", err)
	}

	outcome := Outcome{
		Survey:   survey,
		Redirect: DetailPath(survey.ID),
		Message:  MessageCreated,
	}
	c.sink.Notify(notify.Success, MessageCreated)
	if c.navigator != nil {
		c.navigator.Navigate(outcome.Redirect)
	}
	return outcome, nil
}

// FailureMessage picks the user-facing text for a failed create.
func FailureMessage(err error) string {
	if msg, ok := client.DetailMessage(err); ok {
		return msg
	}
	return MessageCreateFailed
}

func serverErrors(d draft.Draft, err error) ErrorMapping {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && len(apiErr.Fields) > 0 {
		return MapServerErrors(d, apiErr.Fields)
	}

	var contractErr *contract.ContractError
	if errors.As(err, &contractErr) {
		payload := make(map[string][]string, len(contractErr.Issues))
		for _, issue := range contractErr.Issues {
			payload[issue.Path()] = append(payload[issue.Path()], issue.Message)
		}
		return MapServerErrors(d, payload)
	}
	return ErrorMapping{}
}
