package testsupport

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/goliatone/go-surveyform/pkg/client"
)

// FakeService is an in-memory client.SurveyService. Set the *Err fields to
// force failures; every call is recorded.
type FakeService struct {
	mu      sync.Mutex
	nextID  int64
	surveys map[int64]client.Survey

	Requests []client.CreateRequest
	Calls    []string

	ListErr    error
	CreateErr  error
	GetErr     error
	ApproveErr error
	DeleteErr  error
}

var _ client.SurveyService = (*FakeService)(nil)

// NewFakeService seeds the store with surveys. Seeds without an ID are
// numbered from 1.
func NewFakeService(seed ...client.Survey) *FakeService {
	f := &FakeService{surveys: map[int64]client.Survey{}}
	for _, s := range seed {
		if s.ID == 0 {
			f.nextID++
			s.ID = f.nextID
		} else if s.ID > f.nextID {
			f.nextID = s.ID
		}
		if s.Status == "" {
			s.Status = client.StatusDraft
		}
		f.surveys[s.ID] = s
	}
	return f
}

func (f *FakeService) record(call string) {
	f.Calls = append(f.Calls, call)
}

func (f *FakeService) List(ctx context.Context) ([]client.Survey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("list")
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	out := make([]client.Survey, 0, len(f.surveys))
	for _, s := range f.surveys {
		if s.Status == client.StatusDeleted {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *FakeService) Create(ctx context.Context, req client.CreateRequest) (client.Survey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("create")
	f.Requests = append(f.Requests, req)
	if f.CreateErr != nil {
		return client.Survey{}, f.CreateErr
	}
	f.nextID++
	s := client.Survey{
		ID:             f.nextID,
		Title:          req.Survey.Title,
		Status:         client.StatusDraft,
		RecipientEmail: req.Survey.RecipientEmail,
		QuestionType:   req.Survey.QuestionType,
		Questions:      req.Survey.Questions,
	}
	f.surveys[s.ID] = s
	return s, nil
}

func (f *FakeService) Get(ctx context.Context, id int64) (client.Survey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("get %d", id))
	if f.GetErr != nil {
		return client.Survey{}, f.GetErr
	}
	return f.lookup(id)
}

// ApproveMessage is the message FakeService reports for an approval.
const ApproveMessage = "Survey approved and email sent"

func (f *FakeService) Approve(ctx context.Context, id int64) (client.ApproveResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("approve %d", id))
	if f.ApproveErr != nil {
		return client.ApproveResult{}, f.ApproveErr
	}
	s, err := f.lookup(id)
	if err != nil {
		return client.ApproveResult{}, err
	}
	s.Status = client.StatusApproved
	s.FormURL = fmt.Sprintf("https://forms.example.com/%d", id)
	f.surveys[id] = s
	return client.ApproveResult{Message: ApproveMessage}, nil
}

func (f *FakeService) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("delete %d", id))
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	s, err := f.lookup(id)
	if err != nil {
		return err
	}
	s.Status = client.StatusDeleted
	f.surveys[id] = s
	return nil
}

func (f *FakeService) lookup(id int64) (client.Survey, error) {
	s, ok := f.surveys[id]
	if !ok || s.Status == client.StatusDeleted {
		return client.Survey{}, &client.APIError{Status: http.StatusNotFound, Detail: "Survey not found"}
	}
	return s, nil
}

// Survey returns the stored survey regardless of status.
func (f *FakeService) Survey(id int64) (client.Survey, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.surveys[id]
	return s, ok
}
