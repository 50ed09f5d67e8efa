package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-surveyform/pkg/client"
	"github.com/goliatone/go-surveyform/pkg/contract"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...client.Option) *client.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	ids := 0
	opts = append([]client.Option{client.WithIDGenerator(func() string {
		ids++
		return "id-" + string(rune('0'+ids))
	})}, opts...)

	c, err := client.New(srv.URL+"/api/", opts...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestCreate_JSON(t *testing.T) {
	var (
		gotBody    map[string]any
		gotHeaders http.Header
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/surveys/" {
			t.Errorf("unexpected route %s %s", r.Method, r.URL.Path)
		}
		gotHeaders = r.Header.Clone()
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":1,"title":"Colors","status":"draft","form_url":null}`)
	})

	survey, err := c.Create(context.Background(), client.CreateRequest{
		Survey: client.NewSurvey{
			Title:          "Colors",
			QuestionType:   "multiple_choice",
			Questions:      []client.Question{{Text: "Favorite Color?", Options: []string{"Red", "Blue"}}},
			RecipientEmail: "a@b.co",
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	want := map[string]any{
		"title":         "Colors",
		"question_type": "multiple_choice",
		"questions": []any{
			map[string]any{"text": "Favorite Color?", "options": []any{"Red", "Blue"}},
		},
		"recipient_email": "a@b.co",
	}
	if diff := cmp.Diff(want, gotBody); diff != "" {
		t.Fatalf("body mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(client.Survey{ID: 1, Title: "Colors", Status: client.StatusDraft}, survey); diff != "" {
		t.Fatalf("survey mismatch (-want +got):\n%s", diff)
	}
	if gotHeaders.Get(client.HeaderIdempotencyKey) == "" || gotHeaders.Get(client.HeaderRequestID) == "" {
		t.Fatalf("expected request and idempotency ids, got %v", gotHeaders)
	}
	if gotHeaders.Get(client.HeaderIdempotencyKey) == gotHeaders.Get(client.HeaderRequestID) {
		t.Fatalf("idempotency key must differ from request id")
	}
}

func TestCreate_Multipart(t *testing.T) {
	type received struct {
		Fields   map[string]string
		FileName string
		File     string
	}
	var got received
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		got.Fields = map[string]string{}
		for key, values := range r.MultipartForm.Value {
			got.Fields[key] = values[0]
		}
		file, header, err := r.FormFile("questions_file")
		if err != nil {
			t.Errorf("questions_file: %v", err)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		got.FileName = header.Filename
		got.File = string(data)
		_, _ = io.WriteString(w, `{"id":9,"title":"Upload","status":"draft"}`)
	})

	_, err := c.Create(context.Background(), client.CreateRequest{
		Multipart: true,
		Survey: client.NewSurvey{
			Title:          "Upload",
			QuestionType:   "multiple_choice",
			RecipientEmail: "a@b.co",
			Questions:      []client.Question{{Text: "Q1", Options: []string{"A", "B"}}},
		},
		File: &client.Upload{Name: "q.txt", Content: []byte("Q1\n")},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	want := received{
		Fields: map[string]string{
			"title":           "Upload",
			"recipient_email": "a@b.co",
			"question_type":   "multiple_choice",
			"questions":       `[{"text":"Q1","options":["A","B"]}]`,
		},
		FileName: "q.txt",
		File:     "Q1\n",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("multipart mismatch (-want +got):\n%s", diff)
	}
}

func TestCreate_MultipartOmitsEmptyQuestions(t *testing.T) {
	var hasQuestions bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseMultipartForm(1 << 20)
		_, hasQuestions = r.MultipartForm.Value["questions"]
		_, _ = io.WriteString(w, `{"id":2,"title":"T","status":"draft"}`)
	})
	_, err := c.Create(context.Background(), client.CreateRequest{
		Multipart: true,
		Survey:    client.NewSurvey{Title: "T", QuestionType: "fillup", RecipientEmail: "a@b.co"},
		File:      &client.Upload{Name: "q.txt", Content: []byte("Q")},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if hasQuestions {
		t.Fatalf("short answer uploads must not send questions")
	}
}

func TestCreate_ContractRejectsBeforeSending(t *testing.T) {
	called := false
	ct, err := contract.Default()
	if err != nil {
		t.Fatalf("contract: %v", err)
	}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	}, client.WithContract(ct))

	_, err = c.Create(context.Background(), client.CreateRequest{
		Survey: client.NewSurvey{Title: "", QuestionType: "fillup", RecipientEmail: "a@b.co"},
	})
	var contractErr *contract.ContractError
	if !errors.As(err, &contractErr) {
		t.Fatalf("expected ContractError, got %v", err)
	}
	if called {
		t.Fatalf("backend must not be called for a contract violation")
	}
}

func TestErrors_DetailString(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"detail":"Only draft surveys can be approved"}`)
	})

	_, err := c.Approve(context.Background(), 3)
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", apiErr.Status)
	}
	msg, ok := client.DetailMessage(err)
	if !ok || msg != "Only draft surveys can be approved" {
		t.Fatalf("unexpected detail %q (%v)", msg, ok)
	}
}

func TestErrors_DetailList(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"detail":[{"loc":["body","recipient_email"],"msg":"value is not a valid email address"},{"loc":["body","questions",0,"text"],"msg":"field required"}]}`)
	})

	_, err := c.Create(context.Background(), client.CreateRequest{Survey: client.NewSurvey{Title: "T"}})
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	want := map[string][]string{
		"recipient_email":  {"value is not a valid email address"},
		"questions.0.text": {"field required"},
	}
	if diff := cmp.Diff(want, apiErr.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if apiErr.Detail == "" {
		t.Fatalf("expected joined detail")
	}
}

func TestErrors_NoDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `<html>oops</html>`)
	})
	_, err := c.Get(context.Background(), 1)
	if _, ok := client.DetailMessage(err); ok {
		t.Fatalf("expected no detail for %v", err)
	}
}

func TestNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/surveys/42" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		http.Error(w, `{"detail":"Survey not found"}`, http.StatusNotFound)
	})
	_, err := c.Get(context.Background(), 42)
	if !client.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	c, err := client.New(base)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = c.List(context.Background())
	var transportErr *client.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if _, ok := client.DetailMessage(err); ok {
		t.Fatalf("transport errors carry no detail")
	}
}

func TestListAndDelete_LogRequests(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = io.WriteString(w, `[{"id":1,"title":"A","status":"approved"},{"id":2,"title":"B","status":"draft"}]`)
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	}, client.WithLogger(zap.New(core)))

	surveys, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(surveys) != 2 || surveys[0].Status != client.StatusApproved {
		t.Fatalf("unexpected surveys %+v", surveys)
	}
	if err := c.Delete(context.Background(), 2); err != nil {
		t.Fatalf("delete: %v", err)
	}

	entries := logs.FilterMessage("backend request").All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 request logs, got %d", len(entries))
	}
	if got := entries[1].ContextMap()["path"]; got != "/surveys/2" {
		t.Fatalf("unexpected logged path %v", got)
	}
}

func TestDelete_EmptyResponses(t *testing.T) {
	for _, status := range []int{http.StatusNoContent, http.StatusOK} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete || r.URL.Path != "/api/surveys/7" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			w.WriteHeader(status)
		})
		if err := c.Delete(context.Background(), 7); err != nil {
			t.Fatalf("status %d: delete: %v", status, err)
		}
	}
}

func TestApprove_Message(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/surveys/3/approve" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"message":"Survey approved and email sent"}`)
	})

	got, err := c.Approve(context.Background(), 3)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if diff := cmp.Diff(client.ApproveResult{Message: "Survey approved and email sent"}, got); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestApprove_EmptyBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	got, err := c.Approve(context.Background(), 3)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got.Message != "" {
		t.Fatalf("expected no message, got %q", got.Message)
	}
}

func TestNew_RejectsBadScheme(t *testing.T) {
	if _, err := client.New("ftp://example.com"); err == nil {
		t.Fatalf("expected scheme error")
	}
	c, err := client.New("")
	if err != nil {
		t.Fatalf("default base url: %v", err)
	}
	if c.BaseURL() != client.DefaultBaseURL {
		t.Fatalf("unexpected base url %q", c.BaseURL())
	}
}
