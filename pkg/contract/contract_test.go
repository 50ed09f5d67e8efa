package contract_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-surveyform/pkg/contract"
)

func TestDefault_Operations(t *testing.T) {
	c, err := contract.Default()
	if err != nil {
		t.Fatalf("load default contract: %v", err)
	}

	var got []string
	for _, op := range c.Operations() {
		got = append(got, op.Method+" "+op.Path+" "+op.ID)
	}
	want := []string{
		"GET /surveys/ listSurveys",
		"POST /surveys/ createSurvey",
		"DELETE /surveys/{survey_id} deleteSurvey",
		"GET /surveys/{survey_id} getSurvey",
		"POST /surveys/{survey_id}/approve approveSurvey",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("operations mismatch (-want +got):\n%s", diff)
	}

	approve, ok := c.Operation(contract.OpApproveSurvey)
	if !ok {
		t.Fatalf("approve operation missing")
	}
	if path := approve.Expand(map[string]string{"survey_id": "7"}); path != "/surveys/7/approve" {
		t.Fatalf("unexpected expanded path %q", path)
	}
}

func TestValidateCreate(t *testing.T) {
	c, err := contract.Default()
	if err != nil {
		t.Fatalf("load default contract: %v", err)
	}

	valid := []byte(`{"title":"T","question_type":"multiple_choice","questions":[{"text":"Q","options":["A","B"]}],"recipient_email":"a@b.co"}`)
	if err := c.ValidateCreate(context.Background(), valid); err != nil {
		t.Fatalf("expected valid body, got %v", err)
	}

	invalid := []byte(`{"title":"T","question_type":"essay","questions":[],"recipient_email":"a@b.co"}`)
	err = c.ValidateCreate(context.Background(), invalid)
	var contractErr *contract.ContractError
	if !errors.As(err, &contractErr) {
		t.Fatalf("expected ContractError, got %v", err)
	}
	paths := map[string]bool{}
	for _, issue := range contractErr.Issues {
		paths[issue.Path()] = true
	}
	for _, want := range []string{"question_type", "questions"} {
		if !paths[want] {
			t.Fatalf("expected issue for %q, got %+v", want, contractErr.Issues)
		}
	}

	if err := c.ValidateCreate(context.Background(), []byte("{")); !errors.As(err, &contractErr) {
		t.Fatalf("expected ContractError for malformed JSON, got %v", err)
	}
}

func TestLoad_RequiresCreateOperation(t *testing.T) {
	raw := []byte(`openapi: 3.0.3
info: {title: x, version: "1"}
paths:
  /surveys/:
    get:
      operationId: listSurveys
      responses:
        "200": {description: ok}
`)
	if _, err := contract.Load(context.Background(), raw); err == nil {
		t.Fatalf("expected missing create operation error")
	}
	if _, err := contract.Load(context.Background(), nil); err == nil {
		t.Fatalf("expected empty payload error")
	}
}
