package models

import (
	"strings"
	"testing"
)

func expectErrCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error code %s but got nil", code)
	}
	resp, ok := err.(*ErrorResponse)
	if !ok {
		t.Fatalf("expected ErrorResponse, got %T", err)
	}
	if resp.Code != code {
		t.Fatalf("expected error code %s, got %s", code, resp.Code)
	}
}

func TestErrorResponse_Error(t *testing.T) {
	err := &ErrorResponse{Message: "failed"}
	if err.Error() != "failed" {
		t.Fatalf("expected message to be returned, got %s", err.Error())
	}
}

func TestKnownViolationTypesList(t *testing.T) {
	for _, v := range KnownViolationTypesList() {
		if !KnownViolationTypes[v] {
			t.Fatalf("%s listed but not known", v)
		}
	}
	if len(KnownViolationTypesList()) != len(KnownViolationTypes) {
		t.Fatal("list and map out of sync")
	}
}

func TestStartInterviewRequestValidate(t *testing.T) {
	valid := func() *StartInterviewRequest {
		return &StartInterviewRequest{Name: "Ada", Email: "ada@example.com", Experience: 2, TechStack: "Go"}
	}

	t.Run("valid", func(t *testing.T) {
		if err := valid().Validate(); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("missing name", func(t *testing.T) {
		req := valid()
		req.Name = "  "
		expectErrCode(t, req.Validate(), "missing_name")
	})

	t.Run("missing email", func(t *testing.T) {
		req := valid()
		req.Email = ""
		expectErrCode(t, req.Validate(), "missing_email")
	})

	t.Run("invalid email", func(t *testing.T) {
		req := valid()
		req.Email = "ada.example.com"
		expectErrCode(t, req.Validate(), "invalid_email")
	})

	t.Run("missing tech stack", func(t *testing.T) {
		req := valid()
		req.TechStack = ""
		expectErrCode(t, req.Validate(), "missing_tech_stack")
	})

	t.Run("negative experience", func(t *testing.T) {
		req := valid()
		req.Experience = -1
		expectErrCode(t, req.Validate(), "invalid_experience")
	})

	t.Run("zero experience is allowed", func(t *testing.T) {
		req := valid()
		req.Experience = 0
		if err := req.Validate(); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})
}

func TestAnswerRequestValidate(t *testing.T) {
	if err := (&AnswerRequest{Answer: ""}).Validate(); err != nil {
		t.Fatalf("empty answers are allowed, got %v", err)
	}
	req := &AnswerRequest{Answer: strings.Repeat("a", MaxAnswerLength+1)}
	expectErrCode(t, req.Validate(), "answer_too_long")
}

func TestViolationRequestValidate(t *testing.T) {
	req := &ViolationRequest{Type: "  Tab_Switch "}
	if err := req.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Type != "tab_switch" {
		t.Fatalf("expected normalised type, got %q", req.Type)
	}

	empty := &ViolationRequest{}
	if err := empty.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if empty.Type != UnknownViolation {
		t.Fatalf("expected default type, got %q", empty.Type)
	}

	long := &ViolationRequest{Type: strings.Repeat("x", MaxViolationType+1)}
	expectErrCode(t, long.Validate(), "invalid_violation_type")
}

func TestFullscreenRequestValidate(t *testing.T) {
	expectErrCode(t, (&FullscreenRequest{}).Validate(), "missing_active")

	active := false
	if err := (&FullscreenRequest{Active: &active}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDuplicateCheckRequestValidate(t *testing.T) {
	expectErrCode(t, (&DuplicateCheckRequest{}).Validate(), "missing_contact")

	if err := (&DuplicateCheckRequest{Phone: "+65 9123 4567"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
