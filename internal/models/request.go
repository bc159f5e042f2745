package models

import (
	"strings"
)

type StartInterviewRequest struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	Experience float64 `json:"experience"`
	Position   string  `json:"position"`
	Location   string  `json:"location"`
	TechStack  string  `json:"tech_stack"`
}

// implements the Validator interface
func (r *StartInterviewRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return &ErrorResponse{Code: "missing_name", Message: "name is required"}
	}
	if strings.TrimSpace(r.Email) == "" {
		return &ErrorResponse{Code: "missing_email", Message: "email is required"}
	}
	if !strings.Contains(r.Email, "@") {
		return &ErrorResponse{Code: "invalid_email", Message: "email must be a valid address"}
	}
	if strings.TrimSpace(r.TechStack) == "" {
		return &ErrorResponse{Code: "missing_tech_stack", Message: "tech_stack is required"}
	}
	if r.Experience < 0 || r.Experience > MaxExperienceYears {
		return &ErrorResponse{
			Code:    "invalid_experience",
			Message: "experience must be between 0 and 60 years",
			Details: []ValidationErrorDetail{{Field: "experience", Reason: "out of range"}},
		}
	}
	return nil
}

type AnswerRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func (r *AnswerRequest) Validate() error {
	if len(r.Answer) > MaxAnswerLength {
		return &ErrorResponse{Code: "answer_too_long", Message: "answer must not exceed 20000 characters"}
	}
	return nil
}

type ViolationRequest struct {
	Type string `json:"type"`
}

// Normalize lowercases the type and fills in the default for empty reports
func (r *ViolationRequest) Normalize() {
	r.Type = strings.ToLower(strings.TrimSpace(r.Type))
	if r.Type == "" {
		r.Type = UnknownViolation
	}
}

func (r *ViolationRequest) Validate() error {
	r.Normalize()
	if len(r.Type) > MaxViolationType {
		return &ErrorResponse{Code: "invalid_violation_type", Message: "violation type is too long"}
	}
	return nil
}

type FullscreenRequest struct {
	Active *bool `json:"active"`
}

func (r *FullscreenRequest) Validate() error {
	if r.Active == nil {
		return &ErrorResponse{Code: "missing_active", Message: "active is required"}
	}
	return nil
}

type DuplicateCheckRequest struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (r *DuplicateCheckRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" && strings.TrimSpace(r.Phone) == "" {
		return &ErrorResponse{Code: "missing_contact", Message: "email or phone is required"}
	}
	return nil
}
