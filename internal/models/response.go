package models

// uniform error responses
type ErrorResponse struct {
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Details []ValidationErrorDetail `json:"details,omitempty"`
}

func (e *ErrorResponse) Error() string {
	return e.Message
}

// single field validation error
type ValidationErrorDetail struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type DuplicateCheckResponse struct {
	Duplicates    []string `json:"duplicates"`
	HasDuplicates bool     `json:"has_duplicates"`
	Message       string   `json:"message"`
}

type HealthResponse struct {
	Status           string `json:"status"`
	Message          string `json:"message"`
	Version          string `json:"version"`
	ActiveInterviews int    `json:"active_interviews"`
}
