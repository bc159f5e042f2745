package session

// Status is the lifecycle state of an interview session.
type Status string

const (
	StatusStarted    Status = "STARTED"
	StatusReady      Status = "READY"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusTerminated Status = "TERMINATED"
)

func (s Status) String() string { return string(s) }

// IsTerminal reports whether s is absorbing
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusTerminated:
		return true
	default:
		return false
	}
}

// IsActive reports whether the candidate is mid-interview; violations only count then
func (s Status) IsActive() bool {
	switch s {
	case StatusReady, StatusProcessing:
		return true
	default:
		return false
	}
}

type QuestionType string

const (
	QuestionFollowup QuestionType = "FOLLOWUP"
	QuestionNewTopic QuestionType = "NEW_TOPIC"
)
