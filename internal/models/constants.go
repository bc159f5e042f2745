package models

const (
	MaxExperienceYears = 60
	MaxAnswerLength    = 20000
	MaxViolationType   = 64

	// reported by clients that send no body
	UnknownViolation = "unknown"
)

// violation types the proctoring client is known to send (in lowercase)
var KnownViolationTypes = map[string]bool{
	"tab_switch":        true,
	"window_blur":       true,
	"copy_paste":        true,
	"right_click":       true,
	"keyboard_shortcut": true,
	"devtools":          true,
	UnknownViolation:    true,
}

func KnownViolationTypesList() []string {
	return []string{"tab_switch", "window_blur", "copy_paste", "right_click", "keyboard_shortcut", "devtools", UnknownViolation}
}
