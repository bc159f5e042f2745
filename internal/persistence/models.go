package persistence

import (
	"time"

	"gorm.io/gorm"
)

type Candidate struct {
	gorm.Model
	Name       string  `gorm:"size:100" json:"name"`
	Email      string  `gorm:"size:150;uniqueIndex" json:"email"`
	Phone      string  `gorm:"size:20;index" json:"phone"`
	Experience float64 `json:"experience"`
	Position   string  `gorm:"size:100" json:"position"`
	Location   string  `gorm:"size:200" json:"location"`
	TechStack  string  `gorm:"type:text" json:"tech_stack"`
}

type Interview struct {
	gorm.Model
	SessionID       string           `gorm:"size:64;uniqueIndex" json:"session_id"`
	CandidateID     uint             `gorm:"index" json:"candidate_id"`
	Candidate       Candidate        `json:"candidate"`
	Status          string           `gorm:"size:50;index" json:"status"`
	StartedAt       time.Time        `json:"started_at"`
	EndedAt         *time.Time       `json:"ended_at,omitempty"`
	CandidateRating *float64         `json:"candidate_rating,omitempty"`
	Violations      int              `json:"violations"`
	Difficulty      float64          `json:"difficulty"`
	QuestionCount   int              `json:"question_count"`
	Exported        bool             `gorm:"default:false;index" json:"-"`
	Questions       []QuestionRecord `gorm:"foreignKey:SessionID;references:SessionID" json:"questions,omitempty"`
}

// one scored question/answer pair
type QuestionRecord struct {
	gorm.Model
	SessionID    string    `gorm:"size:64;index" json:"session_id"`
	QuestionText string    `gorm:"type:text" json:"question"`
	AnswerText   string    `gorm:"type:text" json:"answer"`
	Difficulty   float64   `json:"difficulty"`
	Score        float64   `json:"score"`
	Passed       bool      `json:"passed"`
	TimeTaken    int       `json:"time_taken_seconds"`
	AnsweredAt   time.Time `json:"answered_at"`
	// answer submitted but the interview was terminated before it was scored
	Unscored bool `json:"unscored,omitempty"`
}

// fields that change after an interview is created
type InterviewUpdate struct {
	SessionID     string
	Status        string
	EndedAt       *time.Time
	Rating        *float64
	Violations    int
	Difficulty    float64
	QuestionCount int
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Candidate{}, &Interview{}, &QuestionRecord{})
}
