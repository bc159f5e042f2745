package session

import (
	"time"

	"talentscout/screening/internal/oracle"
	"talentscout/screening/internal/persistence"
)

// TimeoutAnswer is recorded in place of an answer when the question window expires
const TimeoutAnswer = "[AUTO-SUBMITTED: TIME EXPIRED]"

// immutable snapshot taken at start
type CandidateInfo struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	Experience float64 `json:"experience"`
	Position   string  `json:"position"`
	Location   string  `json:"location"`
	TechStack  string  `json:"tech_stack"`
}

type Answer struct {
	Question    string        `json:"question"`
	Text        string        `json:"answer"`
	SubmittedAt time.Time     `json:"submitted_at"`
	TimeTaken   time.Duration `json:"time_taken"`
}

type Score struct {
	Question   string  `json:"question"`
	Difficulty float64 `json:"difficulty"`
	Score      float64 `json:"score"`
	Passed     bool    `json:"passed"`
}

type Session struct {
	ID        string
	Candidate CandidateInfo
	Status    Status

	Difficulty        float64
	QuestionCount     int
	CurrentQuestion   string
	QuestionStartedAt time.Time
	TimeLimit         time.Duration

	Answers          []Answer
	Scores           []Score
	QuestionHistory  []string
	CoveredTopics    []string
	LastQuestionType QuestionType // empty until the first strategy decision

	Violations       int
	IsTerminated     bool
	FullscreenExits  int
	FullscreenActive bool

	Rating    *float64
	StartedAt time.Time
	EndedAt   *time.Time

	// question number watched by the newest live monitor, 0 if none
	monitoredQuestion int
}

func (s *Session) clone() Session {
	c := *s
	c.Answers = append([]Answer(nil), s.Answers...)
	c.Scores = append([]Score(nil), s.Scores...)
	c.QuestionHistory = append([]string(nil), s.QuestionHistory...)
	c.CoveredTopics = append([]string(nil), s.CoveredTopics...)
	if s.Rating != nil {
		r := *s.Rating
		c.Rating = &r
	}
	if s.EndedAt != nil {
		t := *s.EndedAt
		c.EndedAt = &t
	}
	return c
}

func (s *Session) addTopic(topic string) {
	if topic == "" {
		return
	}
	for _, t := range s.CoveredTopics {
		if t == topic {
			return
		}
	}
	s.CoveredTopics = append(s.CoveredTopics, topic)
}

func (s *Session) scoreValues() []float64 {
	values := make([]float64, len(s.Scores))
	for i, sc := range s.Scores {
		values[i] = sc.Score
	}
	return values
}

func (s *Session) oracleCandidate() oracle.Candidate {
	return oracle.Candidate{
		Name:       s.Candidate.Name,
		Experience: s.Candidate.Experience,
		Position:   s.Candidate.Position,
		TechStack:  s.Candidate.TechStack,
	}
}

func (s *Session) interviewUpdate() persistence.InterviewUpdate {
	update := persistence.InterviewUpdate{
		SessionID:     s.ID,
		Status:        s.Status.String(),
		Violations:    s.Violations,
		Difficulty:    s.Difficulty,
		QuestionCount: s.QuestionCount,
	}
	if s.EndedAt != nil {
		t := *s.EndedAt
		update.EndedAt = &t
	}
	if s.Rating != nil {
		r := *s.Rating
		update.Rating = &r
	}
	return update
}
