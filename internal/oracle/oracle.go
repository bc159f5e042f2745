// Package oracle is the boundary to the language model that writes questions,
// grades answers and produces the final candidate rating.
package oracle

import (
	"context"
	"errors"
	"math"
	"time"
)

var (
	ErrTimeout           = errors.New("oracle: timed out")
	ErrMalformedResponse = errors.New("oracle: malformed response")
	ErrUnavailable       = errors.New("oracle: unavailable")
)

type Strategy string

const (
	StrategyFirst    Strategy = "FIRST"
	StrategyFollowup Strategy = "FOLLOWUP"
	StrategyNewTopic Strategy = "NEW_TOPIC"
)

type Oracle interface {
	GenerateQuestion(ctx context.Context, req QuestionRequest) (Question, error)
	Evaluate(ctx context.Context, req EvaluationRequest) (Evaluation, error)
	Rate(ctx context.Context, req RatingRequest) (float64, error)
}

type Candidate struct {
	Name       string
	Experience float64
	Position   string
	TechStack  string
}

type QuestionRequest struct {
	Candidate        Candidate
	Difficulty       float64
	Strategy         Strategy
	PreviousQuestion string
	PreviousAnswer   string
	CoveredTopics    []string
	History          []string
}

type Question struct {
	Text  string
	Topic string // empty when the model did not tag one
}

type EvaluationRequest struct {
	Question   string
	Answer     string
	Difficulty float64
	TimeTaken  time.Duration
	TimeLimit  time.Duration
}

type Evaluation struct {
	Passed bool
	Score  float64
}

type ScoredAnswer struct {
	Difficulty float64
	Score      float64
	Passed     bool
}

type RatingRequest struct {
	Candidate Candidate
	Scores    []ScoredAnswer
}

// FallbackRating maps the mean score on the 0..10 scale onto 0..5, rounded to one decimal.
func FallbackRating(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var total float64
	for _, s := range scores {
		total += s
	}
	rating := total / float64(len(scores)) / 10 * 5
	rating = math.Max(0, math.Min(5, rating))
	return math.Round(rating*10) / 10
}
