package oracle

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"talentscout/screening/internal/difficulty"
	"talentscout/screening/internal/llm"
	"talentscout/screening/internal/prompts"
)

// Observer receives the outcome of every provider round-trip
type Observer func(operation, result string, elapsed time.Duration)

// LLMOracle renders prompts, calls the provider under a deadline and parses replies
type LLMOracle struct {
	provider llm.Provider
	prompts  prompts.PromptProvider
	timeout  time.Duration
	logger   *zap.Logger
	observe  Observer
}

func NewLLMOracle(provider llm.Provider, pm prompts.PromptProvider, timeout time.Duration, logger *zap.Logger) *LLMOracle {
	return &LLMOracle{
		provider: provider,
		prompts:  pm,
		timeout:  timeout,
		logger:   logger,
		observe:  func(string, string, time.Duration) {},
	}
}

func (o *LLMOracle) WithObserver(observe Observer) *LLMOracle {
	if observe != nil {
		o.observe = observe
	}
	return o
}

func (o *LLMOracle) GenerateQuestion(ctx context.Context, req QuestionRequest) (Question, error) {
	variant := "first"
	switch req.Strategy {
	case StrategyFollowup:
		variant = "followup"
	case StrategyNewTopic:
		variant = "new_topic"
	}

	prompt, err := o.prompts.BuildPrompt("question", variant, map[string]any{
		"TechStack":        req.Candidate.TechStack,
		"Position":         req.Candidate.Position,
		"ExperienceLevel":  difficulty.ExperienceLevel(req.Candidate.Experience),
		"Difficulty":       req.Difficulty,
		"PreviousQuestion": req.PreviousQuestion,
		"PreviousAnswer":   req.PreviousAnswer,
		"CoveredTopics":    req.CoveredTopics,
		"History":          req.History,
	})
	if err != nil {
		return Question{}, err
	}

	raw, err := o.call(ctx, "question", prompt)
	if err != nil {
		return Question{}, err
	}
	return cleanQuestion(raw)
}

func (o *LLMOracle) Evaluate(ctx context.Context, req EvaluationRequest) (Evaluation, error) {
	prompt, err := o.prompts.BuildPrompt("evaluate", prompts.DefaultVariant, map[string]any{
		"Question":         req.Question,
		"Answer":           req.Answer,
		"Difficulty":       req.Difficulty,
		"TimeTakenSeconds": int(req.TimeTaken.Seconds()),
		"TimeLimitSeconds": int(req.TimeLimit.Seconds()),
	})
	if err != nil {
		return Evaluation{}, err
	}

	raw, err := o.call(ctx, "evaluate", prompt)
	if err != nil {
		return Evaluation{}, err
	}
	eval, err := parseEvaluation(raw)
	if err != nil {
		o.logger.Warn("Unparseable evaluation", zap.String("raw", raw), zap.Error(err))
		return Evaluation{}, err
	}
	return eval, nil
}

func (o *LLMOracle) Rate(ctx context.Context, req RatingRequest) (float64, error) {
	if len(req.Scores) == 0 {
		return 0, nil
	}

	var totalScore, totalDifficulty float64
	passed := 0
	for _, s := range req.Scores {
		totalScore += s.Score
		totalDifficulty += s.Difficulty
		if s.Score >= 5 {
			passed++
		}
	}
	n := float64(len(req.Scores))

	prompt, err := o.prompts.BuildPrompt("rate", prompts.DefaultVariant, map[string]any{
		"Name":              req.Candidate.Name,
		"Experience":        req.Candidate.Experience,
		"Position":          req.Candidate.Position,
		"TechStack":         req.Candidate.TechStack,
		"Total":             len(req.Scores),
		"Passed":            passed,
		"AverageScore":      totalScore / n,
		"AverageDifficulty": totalDifficulty / n,
		"Scores":            req.Scores,
	})
	if err != nil {
		return 0, err
	}

	raw, err := o.call(ctx, "rate", prompt)
	if err != nil {
		return 0, err
	}
	rating, justification, err := parseRating(raw)
	if err != nil {
		o.logger.Warn("Unparseable rating", zap.String("raw", raw), zap.Error(err))
		return 0, err
	}
	o.logger.Info("Candidate rated",
		zap.Float64("rating", rating),
		zap.String("justification", justification),
	)
	return math.Round(rating*10) / 10, nil
}

func (o *LLMOracle) call(ctx context.Context, operation, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	resp, err := o.provider.GenerateContent(ctx, prompt, uuid.NewString())
	elapsed := time.Since(start)
	if err != nil {
		result := "error"
		wrapped := fmt.Errorf("%w: %v", ErrUnavailable, err)
		var provErr *llm.ProviderError
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil ||
			(errors.As(err, &provErr) && provErr.Code == llm.ErrCodeTimeout) {
			result = "timeout"
			wrapped = fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		o.observe(operation, result, elapsed)
		o.logger.Error("Oracle call failed",
			zap.String("operation", operation),
			zap.String("provider", o.provider.GetProviderName()),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return "", wrapped
	}

	o.observe(operation, "success", elapsed)
	return resp.Content, nil
}
