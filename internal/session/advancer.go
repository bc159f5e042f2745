package session

import (
	"context"

	"go.uber.org/zap"

	"talentscout/screening/internal/difficulty"
	"talentscout/screening/internal/metrics"
	"talentscout/screening/internal/oracle"
	"talentscout/screening/internal/persistence"
)

// what the advancer needs from the session between lock sections
type pending struct {
	answer     Answer
	kind       AnswerKind
	difficulty float64
}

// advance scores the latest answer and either completes the session or
// prepares the next question. Oracle calls happen with the lock released;
// every write re-checks that the session is still PROCESSING, so a
// termination that lands mid-flight wins.
func (m *Manager) advance(ctx context.Context, id string) {
	var (
		p  pending
		ok bool
	)
	m.store.With(id, func(s *Session) {
		if s.Status != StatusProcessing || len(s.Answers) == 0 {
			return
		}
		last := s.Answers[len(s.Answers)-1]
		p = pending{answer: last, kind: ClassifyAnswer(last.Text), difficulty: s.Difficulty}
		ok = true
	})
	if !ok {
		return
	}

	eval := m.evaluate(ctx, id, p)

	var (
		stop        bool
		complete    bool
		ratingReq   oracle.RatingRequest
		questionReq oracle.QuestionRequest
		scores      []float64
	)
	m.store.With(id, func(s *Session) {
		record := persistence.QuestionRecord{
			SessionID:    s.ID,
			QuestionText: p.answer.Question,
			AnswerText:   p.answer.Text,
			Difficulty:   p.difficulty,
			TimeTaken:    int(p.answer.TimeTaken.Seconds()),
			AnsweredAt:   p.answer.SubmittedAt,
		}
		if s.Status != StatusProcessing {
			// terminated mid-flight: keep the answer on record, drop the score
			record.Unscored = true
			m.sink.QuestionAnswered(record)
			stop = true
			return
		}

		s.Scores = append(s.Scores, Score{
			Question:   p.answer.Question,
			Difficulty: p.difficulty,
			Score:      eval.Score,
			Passed:     eval.Passed,
		})
		record.Score = eval.Score
		record.Passed = eval.Passed
		m.sink.QuestionAnswered(record)
		s.Difficulty = difficulty.Next(s.Difficulty, eval.Passed)
		s.QuestionCount++
		scores = s.scoreValues()

		m.logger.Info("Answer scored",
			zap.String("session_id", s.ID),
			zap.Int("question_count", s.QuestionCount),
			zap.Float64("score", eval.Score),
			zap.Bool("passed", eval.Passed),
			zap.Float64("difficulty", s.Difficulty),
		)

		if s.QuestionCount > m.cfg.MaxQuestions {
			complete = true
			ratingReq = oracle.RatingRequest{Candidate: s.oracleCandidate()}
			for _, sc := range s.Scores {
				ratingReq.Scores = append(ratingReq.Scores, oracle.ScoredAnswer{
					Difficulty: sc.Difficulty,
					Score:      sc.Score,
					Passed:     sc.Passed,
				})
			}
			return
		}

		next := m.selector.Choose(p.kind, s.LastQuestionType, s.QuestionCount)
		s.LastQuestionType = next
		questionReq = oracle.QuestionRequest{
			Candidate:        s.oracleCandidate(),
			Difficulty:       s.Difficulty,
			Strategy:         oracle.StrategyNewTopic,
			PreviousQuestion: p.answer.Question,
			PreviousAnswer:   p.answer.Text,
			CoveredTopics:    append([]string(nil), s.CoveredTopics...),
			History:          append([]string(nil), s.QuestionHistory...),
		}
		if next == QuestionFollowup {
			questionReq.Strategy = oracle.StrategyFollowup
		}
	})
	if stop {
		return
	}

	if complete {
		rating, err := m.oracle.Rate(ctx, ratingReq)
		if err != nil {
			rating = oracle.FallbackRating(scores)
			m.logger.Warn("Rating failed, using score average",
				zap.String("session_id", id),
				zap.Float64("rating", rating),
				zap.Error(err),
			)
		}
		m.finish(id, rating, metrics.OutcomeCompleted)
		return
	}

	q, err := m.oracle.GenerateQuestion(ctx, questionReq)
	if err != nil {
		m.forceComplete(id, err)
		return
	}

	m.store.With(id, func(s *Session) {
		if s.Status != StatusProcessing {
			return
		}
		s.CurrentQuestion = q.Text
		s.QuestionHistory = append(s.QuestionHistory, q.Text)
		s.addTopic(q.Topic)
		s.QuestionStartedAt = m.now()
		s.Status = StatusReady
		m.sink.InterviewUpdated(s.interviewUpdate())
		m.spawnMonitorLocked(s)
	})
}

// evaluate scores skip and timeout answers locally; an oracle failure
// counts as a failed answer rather than ending the interview
func (m *Manager) evaluate(ctx context.Context, id string, p pending) oracle.Evaluation {
	if p.kind != AnswerGiven {
		return oracle.Evaluation{Passed: false, Score: 0}
	}
	eval, err := m.oracle.Evaluate(ctx, oracle.EvaluationRequest{
		Question:   p.answer.Question,
		Answer:     p.answer.Text,
		Difficulty: p.difficulty,
		TimeTaken:  p.answer.TimeTaken,
		TimeLimit:  m.cfg.TimeLimit,
	})
	if err != nil {
		m.logger.Warn("Evaluation failed, scoring answer as failed",
			zap.String("session_id", id),
			zap.Error(err),
		)
		return oracle.Evaluation{Passed: false, Score: 0}
	}
	return eval
}

// finish completes a session still in PROCESSING
func (m *Manager) finish(id string, rating float64, outcome string) {
	var (
		snap Session
		done bool
	)
	m.store.With(id, func(s *Session) {
		if s.Status != StatusProcessing {
			return
		}
		m.completeLocked(s, rating)
		snap = s.clone()
		done = true
	})
	if done {
		m.finished(snap, outcome)
	}
}

// forceComplete ends a session whose advancer failed or panicked, rating it
// from the scores recorded so far
func (m *Manager) forceComplete(id string, cause error) {
	var (
		snap Session
		done bool
	)
	m.store.With(id, func(s *Session) {
		if s.Status != StatusProcessing {
			return
		}
		m.completeLocked(s, oracle.FallbackRating(s.scoreValues()))
		snap = s.clone()
		done = true
	})
	if done {
		m.logger.Error("Interview force-completed",
			zap.String("session_id", id),
			zap.Error(cause),
		)
		m.finished(snap, metrics.OutcomeForceCompleted)
	}
}
