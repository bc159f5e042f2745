package session

import (
	"time"

	"go.uber.org/zap"

	"talentscout/screening/internal/metrics"
)

// spawnMonitorLocked starts a timer monitor for the current question.
// Caller holds the session lock.
func (m *Manager) spawnMonitorLocked(s *Session) {
	m.monitorMu.Lock()
	defer m.monitorMu.Unlock()
	if m.stopped {
		return
	}
	s.monitoredQuestion = s.QuestionCount
	m.monitors.Add(1)
	go m.monitor(s.ID, s.QuestionCount)
}

// monitor polls one question window. It exits silently once the session is
// gone, has left READY or moved on to another question; on expiry it races
// answer submission for the READY -> PROCESSING transition.
func (m *Manager) monitor(id string, question int) {
	defer m.monitors.Done()
	defer m.store.With(id, func(s *Session) {
		if s.monitoredQuestion == question {
			s.monitoredQuestion = 0
		}
	})

	ticker := time.NewTicker(m.cfg.MonitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
		}

		done := true
		err := m.store.With(id, func(s *Session) {
			if s.Status != StatusReady || s.QuestionCount != question {
				return
			}
			if m.now().Sub(s.QuestionStartedAt) < s.TimeLimit {
				done = false
				return
			}
			if m.beginProcessingLocked(s, TimeoutAnswer, s.TimeLimit) {
				metrics.AnswerRecorded(metrics.SourceTimeout)
				m.logger.Info("Question timed out",
					zap.String("session_id", id),
					zap.Int("question_count", question),
				)
			}
		})
		if err != nil || done {
			return
		}
	}
}
