package session

import (
	"context"

	"go.uber.org/zap"

	"talentscout/screening/internal/metrics"
)

type ViolationResult struct {
	ViolationCount    int  `json:"violation_count"`
	Terminated        bool `json:"terminated"`
	RemainingWarnings int  `json:"remaining_warnings"`
	Counted           bool `json:"counted"`
}

type ViolationStatus struct {
	ViolationCount    int `json:"violation_count"`
	MaxViolations     int `json:"max_violations"`
	RemainingWarnings int `json:"remaining_warnings"`
}

type FullscreenResult struct {
	ExitCount         int  `json:"exit_count"`
	Terminated        bool `json:"terminated"`
	RemainingWarnings int  `json:"remaining_warnings"`
}

type FullscreenState struct {
	Active bool `json:"fullscreen_active"`
}

func remaining(threshold, count int) int {
	if count >= threshold {
		return 0
	}
	return threshold - count
}

// ReportViolation counts a violation while the interview is active and
// terminates the session once the threshold is reached. Reports outside the
// active window are acknowledged without counting.
func (m *Manager) ReportViolation(ctx context.Context, id, violationType string) (ViolationResult, error) {
	threshold := m.cfg.ViolationThreshold
	var (
		result     ViolationResult
		terminated bool
		snap       Session
	)
	err := m.store.With(id, func(s *Session) {
		if !s.Status.IsActive() {
			result = ViolationResult{
				ViolationCount:    s.Violations,
				Terminated:        s.Status == StatusTerminated,
				RemainingWarnings: remaining(threshold, s.Violations),
			}
			return
		}

		s.Violations++
		metrics.ViolationRecorded()
		m.logger.Warn("Policy violation",
			zap.String("session_id", id),
			zap.String("type", violationType),
			zap.Int("violations", s.Violations),
			zap.Int("threshold", threshold),
		)

		if s.Violations >= threshold {
			m.terminateLocked(s)
			terminated = true
			snap = s.clone()
		} else {
			m.sink.InterviewUpdated(s.interviewUpdate())
		}
		result = ViolationResult{
			ViolationCount:    s.Violations,
			Terminated:        terminated,
			RemainingWarnings: remaining(threshold, s.Violations),
			Counted:           true,
		}
	})
	if err != nil {
		return ViolationResult{}, err
	}
	if terminated {
		m.finished(snap, metrics.OutcomeTerminated)
	}
	return result, nil
}

func (m *Manager) GetViolations(ctx context.Context, id string) (ViolationStatus, error) {
	s, ok := m.store.Get(id)
	if !ok {
		return ViolationStatus{}, ErrNotFound
	}
	return ViolationStatus{
		ViolationCount:    s.Violations,
		MaxViolations:     m.cfg.ViolationThreshold,
		RemainingWarnings: remaining(m.cfg.ViolationThreshold, s.Violations),
	}, nil
}

// RecordFullscreenExit counts an exit from fullscreen. The result is advisory:
// it never changes the session status, callers terminate explicitly.
func (m *Manager) RecordFullscreenExit(ctx context.Context, id string) (FullscreenResult, error) {
	threshold := m.cfg.FullscreenExitThreshold
	var result FullscreenResult
	err := m.store.With(id, func(s *Session) {
		if s.Status.IsActive() {
			s.FullscreenExits++
			s.FullscreenActive = false
		}
		result = FullscreenResult{
			ExitCount:         s.FullscreenExits,
			Terminated:        s.FullscreenExits >= threshold,
			RemainingWarnings: remaining(threshold, s.FullscreenExits),
		}
	})
	return result, err
}

func (m *Manager) SetFullscreen(ctx context.Context, id string, active bool) (FullscreenState, error) {
	var state FullscreenState
	err := m.store.With(id, func(s *Session) {
		s.FullscreenActive = active
		state.Active = active
	})
	if err == nil && !active {
		m.logger.Info("Fullscreen exited", zap.String("session_id", id))
	}
	return state, err
}
