// Package session runs interview sessions: it owns their state, enforces the
// per-question time limit, advances them through the oracle and applies the
// violation policy.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"talentscout/screening/internal/difficulty"
	"talentscout/screening/internal/events"
	"talentscout/screening/internal/metrics"
	"talentscout/screening/internal/oracle"
	"talentscout/screening/internal/persistence"
	"talentscout/screening/internal/workers"
)

var (
	ErrNotFound            = errors.New("interview not found")
	ErrSessionClosed       = errors.New("interview already finished")
	ErrQuestionUnavailable = errors.New("could not generate a question")
)

const (
	SubmitProcessing        = "processing"
	SubmitAlreadyProcessing = "already_processing"
)

type Config struct {
	MaxQuestions            int
	TimeLimit               time.Duration
	MonitorInterval         time.Duration
	ViolationThreshold      int
	FullscreenExitThreshold int
}

type Manager struct {
	cfg      Config
	store    *Store
	oracle   oracle.Oracle
	selector *Selector
	pool     *workers.Pool
	sink     persistence.Sink
	events   events.Publisher
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string

	// cancelled on Shutdown to stop monitors
	ctx    context.Context
	cancel context.CancelFunc

	// stopped is set under monitorMu before monitors.Wait, so no monitor
	// is added once Shutdown has begun waiting
	monitorMu sync.Mutex
	stopped   bool
	monitors  sync.WaitGroup
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithSelector(selector *Selector) Option {
	return func(m *Manager) { m.selector = selector }
}

func WithSink(sink persistence.Sink) Option {
	return func(m *Manager) { m.sink = sink }
}

func WithPublisher(publisher events.Publisher) Option {
	return func(m *Manager) { m.events = publisher }
}

func WithIDGenerator(newID func() string) Option {
	return func(m *Manager) { m.newID = newID }
}

func NewManager(cfg Config, o oracle.Oracle, pool *workers.Pool, logger *zap.Logger, opts ...Option) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		cfg:      cfg,
		store:    NewStore(),
		oracle:   o,
		selector: NewSelector(0),
		pool:     pool,
		sink:     persistence.NopSink{},
		events:   events.NopPublisher{},
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type StartResult struct {
	SessionID        string  `json:"interview_id"`
	Question         string  `json:"question"`
	QuestionNumber   int     `json:"question_number"`
	TotalQuestions   int     `json:"total_questions"`
	TimeLimitSeconds int     `json:"time_limit"`
	Difficulty       float64 `json:"difficulty"`
}

// StartSession fetches the first question and only then creates the session,
// so a failed oracle call leaves nothing behind.
func (m *Manager) StartSession(ctx context.Context, info CandidateInfo) (StartResult, error) {
	initial := difficulty.Initial(info.Experience)

	sess := &Session{
		ID:               m.newID(),
		Candidate:        info,
		Status:           StatusStarted,
		Difficulty:       initial,
		TimeLimit:        m.cfg.TimeLimit,
		FullscreenActive: true,
	}

	q, err := m.oracle.GenerateQuestion(ctx, oracle.QuestionRequest{
		Candidate:  sess.oracleCandidate(),
		Difficulty: initial,
		Strategy:   oracle.StrategyFirst,
	})
	if err != nil {
		m.logger.Error("First question generation failed", zap.Error(err))
		return StartResult{}, fmt.Errorf("%w: %v", ErrQuestionUnavailable, err)
	}

	now := m.now()
	sess.StartedAt = now
	sess.QuestionCount = 1
	sess.CurrentQuestion = q.Text
	sess.QuestionStartedAt = now
	sess.QuestionHistory = []string{q.Text}
	sess.addTopic(q.Topic)
	sess.Status = StatusReady

	if err := m.store.Insert(sess); err != nil {
		return StartResult{}, err
	}

	var result StartResult
	m.store.With(sess.ID, func(s *Session) {
		m.spawnMonitorLocked(s)
		m.sink.InterviewStarted(
			persistence.Candidate{
				Name:       info.Name,
				Email:      info.Email,
				Phone:      info.Phone,
				Experience: info.Experience,
				Position:   info.Position,
				Location:   info.Location,
				TechStack:  info.TechStack,
			},
			persistence.Interview{
				SessionID:     s.ID,
				Status:        s.Status.String(),
				StartedAt:     s.StartedAt,
				Difficulty:    s.Difficulty,
				QuestionCount: s.QuestionCount,
			},
		)
		result = StartResult{
			SessionID:        s.ID,
			Question:         s.CurrentQuestion,
			QuestionNumber:   s.QuestionCount,
			TotalQuestions:   m.cfg.MaxQuestions,
			TimeLimitSeconds: int(m.cfg.TimeLimit.Seconds()),
			Difficulty:       s.Difficulty,
		}
	})

	metrics.SessionStarted()
	m.publish(events.Event{Type: events.TypeStarted, SessionID: sess.ID, Status: StatusReady.String(), QuestionCount: 1})
	m.logger.Info("Interview started",
		zap.String("session_id", sess.ID),
		zap.Float64("difficulty", initial),
	)
	return result, nil
}

type SubmitResult struct {
	Status string `json:"status"`
}

// SubmitAnswer records the answer to the outstanding question and hands the
// session to the advancer. A session already processing is not an error.
func (m *Manager) SubmitAnswer(ctx context.Context, id, question, answer string) (SubmitResult, error) {
	var (
		result SubmitResult
		err    error
	)
	found := m.store.With(id, func(s *Session) {
		switch s.Status {
		case StatusProcessing:
			result.Status = SubmitAlreadyProcessing
			return
		case StatusCompleted, StatusTerminated:
			err = ErrSessionClosed
			return
		}

		if question != "" && question != s.CurrentQuestion {
			m.logger.Debug("Answer references a different question text",
				zap.String("session_id", id),
				zap.Int("question_count", s.QuestionCount),
			)
		}
		timeTaken := m.now().Sub(s.QuestionStartedAt)
		if timeTaken > s.TimeLimit {
			timeTaken = s.TimeLimit
		}
		if timeTaken < 0 {
			timeTaken = 0
		}
		if !m.beginProcessingLocked(s, answer, timeTaken) {
			result.Status = SubmitAlreadyProcessing
			return
		}
		metrics.AnswerRecorded(metrics.SourceCandidate)
		result.Status = SubmitProcessing
	})
	if found != nil {
		return SubmitResult{}, found
	}
	return result, err
}

type NextQuestion struct {
	Completed      bool   `json:"completed"`
	Terminated     bool   `json:"terminated,omitempty"`
	Status         string `json:"status"`
	Question       string `json:"question,omitempty"`
	QuestionNumber int    `json:"question_number,omitempty"`
	TotalQuestions int    `json:"total_questions,omitempty"`
}

func (m *Manager) PollNextQuestion(ctx context.Context, id string) (NextQuestion, error) {
	var next NextQuestion
	err := m.store.With(id, func(s *Session) {
		next.Status = s.Status.String()
		switch s.Status {
		case StatusCompleted:
			next.Completed = true
		case StatusTerminated:
			next.Terminated = true
		case StatusReady:
			if s.monitoredQuestion != s.QuestionCount {
				m.spawnMonitorLocked(s)
			}
			next.Question = s.CurrentQuestion
			next.QuestionNumber = s.QuestionCount
			next.TotalQuestions = m.cfg.MaxQuestions
		}
	})
	return next, err
}

type TimerState struct {
	RemainingSeconds int  `json:"remaining"`
	ElapsedSeconds   int  `json:"elapsed"`
	TimedOut         bool `json:"timeout"`
}

func (m *Manager) PollTimer(ctx context.Context, id string) (TimerState, error) {
	var state TimerState
	err := m.store.With(id, func(s *Session) {
		switch s.Status {
		case StatusReady:
			elapsed := int(m.now().Sub(s.QuestionStartedAt).Seconds())
			remaining := int(s.TimeLimit.Seconds()) - elapsed
			if remaining < 0 {
				remaining = 0
			}
			state = TimerState{RemainingSeconds: remaining, ElapsedSeconds: elapsed, TimedOut: remaining == 0}
		case StatusProcessing:
			last := s.Answers[len(s.Answers)-1]
			state.TimedOut = last.Text == TimeoutAnswer
		}
	})
	return state, err
}

type TerminateResult struct {
	Status     string `json:"status"`
	Terminated bool   `json:"terminated"`
}

// Terminate forcibly ends an active session. COMPLETED stays COMPLETED.
func (m *Manager) Terminate(ctx context.Context, id string) (TerminateResult, error) {
	var (
		result  TerminateResult
		changed bool
		snap    Session
	)
	err := m.store.With(id, func(s *Session) {
		if !s.Status.IsTerminal() {
			m.terminateLocked(s)
			changed = true
			snap = s.clone()
		}
		result = TerminateResult{Status: s.Status.String(), Terminated: s.Status == StatusTerminated}
	})
	if err != nil {
		return TerminateResult{}, err
	}
	if changed {
		m.finished(snap, metrics.OutcomeTerminated)
	}
	return result, nil
}

type StatusView struct {
	Status         string `json:"status"`
	IsTerminated   bool   `json:"is_terminated"`
	Completed      bool   `json:"completed"`
	QuestionCount  int    `json:"question_count"`
	ViolationCount int    `json:"violation_count"`
}

func (m *Manager) GetStatus(ctx context.Context, id string) (StatusView, error) {
	s, ok := m.store.Get(id)
	if !ok {
		return StatusView{}, ErrNotFound
	}
	return StatusView{
		Status:         s.Status.String(),
		IsTerminated:   s.IsTerminated,
		Completed:      s.Status.IsTerminal(),
		QuestionCount:  s.QuestionCount,
		ViolationCount: s.Violations,
	}, nil
}

type CheckView struct {
	Exists        bool   `json:"exists"`
	Completed     bool   `json:"completed"`
	Status        string `json:"status,omitempty"`
	QuestionCount int    `json:"question_count,omitempty"`
}

// CheckSession never fails; an unknown id reports Exists=false
func (m *Manager) CheckSession(ctx context.Context, id string) CheckView {
	s, ok := m.store.Get(id)
	if !ok {
		return CheckView{}
	}
	return CheckView{
		Exists:        true,
		Completed:     s.Status.IsTerminal() || s.IsTerminated,
		Status:        s.Status.String(),
		QuestionCount: s.QuestionCount,
	}
}

type Summary struct {
	SessionID         string        `json:"interview_id"`
	Candidate         CandidateInfo `json:"candidate"`
	Status            string        `json:"status"`
	QuestionsAnswered int           `json:"questions_answered"`
	TotalQuestions    int           `json:"total_questions"`
	Violations        int           `json:"violations"`
	Terminated        bool          `json:"terminated"`
	Difficulty        float64       `json:"difficulty_level"`
	Rating            *float64      `json:"candidate_rating"`
	CoveredTopics     []string      `json:"covered_topics"`
	Scores            []Score       `json:"scores"`
	StartedAt         time.Time     `json:"started_at"`
	EndedAt           *time.Time    `json:"ended_at,omitempty"`
}

func (m *Manager) GetSummary(ctx context.Context, id string) (Summary, error) {
	s, ok := m.store.Get(id)
	if !ok {
		return Summary{}, ErrNotFound
	}
	return Summary{
		SessionID:         s.ID,
		Candidate:         s.Candidate,
		Status:            s.Status.String(),
		QuestionsAnswered: len(s.Answers),
		TotalQuestions:    s.QuestionCount,
		Violations:        s.Violations,
		Terminated:        s.IsTerminated,
		Difficulty:        s.Difficulty,
		Rating:            s.Rating,
		CoveredTopics:     s.CoveredTopics,
		Scores:            s.Scores,
		StartedAt:         s.StartedAt,
		EndedAt:           s.EndedAt,
	}, nil
}

// ActiveCount counts sessions in READY or PROCESSING
func (m *Manager) ActiveCount() int {
	return m.store.CountByStatus(StatusReady, StatusProcessing)
}

func (m *Manager) Len() int {
	return m.store.Len()
}

// Shutdown stops all timer monitors. Advancer tasks belong to the worker pool
// and are drained by closing it.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.monitorMu.Lock()
	m.stopped = true
	m.monitorMu.Unlock()
	m.cancel()

	done := make(chan struct{})
	go func() {
		m.monitors.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// beginProcessingLocked is the single READY -> PROCESSING transition shared
// by answer submission and timer expiry. Caller holds the session lock.
func (m *Manager) beginProcessingLocked(s *Session, text string, timeTaken time.Duration) bool {
	if s.Status != StatusReady {
		return false
	}
	s.Answers = append(s.Answers, Answer{
		Question:    s.CurrentQuestion,
		Text:        text,
		SubmittedAt: m.now(),
		TimeTaken:   timeTaken,
	})
	s.Status = StatusProcessing

	id := s.ID
	err := m.pool.Submit("advance:"+id, func(ctx context.Context) {
		m.advance(ctx, id)
	}, func(err error) {
		m.forceComplete(id, err)
	})
	if err != nil {
		m.logger.Error("Could not schedule advancer", zap.String("session_id", id), zap.Error(err))
		m.completeLocked(s, oracle.FallbackRating(s.scoreValues()))
		snap := s.clone()
		go m.finished(snap, metrics.OutcomeForceCompleted)
	}
	return true
}

func (m *Manager) terminateLocked(s *Session) {
	now := m.now()
	s.Status = StatusTerminated
	s.IsTerminated = true
	s.EndedAt = &now
	s.Rating = nil
	m.sink.InterviewUpdated(s.interviewUpdate())
}

func (m *Manager) completeLocked(s *Session, rating float64) {
	now := m.now()
	s.Status = StatusCompleted
	s.Rating = &rating
	s.EndedAt = &now
	m.sink.InterviewUpdated(s.interviewUpdate())
}

// finished records the final transition outside the session lock
func (m *Manager) finished(s Session, outcome string) {
	metrics.SessionFinished(outcome)

	eventType := events.TypeCompleted
	if s.Status == StatusTerminated {
		eventType = events.TypeTerminated
	}
	m.publish(events.Event{
		Type:          eventType,
		SessionID:     s.ID,
		Status:        s.Status.String(),
		Rating:        s.Rating,
		Violations:    s.Violations,
		QuestionCount: s.QuestionCount,
	})

	fields := []zap.Field{
		zap.String("session_id", s.ID),
		zap.String("status", s.Status.String()),
		zap.String("outcome", outcome),
		zap.Int("question_count", s.QuestionCount),
		zap.Int("violations", s.Violations),
	}
	if s.Rating != nil {
		fields = append(fields, zap.Float64("rating", *s.Rating))
	}
	m.logger.Info("Interview finished", fields...)
}

func (m *Manager) publish(event events.Event) {
	event.At = m.now().UTC()
	m.events.Publish(context.Background(), event)
}
