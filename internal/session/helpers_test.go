package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"talentscout/screening/internal/events"
	"talentscout/screening/internal/oracle"
	"talentscout/screening/internal/persistence"
	"talentscout/screening/internal/workers"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeOracle struct {
	mu         sync.Mutex
	generated  int
	evalCalls  int
	rateCalls  int
	strategies []oracle.Strategy

	generateFn func(req oracle.QuestionRequest, n int) (oracle.Question, error)
	evaluateFn func(req oracle.EvaluationRequest) (oracle.Evaluation, error)
	rateFn     func(req oracle.RatingRequest) (float64, error)
}

func (f *fakeOracle) GenerateQuestion(_ context.Context, req oracle.QuestionRequest) (oracle.Question, error) {
	f.mu.Lock()
	f.generated++
	n := f.generated
	f.strategies = append(f.strategies, req.Strategy)
	fn := f.generateFn
	f.mu.Unlock()

	if fn != nil {
		return fn(req, n)
	}
	return oracle.Question{Text: fmt.Sprintf("question %d", n), Topic: fmt.Sprintf("topic %d", n)}, nil
}

func (f *fakeOracle) Evaluate(_ context.Context, req oracle.EvaluationRequest) (oracle.Evaluation, error) {
	f.mu.Lock()
	f.evalCalls++
	fn := f.evaluateFn
	f.mu.Unlock()

	if fn != nil {
		return fn(req)
	}
	return oracle.Evaluation{Passed: true, Score: 7}, nil
}

func (f *fakeOracle) Rate(_ context.Context, req oracle.RatingRequest) (float64, error) {
	f.mu.Lock()
	f.rateCalls++
	fn := f.rateFn
	f.mu.Unlock()

	if fn != nil {
		return fn(req)
	}
	return 4.0, nil
}

func (f *fakeOracle) counts() (generated, evals, rates int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.generated, f.evalCalls, f.rateCalls
}

func (f *fakeOracle) lastStrategy() oracle.Strategy {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.strategies[len(f.strategies)-1]
}

type recordingSink struct {
	mu      sync.Mutex
	started []persistence.Interview
	records []persistence.QuestionRecord
	updates []persistence.InterviewUpdate
}

func (r *recordingSink) InterviewStarted(_ persistence.Candidate, interview persistence.Interview) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, interview)
}

func (r *recordingSink) QuestionAnswered(record persistence.QuestionRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
}

func (r *recordingSink) InterviewUpdated(update persistence.InterviewUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, update)
}

func (r *recordingSink) Close(context.Context) error { return nil }

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingPublisher) Close() error { return nil }

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func testConfig() Config {
	return Config{
		MaxQuestions:            5,
		TimeLimit:               180 * time.Second,
		MonitorInterval:         2 * time.Millisecond,
		ViolationThreshold:      10,
		FullscreenExitThreshold: 3,
	}
}

type harness struct {
	m     *Manager
	clock *fakeClock
	pool  *workers.Pool
}

func newHarness(t *testing.T, cfg Config, o oracle.Oracle, opts ...Option) *harness {
	t.Helper()
	clock := newFakeClock()
	pool := workers.NewPool(8, zap.NewNop())
	opts = append([]Option{WithClock(clock.Now), WithSelector(NewSelector(42))}, opts...)
	m := NewManager(cfg, o, pool, zap.NewNop(), opts...)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		m.Shutdown(ctx)
		pool.Close(ctx)
	})
	return &harness{m: m, clock: clock, pool: pool}
}

func (h *harness) start(t *testing.T, experience float64) string {
	t.Helper()
	res, err := h.m.StartSession(context.Background(), CandidateInfo{
		Name:       "Ada",
		Email:      "ada@example.com",
		Experience: experience,
		TechStack:  "Go, PostgreSQL",
	})
	require.NoError(t, err)
	return res.SessionID
}

func (h *harness) snapshot(t *testing.T, id string) Session {
	t.Helper()
	s, ok := h.m.store.Get(id)
	require.True(t, ok, "session %s missing", id)
	return s
}

// waitFor blocks until cond holds for the session
func (h *harness) waitFor(t *testing.T, id string, cond func(Session) bool, msg string) Session {
	t.Helper()
	var last Session
	require.Eventually(t, func() bool {
		last = h.snapshot(t, id)
		return cond(last)
	}, 2*time.Second, time.Millisecond, msg)
	return last
}

func (h *harness) waitReady(t *testing.T, id string, question int) Session {
	t.Helper()
	return h.waitFor(t, id, func(s Session) bool {
		return s.Status == StatusReady && s.QuestionCount == question
	}, fmt.Sprintf("question %d never became ready", question))
}

func (h *harness) waitStatus(t *testing.T, id string, status Status) Session {
	t.Helper()
	return h.waitFor(t, id, func(s Session) bool { return s.Status == status }, "status never became "+status.String())
}

// drain waits for every queued advancer task
func (h *harness) drain(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, h.pool.Close(ctx))
}
