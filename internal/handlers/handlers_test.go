package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"talentscout/screening/internal/models"
	"talentscout/screening/internal/oracle"
	"talentscout/screening/internal/session"
	"talentscout/screening/internal/workers"
)

type stubOracle struct {
	mu          sync.Mutex
	generateErr error
	generated   int
}

func (s *stubOracle) GenerateQuestion(context.Context, oracle.QuestionRequest) (oracle.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generateErr != nil {
		return oracle.Question{}, s.generateErr
	}
	s.generated++
	return oracle.Question{Text: "Explain Go interfaces.", Topic: "interfaces"}, nil
}

func (s *stubOracle) Evaluate(context.Context, oracle.EvaluationRequest) (oracle.Evaluation, error) {
	return oracle.Evaluation{Passed: true, Score: 7}, nil
}

func (s *stubOracle) Rate(context.Context, oracle.RatingRequest) (float64, error) {
	return 4, nil
}

type mockProvider struct {
	name string
}

func (m *mockProvider) GenerateContent(context.Context, string, string) (*models.GenerationResponse, error) {
	return &models.GenerationResponse{}, nil
}

func (m *mockProvider) GetProviderName() string {
	if m.name == "" {
		return "mock"
	}
	return m.name
}

func newTestManager(t *testing.T, o oracle.Oracle) *session.Manager {
	t.Helper()
	pool := workers.NewPool(4, zap.NewNop())
	m := session.NewManager(session.Config{
		MaxQuestions:            5,
		TimeLimit:               180 * time.Second,
		MonitorInterval:         10 * time.Millisecond,
		ViolationThreshold:      10,
		FullscreenExitThreshold: 3,
	}, o, pool, zap.NewNop())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		m.Shutdown(ctx)
		pool.Close(ctx)
	})
	return m
}

// withID attaches the {id} route parameter the way chi does when routing
func withID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(v); err != nil {
		t.Fatalf("failed to encode body: %v", err)
	}
	return buf
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return v
}
