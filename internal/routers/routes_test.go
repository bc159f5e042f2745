package routers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"talentscout/screening/internal/handlers"
	"talentscout/screening/internal/jobs"
	"talentscout/screening/internal/llm"
	"talentscout/screening/internal/models"
	"talentscout/screening/internal/oracle"
	"talentscout/screening/internal/session"
	"talentscout/screening/internal/workers"
)

type stubProvider struct{}

func (stubProvider) GenerateContent(context.Context, string, string) (*models.GenerationResponse, error) {
	return &models.GenerationResponse{}, nil
}

func (stubProvider) GetProviderName() string { return "stub" }

type stubOracle struct{}

func (stubOracle) GenerateQuestion(context.Context, oracle.QuestionRequest) (oracle.Question, error) {
	return oracle.Question{Text: "What does defer do?", Topic: "defer"}, nil
}

func (stubOracle) Evaluate(context.Context, oracle.EvaluationRequest) (oracle.Evaluation, error) {
	return oracle.Evaluation{Passed: true, Score: 6}, nil
}

func (stubOracle) Rate(context.Context, oracle.RatingRequest) (float64, error) { return 3, nil }

type stubExporter struct{}

func (stubExporter) RunManual(context.Context) (jobs.ExportResult, error) {
	return jobs.ExportResult{}, nil
}

var (
	_ llm.Provider      = stubProvider{}
	_ oracle.Oracle     = stubOracle{}
	_ handlers.Exporter = stubExporter{}
)

func newManager(t *testing.T) *session.Manager {
	t.Helper()
	pool := workers.NewPool(2, zap.NewNop())
	m := session.NewManager(session.Config{
		MaxQuestions:            5,
		TimeLimit:               time.Minute,
		MonitorInterval:         10 * time.Millisecond,
		ViolationThreshold:      10,
		FullscreenExitThreshold: 3,
	}, stubOracle{}, pool, zap.NewNop())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		m.Shutdown(ctx)
		pool.Close(ctx)
	})
	return m
}

func TestHealthRoutes(t *testing.T) {
	router := chi.NewRouter()
	HealthRoutes(router, handlers.NewHealthHandler(stubProvider{}, newManager(t), nil))

	for _, path := range []string{"/", "/healthz", "/readyz", "/metrics"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s route not registered correctly, got status %d", path, rec.Code)
		}
	}
}

func TestInterviewRoutesRegistersEndpoints(t *testing.T) {
	router := chi.NewRouter()
	InterviewRoutes(router, handlers.NewInterviewHandler(newManager(t), nil, nil, zap.NewNop()), nil)
	ReportRoutes(router, handlers.NewReportHandler(stubExporter{}, zap.NewNop()))

	paths := map[string]bool{}
	if err := chi.Walk(router, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		paths[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("failed walking routes: %v", err)
	}

	expected := []string{
		"POST /api/v1/interviews/check-duplicate",
		"POST /api/v1/interviews/",
		"GET /api/v1/interviews/{id}/check",
		"POST /api/v1/interviews/{id}/answer",
		"GET /api/v1/interviews/{id}/next-question",
		"GET /api/v1/interviews/{id}/timer",
		"POST /api/v1/interviews/{id}/violations",
		"GET /api/v1/interviews/{id}/violations",
		"POST /api/v1/interviews/{id}/fullscreen-exit",
		"PUT /api/v1/interviews/{id}/fullscreen",
		"POST /api/v1/interviews/{id}/terminate",
		"GET /api/v1/interviews/{id}/status",
		"GET /api/v1/interviews/{id}/summary",
		"POST /api/v1/reports/export",
	}

	for _, route := range expected {
		if !paths[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func TestInterviewRoutesRequireToken(t *testing.T) {
	secret := []byte("route-secret")
	router := chi.NewRouter()
	InterviewRoutes(router, handlers.NewInterviewHandler(newManager(t), nil, secret, zap.NewNop()), secret)

	body, _ := json.Marshal(models.StartInterviewRequest{Name: "Ada", Email: "ada@example.com", Experience: 4, TechStack: "Go"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/interviews/", bytes.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var started struct {
		ID    string `json:"interview_id"`
		Token string `json:"token"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&started); err != nil {
		t.Fatalf("failed to decode start response: %v", err)
	}

	timerPath := "/api/v1/interviews/" + started.ID + "/timer"

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, timerPath, nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, timerPath, nil)
	req.Header.Set("Authorization", "Bearer "+started.Token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}

	// read-only views stay open
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/interviews/"+started.ID+"/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for status, got %d", rec.Code)
	}
}
