package handlers

import (
	"context"
	"net/http"
	"time"

	"talentscout/screening/internal/llm"
	"talentscout/screening/internal/models"
	"talentscout/screening/internal/utils"
)

type ReadinessCheck struct {
	Status  string `json:"status"` // "ok" | "failed"
	Message string `json:"message,omitempty"`
}

type ReadinessResponse struct {
	Status  string                    `json:"status"` // "ready" | "not_ready"
	Service string                    `json:"service"`
	Checks  map[string]ReadinessCheck `json:"checks"`
}

// Probe checks one backing dependency, e.g. the database or Redis
type Probe func(ctx context.Context) error

type ActiveCounter interface {
	ActiveCount() int
}

type HealthHandler struct {
	provider llm.Provider
	sessions ActiveCounter
	probes   map[string]Probe
}

func NewHealthHandler(provider llm.Provider, sessions ActiveCounter, probes map[string]Probe) *HealthHandler {
	return &HealthHandler{
		provider: provider,
		sessions: sessions,
		probes:   probes,
	}
}

func (handler *HealthHandler) RootHandler(writer http.ResponseWriter, request *http.Request) {
	utils.JSON(writer, http.StatusOK, models.HealthResponse{
		Status:           "ok",
		Message:          "TalentScout screening service is running",
		Version:          "1.0.0",
		ActiveInterviews: handler.sessions.ActiveCount(),
	})
}

func (handler *HealthHandler) HealthzHandler(writer http.ResponseWriter, request *http.Request) {
	utils.JSON(writer, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "screening",
		"version": "1.0.0",
	})
}

func (handler *HealthHandler) ReadyzHandler(writer http.ResponseWriter, request *http.Request) {
	checks := make(map[string]ReadinessCheck)
	allChecksPass := true

	if handler.provider == nil {
		checks["provider"] = ReadinessCheck{Status: "failed", Message: "AI provider not initialized"}
		allChecksPass = false
	} else {
		checks["provider"] = ReadinessCheck{Status: "ok", Message: handler.provider.GetProviderName()}
	}

	ctx, cancel := context.WithTimeout(request.Context(), 2*time.Second)
	defer cancel()
	for name, probe := range handler.probes {
		if err := probe(ctx); err != nil {
			checks[name] = ReadinessCheck{Status: "failed", Message: err.Error()}
			allChecksPass = false
			continue
		}
		checks[name] = ReadinessCheck{Status: "ok"}
	}

	response := ReadinessResponse{
		Service: "screening",
		Checks:  checks,
	}

	if allChecksPass {
		response.Status = "ready"
		utils.JSON(writer, http.StatusOK, response)
	} else {
		response.Status = "not_ready"
		utils.JSON(writer, http.StatusServiceUnavailable, response)
	}
}
