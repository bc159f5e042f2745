package routers

import (
	"github.com/go-chi/chi/v5"

	"talentscout/screening/internal/handlers"
	"talentscout/screening/internal/metrics"
)

func HealthRoutes(router *chi.Mux, healthHandler *handlers.HealthHandler) {
	router.Get("/", healthHandler.RootHandler)
	router.Get("/healthz", healthHandler.HealthzHandler)
	router.Get("/readyz", healthHandler.ReadyzHandler)
	router.Method("GET", "/metrics", metrics.Handler())
}
