package routers

import (
	"github.com/go-chi/chi/v5"

	"talentscout/screening/internal/handlers"
	"talentscout/screening/internal/middleware"
	"talentscout/screening/internal/models"
)

// InterviewRoutes registers the interview API. Routes that act on behalf of the
// candidate require the session token when tokenSecret is set.
func InterviewRoutes(router *chi.Mux, interviewHandler *handlers.InterviewHandler, tokenSecret []byte) {
	router.Route("/api/v1/interviews", func(r chi.Router) {
		r.With(middleware.ValidateRequest[*models.DuplicateCheckRequest]()).Post("/check-duplicate", interviewHandler.CheckDuplicateHandler)
		r.With(middleware.ValidateRequest[*models.StartInterviewRequest]()).Post("/", interviewHandler.StartHandler)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/check", interviewHandler.CheckHandler)
			r.Get("/violations", interviewHandler.GetViolationsHandler)
			r.Get("/status", interviewHandler.StatusHandler)
			r.Get("/summary", interviewHandler.SummaryHandler)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireSessionToken(tokenSecret))
				r.With(middleware.ValidateRequest[*models.AnswerRequest]()).Post("/answer", interviewHandler.AnswerHandler)
				r.Get("/next-question", interviewHandler.NextQuestionHandler)
				r.Get("/timer", interviewHandler.TimerHandler)
				r.With(middleware.ValidateOptionalRequest[*models.ViolationRequest]()).Post("/violations", interviewHandler.ReportViolationHandler)
				r.Post("/fullscreen-exit", interviewHandler.FullscreenExitHandler)
				r.With(middleware.ValidateRequest[*models.FullscreenRequest]()).Put("/fullscreen", interviewHandler.SetFullscreenHandler)
				r.Post("/terminate", interviewHandler.TerminateHandler)
			})
		})
	})
}

func ReportRoutes(router *chi.Mux, reportHandler *handlers.ReportHandler) {
	router.Post("/api/v1/reports/export", reportHandler.ExportHandler)
}
