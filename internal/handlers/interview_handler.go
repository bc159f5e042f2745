package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"talentscout/screening/internal/middleware"
	"talentscout/screening/internal/models"
	"talentscout/screening/internal/session"
	"talentscout/screening/internal/utils"
)

// Sessions is the interview lifecycle the handlers drive; *session.Manager implements it
type Sessions interface {
	StartSession(ctx context.Context, info session.CandidateInfo) (session.StartResult, error)
	SubmitAnswer(ctx context.Context, id, question, answer string) (session.SubmitResult, error)
	PollNextQuestion(ctx context.Context, id string) (session.NextQuestion, error)
	PollTimer(ctx context.Context, id string) (session.TimerState, error)
	Terminate(ctx context.Context, id string) (session.TerminateResult, error)
	GetStatus(ctx context.Context, id string) (session.StatusView, error)
	CheckSession(ctx context.Context, id string) session.CheckView
	GetSummary(ctx context.Context, id string) (session.Summary, error)
	ReportViolation(ctx context.Context, id, violationType string) (session.ViolationResult, error)
	GetViolations(ctx context.Context, id string) (session.ViolationStatus, error)
	RecordFullscreenExit(ctx context.Context, id string) (session.FullscreenResult, error)
	SetFullscreen(ctx context.Context, id string, active bool) (session.FullscreenState, error)
	ActiveCount() int
}

// DuplicateFinder looks up existing candidates; *persistence.Repository implements it
type DuplicateFinder interface {
	FindDuplicates(ctx context.Context, email, phone string) ([]string, error)
}

type InterviewHandler struct {
	sessions    Sessions
	duplicates  DuplicateFinder
	tokenSecret []byte
	logger      *zap.Logger
}

// duplicates may be nil when no database is configured
func NewInterviewHandler(sessions Sessions, duplicates DuplicateFinder, tokenSecret []byte, logger *zap.Logger) *InterviewHandler {
	return &InterviewHandler{
		sessions:    sessions,
		duplicates:  duplicates,
		tokenSecret: tokenSecret,
		logger:      logger,
	}
}

type startResponse struct {
	session.StartResult
	Token string `json:"token,omitempty"`
}

func (h *InterviewHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.StartInterviewRequest](r)

	result, err := h.sessions.StartSession(r.Context(), session.CandidateInfo{
		Name:       req.Name,
		Email:      utils.NormalizeEmail(req.Email),
		Phone:      utils.NormalizePhone(req.Phone),
		Experience: req.Experience,
		Position:   req.Position,
		Location:   req.Location,
		TechStack:  req.TechStack,
	})
	if err != nil {
		h.writeError(w, "", err)
		return
	}

	resp := startResponse{StartResult: result}
	if len(h.tokenSecret) > 0 {
		token, err := utils.GenerateSessionToken(result.SessionID, h.tokenSecret)
		if err != nil {
			h.logger.Error("Failed to sign session token", zap.String("session_id", result.SessionID), zap.Error(err))
			utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
				Code:    "token_error",
				Message: "Failed to issue session token",
			})
			return
		}
		resp.Token = token
	}
	utils.JSON(w, http.StatusCreated, resp)
}

func (h *InterviewHandler) CheckDuplicateHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.DuplicateCheckRequest](r)

	resp := models.DuplicateCheckResponse{Duplicates: []string{}, Message: "No existing candidate found"}
	if h.duplicates != nil {
		found, err := h.duplicates.FindDuplicates(r.Context(), utils.NormalizeEmail(req.Email), utils.NormalizePhone(req.Phone))
		if err != nil {
			h.logger.Error("Duplicate check failed", zap.Error(err))
			utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
				Code:    "database_error",
				Message: "Failed to check for existing candidates",
			})
			return
		}
		resp.Duplicates = found
	}
	resp.HasDuplicates = len(resp.Duplicates) > 0
	if resp.HasDuplicates {
		resp.Message = "A candidate with these details has already interviewed"
	}
	utils.JSON(w, http.StatusOK, resp)
}

func (h *InterviewHandler) CheckHandler(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, h.sessions.CheckSession(r.Context(), chi.URLParam(r, "id")))
}

func (h *InterviewHandler) AnswerHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	req := middleware.GetValidatedRequest[*models.AnswerRequest](r)

	result, err := h.sessions.SubmitAnswer(r.Context(), id, req.Question, req.Answer)
	if err != nil {
		h.writeError(w, id, err)
		return
	}
	utils.JSON(w, http.StatusAccepted, result)
}

func (h *InterviewHandler) NextQuestionHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	next, err := h.sessions.PollNextQuestion(r.Context(), id)
	if err != nil {
		h.writeError(w, id, err)
		return
	}
	utils.JSON(w, http.StatusOK, next)
}

func (h *InterviewHandler) TimerHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	timer, err := h.sessions.PollTimer(r.Context(), id)
	if err != nil {
		h.writeError(w, id, err)
		return
	}
	utils.JSON(w, http.StatusOK, timer)
}

func (h *InterviewHandler) ReportViolationHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	req := middleware.GetValidatedRequest[*models.ViolationRequest](r)

	result, err := h.sessions.ReportViolation(r.Context(), id, req.Type)
	if err != nil {
		h.writeError(w, id, err)
		return
	}
	utils.JSON(w, http.StatusOK, result)
}

func (h *InterviewHandler) GetViolationsHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	status, err := h.sessions.GetViolations(r.Context(), id)
	if err != nil {
		h.writeError(w, id, err)
		return
	}
	utils.JSON(w, http.StatusOK, status)
}

func (h *InterviewHandler) FullscreenExitHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result, err := h.sessions.RecordFullscreenExit(r.Context(), id)
	if err != nil {
		h.writeError(w, id, err)
		return
	}
	utils.JSON(w, http.StatusOK, result)
}

func (h *InterviewHandler) SetFullscreenHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	req := middleware.GetValidatedRequest[*models.FullscreenRequest](r)

	state, err := h.sessions.SetFullscreen(r.Context(), id, *req.Active)
	if err != nil {
		h.writeError(w, id, err)
		return
	}
	utils.JSON(w, http.StatusOK, state)
}

func (h *InterviewHandler) TerminateHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result, err := h.sessions.Terminate(r.Context(), id)
	if err != nil {
		h.writeError(w, id, err)
		return
	}
	utils.JSON(w, http.StatusOK, result)
}

func (h *InterviewHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	status, err := h.sessions.GetStatus(r.Context(), id)
	if err != nil {
		h.writeError(w, id, err)
		return
	}
	utils.JSON(w, http.StatusOK, status)
}

func (h *InterviewHandler) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	summary, err := h.sessions.GetSummary(r.Context(), id)
	if err != nil {
		h.writeError(w, id, err)
		return
	}
	utils.JSON(w, http.StatusOK, summary)
}

func (h *InterviewHandler) writeError(w http.ResponseWriter, id string, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
			Code:    "interview_not_found",
			Message: "Interview not found",
		})
	case errors.Is(err, session.ErrSessionClosed):
		utils.JSON(w, http.StatusConflict, models.ErrorResponse{
			Code:    "interview_closed",
			Message: "Interview has already finished",
		})
	case errors.Is(err, session.ErrQuestionUnavailable):
		h.logger.Error("Interview could not start", zap.Error(err))
		utils.JSON(w, http.StatusServiceUnavailable, models.ErrorResponse{
			Code:    "question_unavailable",
			Message: "Could not generate the first question, please try again",
		})
	default:
		h.logger.Error("Interview request failed", zap.String("session_id", id), zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "internal_error",
			Message: "Unexpected error",
		})
	}
}
