package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"talentscout/screening/internal/jobs"
	"talentscout/screening/internal/models"
	"talentscout/screening/internal/utils"
)

type Exporter interface {
	RunManual(ctx context.Context) (jobs.ExportResult, error)
}

type ReportHandler struct {
	exporter Exporter
	logger   *zap.Logger
}

func NewReportHandler(exporter Exporter, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{exporter: exporter, logger: logger}
}

// ExportHandler handles POST /api/v1/reports/export
func (h *ReportHandler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	result, err := h.exporter.RunManual(r.Context())
	if err != nil {
		h.logger.Error("Manual report export failed", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "export_failed",
			Message: "Failed to export interview reports",
		})
		return
	}
	utils.JSON(w, http.StatusOK, result)
}
