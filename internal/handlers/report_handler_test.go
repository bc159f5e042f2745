package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"talentscout/screening/internal/jobs"
)

type stubExporter struct {
	result jobs.ExportResult
	err    error
}

func (s stubExporter) RunManual(context.Context) (jobs.ExportResult, error) {
	return s.result, s.err
}

func TestExportHandler(t *testing.T) {
	h := NewReportHandler(stubExporter{result: jobs.ExportResult{Count: 2, File: "exports/r.jsonl"}}, zap.NewNop())
	rec := httptest.NewRecorder()
	h.ExportHandler(rec, httptest.NewRequest(http.MethodPost, "/api/v1/reports/export", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := decode[jobs.ExportResult](t, rec); got.Count != 2 {
		t.Fatalf("unexpected export result %+v", got)
	}
}

func TestExportHandler_Failure(t *testing.T) {
	h := NewReportHandler(stubExporter{err: errors.New("disk full")}, zap.NewNop())
	rec := httptest.NewRecorder()
	h.ExportHandler(rec, httptest.NewRequest(http.MethodPost, "/api/v1/reports/export", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
