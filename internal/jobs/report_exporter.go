package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"talentscout/screening/internal/persistence"
)

// ReportSource is the slice of the repository the exporter reads and marks
type ReportSource interface {
	ListUnexported(ctx context.Context, limit int) ([]persistence.Interview, error)
	MarkExported(ctx context.Context, ids []uint) error
}

// ReportExporterJob writes finished interviews to JSONL files on a schedule
type ReportExporterJob struct {
	source ReportSource
	config *ExporterConfig
	cron   *cron.Cron
	logger *zap.Logger

	// one run at a time, so a manual export never re-lists a scheduled run's rows
	runMu sync.Mutex
}

type ExporterConfig struct {
	Schedule      string // cron schedule, e.g. "0 2 * * *"
	ExportDir     string
	ExportEnabled bool
	BatchSize     int // 0 exports everything pending
}

type ExportResult struct {
	Count int    `json:"count"`
	File  string `json:"file,omitempty"`
}

// one line of an export file
type InterviewReport struct {
	SessionID     string           `json:"session_id"`
	Candidate     CandidateReport  `json:"candidate"`
	Status        string           `json:"status"`
	StartedAt     time.Time        `json:"started_at"`
	EndedAt       *time.Time       `json:"ended_at,omitempty"`
	Rating        *float64         `json:"candidate_rating"`
	Violations    int              `json:"violations"`
	Difficulty    float64          `json:"difficulty"`
	QuestionCount int              `json:"question_count"`
	Questions     []QuestionReport `json:"questions"`
}

type CandidateReport struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	Experience float64 `json:"experience"`
	Position   string  `json:"position"`
	Location   string  `json:"location"`
	TechStack  string  `json:"tech_stack"`
}

type QuestionReport struct {
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	Difficulty float64   `json:"difficulty"`
	Score      float64   `json:"score"`
	Passed     bool      `json:"passed"`
	TimeTaken  int       `json:"time_taken_seconds"`
	AnsweredAt time.Time `json:"answered_at"`
	Unscored   bool      `json:"unscored,omitempty"`
}

func NewReportExporterJob(source ReportSource, config *ExporterConfig, logger *zap.Logger) *ReportExporterJob {
	return &ReportExporterJob{
		source: source,
		config: config,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start begins the scheduled export job
func (j *ReportExporterJob) Start() error {
	if !j.config.ExportEnabled {
		j.logger.Info("Report export is disabled, skipping scheduler")
		return nil
	}

	_, err := j.cron.AddFunc(j.config.Schedule, func() {
		if _, err := j.RunExport(context.Background()); err != nil {
			j.logger.Error("Report export failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule export job: %w", err)
	}

	j.cron.Start()
	j.logger.Info("Report exporter started", zap.String("schedule", j.config.Schedule))
	return nil
}

// Stop stops the scheduler and waits for a running export to finish
func (j *ReportExporterJob) Stop() {
	if j.cron != nil {
		<-j.cron.Stop().Done()
		j.logger.Info("Report exporter stopped")
	}
}

// RunExport performs a single export run
func (j *ReportExporterJob) RunExport(ctx context.Context) (ExportResult, error) {
	j.runMu.Lock()
	defer j.runMu.Unlock()

	interviews, err := j.source.ListUnexported(ctx, j.config.BatchSize)
	if err != nil {
		return ExportResult{}, fmt.Errorf("failed to list unexported interviews: %w", err)
	}
	if len(interviews) == 0 {
		j.logger.Debug("No finished interviews to export")
		return ExportResult{}, nil
	}

	data, err := ExportToJSONL(interviews)
	if err != nil {
		return ExportResult{}, fmt.Errorf("failed to export to JSONL: %w", err)
	}

	if err := os.MkdirAll(j.config.ExportDir, 0o755); err != nil {
		return ExportResult{}, fmt.Errorf("failed to create export directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("interview_report_%s_%d.jsonl", timestamp, interviews[0].ID)
	path := filepath.Join(j.config.ExportDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return ExportResult{}, fmt.Errorf("failed to write export file: %w", err)
	}

	ids := make([]uint, len(interviews))
	for i, interview := range interviews {
		ids[i] = interview.ID
	}
	if err := j.source.MarkExported(ctx, ids); err != nil {
		return ExportResult{}, fmt.Errorf("failed to mark as exported: %w", err)
	}

	j.logger.Info("Exported interview reports", zap.Int("count", len(interviews)), zap.String("file", path))
	return ExportResult{Count: len(interviews), File: path}, nil
}

// RunManual runs an export on demand
func (j *ReportExporterJob) RunManual(ctx context.Context) (ExportResult, error) {
	return j.RunExport(ctx)
}

// ExportToJSONL renders one InterviewReport per line
func ExportToJSONL(interviews []persistence.Interview) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, interview := range interviews {
		if err := enc.Encode(newInterviewReport(interview)); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func newInterviewReport(i persistence.Interview) InterviewReport {
	report := InterviewReport{
		SessionID: i.SessionID,
		Candidate: CandidateReport{
			Name:       i.Candidate.Name,
			Email:      i.Candidate.Email,
			Phone:      i.Candidate.Phone,
			Experience: i.Candidate.Experience,
			Position:   i.Candidate.Position,
			Location:   i.Candidate.Location,
			TechStack:  i.Candidate.TechStack,
		},
		Status:        i.Status,
		StartedAt:     i.StartedAt,
		EndedAt:       i.EndedAt,
		Rating:        i.CandidateRating,
		Violations:    i.Violations,
		Difficulty:    i.Difficulty,
		QuestionCount: i.QuestionCount,
		Questions:     make([]QuestionReport, 0, len(i.Questions)),
	}
	for _, q := range i.Questions {
		report.Questions = append(report.Questions, QuestionReport{
			Question:   q.QuestionText,
			Answer:     q.AnswerText,
			Difficulty: q.Difficulty,
			Score:      q.Score,
			Passed:     q.Passed,
			TimeTaken:  q.TimeTaken,
			AnsweredAt: q.AnsweredAt,
			Unscored:   q.Unscored,
		})
	}
	return report
}
