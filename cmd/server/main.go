package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"talentscout/screening/internal/config"
	"talentscout/screening/internal/events"
	"talentscout/screening/internal/handlers"
	"talentscout/screening/internal/jobs"
	"talentscout/screening/internal/llm"
	_ "talentscout/screening/internal/llm/gemini"
	_ "talentscout/screening/internal/llm/openai"
	"talentscout/screening/internal/metrics"
	"talentscout/screening/internal/oracle"
	"talentscout/screening/internal/persistence"
	"talentscout/screening/internal/prompts"
	"talentscout/screening/internal/routers"
	"talentscout/screening/internal/session"
	"talentscout/screening/internal/utils"
	"talentscout/screening/internal/workers"
)

// initDatabase opens the configured database and migrates the interview tables
func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseDSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseDSN)
	default:
		return nil, nil
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := persistence.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

func main() {
	logger := utils.GetLogger()
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Configuration loaded",
		zap.String("provider", cfg.Provider),
		zap.Int("max_questions", cfg.MaxQuestions),
		zap.Duration("time_limit", cfg.TimeLimit),
		zap.Int("violation_threshold", cfg.ViolationThreshold))

	promptManager, err := prompts.NewPromptManager()
	if err != nil {
		logger.Fatal("Failed to initialize prompt manager", zap.Error(err))
	}

	aiProvider, err := llm.NewProvider(cfg.Provider)
	if err != nil {
		logger.Fatal("Failed to initialize AI provider", zap.Error(err))
	}

	interviewOracle := oracle.NewLLMOracle(aiProvider, promptManager, cfg.OracleTimeout, logger).
		WithObserver(metrics.ObserveOracle)

	probes := map[string]handlers.Probe{}
	opts := []session.Option{session.WithSelector(session.NewSelector(cfg.StrategySeed))}

	// durable storage is optional; sessions live in memory either way
	var (
		repo     *persistence.Repository
		sink     persistence.Sink = persistence.NopSink{}
		exporter *jobs.ReportExporterJob
	)
	db, err := initDatabase(cfg)
	if err != nil {
		logger.Error("Failed to initialize database, persistence will be disabled", zap.Error(err))
	}
	if db != nil {
		repo = persistence.NewRepository(db)
		sink = persistence.NewAsyncSink(repo, cfg.SinkQueueSize, logger)
		opts = append(opts, session.WithSink(sink))

		if sqlDB, err := db.DB(); err == nil {
			probes["database"] = sqlDB.PingContext
		}

		exporter = jobs.NewReportExporterJob(repo, &jobs.ExporterConfig{
			Schedule:      cfg.ExportSchedule,
			ExportDir:     cfg.ExportDir,
			ExportEnabled: cfg.ExportEnabled,
		}, logger)
		if err := exporter.Start(); err != nil {
			logger.Error("Failed to start report exporter job", zap.Error(err))
		}
		logger.Info("Persistence initialized", zap.String("driver", cfg.DatabaseDriver))
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.RedisAddr != "" {
		redisPublisher := events.NewRedisPublisher(cfg.RedisAddr, cfg.EventsChannel, logger)
		probes["redis"] = redisPublisher.Ping
		publisher = redisPublisher
		opts = append(opts, session.WithPublisher(publisher))
		logger.Info("Interview events enabled", zap.String("channel", cfg.EventsChannel))
	}

	pool := workers.NewPool(cfg.WorkerPoolSize, logger)
	manager := session.NewManager(session.Config{
		MaxQuestions:            cfg.MaxQuestions,
		TimeLimit:               cfg.TimeLimit,
		MonitorInterval:         cfg.MonitorInterval,
		ViolationThreshold:      cfg.ViolationThreshold,
		FullscreenExitThreshold: cfg.FullscreenExitThreshold,
	}, interviewOracle, pool, logger, opts...)

	tokenSecret := []byte(cfg.TokenSecret)
	if len(tokenSecret) == 0 {
		logger.Warn("SESSION_TOKEN_SECRET not set, interview routes are unauthenticated")
	}

	var duplicates handlers.DuplicateFinder
	if repo != nil {
		duplicates = repo
	}
	interviewHandler := handlers.NewInterviewHandler(manager, duplicates, tokenSecret, logger)
	healthHandler := handlers.NewHealthHandler(aiProvider, manager, probes)

	router := chi.NewRouter()

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	// starting an interview waits on the first question, so requests may run
	// as long as one oracle call
	requestTimeout := cfg.OracleTimeout + 15*time.Second
	router.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer, metrics.Middleware, middleware.Timeout(requestTimeout))

	routers.HealthRoutes(router, healthHandler)
	routers.InterviewRoutes(router, interviewHandler, tokenSecret)
	if exporter != nil {
		routers.ReportRoutes(router, handlers.NewReportHandler(exporter, logger))
	}

	serverAddr := ":" + cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: requestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Screening service starting", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Screening service shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	if exporter != nil {
		exporter.Stop()
	}
	if err := manager.Shutdown(ctx); err != nil {
		logger.Warn("Timer monitors did not stop in time", zap.Error(err))
	}
	if err := pool.Close(ctx); err != nil {
		logger.Warn("Advancer tasks still running at shutdown", zap.Error(err))
	}
	if err := sink.Close(ctx); err != nil {
		logger.Warn("Persistence queue not fully drained", zap.Error(err))
	}
	if err := publisher.Close(); err != nil {
		logger.Warn("Failed to close event publisher", zap.Error(err))
	}

	logger.Info("Screening service exited", zap.Int("sessions_in_memory", manager.Len()))
}
