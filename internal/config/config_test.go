package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("AI_PROVIDER", "")
	t.Setenv("CONFIG_FILE", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.Provider != "gemini" {
		t.Fatalf("expected provider gemini, got %s", cfg.Provider)
	}
	if cfg.MaxQuestions != 5 {
		t.Fatalf("expected 5 questions, got %d", cfg.MaxQuestions)
	}
	if cfg.TimeLimit != 180*time.Second {
		t.Fatalf("expected 180s time limit, got %s", cfg.TimeLimit)
	}
	if cfg.ViolationThreshold != 10 {
		t.Fatalf("expected violation threshold 10, got %d", cfg.ViolationThreshold)
	}
	if cfg.FullscreenExitThreshold != 3 {
		t.Fatalf("expected fullscreen threshold 3, got %d", cfg.FullscreenExitThreshold)
	}
}

func TestLoadConfig_UnsupportedProvider(t *testing.T) {
	t.Setenv("AI_PROVIDER", "unknown")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("AI_PROVIDER", "openai")
	t.Setenv("QUESTION_TIME_LIMIT", "90")
	t.Setenv("TIMER_POLL_INTERVAL", "500ms")
	t.Setenv("VIOLATION_THRESHOLD", "4")
	t.Setenv("REPORT_EXPORT_ENABLED", "true")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Provider != "openai" {
		t.Fatalf("expected provider openai, got %s", cfg.Provider)
	}
	if cfg.TimeLimit != 90*time.Second {
		t.Fatalf("expected bare seconds to parse, got %s", cfg.TimeLimit)
	}
	if cfg.MonitorInterval != 500*time.Millisecond {
		t.Fatalf("expected 500ms poll interval, got %s", cfg.MonitorInterval)
	}
	if cfg.ViolationThreshold != 4 {
		t.Fatalf("expected threshold 4, got %d", cfg.ViolationThreshold)
	}
	if !cfg.ExportEnabled {
		t.Fatal("expected export to be enabled")
	}
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "screening.yaml")
	body := "max_questions: 7\ntime_limit: 2m\ndatabase_driver: sqlite\ndatabase_dsn: \"file::memory:\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("MAX_QUESTIONS", "6")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.TimeLimit != 2*time.Minute {
		t.Fatalf("expected file time limit, got %s", cfg.TimeLimit)
	}
	if cfg.MaxQuestions != 6 {
		t.Fatalf("expected env to win over file, got %d", cfg.MaxQuestions)
	}
	if cfg.DatabaseDriver != "sqlite" {
		t.Fatalf("expected sqlite driver, got %s", cfg.DatabaseDriver)
	}
	if cfg.DatabaseDSN != "file::memory:" {
		t.Fatalf("expected file dsn, got %s", cfg.DatabaseDSN)
	}
}

func TestLoadConfig_FileBareSeconds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "screening.yaml")
	body := "time_limit: 120\nmonitor_interval: 2\noracle_timeout: 1m30s\nmax_questions: 4\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("QUESTION_TIME_LIMIT", "")
	t.Setenv("TIMER_POLL_INTERVAL", "")
	t.Setenv("ORACLE_TIMEOUT", "")
	t.Setenv("MAX_QUESTIONS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.TimeLimit != 120*time.Second {
		t.Fatalf("expected 120s time limit, got %s", cfg.TimeLimit)
	}
	if cfg.MonitorInterval != 2*time.Second {
		t.Fatalf("expected 2s poll interval, got %s", cfg.MonitorInterval)
	}
	if cfg.OracleTimeout != 90*time.Second {
		t.Fatalf("expected 90s oracle timeout, got %s", cfg.OracleTimeout)
	}
	if cfg.MaxQuestions != 4 {
		t.Fatalf("expected integer fields to stay integers, got %d", cfg.MaxQuestions)
	}
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"MAX_QUESTIONS":       "0",
		"VIOLATION_THRESHOLD": "0",
		"DATABASE_DRIVER":     "oracle",
		"TIMER_POLL_INTERVAL": "10m",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := LoadConfig(); err == nil {
				t.Fatalf("expected error for %s=%s", key, value)
			}
		})
	}
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("UNIT_TEST_ENV", "value")
	if got := getEnvOrDefault("UNIT_TEST_ENV", "fallback"); got != "value" {
		t.Fatalf("expected env value, got %s", got)
	}

	t.Setenv("UNIT_TEST_ENV", "")
	if got := getEnvOrDefault("UNIT_TEST_ENV", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback value, got %s", got)
	}
}
