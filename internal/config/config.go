package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// app config, interview policy and infrastructure endpoints
type Config struct {
	Provider string `yaml:"provider"`
	Port     string `yaml:"port"`

	MaxQuestions            int           `yaml:"max_questions"`
	TimeLimit               time.Duration `yaml:"time_limit"`
	MonitorInterval         time.Duration `yaml:"monitor_interval"`
	OracleTimeout           time.Duration `yaml:"oracle_timeout"`
	ViolationThreshold      int           `yaml:"violation_threshold"`
	FullscreenExitThreshold int           `yaml:"fullscreen_exit_threshold"`
	WorkerPoolSize          int           `yaml:"worker_pool_size"`
	StrategySeed            int64         `yaml:"strategy_seed"`

	DatabaseDriver string `yaml:"database_driver"` // "postgres" | "sqlite" | "" (disabled)
	DatabaseDSN    string `yaml:"database_dsn"`
	SinkQueueSize  int    `yaml:"sink_queue_size"`

	RedisAddr      string   `yaml:"redis_addr"`
	EventsChannel  string   `yaml:"events_channel"`
	TokenSecret    string   `yaml:"-"`
	AllowedOrigins []string `yaml:"allowed_origins"`

	ExportEnabled  bool   `yaml:"export_enabled"`
	ExportSchedule string `yaml:"export_schedule"`
	ExportDir      string `yaml:"export_dir"`
}

// loads configuration from an optional YAML file, then environment variables
func LoadConfig() (*Config, error) {
	config := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, config); err != nil {
			return nil, err
		}
	}

	applyEnv(config)

	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func defaults() *Config {
	return &Config{
		Provider:                "gemini",
		Port:                    "8080",
		MaxQuestions:            5,
		TimeLimit:               180 * time.Second,
		MonitorInterval:         time.Second,
		OracleTimeout:           180 * time.Second,
		ViolationThreshold:      10,
		FullscreenExitThreshold: 3,
		WorkerPoolSize:          32,
		SinkQueueSize:           256,
		EventsChannel:           "interview_events",
		AllowedOrigins:          []string{"http://localhost:8501", "http://localhost:5173"},
		ExportSchedule:          "0 2 * * *",
		ExportDir:               "./exports",
	}
}

// duration keys that may also be written as bare seconds in the file
var durationKeys = map[string]bool{
	"time_limit":       true,
	"monitor_interval": true,
	"oracle_timeout":   true,
}

func loadFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if root.Kind == 0 {
		return nil
	}
	secondsToDurations(&root)
	if err := root.Decode(config); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// secondsToDurations rewrites integer duration values such as
// "time_limit: 180" to "180s" so they decode like the env variables do.
func secondsToDurations(node *yaml.Node) {
	if node.Kind == yaml.DocumentNode {
		for _, child := range node.Content {
			secondsToDurations(child)
		}
		return
	}
	if node.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if durationKeys[key.Value] && value.Kind == yaml.ScalarNode && value.ShortTag() == "!!int" {
			value.Value += "s"
			value.Tag = "!!str"
		}
	}
}

func applyEnv(config *Config) {
	config.Provider = getEnvOrDefault("AI_PROVIDER", config.Provider)
	config.Port = getEnvOrDefault("PORT", config.Port)

	config.MaxQuestions = getEnvInt("MAX_QUESTIONS", config.MaxQuestions)
	config.TimeLimit = getEnvDuration("QUESTION_TIME_LIMIT", config.TimeLimit)
	config.MonitorInterval = getEnvDuration("TIMER_POLL_INTERVAL", config.MonitorInterval)
	config.OracleTimeout = getEnvDuration("ORACLE_TIMEOUT", config.OracleTimeout)
	config.ViolationThreshold = getEnvInt("VIOLATION_THRESHOLD", config.ViolationThreshold)
	config.FullscreenExitThreshold = getEnvInt("FULLSCREEN_EXIT_THRESHOLD", config.FullscreenExitThreshold)
	config.WorkerPoolSize = getEnvInt("WORKER_POOL_SIZE", config.WorkerPoolSize)
	config.StrategySeed = int64(getEnvInt("STRATEGY_SEED", int(config.StrategySeed)))

	config.DatabaseDriver = getEnvOrDefault("DATABASE_DRIVER", config.DatabaseDriver)
	config.DatabaseDSN = getEnvOrDefault("DATABASE_URL", config.DatabaseDSN)
	config.SinkQueueSize = getEnvInt("PERSISTENCE_QUEUE_SIZE", config.SinkQueueSize)

	config.RedisAddr = getEnvOrDefault("REDIS_ADDR", config.RedisAddr)
	config.EventsChannel = getEnvOrDefault("EVENTS_CHANNEL", config.EventsChannel)
	config.TokenSecret = os.Getenv("SESSION_TOKEN_SECRET")

	config.ExportEnabled = getEnvOrDefault("REPORT_EXPORT_ENABLED", strconv.FormatBool(config.ExportEnabled)) == "true"
	config.ExportSchedule = getEnvOrDefault("REPORT_EXPORT_SCHEDULE", config.ExportSchedule)
	config.ExportDir = getEnvOrDefault("REPORT_EXPORT_DIR", config.ExportDir)
}

func validateConfig(config *Config) error {
	if config.Provider != "gemini" && config.Provider != "openai" {
		return errors.New("unsupported AI provider: " + config.Provider + ". Currently supported: gemini, openai")
	}
	if config.MaxQuestions < 1 {
		return fmt.Errorf("max questions must be positive, got %d", config.MaxQuestions)
	}
	if config.TimeLimit <= 0 {
		return errors.New("question time limit must be positive")
	}
	if config.MonitorInterval <= 0 || config.MonitorInterval > config.TimeLimit {
		return fmt.Errorf("timer poll interval %s must be positive and not exceed the time limit", config.MonitorInterval)
	}
	if config.ViolationThreshold < 1 {
		return fmt.Errorf("violation threshold must be positive, got %d", config.ViolationThreshold)
	}
	if config.FullscreenExitThreshold < 1 {
		return fmt.Errorf("fullscreen exit threshold must be positive, got %d", config.FullscreenExitThreshold)
	}
	if config.WorkerPoolSize < 1 {
		return fmt.Errorf("worker pool size must be positive, got %d", config.WorkerPoolSize)
	}
	switch config.DatabaseDriver {
	case "", "postgres", "sqlite":
	default:
		return errors.New("unsupported database driver: " + config.DatabaseDriver)
	}
	// Provider credentials are validated by the provider packages
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		// bare numbers are seconds
		if secs, err := strconv.Atoi(val); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultVal
}
