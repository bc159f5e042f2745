package gemini

import (
	"errors"
	"os"
	"strconv"
)

// holds Gemini-specific configuration
type Config struct {
	APIKey  string
	Model   string
	BaseURL string

	// questions want some variety; zero leaves the model default
	Temperature     float64
	MaxOutputTokens int64
}

func NewConfig() (*Config, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY environment variable is required")
	}

	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-2.5-flash" // default model
	}

	config := &Config{
		APIKey:          apiKey,
		Model:           model,
		BaseURL:         os.Getenv("GEMINI_BASE_URL"),
		Temperature:     0.7,
		MaxOutputTokens: 2000,
	}
	if v := os.Getenv("GEMINI_TEMPERATURE"); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil || t < 0 || t > 2 {
			return nil, errors.New("GEMINI_TEMPERATURE must be a number between 0 and 2")
		}
		config.Temperature = t
	}
	if v := os.Getenv("GEMINI_MAX_OUTPUT_TOKENS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 1 {
			return nil, errors.New("GEMINI_MAX_OUTPUT_TOKENS must be a positive integer")
		}
		config.MaxOutputTokens = n
	}
	return config, nil
}
