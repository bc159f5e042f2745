package openai

import (
	"errors"
	"os"
)

// holds configuration for any OpenAI-compatible chat completions endpoint
type Config struct {
	APIKey   string
	Endpoint string
	Model    string
	// Azure routes by deployment instead of model name
	Azure bool
}

func NewConfig() (*Config, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GROQ_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY or GROQ_API_KEY environment variable is required")
	}

	endpoint := os.Getenv("OPENAI_BASE_URL")
	if endpoint == "" {
		endpoint = "https://api.groq.com/openai/v1"
	}

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "llama3-8b-8192"
	}

	return &Config{
		APIKey:   apiKey,
		Endpoint: endpoint,
		Model:    model,
		Azure:    os.Getenv("OPENAI_AZURE") == "true",
	}, nil
}
