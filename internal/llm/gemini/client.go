package gemini

import (
	"context"
	"time"

	"google.golang.org/genai"

	"talentscout/screening/internal/llm"
	"talentscout/screening/internal/models"
)

const providerName = "gemini"

// Client generates interview questions, evaluations and ratings with Gemini
type Client struct {
	client *genai.Client
	config *Config
}

func NewClient(config *Config) (*Client, error) {
	clientConfig := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	client, err := genai.NewClient(context.Background(), clientConfig)
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: providerName,
			Code:     llm.ErrCodeAPIKey,
			Message:  "Failed to create Gemini client",
			Err:      err,
		}
	}

	return &Client{
		client: client,
		config: config,
	}, nil
}

// unset values leave the model defaults in place
func (c *Client) generationConfig() *genai.GenerateContentConfig {
	gc := &genai.GenerateContentConfig{CandidateCount: genai.Ptr[int64](1)}
	if c.config.Temperature > 0 {
		gc.Temperature = genai.Ptr(c.config.Temperature)
	}
	if c.config.MaxOutputTokens > 0 {
		gc.MaxOutputTokens = genai.Ptr(c.config.MaxOutputTokens)
	}
	return gc
}

// GenerateContent sends one interview prompt and returns the model's text.
// A reply cut short by the safety filter counts as invalid input so the
// oracle falls back instead of scoring a partial answer.
func (c *Client) GenerateContent(ctx context.Context, prompt string, requestID string) (*models.GenerationResponse, error) {
	startTime := time.Now()
	result, err := c.client.Models.GenerateContent(ctx, c.config.Model, genai.Text(prompt), c.generationConfig())
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: providerName,
			Code:     llm.ClassifyError(err),
			Message:  "Failed to generate content",
			Err:      err,
		}
	}
	if result == nil || len(result.Candidates) == 0 {
		return nil, &llm.ProviderError{
			Provider: providerName,
			Code:     llm.ErrCodeInvalidInput,
			Message:  "No response generated",
		}
	}
	if result.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return nil, &llm.ProviderError{
			Provider: providerName,
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Response blocked by safety filter",
		}
	}

	text, err := result.Text()
	if err != nil || text == "" {
		return nil, &llm.ProviderError{
			Provider: providerName,
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Empty response generated",
			Err:      err,
		}
	}

	metadata := models.GenerationMetadata{
		ProcessingTime: int(time.Since(startTime).Milliseconds()),
		Provider:       providerName,
		Model:          c.config.Model,
	}
	if result.UsageMetadata != nil {
		metadata.TokensUsed = int(result.UsageMetadata.TotalTokenCount)
	}

	return &models.GenerationResponse{
		Content:   text,
		RequestID: requestID,
		Metadata:  metadata,
	}, nil
}

func (c *Client) GetProviderName() string {
	return providerName
}
