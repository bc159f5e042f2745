package openai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/ai/azopenai"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"

	"talentscout/screening/internal/llm"
	"talentscout/screening/internal/models"
)

const providerName = "openai"

// Client talks to Groq, OpenAI or Azure OpenAI through the chat completions API
type Client struct {
	client *azopenai.Client
	config *Config
}

// options may be nil; tests use it to swap the transport
func NewClient(config *Config, options *azopenai.ClientOptions) (*Client, error) {
	keyCredential := azcore.NewKeyCredential(config.APIKey)

	var (
		client *azopenai.Client
		err    error
	)
	if config.Azure {
		client, err = azopenai.NewClientWithKeyCredential(config.Endpoint, keyCredential, options)
	} else {
		client, err = azopenai.NewClientForOpenAI(config.Endpoint, keyCredential, options)
	}
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: providerName,
			Code:     llm.ErrCodeAPIKey,
			Message:  "Failed to create OpenAI client",
			Err:      err,
		}
	}

	return &Client{client: client, config: config}, nil
}

func (c *Client) GenerateContent(ctx context.Context, prompt string, requestID string) (*models.GenerationResponse, error) {
	startTime := time.Now()
	resp, err := c.client.GetChatCompletions(
		ctx,
		azopenai.ChatCompletionsOptions{
			DeploymentName: to.Ptr(c.config.Model),
			Messages: []azopenai.ChatRequestMessageClassification{
				&azopenai.ChatRequestUserMessage{
					Content: azopenai.NewChatRequestUserMessageContent(prompt),
				},
			},
			Temperature: to.Ptr[float32](0.7),
			MaxTokens:   to.Ptr[int32](2000),
		},
		nil,
	)
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: providerName,
			Code:     classify(err),
			Message:  "Failed to generate content",
			Err:      err,
		}
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil || resp.Choices[0].Message.Content == nil {
		return nil, &llm.ProviderError{
			Provider: providerName,
			Code:     llm.ErrCodeInvalidInput,
			Message:  "No completion received",
		}
	}

	text := strings.TrimSpace(*resp.Choices[0].Message.Content)
	if text == "" {
		return nil, &llm.ProviderError{
			Provider: providerName,
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Empty response generated",
		}
	}

	return &models.GenerationResponse{
		Content:   text,
		RequestID: requestID,
		Metadata: models.GenerationMetadata{
			ProcessingTime: int(time.Since(startTime).Milliseconds()),
			Provider:       providerName,
			Model:          c.config.Model,
		},
	}, nil
}

func (c *Client) GetProviderName() string {
	return providerName
}

func classify(err error) string {
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return llm.ErrCodeAPIKey
		case http.StatusTooManyRequests:
			return llm.ErrCodeRateLimit
		case http.StatusBadRequest:
			return llm.ErrCodeInvalidInput
		}
	}
	return llm.ClassifyError(err)
}
