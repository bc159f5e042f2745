package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"talentscout/screening/internal/models"
)

type testProvider struct{}

func (testProvider) GenerateContent(context.Context, string, string) (*models.GenerationResponse, error) {
	return &models.GenerationResponse{Content: "ok"}, nil
}
func (testProvider) GetProviderName() string { return "test" }

func TestProviderErrorError(t *testing.T) {
	err := &ProviderError{Provider: "gemini", Message: "failed"}
	if err.Error() != "gemini error: failed" {
		t.Fatalf("unexpected error message: %s", err.Error())
	}

	detail := errors.New("detail")
	wrapped := &ProviderError{Provider: "gemini", Message: "failed", Err: detail}
	if got := wrapped.Error(); got != "gemini error: failed (detail)" {
		t.Fatalf("unexpected wrapped error message: %s", got)
	}
	if !errors.Is(wrapped, detail) {
		t.Fatal("expected ProviderError to unwrap to its cause")
	}
}

func TestRegisterAndNewProvider(t *testing.T) {
	RegisterProvider("test_provider", func() (Provider, error) {
		return testProvider{}, nil
	})
	defer func() {
		providersMu.Lock()
		delete(providers, "test_provider")
		providersMu.Unlock()
	}()

	provider, err := NewProvider("test_provider")
	if err != nil {
		t.Fatalf("NewProvider returned error: %v", err)
	}
	if name := provider.GetProviderName(); name != "test" {
		t.Fatalf("expected provider name test, got %s", name)
	}

	if _, err := NewProvider("missing"); err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}

func TestClassifyError(t *testing.T) {
	cases := map[error]string{
		nil:                      "",
		context.DeadlineExceeded: ErrCodeTimeout,
		fmt.Errorf("call: %w", context.DeadlineExceeded): ErrCodeTimeout,
		errors.New("429 rate limit exceeded"):            ErrCodeRateLimit,
		errors.New("RESOURCE_EXHAUSTED"):                 ErrCodeRateLimit,
		errors.New("quota exceeded"):                     ErrCodeRateLimit,
		errors.New("connection reset"):                   ErrCodeServiceDown,
	}
	for input, want := range cases {
		if got := ClassifyError(input); got != want {
			t.Fatalf("ClassifyError(%v) = %q, want %q", input, got, want)
		}
	}
}
