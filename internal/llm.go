package internal

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrUnsupportedBackend = errors.New("unsupported backend")

const (
	BackendDeepSeek   = "deepseek"
	BackendOpenAI     = "openai"
	BackendAnthropic  = "anthropic"
	BackendOpenRouter = "openrouter"
	BackendGemini     = "gemini"
)

// Provider answers a single question under a system instruction.
type Provider interface {
	Complete(ctx context.Context, system, question string) (string, error)
	Name() string
}

func DefaultSystemPrompt() string {
	return fmt.Sprintf(`You are %s's expert Network Engineer AI Assistant for students.
Provide detailed, educational answers about networking concepts.
Explain like a teacher to students.
Use examples and practical scenarios.
Answer in Hindi or English based on the user's language.
Topics: %s, network troubleshooting.`, CompanyName, strings.Join(SupportedTopics, ", "))
}

// NewProvider builds the remote provider for cfg. Without an API key the remote
// path stays disabled and ErrRemoteDisabled is returned.
func NewProvider(ctx context.Context, cfg RemoteConfig) (Provider, error) {
	if !cfg.Configured() {
		return nil, ErrRemoteDisabled
	}

	switch cfg.Backend {
	case "", BackendDeepSeek, BackendOpenAI, BackendAnthropic, BackendOpenRouter:
		return NewFantasyProvider(ctx, FantasyConfig{
			Provider:    cfg.Backend,
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.URL,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		})

	case BackendGemini:
		return NewGeminiProvider(ctx, GeminiConfig{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		})

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedBackend, cfg.Backend)
	}
}
