package internal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"charm.land/fantasy"
	"charm.land/fantasy/providers/anthropic"
	"charm.land/fantasy/providers/openai"
	"charm.land/fantasy/providers/openrouter"
)

// Models used when the configured model belongs to another backend.
var defaultModels = map[string]string{
	BackendDeepSeek:   DefaultRemoteModel,
	BackendOpenAI:     "gpt-4o-mini",
	BackendAnthropic:  "claude-3-5-haiku-latest",
	BackendOpenRouter: "openai/gpt-4o-mini",
}

type FantasyConfig struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

var _ Provider = (*FantasyProvider)(nil)

type FantasyProvider struct {
	model       fantasy.LanguageModel
	name        string
	maxTokens   int64
	temperature float64
	timeout     time.Duration
}

func NewFantasyProvider(ctx context.Context, cfg FantasyConfig) (*FantasyProvider, error) {
	var provider fantasy.Provider
	var err error

	if cfg.Provider == "" {
		cfg.Provider = BackendDeepSeek
	}
	baseURL := normalizeBaseURL(cfg.BaseURL)

	switch cfg.Provider {
	case BackendDeepSeek:
		if baseURL == "" {
			baseURL = DefaultRemoteURL
		}
		provider, err = openai.New(openai.WithAPIKey(cfg.APIKey), openai.WithBaseURL(baseURL))

	case BackendOpenAI:
		opts := []openai.Option{openai.WithAPIKey(cfg.APIKey)}
		if baseURL != "" && baseURL != DefaultRemoteURL {
			opts = append(opts, openai.WithBaseURL(baseURL))
		}
		provider, err = openai.New(opts...)

	case BackendAnthropic:
		opts := []anthropic.Option{anthropic.WithAPIKey(cfg.APIKey)}
		if baseURL != "" && baseURL != DefaultRemoteURL {
			opts = append(opts, anthropic.WithBaseURL(baseURL))
		}
		provider, err = anthropic.New(opts...)

	case BackendOpenRouter:
		provider, err = openrouter.New(openrouter.WithAPIKey(cfg.APIKey))

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedBackend, cfg.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}

	modelID := fantasyModel(cfg.Provider, cfg.Model)
	model, err := provider.LanguageModel(ctx, modelID)
	if err != nil {
		return nil, fmt.Errorf("get language model: %w", err)
	}

	return &FantasyProvider{
		model:       model,
		name:        cfg.Provider,
		maxTokens:   int64(cfg.MaxTokens),
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
	}, nil
}

func (p *FantasyProvider) Name() string {
	return p.name
}

func (p *FantasyProvider) Complete(ctx context.Context, system, question string) (string, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	agent := fantasy.NewAgent(p.model, fantasy.WithSystemPrompt(system))

	call := fantasy.AgentCall{Prompt: question}
	if p.maxTokens > 0 {
		call.MaxOutputTokens = &p.maxTokens
	}
	temperature := p.temperature
	call.Temperature = &temperature

	result, err := agent.Generate(ctx, call)
	if err != nil {
		return "", fantasyError(err)
	}

	text := strings.TrimSpace(result.Response.Content.Text())
	if text == "" {
		return "", fmt.Errorf("empty completion")
	}
	return text, nil
}

// fantasyModel keeps the DeepSeek default model away from the other backends.
func fantasyModel(backend, model string) string {
	if model == "" || (model == DefaultRemoteModel && backend != BackendDeepSeek) {
		return defaultModels[backend]
	}
	return model
}

// normalizeBaseURL accepts either a base URL or a full chat-completions endpoint.
func normalizeBaseURL(u string) string {
	u = strings.TrimRight(strings.TrimSpace(u), "/")
	return strings.TrimSuffix(u, "/chat/completions")
}

// fantasyError lifts provider HTTP failures into *StatusError so they classify
// the same way as the other backends.
func fantasyError(err error) error {
	var perr *fantasy.ProviderError
	if errors.As(err, &perr) && perr.StatusCode != 0 {
		return &StatusError{StatusCode: perr.StatusCode, Body: truncateBody(perr.Message, 256), Err: err}
	}
	return fmt.Errorf("generate: %w", err)
}
