package internal

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

type GeminiConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
}

var _ Provider = (*GeminiProvider)(nil)

type GeminiProvider struct {
	client      *genai.Client
	model       string
	maxTokens   int32
	temperature float32
}

func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, ErrRemoteDisabled
	}
	if cfg.Model == "" || cfg.Model == DefaultRemoteModel {
		cfg.Model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiProvider{
		client:      client,
		model:       cfg.Model,
		maxTokens:   int32(cfg.MaxTokens),
		temperature: float32(cfg.Temperature),
	}, nil
}

func (p *GeminiProvider) Name() string {
	return BackendGemini
}

func (p *GeminiProvider) Complete(ctx context.Context, system, question string) (string, error) {
	temperature := p.temperature
	resp, err := p.client.Models.GenerateContent(ctx, p.model,
		[]*genai.Content{genai.NewContentFromText(question, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
			MaxOutputTokens:   p.maxTokens,
			Temperature:       &temperature,
		},
	)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &StatusError{StatusCode: apiErr.Code, Body: truncateBody(apiErr.Message, 256), Err: err}
		}
		var apiErrPtr *genai.APIError
		if errors.As(err, &apiErrPtr) {
			return "", &StatusError{StatusCode: apiErrPtr.Code, Body: truncateBody(apiErrPtr.Message, 256), Err: err}
		}
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty completion")
	}
	return text, nil
}
