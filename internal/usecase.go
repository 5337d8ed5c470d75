package internal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

var ErrEmptyQuestion = errors.New("question is required")

// Use case input/output DTOs

type AskInput struct {
	Question string
	UserID   string
}

type TeachInput struct {
	Question string
	Answer   string
}

type TeachOutput struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	TotalKnowledge int    `json:"total_knowledge"`
}

type ListKnowledgeOutput struct {
	Company        string            `json:"company"`
	TotalResponses int               `json:"total_responses"`
	KnowledgeBase  map[string]string `json:"knowledge_base"`
}

type ProviderTestOutput struct {
	Provider string
	Reply    string
}

// Use cases

type AskUseCase struct {
	resolver *Resolver
}

func NewAskUseCase(resolver *Resolver) *AskUseCase {
	return &AskUseCase{resolver: resolver}
}

func (uc *AskUseCase) Execute(ctx context.Context, input AskInput) (*AnswerResult, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, ErrEmptyQuestion
	}

	res := uc.resolver.Resolve(ctx, QuestionRequest{
		Question: input.Question,
		UserID:   input.UserID,
	})
	return &res, nil
}

type TeachUseCase struct {
	store  *KnowledgeStore
	logger *zap.Logger
}

func NewTeachUseCase(store *KnowledgeStore, logger *zap.Logger) *TeachUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeachUseCase{store: store, logger: logger}
}

func (uc *TeachUseCase) Execute(_ context.Context, input TeachInput) (*TeachOutput, error) {
	key, err := NewKey(input.Question)
	if err != nil {
		return nil, err
	}

	total, err := uc.store.Upsert(key, input.Answer)
	if err != nil {
		return nil, fmt.Errorf("teach %q: %w", input.Question, err)
	}

	uc.logger.Info("knowledge updated", zap.String("key", key.String()), zap.Int("total", total))

	return &TeachOutput{
		Success:        true,
		Message:        fmt.Sprintf("NetPath knowledge updated: '%s'", input.Question),
		TotalKnowledge: total,
	}, nil
}

type ListKnowledgeUseCase struct {
	store *KnowledgeStore
}

func NewListKnowledgeUseCase(store *KnowledgeStore) *ListKnowledgeUseCase {
	return &ListKnowledgeUseCase{store: store}
}

func (uc *ListKnowledgeUseCase) Execute(_ context.Context) (*ListKnowledgeOutput, error) {
	snapshot := uc.store.Snapshot()
	return &ListKnowledgeOutput{
		Company:        CompanyName,
		TotalResponses: len(snapshot),
		KnowledgeBase:  snapshot,
	}, nil
}

type ProviderTestUseCase struct {
	provider Provider
	system   string
}

func NewProviderTestUseCase(provider Provider, system string) *ProviderTestUseCase {
	if system == "" {
		system = DefaultSystemPrompt()
	}
	return &ProviderTestUseCase{provider: provider, system: system}
}

// Execute sends a single short question and returns the classified error on failure.
func (uc *ProviderTestUseCase) Execute(ctx context.Context) (*ProviderTestOutput, error) {
	if uc.provider == nil {
		return nil, ClassifyRemoteError(ErrRemoteDisabled)
	}

	reply, err := uc.provider.Complete(ctx, uc.system, "Reply with the single word: pong")
	if err != nil {
		return nil, ClassifyRemoteError(err)
	}

	return &ProviderTestOutput{Provider: uc.provider.Name(), Reply: reply}, nil
}
