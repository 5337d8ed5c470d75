package internal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Policy string

const (
	PolicyLocalFirst  Policy = "local-first"
	PolicyRemoteFirst Policy = "remote-first"
	PolicyLocalOnly   Policy = "local-only"
)

func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyLocalFirst, PolicyRemoteFirst, PolicyLocalOnly:
		return p, nil
	case "":
		return PolicyLocalFirst, nil
	default:
		return "", fmt.Errorf("unknown policy %q", s)
	}
}

type Source string

const (
	SourceLocal    Source = "local-knowledge"
	SourceRemote   Source = "remote-api"
	SourceFallback Source = "fallback"
	SourceError    Source = "error"
)

type QuestionRequest struct {
	Question string
	UserID   string
}

type AnswerResult struct {
	Answer  string `json:"answer"`
	Source  Source `json:"source"`
	Success bool   `json:"success"`
}

var (
	DefaultHelpMessage = fmt.Sprintf(
		"I can help with networking topics: %s. Try asking something like \"OSPF kya hai?\" or \"What is a VLAN?\"",
		strings.Join(SupportedTopics, ", "))
	DefaultFallbackMessage = fmt.Sprintf(
		"I couldn't find an answer for that right now. Please ask about known topics: %s.",
		strings.Join(SupportedTopics, ", "))
	UnavailableMessage = "🔧 System temporarily unavailable. Please try again in a moment."
)

// Resolver picks one answer per question: local knowledge, the remote provider,
// or a canned fallback, in the order dictated by its policy.
type Resolver struct {
	store           *KnowledgeStore
	provider        Provider
	policy          Policy
	markers         []string
	systemPrompt    string
	timeout         time.Duration
	helpMessage     string
	fallbackMessage string
	logger          *zap.Logger
}

type ResolverOption func(*Resolver)

// WithProvider enables the remote path. A nil provider keeps it disabled.
func WithProvider(p Provider) ResolverOption {
	return func(r *Resolver) {
		r.provider = p
	}
}

func WithPolicy(p Policy) ResolverOption {
	return func(r *Resolver) {
		r.policy = p
	}
}

// WithFailureMarkers sets the substrings that make remote-first distrust a remote answer.
func WithFailureMarkers(markers ...string) ResolverOption {
	return func(r *Resolver) {
		r.markers = markers
	}
}

func WithSystemPrompt(prompt string) ResolverOption {
	return func(r *Resolver) {
		if prompt != "" {
			r.systemPrompt = prompt
		}
	}
}

func WithRemoteTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func WithHelpMessage(msg string) ResolverOption {
	return func(r *Resolver) {
		r.helpMessage = msg
	}
}

func WithFallbackMessage(msg string) ResolverOption {
	return func(r *Resolver) {
		r.fallbackMessage = msg
	}
}

func WithLogger(l *zap.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

func NewResolver(store *KnowledgeStore, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		store:           store,
		policy:          PolicyLocalFirst,
		markers:         []string{"API Error"},
		systemPrompt:    DefaultSystemPrompt(),
		timeout:         30 * time.Second,
		helpMessage:     DefaultHelpMessage,
		fallbackMessage: DefaultFallbackMessage,
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) Policy() Policy {
	return r.policy
}

func (r *Resolver) RemoteEnabled() bool {
	return r.provider != nil
}

// Resolve never fails: every outcome, including remote errors, is an AnswerResult.
func (r *Resolver) Resolve(ctx context.Context, req QuestionRequest) (res AnswerResult) {
	id := uuid.NewString()
	log := r.logger.With(
		zap.String("resolution_id", id),
		zap.String("policy", string(r.policy)),
		zap.String("user_id", req.UserID),
	)

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("resolver panic", zap.Any("panic", rec))
			res = AnswerResult{Answer: UnavailableMessage, Source: SourceError, Success: false}
		}
		log.Debug("question resolved", zap.String("source", string(res.Source)), zap.Bool("success", res.Success))
	}()

	switch r.policy {
	case PolicyRemoteFirst:
		return r.remoteFirst(ctx, req, log)
	case PolicyLocalOnly:
		return r.localChain(req.Question, r.helpMessage)
	default:
		return r.localFirst(ctx, req, log)
	}
}

func (r *Resolver) localFirst(ctx context.Context, req QuestionRequest, log *zap.Logger) AnswerResult {
	if answer, ok := r.store.Lookup(req.Question); ok {
		return local(answer)
	}

	text, err := r.ask(ctx, req.Question)
	if errors.Is(err, ErrRemoteDisabled) {
		return r.localChain(req.Question, r.helpMessage)
	}
	if err != nil {
		re := ClassifyRemoteError(err)
		log.Warn("remote call failed", zap.String("kind", re.Kind.String()), zap.Error(err))
		return AnswerResult{Answer: RemoteMessage(re), Source: SourceError, Success: true}
	}
	return AnswerResult{Answer: text, Source: SourceRemote, Success: true}
}

func (r *Resolver) remoteFirst(ctx context.Context, req QuestionRequest, log *zap.Logger) AnswerResult {
	text, err := r.ask(ctx, req.Question)
	switch {
	case err == nil && !r.rejected(text):
		return AnswerResult{Answer: text, Source: SourceRemote, Success: true}
	case err == nil:
		log.Info("remote answer rejected by failure marker")
	case errors.Is(err, ErrRemoteDisabled):
		return r.localChain(req.Question, r.helpMessage)
	default:
		re := ClassifyRemoteError(err)
		log.Warn("remote call failed, using local knowledge", zap.String("kind", re.Kind.String()), zap.Error(err))
	}

	return r.localChain(req.Question, r.fallbackMessage)
}

// localChain is exact match, then keyword match, then the given message.
func (r *Resolver) localChain(question, miss string) AnswerResult {
	if answer, ok := r.store.Lookup(question); ok {
		return local(answer)
	}
	if answer, ok := r.store.KeywordLookup(question); ok {
		return local(answer)
	}
	return AnswerResult{Answer: miss, Source: SourceFallback, Success: true}
}

func (r *Resolver) ask(ctx context.Context, question string) (string, error) {
	if r.provider == nil {
		return "", ErrRemoteDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	type reply struct {
		text     string
		err      error
		panicked any
	}
	done := make(chan reply, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- reply{panicked: rec}
			}
		}()
		text, err := r.provider.Complete(ctx, r.systemPrompt, question)
		done <- reply{text: text, err: err}
	}()

	// Providers that ignore ctx must not hold the request past the deadline.
	select {
	case rep := <-done:
		if rep.panicked != nil {
			panic(rep.panicked)
		}
		return rep.text, rep.err
	case <-ctx.Done():
		return "", fmt.Errorf("remote call: %w", ctx.Err())
	}
}

func (r *Resolver) rejected(text string) bool {
	for _, m := range r.markers {
		if m != "" && strings.Contains(text, m) {
			return true
		}
	}
	return false
}

func local(answer string) AnswerResult {
	return AnswerResult{Answer: answer, Source: SourceLocal, Success: true}
}
