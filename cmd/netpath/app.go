package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/4thel00z/netpath/internal"
	v1 "github.com/4thel00z/netpath/pkg/v1"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type app struct {
	cfg         *internal.Config
	logger      *zap.Logger
	store       *internal.KnowledgeStore
	provider    internal.Provider
	resolver    *internal.Resolver
	askUC       *internal.AskUseCase
	teachUC     *internal.TeachUseCase
	knowledgeUC *internal.ListKnowledgeUseCase
}

// loadConfig resolves .env, the config file and the environment, in that order.
func loadConfig(cmd *cobra.Command) (*internal.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := internal.LoadDotEnv(envFile); err != nil {
		return nil, err
	}

	path, _ := cmd.Flags().GetString("config")
	cfg, err := internal.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.Getenv)

	if f := cmd.Flags().Lookup("policy"); f != nil && f.Changed {
		cfg.Resolver.Policy = f.Value.String()
	}
	if f := cmd.Flags().Lookup("knowledge-file"); f != nil && f.Changed {
		cfg.Knowledge.File = f.Value.String()
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newApp(ctx context.Context, cfg *internal.Config, logger *zap.Logger) (*app, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := internal.NewSeededStore(cfg.Knowledge.File, cfg.Knowledge.MaxEntries)
	if err != nil {
		return nil, fmt.Errorf("seed knowledge: %w", err)
	}

	provider, err := internal.NewProvider(ctx, cfg.Remote)
	switch {
	case errors.Is(err, internal.ErrRemoteDisabled):
		logger.Warn("remote API key not set, answering from local knowledge only")
		provider = nil
	case err != nil:
		return nil, fmt.Errorf("create provider: %w", err)
	}

	policy, err := internal.ParsePolicy(cfg.Resolver.Policy)
	if err != nil {
		return nil, err
	}

	resolver := internal.NewResolver(store,
		internal.WithProvider(provider),
		internal.WithPolicy(policy),
		internal.WithFailureMarkers(cfg.Resolver.FailureMarkers...),
		internal.WithSystemPrompt(cfg.Resolver.SystemPrompt),
		internal.WithRemoteTimeout(cfg.Remote.Timeout),
		internal.WithLogger(logger.Named("resolver")),
	)

	return &app{
		cfg:         cfg,
		logger:      logger,
		store:       store,
		provider:    provider,
		resolver:    resolver,
		askUC:       internal.NewAskUseCase(resolver),
		teachUC:     internal.NewTeachUseCase(store, logger.Named("teach")),
		knowledgeUC: internal.NewListKnowledgeUseCase(store),
	}, nil
}

// newClient builds a client for a running server, using the configured routes.
func newClient(cmd *cobra.Command, server, token string) (*v1.Client, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	routes := cfg.Server.Routes
	return v1.New(
		v1.WithBaseURL(server),
		v1.WithToken(token),
		v1.WithRoutes(v1.Routes{Ask: routes.Ask, Teach: routes.Teach, Knowledge: routes.Knowledge}),
	)
}
