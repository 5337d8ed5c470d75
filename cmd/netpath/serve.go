package main

import (
	"fmt"
	"time"

	"github.com/4thel00z/netpath/internal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long:  `Serve the chat widget and the /ask, /teach, /knowledge and /health endpoints.`,
		RunE:  runServe,
	}

	cmd.Flags().String("addr", "", "Listen address (overrides host and PORT)")
	cmd.Flags().String("policy", "", "Resolution policy (local-first|remote-first|local-only)")
	cmd.Flags().String("knowledge-file", "", "YAML knowledge file to seed and watch")
	cmd.Flags().Duration("debounce", 500*time.Millisecond, "Debounce window for knowledge file reloads")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := internal.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}

	if cfg.Admin.JWTSecret == "" {
		logger.Warn("admin secret not set, /teach and /knowledge are unauthenticated")
	}

	srv := internal.NewServer(internal.ServerDeps{
		Config:        cfg.Server,
		AdminSecret:   cfg.Admin.JWTSecret,
		APIConfigured: a.provider != nil,
		Ask:           a.askUC,
		Teach:         a.teachUC,
		Knowledge:     a.knowledgeUC,
		Logger:        logger.Named("http"),
	})

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.Server.Addr()
	}
	debounce, _ := cmd.Flags().GetDuration("debounce")

	logger.Info("starting",
		zap.String("service", internal.CompanyName),
		zap.String("version", version),
		zap.String("policy", string(a.resolver.Policy())),
		zap.Bool("remote", a.resolver.RemoteEnabled()),
		zap.Int("knowledge", a.store.Len()),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Student portal: http://%s\n", addr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx, addr)
	})
	if cfg.Knowledge.File != "" && cfg.Knowledge.Watch {
		g.Go(func() error {
			return internal.WatchKnowledgeFile(gctx, cfg.Knowledge.File, a.store, debounce, logger.Named("knowledge"))
		})
	}

	return g.Wait()
}
