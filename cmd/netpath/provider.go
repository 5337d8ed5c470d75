package main

import (
	"errors"
	"fmt"

	"github.com/4thel00z/netpath/internal"
	"github.com/spf13/cobra"
)

func NewProviderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provider",
		Short: "Inspect the remote LLM provider",
	}

	cmd.AddCommand(newProviderTestCmd(), newProviderShowCmd())
	return cmd
}

func newProviderTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Test provider connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			provider, err := internal.NewProvider(cmd.Context(), cfg.Remote)
			if err != nil && !errors.Is(err, internal.ErrRemoteDisabled) {
				return fmt.Errorf("create provider: %w", err)
			}

			out, err := internal.NewProviderTestUseCase(provider, cfg.Resolver.SystemPrompt).Execute(cmd.Context())
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), internal.RemoteMessage(err))
				return fmt.Errorf("test provider: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Provider %s is working: %s\n", out.Provider, out.Reply)
			return nil
		},
	}
}

func newProviderShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective provider settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			r := cfg.Remote
			fmt.Fprintf(cmd.OutOrStdout(), "backend:     %s\n", r.Backend)
			fmt.Fprintf(cmd.OutOrStdout(), "model:       %s\n", r.Model)
			fmt.Fprintf(cmd.OutOrStdout(), "url:         %s\n", r.URL)
			fmt.Fprintf(cmd.OutOrStdout(), "timeout:     %s\n", r.Timeout)
			fmt.Fprintf(cmd.OutOrStdout(), "configured:  %t\n", r.Configured())
			return nil
		},
	}
}
