package main

import (
	"fmt"
	"time"

	"github.com/4thel00z/netpath/internal"
	"github.com/spf13/cobra"
)

func NewTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an admin token for /teach and /knowledge",
		Args:  cobra.NoArgs,
		RunE:  runToken,
	}

	cmd.Flags().String("subject", "admin", "Token subject")
	cmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime (0 for no expiry)")
	return cmd
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	subject, _ := cmd.Flags().GetString("subject")
	ttl, _ := cmd.Flags().GetDuration("ttl")

	token, err := internal.IssueAdminToken([]byte(cfg.Admin.JWTSecret), subject, ttl)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
