package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func NewTeachCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teach <question> <answer>",
		Short: "Teach a running server a new answer",
		Args:  cobra.ExactArgs(2),
		RunE:  runTeach,
	}

	cmd.Flags().String("server", "http://localhost:8000", "Server base URL")
	cmd.Flags().String("token", "", "Admin bearer token")
	return cmd
}

func runTeach(cmd *cobra.Command, args []string) error {
	server, _ := cmd.Flags().GetString("server")
	token, _ := cmd.Flags().GetString("token")

	client, err := newClient(cmd, server, token)
	if err != nil {
		return err
	}
	defer client.Close()

	out, err := client.Teach(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s (%d entries)\n", out.Message, out.TotalKnowledge)
	return nil
}
