package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/4thel00z/netpath/internal"
	"github.com/spf13/cobra"
)

func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a networking question",
		Long:  `Resolve a question locally with the configured policy, or against a running server with --server.`,
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAsk,
	}

	cmd.Flags().String("server", "", "Server base URL (resolve remotely)")
	cmd.Flags().String("user", "", "Requester identifier")
	cmd.Flags().String("policy", "", "Resolution policy (local-first|remote-first|local-only)")
	cmd.Flags().String("knowledge-file", "", "YAML knowledge file to seed from")
	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")
	user, _ := cmd.Flags().GetString("user")
	server, _ := cmd.Flags().GetString("server")

	var res *internal.AnswerResult
	if server != "" {
		client, err := newClient(cmd, server, "")
		if err != nil {
			return err
		}
		defer client.Close()

		out, err := client.Ask(cmd.Context(), question, user)
		if err != nil {
			return err
		}
		res = &internal.AnswerResult{Answer: out.Answer, Source: internal.Source(out.Source), Success: out.Success}
	} else {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), cfg, nil)
		if err != nil {
			return err
		}
		res, err = a.askUC.Execute(cmd.Context(), internal.AskInput{Question: question, UserID: user})
		if err != nil {
			return fmt.Errorf("ask: %w", err)
		}
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Fprintln(cmd.OutOrStdout(), res.Answer)
	fmt.Fprintf(cmd.ErrOrStderr(), "[%s]\n", res.Source)
	return nil
}
