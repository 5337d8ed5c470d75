package main

import (
	"encoding/json"
	"fmt"
	"sort"

	v1 "github.com/4thel00z/netpath/pkg/v1"
	"github.com/spf13/cobra"
)

func NewKnowledgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "knowledge",
		Aliases: []string{"ls"},
		Short:   "List the knowledge base",
		Long:    `List the built-in knowledge (plus the knowledge file), or a running server's with --server.`,
		Args:    cobra.NoArgs,
		RunE:    runKnowledge,
	}

	cmd.Flags().String("server", "", "Server base URL")
	cmd.Flags().String("token", "", "Admin bearer token")
	cmd.Flags().String("knowledge-file", "", "YAML knowledge file to seed from")
	return cmd
}

func runKnowledge(cmd *cobra.Command, _ []string) error {
	server, _ := cmd.Flags().GetString("server")

	var dump *v1.KnowledgeDump
	if server != "" {
		token, _ := cmd.Flags().GetString("token")
		client, err := newClient(cmd, server, token)
		if err != nil {
			return err
		}
		defer client.Close()

		if dump, err = client.Knowledge(cmd.Context()); err != nil {
			return err
		}
	} else {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), cfg, nil)
		if err != nil {
			return err
		}
		out, err := a.knowledgeUC.Execute(cmd.Context())
		if err != nil {
			return fmt.Errorf("list knowledge: %w", err)
		}
		dump = &v1.KnowledgeDump{
			Company:        out.Company,
			TotalResponses: out.TotalResponses,
			KnowledgeBase:  out.KnowledgeBase,
		}
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(dump)
	}

	keys := make([]string, 0, len(dump.KnowledgeBase))
	for k := range dump.KnowledgeBase {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintln(cmd.OutOrStdout(), k)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d entries\n", dump.TotalResponses)
	return nil
}
