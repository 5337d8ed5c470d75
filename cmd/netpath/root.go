package main

import (
	"github.com/spf13/cobra"
)

func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "netpath",
		Short:         "Networking tutor chatbot",
		Long:          `NetPath answers networking questions from local knowledge and a remote LLM.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	addPersistentFlags(rootCmd)
	addSubcommands(rootCmd)

	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", "netpath.yaml", "Path to config file")
	cmd.PersistentFlags().String("env-file", ".env", "Path to .env file")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Debug logging")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
}

func addSubcommands(root *cobra.Command) {
	root.AddCommand(
		NewServeCmd(),
		NewAskCmd(),
		NewTeachCmd(),
		NewKnowledgeCmd(),
		NewProviderCmd(),
		NewConfigCmd(),
		NewTokenCmd(),
	)
}
