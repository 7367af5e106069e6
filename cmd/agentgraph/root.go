package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	a := &app{newModel: newModel}

	rootCmd := &cobra.Command{
		Use:   "agentgraph",
		Short: "Run small state graphs with LLM and tool nodes",
		Long: `agentgraph runs the demo graphs of the agentgraph module: a mood flip with a
random router, an interactive chatbot and a tool-calling agent. Settings are
read from an optional YAML file, a .env file and AGENTGRAPH_* variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.close(cmd.Context())
		},
	}

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().String("provider", "", "Model provider (openai, anthropic, mock)")
	rootCmd.PersistentFlags().String("model", "", "Model name; empty selects the provider default")
	rootCmd.PersistentFlags().String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. localhost:2112)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable coloured output")

	rootCmd.AddCommand(
		newMoodCmd(a),
		newChatCmd(a),
		newToolsCmd(a),
		newGraphCmd(a),
	)

	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
