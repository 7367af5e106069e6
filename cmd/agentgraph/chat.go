package main

import (
	"github.com/spf13/cobra"

	"github.com/hupe1980/agentgraph/agent"
)

func newChatCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the configured model",
		Long:  `Starts an interactive loop over START -> chatbot -> END. Type quit, exit or q to leave.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.newModel(a.cfg)
			if err != nil {
				return err
			}

			opts := a.agentOptions()
			if system, _ := cmd.Flags().GetString("system"); system != "" {
				opts = append(opts, agent.WithChatOptions(func(o *agent.ChatNodeOptions) {
					o.Instruction = agent.NewInstructionFromText(system)
				}))
			}

			g, err := agent.NewChatGraph(m, opts...)
			if err != nil {
				return err
			}
			return a.runner(g).Run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().String("system", "", "System instruction sent ahead of the conversation")

	return cmd
}
