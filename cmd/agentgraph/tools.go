package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hupe1980/agentgraph/agent"
	"github.com/hupe1980/agentgraph/tool"
)

type multiplyArgs struct {
	FirstInt  int `json:"first_int" description:"first int"`
	SecondInt int `json:"second_int" description:"second int"`
}

func newMultiplyTool() tool.Tool {
	return tool.NewTypedTool("multiply", "Multiply two integers.", func(_ context.Context, in multiplyArgs) (any, error) {
		return in.FirstInt * in.SecondInt, nil
	})
}

func newToolsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Run the tool-calling agent",
		Long: `Starts an interactive loop over a graph where the model either answers
directly or calls the multiply tool. With --loop the tool results are fed
back to the model until it answers without tool calls.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.newModel(a.cfg)
			if err != nil {
				return err
			}

			loop, _ := cmd.Flags().GetBool("loop")
			g, err := agent.NewToolCallingGraph(m, tool.MustRegistry(newMultiplyTool()),
				append(a.agentOptions(), agent.WithLoop(loop))...)
			if err != nil {
				return err
			}
			return a.runner(g).Run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().Bool("loop", false, "Feed tool results back to the model")

	return cmd
}
