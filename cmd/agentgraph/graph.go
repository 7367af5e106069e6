package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/hupe1980/agentgraph/agent"
	"github.com/hupe1980/agentgraph/graph"
	"github.com/hupe1980/agentgraph/model"
	"github.com/hupe1980/agentgraph/tool"
)

var graphNames = []string{"mood", "chat", "tools", "tools-loop"}

func buildNamedGraph(name string) (*graph.CompiledGraph, error) {
	m := model.NewMockModel("mock", "mock")
	reg := tool.MustRegistry(newMultiplyTool())

	switch name {
	case "mood":
		return newMoodGraph(func() float64 { return 0 })
	case "chat":
		return agent.NewChatGraph(m)
	case "tools":
		return agent.NewToolCallingGraph(m, reg)
	case "tools-loop":
		return agent.NewToolCallingGraph(m, reg, agent.WithLoop(true))
	default:
		return nil, fmt.Errorf("unknown graph %q (want one of %v)", name, graphNames)
	}
}

func newGraphCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:       "graph [mood|chat|tools|tools-loop]",
		Short:     "Print a demo graph as a Mermaid diagram",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: slices.Clone(graphNames),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "mood"
			if len(args) > 0 {
				name = args[0]
			}

			g, err := buildNamedGraph(name)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), g.Mermaid())
			return nil
		},
	}
}
