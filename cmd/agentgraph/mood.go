package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/hupe1980/agentgraph/graph"
	"github.com/hupe1980/agentgraph/state"
)

const moodKey = "graph_state"

var moodColors = map[string]string{
	"node_1": "#9cdcfe",
	"node_2": "#ffd700",
	"node_3": "#4ec9b0",
}

// newMoodGraph builds START -> node_1 -> {node_2, node_3} -> END over a
// single replaced string field. pick returns a number in [0, 1); values
// below 0.5 route to node_2.
func newMoodGraph(pick func() float64, opts ...graph.Option) (*graph.CompiledGraph, error) {
	schema, err := state.NewSchema(state.Field{Name: moodKey, Kind: state.KindString, Strategy: state.Replace})
	if err != nil {
		return nil, err
	}

	suffix := func(text string) graph.NodeFunc {
		return func(_ context.Context, s state.State) (state.State, error) {
			return state.State{moodKey: s.String(moodKey) + text}, nil
		}
	}

	b := graph.NewBuilder(schema, append([]graph.Option{graph.WithName("mood")}, opts...)...)
	_ = b.AddNode("node_1", suffix("I am "))
	_ = b.AddNode("node_2", suffix("happy!"))
	_ = b.AddNode("node_3", suffix("sad!"))
	_ = b.AddEdge(graph.START, "node_1")
	_ = b.AddConditionalEdge("node_1", func(context.Context, state.State) string {
		if pick() < 0.5 {
			return "node_2"
		}
		return "node_3"
	}, "node_2", "node_3")
	_ = b.AddEdge("node_2", graph.END)
	_ = b.AddEdge("node_3", graph.END)
	return b.Compile()
}

func titleName(name string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return "John Doe"
	}
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func newMoodCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mood",
		Short: "Run the mood flip graph",
		Long:  `Runs a three node graph whose conditional edge picks node_2 (happy) or node_3 (sad) at random.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, _ := cmd.Flags().GetString("name")
			seed, _ := cmd.Flags().GetUint64("seed")
			if !cmd.Flags().Changed("seed") {
				seed = uint64(time.Now().UnixNano())
			}
			rng := rand.New(rand.NewPCG(seed, seed))

			out := cmd.OutOrStdout()
			g, err := newMoodGraph(rng.Float64, append(a.graphOptions(), graph.WithHooks(a.moodBanners(out)))...)
			if err != nil {
				return err
			}

			final, err := g.Run(cmd.Context(), state.State{moodKey: fmt.Sprintf("Hi, this is %s. ", titleName(name))})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, a.style("RES:", "#ce9178"), final.String(moodKey))
			return nil
		},
	}

	cmd.Flags().String("name", "", "Name to greet with (default \"John Doe\")")
	cmd.Flags().Uint64("seed", 0, "Seed for the random router")

	return cmd
}

func (a *app) moodBanners(w io.Writer) graph.Hooks {
	return graph.Hooks{
		OnNodeStart: func(_ context.Context, e graph.NodeEvent) {
			label := strings.ReplaceAll(e.Node, "node_", "Node ")
			fmt.Fprintln(w, a.style("••• "+label+" •••", moodColors[e.Node]))
		},
	}
}
