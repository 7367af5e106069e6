package tool

import (
	"context"

	"github.com/hupe1980/agentgraph/core"
	"github.com/hupe1980/agentgraph/graph"
	"github.com/hupe1980/agentgraph/state"
)

// Condition returns a router that sends the run to toolsNode when the last
// message requests tool calls and to graph.END otherwise, together with the
// declared targets for AddConditionalEdge.
//
// It uses core.HasToolCalls, the same predicate the dispatch node uses, so
// the router never sends a run to a dispatch node that would do nothing.
func Condition(toolsNode string) (graph.RouterFunc, []string) {
	return ConditionOn(state.MessagesKey, toolsNode)
}

// ConditionOn is Condition for a conversation stored under key.
func ConditionOn(key, toolsNode string) (graph.RouterFunc, []string) {
	router := func(_ context.Context, s state.State) string {
		if core.HasToolCalls(s.Messages(key)) {
			return toolsNode
		}
		return graph.END
	}
	return router, []string{toolsNode, graph.END}
}
