// Package tool implements tool calling for graphs: the Tool abstraction, an
// immutable name keyed Registry, and the dispatch node that executes the
// tool calls requested by the last assistant message.
//
// A typical tool-calling graph routes the model's output either to the
// dispatch node or to END with Condition, which uses the same
// core.HasToolCalls predicate as the dispatch node itself:
//
//	reg := tool.MustRegistry(multiply)
//	b.AddNode("llm", chat)
//	b.AddNode("tools", tool.NewDispatchNode(reg))
//	route, targets := tool.Condition("tools")
//	b.AddConditionalEdge("llm", route, targets...)
//	b.AddEdge("tools", graph.END)
package tool
