// Package graph composes named processing steps (nodes) into a directed
// execution graph over a shared, schema-typed state.
//
// Building a graph:
//
//	b := graph.NewBuilder(schema, graph.WithLogger(logger))
//	_ = b.AddNode("node_1", node1)
//	_ = b.AddNode("node_2", node2)
//	_ = b.AddNode("node_3", node3)
//	_ = b.AddEdge(graph.START, "node_1")
//	_ = b.AddConditionalEdge("node_1", decideMood, "node_2", "node_3")
//	_ = b.AddEdge("node_2", graph.END)
//	_ = b.AddEdge("node_3", graph.END)
//	g, err := b.Compile()
//
// Compile validates the structure (entry edge, outgoing edges, reachability,
// conditional targets, path to END) and returns an immutable CompiledGraph, or
// a *ValidationError describing the first violated invariant. Non-fatal
// findings such as AmbiguousEdge are reported through CompiledGraph.Warnings.
//
// Executing a graph:
//
//	final, err := g.Run(ctx, state.State{"graph_state": "Hi, this is Pipo."})
//
// Run is a synchronous interpreter loop: invoke the current node, merge its
// partial state via the schema, resolve the next node through the node's
// conditional edge (if any) or its static edge, and stop at END. Node order is
// fully determined by the graph and the routing functions; the executor adds no
// parallelism and no randomness. Cycles are allowed; bounding them is the
// caller's job (see WithMaxSteps or a context deadline).
//
// A CompiledGraph holds no per-run mutable state and may be executed
// concurrently by any number of goroutines.
package graph
