// Package metrics exports Prometheus metrics for graph runs and tool calls.
//
// A Collector plugs into a graph through graph.WithHooks(c.Hooks()) and into
// a dispatch node through tool.WithObserver(c.ToolObserver()):
//
//	reg := prometheus.NewRegistry()
//	c, _ := metrics.NewCollector(reg)
//	b := graph.NewBuilder(schema, graph.WithHooks(c.Hooks()))
//	b.AddNode("tools", tool.NewDispatchNode(tools, tool.WithObserver(c.ToolObserver())))
//	http.Handle("/metrics", metrics.Handler(reg))
package metrics
