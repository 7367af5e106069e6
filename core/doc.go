// Package core provides the foundational domain values shared by every
// agentgraph package:
//
//   - Message (role based conversation entries stored in graph state)
//   - ToolCall / ToolResult (structured tool requests and their outcomes)
//   - HasToolCalls, the single predicate deciding whether a message
//     sequence currently ends with pending tool calls
//
// The package has no dependencies on the graph engine itself so that
// model adapters, tools and nodes can share the same vocabulary.
package core
