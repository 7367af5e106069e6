package agent

import (
	"github.com/hupe1980/agentgraph/graph"
	"github.com/hupe1980/agentgraph/logging"
	"github.com/hupe1980/agentgraph/model"
	"github.com/hupe1980/agentgraph/state"
	"github.com/hupe1980/agentgraph/tool"
)

// Node names used by the prebuilt graphs.
const (
	ChatbotNode        = "chatbot"
	ToolCallingLLMNode = "tool_calling_llm"
	ToolsNode          = "tools"
)

// Option configures the prebuilt graphs.
type Option func(*config)

type config struct {
	loop         bool
	chatOpts     []func(o *ChatNodeOptions)
	graphOpts    []graph.Option
	dispatchOpts []tool.DispatchOption
}

// WithLoop feeds tool results back to the model (tools -> llm) until it
// answers without tool calls. Without it the graph ends after the tools run.
func WithLoop(loop bool) Option {
	return func(c *config) { c.loop = loop }
}

// WithChatOptions configures the chat node.
func WithChatOptions(fns ...func(o *ChatNodeOptions)) Option {
	return func(c *config) { c.chatOpts = append(c.chatOpts, fns...) }
}

// WithGraphOptions configures the underlying graph builder.
func WithGraphOptions(opts ...graph.Option) Option {
	return func(c *config) { c.graphOpts = append(c.graphOpts, opts...) }
}

// WithDispatchOptions configures the tool dispatch node.
func WithDispatchOptions(opts ...tool.DispatchOption) Option {
	return func(c *config) { c.dispatchOpts = append(c.dispatchOpts, opts...) }
}

// WithLogger routes the logs of the graph, the chat node and the tool
// dispatch node to l.
func WithLogger(l logging.Logger) Option {
	return func(c *config) {
		c.graphOpts = append(c.graphOpts, graph.WithLogger(l))
		c.chatOpts = append(c.chatOpts, func(o *ChatNodeOptions) { o.Logger = l })
		c.dispatchOpts = append(c.dispatchOpts, tool.WithDispatchLogger(l))
	}
}

func newConfig(opts []Option) config {
	var c config
	for _, fn := range opts {
		fn(&c)
	}
	return c
}

// NewChatGraph compiles START -> chatbot -> END over the messages schema.
func NewChatGraph(m model.Model, opts ...Option) (*graph.CompiledGraph, error) {
	c := newConfig(opts)

	b := graph.NewBuilder(state.MessagesSchema(), append([]graph.Option{graph.WithName("chat")}, c.graphOpts...)...)
	_ = b.AddNode(ChatbotNode, NewChatNode(m, c.chatOpts...))
	_ = b.AddEdge(graph.START, ChatbotNode)
	_ = b.AddEdge(ChatbotNode, graph.END)
	return b.Compile()
}

// NewToolCallingGraph compiles a graph where the model decides between
// answering directly and calling the registry's tools:
//
//	START -> tool_calling_llm -> {tools, END}
//	tools -> END              (default)
//	tools -> tool_calling_llm (WithLoop(true))
func NewToolCallingGraph(m model.Model, reg *tool.Registry, opts ...Option) (*graph.CompiledGraph, error) {
	c := newConfig(opts)

	chatOpts := append([]func(o *ChatNodeOptions){func(o *ChatNodeOptions) { o.Tools = reg }}, c.chatOpts...)
	name := "tool_calling"
	if c.loop {
		name = "tool_calling_loop"
	}

	b := graph.NewBuilder(state.MessagesSchema(), append([]graph.Option{graph.WithName(name)}, c.graphOpts...)...)
	_ = b.AddNode(ToolCallingLLMNode, NewChatNode(m, chatOpts...))
	_ = b.AddNode(ToolsNode, tool.NewDispatchNode(reg, c.dispatchOpts...))
	_ = b.AddEdge(graph.START, ToolCallingLLMNode)
	route, targets := tool.Condition(ToolsNode)
	_ = b.AddConditionalEdge(ToolCallingLLMNode, route, targets...)
	if c.loop {
		_ = b.AddEdge(ToolsNode, ToolCallingLLMNode)
	} else {
		_ = b.AddEdge(ToolsNode, graph.END)
	}
	return b.Compile()
}
