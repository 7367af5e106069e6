package testutil

import (
	"encoding/json"
	"fmt"

	"github.com/hupe1980/agentgraph/core"
	"github.com/hupe1980/agentgraph/state"
)

// ConversationBuilder provides a fluent helper for constructing message
// histories in tests.
// Example:
//
//	s := NewConversation().User("2 times 3?").Call("multiply", `{"a":2,"b":3}`).State()
//
// Tool call ids are assigned sequentially ("call_1", "call_2", ...).
type ConversationBuilder struct {
	key   string
	msgs  []core.Message
	calls int
}

// NewConversation creates a builder writing to state.MessagesKey.
func NewConversation() *ConversationBuilder {
	return &ConversationBuilder{key: state.MessagesKey}
}

// Key sets the state field used by State (chainable).
func (b *ConversationBuilder) Key(key string) *ConversationBuilder { b.key = key; return b }

// User appends a user message (chainable).
func (b *ConversationBuilder) User(text string) *ConversationBuilder {
	b.msgs = append(b.msgs, core.NewUserMessage(text))
	return b
}

// Assistant appends a plain assistant reply (chainable).
func (b *ConversationBuilder) Assistant(text string) *ConversationBuilder {
	b.msgs = append(b.msgs, core.NewAssistantMessage(text))
	return b
}

// Call appends an assistant message requesting one tool call with the given
// raw JSON arguments (chainable).
func (b *ConversationBuilder) Call(name, args string) *ConversationBuilder {
	return b.Calls(b.NextCall(name, args))
}

// Calls appends an assistant message requesting all calls (chainable).
func (b *ConversationBuilder) Calls(calls ...core.ToolCall) *ConversationBuilder {
	b.msgs = append(b.msgs, core.NewToolCallMessage(calls...))
	return b
}

// NextCall returns a tool call carrying the next sequential id.
func (b *ConversationBuilder) NextCall(name, args string) core.ToolCall {
	b.calls++
	return core.ToolCall{ID: fmt.Sprintf("call_%d", b.calls), Name: name, Arguments: json.RawMessage(args)}
}

// Result appends the recorded outcome of the most recent call named name
// (chainable). It panics when no such call exists.
func (b *ConversationBuilder) Result(name string, value any) *ConversationBuilder {
	b.msgs = append(b.msgs, core.NewToolResultMessage(b.lastCall(name), value, nil))
	return b
}

func (b *ConversationBuilder) lastCall(name string) core.ToolCall {
	for i := len(b.msgs) - 1; i >= 0; i-- {
		for _, c := range b.msgs[i].ToolCalls {
			if c.Name == name {
				return c
			}
		}
	}
	panic(fmt.Sprintf("testutil: no tool call named %q", name))
}

// Messages returns a copy of the built history.
func (b *ConversationBuilder) Messages() []core.Message {
	return append([]core.Message(nil), b.msgs...)
}

// State wraps the history in a graph input state.
func (b *ConversationBuilder) State() state.State {
	return state.State{b.key: b.Messages()}
}
