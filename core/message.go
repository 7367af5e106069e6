package core

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// Role identifies the author category of a Message.
type Role string

const (
	// RoleSystem marks instructions that frame the conversation.
	RoleSystem Role = "system"
	// RoleUser marks human input.
	RoleUser Role = "user"
	// RoleAssistant marks model output (text and/or tool calls).
	RoleAssistant Role = "assistant"
	// RoleTool marks the recorded outcome of a tool call.
	RoleTool Role = "tool"
)

// ToolCall describes a tool/function invocation request emitted by a model.
type ToolCall struct {
	ID        string          `json:"id,omitempty"` // Correlates the call with its ToolResult
	Name      string          `json:"name"`         // Registered tool name
	Arguments json.RawMessage `json:"arguments"`    // JSON object payload
}

// ToolResult records the outcome of a single ToolCall.
type ToolResult struct {
	CallID string `json:"call_id,omitempty"`
	Name   string `json:"name"`
	Value  any    `json:"value,omitempty"` // Successful result (any shape)
	Error  string `json:"error,omitempty"` // Populated when the tool failed
}

// Message is a single entry of the conversation history kept in graph state.
// After it has been appended to state it must be treated as immutable.
type Message struct {
	ID         string      `json:"id"`
	Role       Role        `json:"role"`
	Name       string      `json:"name,omitempty"` // Optional author name ("Lance", "Model")
	Content    string      `json:"content,omitempty"`
	ToolCalls  []ToolCall  `json:"tool_calls,omitempty"`
	ToolResult *ToolResult `json:"tool_result,omitempty"`
}

// NewID generates a new unique identifier for messages, tool calls and runs.
func NewID() string { return uuid.NewString() }

// NewSystemMessage creates a system instruction message.
func NewSystemMessage(content string) Message {
	return Message{ID: NewID(), Role: RoleSystem, Content: content}
}

// NewUserMessage creates a user-authored text message.
func NewUserMessage(content string) Message {
	return Message{ID: NewID(), Role: RoleUser, Content: content}
}

// NewAssistantMessage creates a plain assistant response.
func NewAssistantMessage(content string) Message {
	return Message{ID: NewID(), Role: RoleAssistant, Content: content}
}

// NewToolCallMessage creates an assistant message requesting the given tool calls.
// Calls without an ID receive a generated one so results can be correlated.
func NewToolCallMessage(calls ...ToolCall) Message {
	cp := make([]ToolCall, len(calls))
	for i, c := range calls {
		if c.ID == "" {
			c.ID = NewID()
		}
		cp[i] = c
	}
	return Message{ID: NewID(), Role: RoleAssistant, ToolCalls: cp}
}

// NewToolResultMessage records the outcome of a tool call. If err is non-nil
// its message is copied into the result's Error field.
func NewToolResultMessage(call ToolCall, value any, err error) Message {
	res := &ToolResult{CallID: call.ID, Name: call.Name, Value: value}
	if err != nil {
		res.Error = err.Error()
	}
	return Message{ID: NewID(), Role: RoleTool, Name: call.Name, ToolResult: res}
}

// WithName returns a copy of the message with the author name set.
func (m Message) WithName(name string) Message {
	m.Name = name
	return m
}

// HasToolCalls reports whether this message requests at least one tool call.
func (m Message) HasToolCalls() bool { return len(m.ToolCalls) > 0 }

// Text returns the textual content, falling back to a rendering of the tool
// result for tool messages.
func (m Message) Text() string {
	if m.Content != "" || m.ToolResult == nil {
		return m.Content
	}
	if m.ToolResult.Error != "" {
		return "error: " + m.ToolResult.Error
	}
	b, err := json.Marshal(m.ToolResult.Value)
	if err != nil {
		return ""
	}
	return string(b)
}

// Last returns the final message of a sequence and whether one exists.
func Last(messages []Message) (Message, bool) {
	if len(messages) == 0 {
		return Message{}, false
	}
	return messages[len(messages)-1], true
}

// HasToolCalls is the shared "ends with tool call(s)" predicate. It is used by
// both the tool routing condition and the dispatch node so that the two can
// never disagree on what counts as a pending tool call.
func HasToolCalls(messages []Message) bool {
	last, ok := Last(messages)
	return ok && last.Role == RoleAssistant && last.HasToolCalls()
}

// Transcript renders messages as "role: text" lines, mainly for logs and demos.
func Transcript(messages []Message) string {
	var sb strings.Builder
	for i, m := range messages {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(string(m.Role))
		if m.Name != "" {
			sb.WriteString("(" + m.Name + ")")
		}
		sb.WriteString(": ")
		if m.HasToolCalls() {
			names := make([]string, len(m.ToolCalls))
			for j, c := range m.ToolCalls {
				names[j] = c.Name + string(c.Arguments)
			}
			sb.WriteString("call " + strings.Join(names, ", "))
			continue
		}
		sb.WriteString(m.Text())
	}
	return sb.String()
}
