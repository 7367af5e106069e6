package anthropic

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/hupe1980/agentgraph/core"
	"github.com/hupe1980/agentgraph/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessages_GroupsToolResults(t *testing.T) {
	c1 := core.ToolCall{ID: "t1", Name: "multiply", Arguments: json.RawMessage(`{"a":2,"b":3}`)}
	c2 := core.ToolCall{ID: "t2", Name: "divide", Arguments: json.RawMessage(`{"a":1,"b":0}`)}
	msgs := []core.Message{
		core.NewSystemMessage("ignored here"),
		core.NewUserMessage("compute"),
		core.NewToolCallMessage(c1, c2),
		core.NewToolResultMessage(c1, 6, nil),
		core.NewToolResultMessage(c2, nil, errors.New("division by zero")),
		core.NewAssistantMessage("6 and an error"),
	}

	out := buildMessages(msgs)
	require.Len(t, out, 4)
	assert.Equal(t, "user", string(out[0].Role))
	assert.Equal(t, "assistant", string(out[1].Role))
	assert.Len(t, out[1].Content, 2)
	assert.Equal(t, "user", string(out[2].Role))
	assert.Len(t, out[2].Content, 2)
	assert.Equal(t, "assistant", string(out[3].Role))
}

func TestSystemBlocks(t *testing.T) {
	blocks := systemBlocks(model.Request{
		Instructions: "be brief",
		Messages:     []core.Message{core.NewSystemMessage("you are a calculator")},
	})
	require.Len(t, blocks, 2)
	assert.Equal(t, "be brief", blocks[0].Text)
	assert.Equal(t, "you are a calculator", blocks[1].Text)
}

func TestBuildTools(t *testing.T) {
	tools := buildTools([]model.ToolDefinition{{
		Name:        "multiply",
		Description: "Multiply two integers",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{"a": map[string]any{"type": "integer"}},
			"required":   []any{"a"},
		},
	}})
	require.Len(t, tools, 1)
	require.NotNil(t, tools[0].OfTool)
	assert.Equal(t, "multiply", tools[0].OfTool.Name)
	assert.Equal(t, []string{"a"}, tools[0].OfTool.InputSchema.Required)
}

func TestInfo(t *testing.T) {
	m := NewModelFromClient(nil, func(o *Options) { o.Model = "claude-test" })
	assert.Equal(t, model.Info{Name: "claude-test", Provider: "anthropic", SupportsTools: true}, m.Info())
}
