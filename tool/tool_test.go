package tool

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hupe1980/agentgraph/core"
	"github.com/hupe1980/agentgraph/graph"
	"github.com/hupe1980/agentgraph/internal/testutil"
	"github.com/hupe1980/agentgraph/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------- helpers --------------------

type multiplyArgs struct {
	A int `json:"a" description:"first factor"`
	B int `json:"b" description:"second factor"`
}

func multiplyTool() *FunctionTool {
	return NewTypedTool("multiply", "Multiply a and b", func(_ context.Context, in multiplyArgs) (any, error) {
		return in.A * in.B, nil
	})
}

type divideArgs struct {
	A float64 `json:"a"`
	B float64 `json:"b" validate:"required"`
}

func divideTool() *FunctionTool {
	return NewTypedTool("divide", "Divide a by b", func(_ context.Context, in divideArgs) (any, error) {
		return in.A / in.B, nil
	})
}

func failingTool(err error) *FunctionTool {
	return NewFunctionTool("flaky", "Always fails", nil, func(context.Context, map[string]any) (any, error) {
		return nil, err
	})
}

func call(id, name, args string) core.ToolCall {
	return core.ToolCall{ID: id, Name: name, Arguments: json.RawMessage(args)}
}

// toolGraph wires START -> llm -> Condition{tools, END}; tools -> END, where
// llm emits the given assistant message.
func toolGraph(t *testing.T, reg *Registry, reply core.Message, opts ...DispatchOption) *graph.CompiledGraph {
	t.Helper()
	b := graph.NewBuilder(state.MessagesSchema())
	require.NoError(t, b.AddNode("llm", func(context.Context, state.State) (state.State, error) {
		return state.State{state.MessagesKey: reply}, nil
	}))
	require.NoError(t, b.AddNode("tools", NewDispatchNode(reg, opts...)))
	require.NoError(t, b.AddEdge(graph.START, "llm"))
	route, targets := Condition("tools")
	require.NoError(t, b.AddConditionalEdge("llm", route, targets...))
	require.NoError(t, b.AddEdge("tools", graph.END))
	g, err := b.Compile()
	require.NoError(t, err)
	return g
}

func userInput(text string) state.State {
	return testutil.NewConversation().User(text).State()
}

// -------------------- FunctionTool --------------------

func TestFunctionTool_Success(t *testing.T) {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
			"b": map[string]any{"type": "number"},
		},
		"required": []string{"a", "b"},
	}

	sum := NewFunctionTool("sum", "Add numbers", params, func(_ context.Context, args map[string]any) (any, error) {
		return args["a"].(float64) + args["b"].(float64), nil
	})

	result, err := sum.Call(context.Background(), map[string]any{"a": 2.0, "b": 3.0})
	require.NoError(t, err)
	assert.Equal(t, 5.0, result)
	assert.Equal(t, "sum", sum.Name())
	assert.Equal(t, "Add numbers", sum.Description())
}

func TestFunctionTool_ValidationError(t *testing.T) {
	params := map[string]any{
		"type":       "object",
		"properties": map[string]any{"a": map[string]any{"type": "number"}},
		"required":   []any{"a"},
	}
	tl := NewFunctionTool("test", "Test", params, func(context.Context, map[string]any) (any, error) {
		return 0, nil
	})

	_, err := tl.Call(context.Background(), map[string]any{})
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeValidation, toolErr.Code)

	var argErr *ToolArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "a", argErr.Field)
	assert.ErrorIs(t, err, ErrToolArgument)
}

func TestFunctionTool_ExecutionError(t *testing.T) {
	boom := errors.New("boom")
	_, err := failingTool(boom).Call(context.Background(), map[string]any{})

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeExecution, toolErr.Code)
	assert.ErrorIs(t, err, boom)
}

func TestFunctionTool_ForwardsToolError(t *testing.T) {
	custom := NewToolError("flaky", "rate limited", "RATE_LIMIT")
	_, err := failingTool(custom).Call(context.Background(), map[string]any{})
	assert.Same(t, custom, err)
}

func TestToolErrorFormatting(t *testing.T) {
	err := NewToolError("demo", "something failed", "E123")
	assert.Contains(t, err.Error(), "E123")
	assert.Contains(t, err.Error(), "demo")
	assert.Equal(t, "tool error in demo: x", (&ToolError{Tool: "demo", Message: "x"}).Error())
}

// -------------------- typed tools --------------------

func TestTypedTool_Schema(t *testing.T) {
	props := multiplyTool().Parameters()["properties"].(map[string]any)
	assert.Equal(t, "integer", props["a"].(map[string]any)["type"])
	assert.Equal(t, "first factor", props["a"].(map[string]any)["description"])
}

func TestTypedTool_DecodesJSONNumbers(t *testing.T) {
	out, err := multiplyTool().Call(context.Background(), map[string]any{"a": 2.0, "b": 3.0})
	require.NoError(t, err)
	assert.Equal(t, 6, out)
}

func TestTypedTool_ArgumentErrors(t *testing.T) {
	tests := []struct {
		name  string
		tool  *FunctionTool
		args  map[string]any
		field string
	}{
		{"missing field", multiplyTool(), map[string]any{"a": 2.0}, "b"},
		{"wrong type", multiplyTool(), map[string]any{"a": "two", "b": 3.0}, "a"},
		{"validate tag", divideTool(), map[string]any{"a": 1.0, "b": 0.0}, "b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.tool.Call(context.Background(), tt.args)
			var argErr *ToolArgumentError
			require.ErrorAs(t, err, &argErr)
			assert.Equal(t, tt.field, argErr.Field)
		})
	}
}

func TestDecodeArgs_NonStruct(t *testing.T) {
	out, err := DecodeArgs[map[string]any]("raw", map[string]any{"x": 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"x": 1}, out)
}

// -------------------- registry --------------------

func TestRegistry(t *testing.T) {
	reg, err := NewRegistry(multiplyTool(), divideTool())
	require.NoError(t, err)

	assert.Equal(t, []string{"multiply", "divide"}, reg.Names())
	assert.Equal(t, 2, reg.Len())
	tl, ok := reg.Get("divide")
	require.True(t, ok)
	assert.Equal(t, "divide", tl.Name())
	_, ok = reg.Get("nope")
	assert.False(t, ok)

	defs := reg.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "multiply", defs[0].Name)
	assert.Equal(t, "Multiply a and b", defs[0].Description)

	_, err = NewRegistry(multiplyTool(), multiplyTool())
	assert.ErrorIs(t, err, ErrDuplicateTool)
	assert.Panics(t, func() { MustRegistry(nil) })
}

// -------------------- dispatch --------------------

func TestDispatch_MultiplyEndToEnd(t *testing.T) {
	g := toolGraph(t, MustRegistry(multiplyTool()), core.NewToolCallMessage(call("c1", "multiply", `{"a":2,"b":3}`)))

	out, err := g.Run(context.Background(), userInput("What is 2 times 3?"))
	require.NoError(t, err)

	msgs := out.Messages(state.MessagesKey)
	require.Len(t, msgs, 3)
	last := msgs[2]
	assert.Equal(t, core.RoleTool, last.Role)
	require.NotNil(t, last.ToolResult)
	assert.Equal(t, 6, last.ToolResult.Value)
	assert.Equal(t, "c1", last.ToolResult.CallID)
	assert.Empty(t, last.ToolResult.Error)
}

func TestDispatch_PlainResponseSkipsTools(t *testing.T) {
	g := toolGraph(t, MustRegistry(multiplyTool()), core.NewAssistantMessage("Hello!"))

	out, err := g.Run(context.Background(), userInput("Hi"))
	require.NoError(t, err)
	assert.Len(t, out.Messages(state.MessagesKey), 2)
}

func TestDispatch_NoToolCallsIsEmptyUpdate(t *testing.T) {
	node := NewDispatchNode(MustRegistry())
	partial, err := node(context.Background(), userInput("hi"))
	require.NoError(t, err)
	assert.Empty(t, partial)
}

func TestDispatch_ResultsInCallOrder(t *testing.T) {
	reply := core.NewToolCallMessage(
		call("c1", "divide", `{"a":9,"b":3}`),
		call("c2", "multiply", `{"a":4,"b":5}`),
		call("c3", "multiply", `{"a":1,"b":1}`),
	)
	g := toolGraph(t, MustRegistry(multiplyTool(), divideTool()), reply)

	out, err := g.Run(context.Background(), userInput("go"))
	require.NoError(t, err)

	msgs := out.Messages(state.MessagesKey)[2:]
	require.Len(t, msgs, 3)
	assert.Equal(t, []string{"c1", "c2", "c3"}, []string{msgs[0].ToolResult.CallID, msgs[1].ToolResult.CallID, msgs[2].ToolResult.CallID})
	assert.Equal(t, 3.0, msgs[0].ToolResult.Value)
	assert.Equal(t, 20, msgs[1].ToolResult.Value)
	assert.Equal(t, 1, msgs[2].ToolResult.Value)
}

func TestDispatch_UnknownToolFailsRun(t *testing.T) {
	g := toolGraph(t, MustRegistry(multiplyTool()), core.NewToolCallMessage(call("c1", "add", `{"a":1}`)),
		WithErrorsAsResults())

	out, err := g.Run(context.Background(), userInput("add"))
	assert.Nil(t, out)
	require.ErrorIs(t, err, ErrUnknownTool)

	var unknown *UnknownToolError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "add", unknown.Name)

	var nodeErr *graph.NodeExecutionError
	require.ErrorAs(t, err, &nodeErr)
	assert.Equal(t, "tools", nodeErr.Node)

	runErr, ok := graph.IsRunError(err)
	require.True(t, ok)
	assert.Len(t, runErr.State.Messages(state.MessagesKey), 2)
}

func TestDispatch_MalformedArguments(t *testing.T) {
	tests := []struct {
		name string
		args string
	}{
		{"invalid json", `{"a":`},
		{"not an object", `[1,2]`},
		{"wrong shape", `{"a":"two","b":3}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := toolGraph(t, MustRegistry(multiplyTool()), core.NewToolCallMessage(call("c1", "multiply", tt.args)),
				WithErrorsAsResults())
			_, err := g.Run(context.Background(), userInput("x"))
			var argErr *ToolArgumentError
			require.ErrorAs(t, err, &argErr)
			assert.Equal(t, "multiply", argErr.Tool)
		})
	}
}

func TestDispatch_NullArgument(t *testing.T) {
	g := toolGraph(t, MustRegistry(multiplyTool()), core.NewToolCallMessage(call("c1", "multiply", `{"a":null,"b":3}`)))
	_, err := g.Run(context.Background(), userInput("x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrToolArgument)
	var argErr *ToolArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "multiply", argErr.Tool)
	assert.Equal(t, "a", argErr.Field)
}

func TestDispatch_EmptyArgumentsAreEmptyObject(t *testing.T) {
	now := NewFunctionTool("now", "Current time", nil, func(context.Context, map[string]any) (any, error) {
		return "noon", nil
	})
	g := toolGraph(t, MustRegistry(now), core.NewToolCallMessage(call("c1", "now", "")))

	out, err := g.Run(context.Background(), userInput("time?"))
	require.NoError(t, err)
	last, _ := core.Last(out.Messages(state.MessagesKey))
	assert.Equal(t, "noon", last.ToolResult.Value)
}

func TestDispatch_ToolFailure(t *testing.T) {
	boom := errors.New("upstream down")
	reply := core.NewToolCallMessage(call("c1", "flaky", `{}`))

	g := toolGraph(t, MustRegistry(failingTool(boom)), reply)
	_, err := g.Run(context.Background(), userInput("x"))
	require.ErrorIs(t, err, boom)

	g = toolGraph(t, MustRegistry(failingTool(boom)), reply, WithErrorsAsResults())
	out, err := g.Run(context.Background(), userInput("x"))
	require.NoError(t, err)
	last, _ := core.Last(out.Messages(state.MessagesKey))
	assert.Contains(t, last.ToolResult.Error, "upstream down")
	assert.Nil(t, last.ToolResult.Value)
}

func TestDispatch_ToolPanicIsRecovered(t *testing.T) {
	panicky := NewFunctionTool("panicky", "Panics", nil, func(context.Context, map[string]any) (any, error) {
		panic("nil map")
	})
	node := NewDispatchNode(MustRegistry(panicky))
	_, err := node(context.Background(), state.State{
		state.MessagesKey: []core.Message{core.NewToolCallMessage(call("c1", "panicky", `{}`))},
	})

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeExecution, toolErr.Code)
	assert.Contains(t, toolErr.Unwrap().Error(), "nil map")
}

func TestDispatch_ObserverAndMessagesKey(t *testing.T) {
	type seen struct {
		tool string
		err  error
	}
	var calls []seen
	node := NewDispatchNode(MustRegistry(multiplyTool()),
		WithMessagesKey("history"),
		WithObserver(func(tool string, _ time.Duration, err error) { calls = append(calls, seen{tool, err}) }),
	)

	partial, err := node(context.Background(),
		testutil.NewConversation().Key("history").Call("multiply", `{"a":3,"b":3}`).State())
	require.NoError(t, err)
	results := partial.Messages("history")
	require.Len(t, results, 1)
	assert.Equal(t, 9, results[0].ToolResult.Value)
	assert.Equal(t, []seen{{tool: "multiply"}}, calls)
}

// -------------------- condition --------------------

func TestCondition(t *testing.T) {
	route, targets := Condition("tools")
	assert.Equal(t, []string{"tools", graph.END}, targets)

	ctx := context.Background()
	assert.Equal(t, "tools", route(ctx, testutil.NewConversation().Call("multiply", `{}`).State()))
	assert.Equal(t, graph.END, route(ctx, userInput("hi")))
	assert.Equal(t, graph.END, route(ctx, state.State{}))

	// A tool call that was already answered is not pending.
	answered := testutil.NewConversation().Call("multiply", `{}`).Result("multiply", 1).State()
	assert.Equal(t, graph.END, route(ctx, answered))
}
