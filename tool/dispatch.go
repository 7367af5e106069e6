package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/hupe1980/agentgraph/core"
	"github.com/hupe1980/agentgraph/graph"
	"github.com/hupe1980/agentgraph/logging"
	"github.com/hupe1980/agentgraph/state"
)

// Observer is notified after every tool invocation, e.g. to record metrics.
type Observer func(tool string, dur time.Duration, err error)

// DispatchOption configures NewDispatchNode.
type DispatchOption func(*dispatchOptions)

type dispatchOptions struct {
	key             string
	logger          logging.Logger
	errorsAsResults bool
	observers       []Observer
}

// WithMessagesKey sets the state field holding the conversation
// (default state.MessagesKey).
func WithMessagesKey(key string) DispatchOption {
	return func(o *dispatchOptions) { o.key = key }
}

// WithDispatchLogger sets the logger used for tool call events.
func WithDispatchLogger(l logging.Logger) DispatchOption {
	return func(o *dispatchOptions) { o.logger = logging.OrNoOp(l) }
}

// WithErrorsAsResults records a failing tool's error in its result entry
// instead of failing the run, so the model can react to it. Unknown tools
// and malformed arguments still fail the run.
func WithErrorsAsResults() DispatchOption {
	return func(o *dispatchOptions) { o.errorsAsResults = true }
}

// WithObserver adds a callback invoked after every tool call.
func WithObserver(obs Observer) DispatchOption {
	return func(o *dispatchOptions) {
		if obs != nil {
			o.observers = append(o.observers, obs)
		}
	}
}

// NewDispatchNode returns a node that executes the tool calls of the last
// message and appends one tool result message per call, in call order.
//
// When the conversation does not end with an assistant message requesting
// tool calls (see core.HasToolCalls) the node returns an empty update.
// Calls run sequentially. The first unknown tool, malformed argument payload
// or (unless WithErrorsAsResults is set) tool failure aborts the node and no
// results are appended.
func NewDispatchNode(reg *Registry, opts ...DispatchOption) graph.NodeFunc {
	o := dispatchOptions{key: state.MessagesKey, logger: logging.NoOpLogger{}}
	for _, fn := range opts {
		fn(&o)
	}

	return func(ctx context.Context, s state.State) (state.State, error) {
		msgs := s.Messages(o.key)
		if !core.HasToolCalls(msgs) {
			return state.State{}, nil
		}
		calls := msgs[len(msgs)-1].ToolCalls

		results := make([]core.Message, 0, len(calls))
		for _, call := range calls {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			value, err := o.invoke(ctx, reg, call)
			if err != nil {
				if !o.errorsAsResults || isStructural(err) {
					return nil, err
				}
			}
			results = append(results, core.NewToolResultMessage(call, value, err))
		}
		return state.State{o.key: results}, nil
	}
}

func isStructural(err error) bool {
	return errors.Is(err, ErrUnknownTool) || errors.Is(err, ErrToolArgument)
}

func (o *dispatchOptions) invoke(ctx context.Context, reg *Registry, call core.ToolCall) (value any, err error) {
	start := time.Now()
	defer func() {
		dur := time.Since(start)
		for _, obs := range o.observers {
			obs(call.Name, dur, err)
		}
		if gl, ok := o.logger.(*logging.GraphLogger); ok {
			gl.LogToolCall(call.Name, dur, err)
			return
		}
		if err != nil {
			o.logger.Error("tool.call.error", "tool", call.Name, "call_id", call.ID, "error", err.Error())
			return
		}
		o.logger.Debug("tool.call.success", "tool", call.Name, "call_id", call.ID, "duration_ms", dur.Milliseconds())
	}()

	t, ok := reg.Get(call.Name)
	if !ok {
		return nil, &UnknownToolError{Name: call.Name}
	}
	args, err := decodeArguments(call)
	if err != nil {
		return nil, err
	}

	o.logger.Debug("tool.call.start", "tool", call.Name, "call_id", call.ID)
	return safeCall(ctx, t, args)
}

// decodeArguments parses a call's JSON payload; an empty payload is an empty
// object.
func decodeArguments(call core.ToolCall) (map[string]any, error) {
	raw := bytes.TrimSpace(call.Arguments)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, &ToolArgumentError{Tool: call.Name, Err: err}
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

func safeCall(ctx context.Context, t Tool, args map[string]any) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ToolError{Tool: t.Name(), Message: "tool panicked", Code: CodeExecution, Err: &panicError{val: r}}
		}
	}()
	return t.Call(ctx, args)
}
