package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/agentgraph/core"
	"github.com/hupe1980/agentgraph/graph"
	"github.com/hupe1980/agentgraph/logging"
	"github.com/hupe1980/agentgraph/model"
	"github.com/hupe1980/agentgraph/state"
	"github.com/hupe1980/agentgraph/tool"
)

// ChatNodeOptions configures NewChatNode.
type ChatNodeOptions struct {
	// Instruction is sent as the system prompt ahead of the history.
	Instruction Instruction
	// Tools, when set, are offered to the model on every call.
	Tools *tool.Registry
	// Timeout bounds a single model call; zero means no timeout.
	Timeout time.Duration
	// MaxHistoryMessages keeps only the most recent messages; zero keeps all.
	MaxHistoryMessages int
	// Stream requests streaming generation from the model.
	Stream bool
	// MessagesKey is the state field holding the conversation.
	MessagesKey string
	// AuthorName is stamped on the reply (e.g. "Model").
	AuthorName string
	Logger     logging.Logger
}

// NewChatNode returns a node that sends the conversation to m and appends
// the reply as {MessagesKey: reply}. Model failures (including the timeout)
// are returned as the node's error.
func NewChatNode(m model.Model, optFns ...func(o *ChatNodeOptions)) graph.NodeFunc {
	opts := ChatNodeOptions{
		MessagesKey: state.MessagesKey,
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.Logger = logging.OrNoOp(opts.Logger)

	var defs []model.ToolDefinition
	if opts.Tools != nil {
		defs = opts.Tools.Definitions()
	}

	return func(ctx context.Context, s state.State) (state.State, error) {
		instructions, err := opts.Instruction.Resolve(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("resolve instruction: %w", err)
		}

		req := model.Request{
			Instructions: instructions,
			Messages:     trimHistory(s.Messages(opts.MessagesKey), opts.MaxHistoryMessages),
			Tools:        defs,
			Stream:       opts.Stream,
		}

		callCtx := ctx
		if opts.Timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
			defer cancel()
		}

		start := time.Now()
		resp, err := model.Collect(callCtx, m, req)
		logLLMCall(opts.Logger, m.Info().Name, time.Since(start), err)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", m.Info().Name, err)
		}

		reply := resp.Message
		if reply.ID == "" {
			reply.ID = core.NewID()
		}
		if reply.Role == "" {
			reply.Role = core.RoleAssistant
		}
		if opts.AuthorName != "" {
			reply = reply.WithName(opts.AuthorName)
		}
		return state.State{opts.MessagesKey: reply}, nil
	}
}

func logLLMCall(l logging.Logger, name string, dur time.Duration, err error) {
	if gl, ok := l.(*logging.GraphLogger); ok {
		gl.LogLLMCall(name, dur, err)
		return
	}
	if err != nil {
		l.Error("model.call.error", "model", name, "error", err.Error())
		return
	}
	l.Debug("model.call.success", "model", name, "duration_ms", dur.Milliseconds())
}

// trimHistory keeps the last limit messages without starting on a tool
// result whose call was cut off.
func trimHistory(msgs []core.Message, limit int) []core.Message {
	if limit <= 0 || len(msgs) <= limit {
		return msgs
	}
	start := len(msgs) - limit
	for start < len(msgs) && msgs[start].Role == core.RoleTool {
		start++
	}
	return msgs[start:]
}
