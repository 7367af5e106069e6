package model

import (
	"context"
	"errors"

	"github.com/hupe1980/agentgraph/core"
)

// ErrNoResponse is returned by Collect when a model finished without
// emitting a final (non-partial) response.
var ErrNoResponse = errors.New("model returned no final response")

// ToolDefinition declaratively exposes a callable tool to the model.
// Parameters is a JSON Schema object.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request captures the normalized model input.
type Request struct {
	Instructions string           `json:"instructions,omitempty"` // System prompt, sent ahead of Messages
	Messages     []core.Message   `json:"messages"`
	Tools        []ToolDefinition `json:"tools,omitempty"`
	Stream       bool             `json:"stream,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a partial or final chunk emitted by a model. Partial chunks
// carry deltas; the final chunk carries the complete assistant message.
type Response struct {
	ID           string       `json:"id"`
	Partial      bool         `json:"partial"`
	Message      core.Message `json:"message"`
	FinishReason string       `json:"finish_reason"` // "stop", "length", "tool_calls", etc.
	Usage        *TokenUsage  `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "mock", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface required by chat nodes to drive generation.
//
// Generate returns a response channel and an error channel. Implementations
// close both when done, send at most one error, and buffer the error channel
// so it can be read after the response channel is drained.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

// Collect drains a Generate call and returns the final response.
func Collect(ctx context.Context, m Model, req Request) (Response, error) {
	respCh, errCh := m.Generate(ctx, req)

	var (
		final Response
		found bool
	)
	for r := range respCh {
		if !r.Partial {
			final, found = r, true
		}
	}
	if err := <-errCh; err != nil {
		return Response{}, err
	}
	if !found {
		return Response{}, ErrNoResponse
	}
	return final, nil
}
