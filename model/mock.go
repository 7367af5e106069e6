package model

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/agentgraph/core"
)

// ErrScriptExhausted is returned by a scripted MockModel once every queued
// reply has been consumed.
var ErrScriptExhausted = errors.New("mock model script exhausted")

// MockModel is a lightweight in-memory Model for tests and examples.
//
// Replies come from, in order of precedence: the queue filled by Script, a
// canned reply registered with AddResponse for the last message's text, and
// finally an echo ("Mock response to: <text>"). Once a script has been set
// and consumed, further calls fail with ErrScriptExhausted.
type MockModel struct {
	info Info

	mu        sync.Mutex
	responses map[string]string
	script    []scripted
	scripted  bool
	requests  []Request
}

type scripted struct {
	msg core.Message
	err error
}

// NewMockModel constructs a MockModel with tool support enabled.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info: Info{
			Name:          name,
			Provider:      provider,
			SupportsTools: true,
		},
		responses: make(map[string]string),
	}
}

// AddResponse registers a canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// Script queues assistant messages returned by successive Generate calls.
func (m *MockModel) Script(msgs ...core.Message) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripted = true
	for _, msg := range msgs {
		m.script = append(m.script, scripted{msg: msg})
	}
	return m
}

// ScriptError queues a failure for the next Generate call.
func (m *MockModel) ScriptError(err error) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripted = true
	m.script = append(m.script, scripted{err: err})
	return m
}

// Requests returns a copy of every request received so far.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}

func (m *MockModel) next(req Request) (core.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)

	if len(m.script) > 0 {
		s := m.script[0]
		m.script = m.script[1:]
		if s.err != nil {
			return core.Message{}, s.err
		}
		msg := s.msg
		if msg.ID == "" {
			msg.ID = core.NewID()
		}
		if msg.Role == "" {
			msg.Role = core.RoleAssistant
		}
		return msg, nil
	}
	if m.scripted {
		return core.Message{}, ErrScriptExhausted
	}

	last, ok := core.Last(req.Messages)
	if !ok {
		return core.Message{}, fmt.Errorf("no messages provided")
	}
	input := last.Text()
	full := m.responses[input]
	if full == "" {
		full = fmt.Sprintf("Mock response to: %s", input)
	}
	return core.NewAssistantMessage(full), nil
}

// Generate implements Model. With req.Stream set, text replies are emitted
// rune by rune as partial chunks before the final response.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(respCh)
		defer close(errCh)

		msg, err := m.next(req)
		if err != nil {
			errCh <- err
			return
		}
		if req.Stream {
			for _, r := range msg.Content {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{
					ID:      msg.ID,
					Partial: true,
					Message: core.Message{ID: msg.ID, Role: core.RoleAssistant, Content: string(r)},
				}:
				}
			}
		}

		finish := "stop"
		if msg.HasToolCalls() {
			finish = "tool_calls"
		}
		select {
		case <-ctx.Done():
			errCh <- ctx.Err()
		case respCh <- Response{ID: msg.ID, Message: msg, FinishReason: finish}:
		}
	}()
	return respCh, errCh
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
