package model

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hupe1980/agentgraph/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// testifyModel is a Model double driven by testify/mock expectations.
type testifyModel struct{ mock.Mock }

func (m *testifyModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	args := m.Called(ctx, req)
	return args.Get(0).(<-chan Response), args.Get(1).(<-chan error)
}

func (m *testifyModel) Info() Info { return Info{Name: "testify", Provider: "mock"} }

func respond(responses ...Response) (<-chan Response, <-chan error) {
	out := make(chan Response, len(responses))
	errCh := make(chan error, 1)
	for _, r := range responses {
		out <- r
	}
	close(out)
	close(errCh)
	return out, errCh
}

func fail(err error) (<-chan Response, <-chan error) {
	out := make(chan Response)
	errCh := make(chan error, 1)
	errCh <- err
	close(out)
	close(errCh)
	return out, errCh
}

func userRequest(text string) Request {
	return Request{Messages: []core.Message{core.NewUserMessage(text)}}
}

func TestMockModel_EchoAndCanned(t *testing.T) {
	m := NewMockModel("mock", "mock")
	m.AddResponse("hi", "hello there")

	resp, err := Collect(context.Background(), m, userRequest("hi"))
	require.NoError(t, err)
	assert.Equal(t, "hello there", resp.Message.Content)
	assert.Equal(t, core.RoleAssistant, resp.Message.Role)
	assert.Equal(t, "stop", resp.FinishReason)

	resp, err = Collect(context.Background(), m, userRequest("what?"))
	require.NoError(t, err)
	assert.Equal(t, "Mock response to: what?", resp.Message.Content)
	assert.Len(t, m.Requests(), 2)
}

func TestMockModel_Script(t *testing.T) {
	call := core.ToolCall{ID: "c1", Name: "multiply", Arguments: json.RawMessage(`{"a":2,"b":3}`)}
	boom := errors.New("overloaded")
	m := NewMockModel("mock", "mock").
		Script(core.NewToolCallMessage(call)).
		ScriptError(boom).
		Script(core.Message{Content: "done"})

	resp, err := Collect(context.Background(), m, userRequest("x"))
	require.NoError(t, err)
	assert.Equal(t, "tool_calls", resp.FinishReason)
	assert.Equal(t, []core.ToolCall{call}, resp.Message.ToolCalls)

	_, err = Collect(context.Background(), m, userRequest("x"))
	assert.ErrorIs(t, err, boom)

	resp, err = Collect(context.Background(), m, userRequest("x"))
	require.NoError(t, err)
	assert.Equal(t, core.RoleAssistant, resp.Message.Role)
	assert.NotEmpty(t, resp.Message.ID)

	_, err = Collect(context.Background(), m, userRequest("x"))
	assert.ErrorIs(t, err, ErrScriptExhausted)
}

func TestMockModel_Streaming(t *testing.T) {
	m := NewMockModel("mock", "mock").Script(core.NewAssistantMessage("abc"))
	req := userRequest("x")
	req.Stream = true

	respCh, errCh := m.Generate(context.Background(), req)
	var partial string
	var final Response
	for r := range respCh {
		if r.Partial {
			partial += r.Message.Content
			continue
		}
		final = r
	}
	require.NoError(t, <-errCh)
	assert.Equal(t, "abc", partial)
	assert.Equal(t, "abc", final.Message.Content)
}

func TestCollect_NoFinalResponse(t *testing.T) {
	tm := &testifyModel{}
	out, errCh := respond(Response{Partial: true})
	tm.On("Generate", mock.Anything, mock.Anything).Return(out, errCh)

	_, err := Collect(context.Background(), tm, userRequest("x"))
	assert.ErrorIs(t, err, ErrNoResponse)
	tm.AssertExpectations(t)
}

func TestRetryModel_RetriesUntilSuccess(t *testing.T) {
	tm := &testifyModel{}
	transient := errors.New("503")
	f1, e1 := fail(transient)
	f2, e2 := fail(transient)
	ok, okErr := respond(Response{Message: core.NewAssistantMessage("finally")})
	tm.On("Generate", mock.Anything, mock.Anything).Return(f1, e1).Once()
	tm.On("Generate", mock.Anything, mock.Anything).Return(f2, e2).Once()
	tm.On("Generate", mock.Anything, mock.Anything).Return(ok, okErr).Once()

	r := NewRetryModel(tm, 3, time.Millisecond)
	resp, err := Collect(context.Background(), r, userRequest("x"))
	require.NoError(t, err)
	assert.Equal(t, "finally", resp.Message.Content)
	assert.Equal(t, "testify", r.Info().Name)
	tm.AssertNumberOfCalls(t, "Generate", 3)
}

func TestRetryModel_GivesUp(t *testing.T) {
	tm := &testifyModel{}
	transient := errors.New("503")
	f1, e1 := fail(transient)
	f2, e2 := fail(transient)
	tm.On("Generate", mock.Anything, mock.Anything).Return(f1, e1).Once()
	tm.On("Generate", mock.Anything, mock.Anything).Return(f2, e2).Once()

	_, err := Collect(context.Background(), NewRetryModel(tm, 2, 0), userRequest("x"))
	require.ErrorIs(t, err, transient)
	assert.Contains(t, err.Error(), "2 attempts")
	tm.AssertNumberOfCalls(t, "Generate", 2)
}

func TestRetryModel_NoRetryAfterPartialOutput(t *testing.T) {
	tm := &testifyModel{}
	out := make(chan Response, 1)
	errCh := make(chan error, 1)
	out <- Response{Partial: true, Message: core.Message{Content: "a"}}
	errCh <- errors.New("stream reset")
	close(out)
	close(errCh)
	tm.On("Generate", mock.Anything, mock.Anything).Return((<-chan Response)(out), (<-chan error)(errCh)).Once()

	_, err := Collect(context.Background(), NewRetryModel(tm, 5, 0), userRequest("x"))
	assert.EqualError(t, err, "stream reset")
	tm.AssertNumberOfCalls(t, "Generate", 1)
}

func TestRetryModel_ContextCancelledDuringBackoff(t *testing.T) {
	tm := &testifyModel{}
	f1, e1 := fail(errors.New("503"))
	tm.On("Generate", mock.Anything, mock.Anything).Return(f1, e1).Once()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := Collect(ctx, NewRetryModel(tm, 3, time.Hour), userRequest("x"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
