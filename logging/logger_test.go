package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(level LogLevel) (*GraphLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: level, Format: "json", Output: &buf})
	return l, &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	dec := json.NewDecoder(buf)
	for dec.More() {
		var m map[string]any
		require.NoError(t, dec.Decode(&m))
		out = append(out, m)
	}
	return out
}

func TestGraphLogger_LevelFiltering(t *testing.T) {
	l, buf := newBufferLogger(LogLevelWarn)

	l.Debug("dropped")
	l.Info("dropped")
	l.Warn("kept", "k", "v")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "kept", lines[0]["msg"])
	assert.Equal(t, "v", lines[0]["k"])
}

func TestGraphLogger_ContextAttributes(t *testing.T) {
	l, buf := newBufferLogger(LogLevelDebug)

	l.WithComponent("graph").WithRun("run-1").With("graph", "mood").Info("graph.run.start")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "graph", lines[0]["component"])
	assert.Equal(t, "run-1", lines[0]["run_id"])
	assert.Equal(t, "mood", lines[0]["graph"])
}

func TestGraphLogger_WithDoesNotMutateParent(t *testing.T) {
	parent, buf := newBufferLogger(LogLevelInfo)
	_ = parent.With("child", true)

	parent.Info("parent")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.NotContains(t, lines[0], "child")
}

func TestGraphLogger_DomainHelpers(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)

	l.LogToolCall("multiply", time.Millisecond, nil)
	l.LogNodeExecution("node_1", 1, time.Millisecond, errors.New("boom"))

	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "tool.call.completed", lines[0]["msg"])
	assert.Equal(t, true, lines[0]["success"])
	assert.Equal(t, "ERROR", lines[1]["level"])
	assert.Equal(t, "boom", lines[1]["error"])
}

func TestParseLevel(t *testing.T) {
	lvl, ok := ParseLevel("WARNING")
	assert.True(t, ok)
	assert.Equal(t, LogLevelWarn, lvl)

	lvl, ok = ParseLevel("verbose")
	assert.False(t, ok)
	assert.Equal(t, LogLevelInfo, lvl)
}

func TestOrNoOp(t *testing.T) {
	assert.IsType(t, NoOpLogger{}, OrNoOp(nil))
	l := NewSlogAdapter(slog.Default())
	assert.Same(t, l, OrNoOp(l))
}
