package state

import (
	"errors"
	"testing"

	"github.com/hupe1980/agentgraph/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := NewSchema(
		Field{Name: "graph_state", Kind: KindString},
		Field{Name: MessagesKey, Kind: KindMessages, Strategy: Append},
		Field{Name: "notes", Kind: KindList, Strategy: Append},
		Field{Name: "count", Kind: KindInt, Default: 0},
	)
	require.NoError(t, err)
	return s
}

func TestNewSchema_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		fields []Field
	}{
		{name: "empty name", fields: []Field{{Name: ""}}},
		{name: "duplicate", fields: []Field{{Name: "a"}, {Name: "a"}}},
		{name: "append on scalar", fields: []Field{{Name: "a", Kind: KindString, Strategy: Append}}},
		{name: "bad default", fields: []Field{{Name: "a", Kind: KindInt, Default: "x"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSchema(tt.fields...)
			assert.ErrorIs(t, err, ErrInvalidSchema)
		})
	}
}

func TestSchema_New_AppliesDefaults(t *testing.T) {
	s := testSchema(t)

	st, err := s.New(State{"graph_state": "Hi"})
	require.NoError(t, err)

	assert.Equal(t, "Hi", st.String("graph_state"))
	assert.Equal(t, 0, st["count"])
	assert.Equal(t, []core.Message{}, st.Messages(MessagesKey))
	assert.Equal(t, []any{}, st.List("notes"))
}

func TestSchema_New_RejectsUnknownField(t *testing.T) {
	_, err := testSchema(t).New(State{"graph_stat": "typo"})

	var sv *SchemaViolationError
	require.ErrorAs(t, err, &sv)
	assert.Equal(t, "graph_stat", sv.Field)
}

func TestSchema_Merge_ReplaceAndAppend(t *testing.T) {
	s := testSchema(t)
	m1 := core.NewUserMessage("hi")
	m2 := core.NewAssistantMessage("hello")
	m3 := core.NewAssistantMessage("again")

	base, err := s.New(State{"graph_state": "Hi, this is Pipo.", MessagesKey: []core.Message{m1}})
	require.NoError(t, err)

	p1 := State{"graph_state": "Hi, this is Pipo. I am", MessagesKey: m2}
	p2 := State{MessagesKey: []core.Message{m3, m2}, "notes": "n1"}

	s1, err := s.Merge(base, p1)
	require.NoError(t, err)
	s2, err := s.Merge(s1, p2)
	require.NoError(t, err)

	// APPEND = base + p1 + p2 in order, duplicates kept.
	assert.Equal(t, []core.Message{m1, m2, m3, m2}, s2.Messages(MessagesKey))
	// REPLACE = p2 if present, else p1, else base.
	assert.Equal(t, "Hi, this is Pipo. I am", s2.String("graph_state"))
	assert.Equal(t, []any{"n1"}, s2.List("notes"))
	assert.Equal(t, 0, s2["count"])
}

func TestSchema_Merge_DoesNotMutateInputs(t *testing.T) {
	s := testSchema(t)
	base, err := s.New(State{MessagesKey: []core.Message{core.NewUserMessage("a")}})
	require.NoError(t, err)
	snapshot := base.Clone()
	partial := State{MessagesKey: []core.Message{core.NewAssistantMessage("b")}, "count": 3}
	partialSnapshot := partial.Clone()

	_, err = s.Merge(base, partial)
	require.NoError(t, err)

	assert.Equal(t, snapshot, base)
	assert.Equal(t, partialSnapshot, partial)
}

func TestSchema_Merge_Violations(t *testing.T) {
	s := testSchema(t)
	base, err := s.New(nil)
	require.NoError(t, err)

	tests := []struct {
		name    string
		partial State
		field   string
	}{
		{name: "undeclared", partial: State{"mood": "happy"}, field: "mood"},
		{name: "wrong scalar kind", partial: State{"graph_state": 42}, field: "graph_state"},
		{name: "wrong sequence element", partial: State{MessagesKey: "not a message"}, field: MessagesKey},
		{name: "nil scalar", partial: State{"count": nil}, field: "count"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := s.Merge(base, tt.partial)
			assert.Nil(t, out)
			assert.True(t, errors.Is(err, ErrSchemaViolation))
			var sv *SchemaViolationError
			require.ErrorAs(t, err, &sv)
			assert.Equal(t, tt.field, sv.Field)
		})
	}
}

func TestSchema_Merge_AllOrNothing(t *testing.T) {
	s := testSchema(t)
	base, err := s.New(State{"graph_state": "keep"})
	require.NoError(t, err)

	_, err = s.Merge(base, State{"graph_state": "changed", "unknown": 1})
	require.Error(t, err)
	assert.Equal(t, "keep", base.String("graph_state"))
}

func TestSchema_Merge_EmptyPartialCarriesOver(t *testing.T) {
	s := testSchema(t)
	base, err := s.New(State{"graph_state": "x"})
	require.NoError(t, err)

	out, err := s.Merge(base, State{})
	require.NoError(t, err)
	assert.Equal(t, base, out)
}

func TestMessagesSchema(t *testing.T) {
	s := MessagesSchema()
	f, ok := s.Field(MessagesKey)
	require.True(t, ok)
	assert.Equal(t, KindMessages, f.Kind)
	assert.Equal(t, Append, f.Strategy)
	assert.Len(t, s.Fields(), 1)
}

func TestState_Clone_KeepsEmptySequences(t *testing.T) {
	s := State{MessagesKey: []core.Message{}, "notes": []any{}, "nil_notes": []any(nil)}
	c := s.Clone()

	msgs, ok := c[MessagesKey].([]core.Message)
	require.True(t, ok)
	assert.NotNil(t, msgs)
	assert.Empty(t, msgs)
	notes, ok := c["notes"].([]any)
	require.True(t, ok)
	assert.NotNil(t, notes)
	assert.Nil(t, c["nil_notes"])
}

func TestSchema_New_EmptySequenceStaysNonNil(t *testing.T) {
	s := testSchema(t)
	st, err := s.New(State{MessagesKey: []core.Message(nil), "notes": []any{}})
	require.NoError(t, err)
	assert.NotNil(t, st.Messages(MessagesKey))
	assert.NotNil(t, st.List("notes"))
}
