package state

import (
	"fmt"
	"sort"

	"github.com/hupe1980/agentgraph/core"
)

// MessagesKey is the conventional name of the conversation history field.
const MessagesKey = "messages"

// Kind is the value type of a schema field.
type Kind int

const (
	// KindAny accepts any value (Replace only).
	KindAny Kind = iota
	// KindString holds a string.
	KindString
	// KindInt holds any Go integer type.
	KindInt
	// KindFloat holds any Go number type.
	KindFloat
	// KindBool holds a bool.
	KindBool
	// KindMessages holds a []core.Message.
	KindMessages
	// KindList holds a []any.
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindAny:
		return "any"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindMessages:
		return "messages"
	case KindList:
		return "list"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k Kind) sequence() bool { return k == KindMessages || k == KindList }

// Strategy decides how successive writes to a field are combined.
type Strategy int

const (
	// Replace overwrites the previous value.
	Replace Strategy = iota
	// Append concatenates new element(s) to the end of the existing sequence.
	Append
)

func (s Strategy) String() string {
	if s == Append {
		return "append"
	}
	return "replace"
}

// Field declares one state key.
type Field struct {
	Name     string
	Kind     Kind
	Strategy Strategy
	// Default is used by Schema.New when the initial state omits the field.
	// Sequence fields default to an empty sequence when Default is nil.
	Default any
}

// Schema is an immutable set of field declarations. It is safe for
// concurrent use once constructed.
type Schema struct {
	fields map[string]Field
	order  []string
}

// NewSchema validates and builds a schema. Field names must be unique and
// non-empty, and Append is only allowed on sequence kinds.
func NewSchema(fields ...Field) (*Schema, error) {
	s := &Schema{fields: make(map[string]Field, len(fields))}
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("%w: empty field name", ErrInvalidSchema)
		}
		if _, dup := s.fields[f.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate field %q", ErrInvalidSchema, f.Name)
		}
		if f.Strategy == Append && !f.Kind.sequence() {
			return nil, fmt.Errorf("%w: field %q: append requires a messages or list kind, got %s", ErrInvalidSchema, f.Name, f.Kind)
		}
		if f.Default != nil {
			if _, err := normalize(f, f.Default, Replace); err != nil {
				return nil, fmt.Errorf("%w: field %q: bad default: %v", ErrInvalidSchema, f.Name, err)
			}
		}
		s.fields[f.Name] = f
		s.order = append(s.order, f.Name)
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on error. Intended for package level
// schema variables.
func MustSchema(fields ...Field) *Schema {
	s, err := NewSchema(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// MessagesSchema returns the canonical conversational schema: a single
// append-on-write message sequence stored under MessagesKey.
func MessagesSchema() *Schema {
	return MustSchema(Field{Name: MessagesKey, Kind: KindMessages, Strategy: Append})
}

// Field returns the declaration for name.
func (s *Schema) Field(name string) (Field, bool) {
	f, ok := s.fields[name]
	return f, ok
}

// Fields returns the declarations in declaration order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.order))
	for i, name := range s.order {
		out[i] = s.fields[name]
	}
	return out
}

// New builds an initial State: declared fields missing from initial receive
// their defaults, present fields are checked against their Kind (as a Replace
// write). The result never aliases initial's slices.
func (s *Schema) New(initial State) (State, error) {
	out := make(State, len(s.fields))
	for _, name := range sortedKeys(initial) {
		f, ok := s.fields[name]
		if !ok {
			return nil, undeclared(name, initial[name])
		}
		v, err := normalize(f, initial[name], Replace)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	for _, name := range s.order {
		if _, ok := out[name]; ok {
			continue
		}
		f := s.fields[name]
		switch {
		case f.Default != nil:
			v, _ := normalize(f, f.Default, Replace)
			out[name] = v
		case f.Kind == KindMessages:
			out[name] = []core.Message{}
		case f.Kind == KindList:
			out[name] = []any{}
		}
	}
	return out, nil
}

// Validate checks that every key of partial is declared and that each value
// has the right shape for the field's strategy.
func (s *Schema) Validate(partial State) error {
	for _, name := range sortedKeys(partial) {
		f, ok := s.fields[name]
		if !ok {
			return undeclared(name, partial[name])
		}
		if _, err := normalize(f, partial[name], f.Strategy); err != nil {
			return err
		}
	}
	return nil
}

// Merge applies partial on top of old according to each field's strategy and
// returns the new State. Keys absent from partial carry over unchanged. The
// merge is all-or-nothing: on error old is untouched and nil is returned.
func (s *Schema) Merge(old, partial State) (State, error) {
	if err := s.Validate(partial); err != nil {
		return nil, err
	}
	out := old.Clone()
	if out == nil {
		out = make(State, len(partial))
	}
	for name, raw := range partial {
		f := s.fields[name]
		v, _ := normalize(f, raw, f.Strategy)
		if f.Strategy == Append {
			out[name] = appendSeq(f.Kind, out[name], v)
			continue
		}
		out[name] = v
	}
	return out, nil
}

func sortedKeys(m State) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
