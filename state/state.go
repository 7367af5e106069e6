package state

import "github.com/hupe1980/agentgraph/core"

// State maps declared field names to values. Nodes receive the accumulated
// State read-only and return a partial State holding only the fields they write.
type State map[string]any

// Clone returns a copy whose sequence values are fresh slices, so appending to
// the clone never affects the original.
func (s State) Clone() State {
	if s == nil {
		return nil
	}
	out := make(State, len(s))
	for k, v := range s {
		switch tv := v.(type) {
		case []core.Message:
			out[k] = cloneSlice(tv)
		case []any:
			out[k] = cloneSlice(tv)
		default:
			out[k] = v
		}
	}
	return out
}

// cloneSlice copies s; a non-nil empty slice stays non-nil.
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}

// Get returns the raw value for key.
func (s State) Get(key string) (any, bool) {
	v, ok := s[key]
	return v, ok
}

// String returns the string stored under key, or "" if absent or not a string.
func (s State) String(key string) string {
	v, _ := s[key].(string)
	return v
}

// Messages returns the message sequence stored under key.
func (s State) Messages(key string) []core.Message {
	v, _ := s[key].([]core.Message)
	return v
}

// List returns the []any sequence stored under key.
func (s State) List(key string) []any {
	v, _ := s[key].([]any)
	return v
}
