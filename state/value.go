package state

import (
	"github.com/hupe1980/agentgraph/core"
)

// normalize checks value against the field declaration for the given write
// strategy and returns a copy that does not alias caller owned slices.
// For Append writes the result is always the slice of elements to add.
func normalize(f Field, value any, strategy Strategy) (any, error) {
	if value == nil {
		switch {
		case f.Kind == KindAny:
			return nil, nil
		case f.Kind == KindMessages:
			return []core.Message{}, nil
		case f.Kind == KindList:
			return []any{}, nil
		}
		return nil, wrongKind(f, value)
	}

	switch f.Kind {
	case KindAny:
		return value, nil
	case KindString:
		if _, ok := value.(string); ok {
			return value, nil
		}
	case KindBool:
		if _, ok := value.(bool); ok {
			return value, nil
		}
	case KindInt:
		switch value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return value, nil
		}
	case KindFloat:
		switch value.(type) {
		case float32, float64, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return value, nil
		}
	case KindMessages:
		switch v := value.(type) {
		case []core.Message:
			if v == nil {
				return []core.Message{}, nil
			}
			return cloneSlice(v), nil
		case core.Message:
			if strategy == Append {
				return []core.Message{v}, nil
			}
		}
	case KindList:
		if v, ok := value.([]any); ok {
			if v == nil {
				return []any{}, nil
			}
			return cloneSlice(v), nil
		}
		if strategy == Append {
			return []any{value}, nil
		}
	}
	return nil, wrongKind(f, value)
}

// appendSeq concatenates add to the end of cur. cur may be nil or missing.
func appendSeq(kind Kind, cur, add any) any {
	if kind == KindMessages {
		old, _ := cur.([]core.Message)
		next := make([]core.Message, 0, len(old)+len(add.([]core.Message)))
		next = append(next, old...)
		return append(next, add.([]core.Message)...)
	}
	old, _ := cur.([]any)
	next := make([]any, 0, len(old)+len(add.([]any)))
	next = append(next, old...)
	return append(next, add.([]any)...)
}
