package state

import (
	"errors"
	"fmt"
)

var (
	// ErrSchemaViolation matches every *SchemaViolationError via errors.Is.
	ErrSchemaViolation = errors.New("schema violation")
	// ErrInvalidSchema is returned when a schema declaration itself is malformed.
	ErrInvalidSchema = errors.New("invalid schema")
)

// SchemaViolationError reports a partial state (or initial state) that does not
// conform to the schema: an undeclared field or a value of the wrong kind.
type SchemaViolationError struct {
	Field  string
	Reason string
	Value  any
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("schema violation on field %q: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrSchemaViolation) succeed.
func (e *SchemaViolationError) Is(target error) bool { return target == ErrSchemaViolation }

func undeclared(field string, value any) error {
	return &SchemaViolationError{Field: field, Reason: "field is not declared in schema", Value: value}
}

func wrongKind(f Field, value any) error {
	return &SchemaViolationError{
		Field:  f.Name,
		Reason: fmt.Sprintf("expected %s value for %s field, got %T", f.Kind, f.Strategy, value),
		Value:  value,
	}
}
