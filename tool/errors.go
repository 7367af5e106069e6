package tool

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownTool matches every *UnknownToolError.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrToolArgument matches every *ToolArgumentError.
	ErrToolArgument = errors.New("invalid tool arguments")
	// ErrDuplicateTool is returned by NewRegistry for a repeated tool name.
	ErrDuplicateTool = errors.New("duplicate tool")
)

// UnknownToolError is returned when a tool call names a tool that is not in
// the registry.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q", e.Name)
}

// Is makes errors.Is(err, ErrUnknownTool) succeed.
func (e *UnknownToolError) Is(target error) bool { return target == ErrUnknownTool }

// ToolArgumentError is returned when a tool call's argument payload does not
// have the type or shape the tool expects.
type ToolArgumentError struct {
	Tool  string
	Field string // empty when the payload as a whole is malformed
	Err   error
}

func (e *ToolArgumentError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid arguments for tool %q: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("invalid argument %q for tool %q: %v", e.Field, e.Tool, e.Err)
}

func (e *ToolArgumentError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrToolArgument) succeed.
func (e *ToolArgumentError) Is(target error) bool { return target == ErrToolArgument }

// panicError converts a recovered panic value into an error.
type panicError struct{ val any }

func (p *panicError) Error() string { return fmt.Sprintf("panic recovered: %v", p.val) }
