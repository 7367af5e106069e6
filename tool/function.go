package tool

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/agentgraph/internal/util"
)

// FunctionTool exposes a plain Go function as a Tool.
//
// Call validates the arguments against the parameter schema before invoking
// the function and normalizes failures:
//
//	schema mismatch          -> *ToolError{Code: VALIDATION_ERROR} wrapping a *ToolArgumentError
//	*ToolError from the func -> forwarded unchanged
//	other error              -> *ToolError{Code: EXECUTION_ERROR} wrapping the error
//
// A FunctionTool holds no mutable state and is safe for concurrent use.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	fn          func(ctx context.Context, args map[string]any) (any, error)
}

// NewFunctionTool constructs a FunctionTool from an explicit schema.
//
// Example:
//
//	multiply := tool.NewFunctionTool(
//	  "multiply",
//	  "Multiply a and b",
//	  map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	      "a": map[string]any{"type": "number"},
//	      "b": map[string]any{"type": "number"},
//	    },
//	    "required": []string{"a", "b"},
//	  },
//	  func(_ context.Context, args map[string]any) (any, error) {
//	    return args["a"].(float64) * args["b"].(float64), nil
//	  },
//	)
func NewFunctionTool(
	name, description string,
	parameters map[string]any,
	fn func(ctx context.Context, args map[string]any) (any, error),
) *FunctionTool {
	if parameters == nil {
		parameters = map[string]any{"type": "object", "properties": map[string]any{}}
	}
	return &FunctionTool{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
	}
}

// NewFunctionToolFromStruct derives the parameter schema from a struct's
// json, description, enum and validate tags.
func NewFunctionToolFromStruct(
	name, description string,
	structType any,
	fn func(ctx context.Context, args map[string]any) (any, error),
) *FunctionTool {
	return NewFunctionTool(name, description, util.CreateSchema(structType), fn)
}

// Name implements Tool.
func (t *FunctionTool) Name() string { return t.name }

// Description implements Tool.
func (t *FunctionTool) Description() string { return t.description }

// Parameters implements Tool.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Call implements Tool.
func (t *FunctionTool) Call(ctx context.Context, args map[string]any) (any, error) {
	if err := util.ValidateParameters(args, t.parameters); err != nil {
		field := ""
		var ve *ValidationError
		if errors.As(err, &ve) {
			field = ve.Field
		}
		return nil, &ToolError{
			Tool:    t.name,
			Message: fmt.Sprintf("parameter validation failed: %v", err),
			Code:    CodeValidation,
			Details: err,
			Err:     &ToolArgumentError{Tool: t.name, Field: field, Err: err},
		}
	}

	result, err := t.fn(ctx, args)
	if err != nil {
		var toolErr *ToolError
		if errors.As(err, &toolErr) {
			return nil, toolErr
		}
		var argErr *ToolArgumentError
		if errors.As(err, &argErr) {
			return nil, &ToolError{Tool: t.name, Message: argErr.Error(), Code: CodeValidation, Err: argErr}
		}
		return nil, &ToolError{
			Tool:    t.name,
			Message: err.Error(),
			Code:    CodeExecution,
			Err:     err,
		}
	}
	return result, nil
}
