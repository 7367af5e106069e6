package tool

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

var validate = newValidator()

// newValidator reports fields under their json names so errors match the
// names the model used.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// NewTypedTool builds a FunctionTool whose arguments are decoded into T.
//
// The schema is generated from T's tags. Decoding uses mapstructure with the
// json tag names, so JSON numbers decode into integer fields; the decoded
// value is then checked against T's validate tags. Either failure is reported
// as a *ToolArgumentError.
//
//	type MultiplyArgs struct {
//	  A int `json:"a" description:"first factor"`
//	  B int `json:"b" description:"second factor"`
//	}
//	multiply := tool.NewTypedTool("multiply", "Multiply a and b",
//	  func(_ context.Context, in MultiplyArgs) (any, error) { return in.A * in.B, nil })
func NewTypedTool[T any](name, description string, fn func(ctx context.Context, in T) (any, error)) *FunctionTool {
	var zero T
	return NewFunctionToolFromStruct(name, description, zero, func(ctx context.Context, args map[string]any) (any, error) {
		in, err := DecodeArgs[T](name, args)
		if err != nil {
			return nil, err
		}
		return fn(ctx, in)
	})
}

// DecodeArgs decodes and validates a tool argument payload into T.
func DecodeArgs[T any](toolName string, args map[string]any) (T, error) {
	var out T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &out,
		WeaklyTypedInput: false,
		ErrorUnused:      false,
	})
	if err != nil {
		return out, err
	}
	if err := dec.Decode(args); err != nil {
		return out, &ToolArgumentError{Tool: toolName, Err: err}
	}

	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return out, &ToolArgumentError{Tool: toolName, Field: verrs[0].Field(), Err: verrs[0]}
		}
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			// T is not a struct; nothing to validate.
			return out, nil
		}
		return out, &ToolArgumentError{Tool: toolName, Err: err}
	}
	return out, nil
}
