package util

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// ValidationError describes the first argument that does not match a schema.
type ValidationError struct {
	Field   string `json:"field"`
	Value   any    `json:"value,omitempty"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// CreateSchema derives a JSON schema object from a struct value or pointer.
//
// Field names come from the json tag. A field is required unless it is a
// pointer, tagged omitempty, or carries a validate tag without "required";
// validate:"required" always marks it required. The description tag becomes
// the property description and a comma separated enum tag becomes the enum.
// Nested structs produce nested object schemas.
func CreateSchema(structType any) map[string]any {
	t := reflect.TypeOf(structType)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		}
	}
	return objectSchema(t)
}

func objectSchema(t reflect.Type) map[string]any {
	properties := make(map[string]any)
	required := make([]string, 0)

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		name := field.Name
		if parts := strings.Split(jsonTag, ","); parts[0] != "" {
			name = parts[0]
		}

		prop := typeSchema(field.Type)
		if d := field.Tag.Get("description"); d != "" {
			prop["description"] = d
		}
		if e := field.Tag.Get("enum"); e != "" {
			values := strings.Split(e, ",")
			enum := make([]any, len(values))
			for j, v := range values {
				enum[j] = strings.TrimSpace(v)
			}
			prop["enum"] = enum
		}
		properties[name] = prop

		if isRequired(field) {
			required = append(required, name)
		}
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func typeSchema(t reflect.Type) map[string]any {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Struct:
		return objectSchema(t)
	case reflect.Slice, reflect.Array:
		return map[string]any{"type": "array", "items": typeSchema(t.Elem())}
	}
	return map[string]any{"type": jsonType(t)}
}

func isRequired(field reflect.StructField) bool {
	if v, ok := field.Tag.Lookup("validate"); ok {
		return hasOption(v, "required", 0)
	}
	return !hasOption(field.Tag.Get("json"), "omitempty", 1) && field.Type.Kind() != reflect.Ptr
}

func hasOption(tag, option string, from int) bool {
	parts := strings.Split(tag, ",")
	if from > len(parts) {
		return false
	}
	for _, part := range parts[from:] {
		if strings.TrimSpace(part) == option {
			return true
		}
	}
	return false
}

func jsonType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	default:
		return "string"
	}
}

// RequiredFields returns the schema's "required" list whether it was built
// in Go ([]string) or decoded from JSON ([]any).
func RequiredFields(schema map[string]any) []string {
	switch req := schema["required"].(type) {
	case []string:
		return req
	case []any:
		out := make([]string, 0, len(req))
		for _, r := range req {
			if s, ok := r.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// ValidateParameters checks params against a JSON schema object: required
// fields, property types, enums and nested objects. Unknown fields are allowed.
func ValidateParameters(params map[string]any, schema map[string]any) error {
	return validateObject("", params, schema)
}

func validateObject(prefix string, params map[string]any, schema map[string]any) error {
	for _, name := range RequiredFields(schema) {
		v, exists := params[name]
		if !exists {
			return &ValidationError{Field: prefix + name, Message: "required field is missing"}
		}
		if v == nil {
			return &ValidationError{Field: prefix + name, Message: "required field must not be null"}
		}
	}

	properties, _ := schema["properties"].(map[string]any)
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		prop, ok := properties[name].(map[string]any)
		if !ok {
			continue
		}
		if err := validateValue(prefix+name, params[name], prop); err != nil {
			return err
		}
	}
	return nil
}

func validateValue(field string, value any, prop map[string]any) error {
	expected, _ := prop["type"].(string)
	if !isValidType(value, expected) {
		return &ValidationError{
			Field:   field,
			Value:   value,
			Message: fmt.Sprintf("expected type %s, got %T", expected, value),
		}
	}
	if enum, ok := prop["enum"].([]any); ok && value != nil && !contains(enum, value) {
		return &ValidationError{Field: field, Value: value, Message: fmt.Sprintf("must be one of %v", enum)}
	}
	switch v := value.(type) {
	case map[string]any:
		if _, nested := prop["properties"]; nested {
			return validateObject(field+".", v, prop)
		}
	case []any:
		if items, ok := prop["items"].(map[string]any); ok {
			for i, item := range v {
				if err := validateValue(fmt.Sprintf("%s[%d]", field, i), item, items); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func contains(enum []any, value any) bool {
	for _, e := range enum {
		if fmt.Sprint(e) == fmt.Sprint(value) {
			return true
		}
	}
	return false
}

func isValidType(value any, expectedType string) bool {
	if value == nil {
		return true
	}

	switch expectedType {
	case "string":
		_, ok := value.(string)
		return ok
	case "integer":
		switch v := value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return true
		case float64: // encoding/json decodes every number as float64
			return v == float64(int64(v))
		case float32:
			return v == float32(int64(v))
		}
		return false
	case "number":
		switch value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64,
			float32, float64:
			return true
		}
		return false
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "array":
		_, ok := value.([]any)
		return ok
	case "object":
		_, ok := value.(map[string]any)
		return ok
	default:
		return true
	}
}
