package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nested struct {
	City string `json:"city" description:"City name"`
}

type sampleArgs struct {
	A     string   `json:"a" description:"Field A"`
	B     *int     `json:"b"`
	C     int      `json:"c,omitempty"`
	Unit  string   `json:"unit" enum:"celsius,fahrenheit" validate:"omitempty,oneof=celsius fahrenheit"`
	Place nested   `json:"place"`
	Tags  []string `json:"tags,omitempty"`
	skip  int
}

func TestCreateSchema(t *testing.T) {
	schema := CreateSchema(&sampleArgs{})
	props := schema["properties"].(map[string]any)

	assert.Len(t, props, 6)
	assert.Equal(t, "Field A", props["a"].(map[string]any)["description"])
	assert.Equal(t, "integer", props["b"].(map[string]any)["type"])
	assert.Equal(t, []any{"celsius", "fahrenheit"}, props["unit"].(map[string]any)["enum"])
	assert.Equal(t, "object", props["place"].(map[string]any)["type"])
	assert.Equal(t, map[string]any{"type": "string"}, props["tags"].(map[string]any)["items"])
	assert.ElementsMatch(t, []string{"a", "place"}, RequiredFields(schema))
}

func TestCreateSchema_NonStruct(t *testing.T) {
	schema := CreateSchema(42)
	assert.Equal(t, "object", schema["type"])
	assert.Empty(t, RequiredFields(schema))
}

func TestValidateParameters(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"x":    map[string]any{"type": "integer"},
			"mode": map[string]any{"type": "string", "enum": []any{"fast", "slow"}},
			"loc": map[string]any{
				"type":       "object",
				"properties": map[string]any{"lat": map[string]any{"type": "number"}},
				"required":   []any{"lat"},
			},
			"ids": map[string]any{"type": "array", "items": map[string]any{"type": "integer"}},
		},
		"required": []any{"x"},
	}

	tests := []struct {
		name   string
		params map[string]any
		field  string
	}{
		{"valid", map[string]any{"x": 5.0, "mode": "fast", "loc": map[string]any{"lat": 1.5}, "ids": []any{1.0, 2}}, ""},
		{"missing required", map[string]any{}, "x"},
		{"wrong type", map[string]any{"x": "five"}, "x"},
		{"fractional integer", map[string]any{"x": 2.5}, "x"},
		{"enum", map[string]any{"x": 1, "mode": "medium"}, "mode"},
		{"nested required", map[string]any{"x": 1, "loc": map[string]any{}}, "loc.lat"},
		{"array item", map[string]any{"x": 1, "ids": []any{1, "two"}}, "ids[1]"},
		{"extra fields allowed", map[string]any{"x": 1, "other": true}, ""},
		{"null required", map[string]any{"x": nil}, "x"},
		{"null optional", map[string]any{"x": 1, "mode": nil}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateParameters(tt.params, schema)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestValidateParameters_NullRequiredMessage(t *testing.T) {
	schema := map[string]any{
		"type":       "object",
		"properties": map[string]any{"a": map[string]any{"type": "integer"}},
		"required":   []any{"a"},
	}
	err := ValidateParameters(map[string]any{"a": nil}, schema)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "a", ve.Field)
	assert.Contains(t, ve.Message, "must not be null")
}

func TestRequiredFields_GoSlice(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, RequiredFields(map[string]any{"required": []string{"a", "b"}}))
}

func TestRenderTemplate(t *testing.T) {
	out, err := RenderTemplate("plain text", nil)
	require.NoError(t, err)
	assert.Equal(t, "plain text", out)

	out, err = RenderTemplate(`Hello {{ .name | upper }}, mood: {{ default "neutral" .mood }}`, map[string]any{"name": "lance"})
	require.NoError(t, err)
	assert.Equal(t, "Hello LANCE, mood: neutral", out)

	_, err = RenderTemplate("{{ .broken", nil)
	assert.Error(t, err)
}
