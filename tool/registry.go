package tool

import (
	"fmt"

	"github.com/hupe1980/agentgraph/model"
)

// Registry maps tool names to tools. It is immutable after construction and
// safe to share between concurrent runs.
type Registry struct {
	tools map[string]Tool
	order []string
}

// NewRegistry builds a registry. Names must be non-empty and unique.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if t == nil || t.Name() == "" {
			return nil, fmt.Errorf("tool: registry entries need a non-empty name")
		}
		if _, exists := r.tools[t.Name()]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTool, t.Name())
		}
		r.tools[t.Name()] = t
		r.order = append(r.order, t.Name())
	}
	return r, nil
}

// MustRegistry is like NewRegistry but panics on error.
func MustRegistry(tools ...Tool) *Registry {
	r, err := NewRegistry(tools...)
	if err != nil {
		panic(err)
	}
	return r
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the tool names in registration order.
func (r *Registry) Names() []string { return append([]string(nil), r.order...) }

// Len returns the number of registered tools.
func (r *Registry) Len() int { return len(r.order) }

// Definitions describes the registered tools for a model request.
func (r *Registry) Definitions() []model.ToolDefinition {
	defs := make([]model.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		defs = append(defs, model.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return defs
}
