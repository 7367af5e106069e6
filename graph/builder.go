package graph

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentgraph/state"
)

const (
	// START is the virtual entry marker. It is not a real node.
	START = "__start__"
	// END is the virtual terminal marker. Routing to END finishes a run.
	END = "__end__"
)

// NodeFunc is a processing step. It receives the accumulated state (which it
// must not mutate) and returns the partial state it wants merged. A nil
// partial is treated as an empty update.
type NodeFunc func(ctx context.Context, s state.State) (state.State, error)

// RouterFunc picks the next node name (or END) from the state produced by
// the edge's source node. It must not mutate the state.
type RouterFunc func(ctx context.Context, s state.State) string

// branch is a conditional edge. targets == nil means the possible outcomes
// were not declared and validation is deferred to runtime.
type branch struct {
	router  RouterFunc
	targets []string
}

// Builder accumulates nodes and edges and produces an immutable CompiledGraph.
// A Builder is not safe for concurrent use.
type Builder struct {
	schema     *state.Schema
	opts       options
	nodes      map[string]NodeFunc
	order      []string
	edges      map[string]string
	branches   map[string]branch
	entries    []string
	warnings   []Warning
	buildError error
}

// NewBuilder creates a builder for graphs over the given schema.
func NewBuilder(schema *state.Schema, opts ...Option) *Builder {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return &Builder{
		schema:   schema,
		opts:     o,
		nodes:    make(map[string]NodeFunc),
		edges:    make(map[string]string),
		branches: make(map[string]branch),
	}
}

// AddNode registers a node. It fails with a KindDuplicateNode error if the
// name is already registered or collides with START/END.
func (b *Builder) AddNode(name string, fn NodeFunc) error {
	return b.record(b.addNode(name, fn))
}

func (b *Builder) addNode(name string, fn NodeFunc) error {
	if name == "" {
		return invalid(KindInvalidNode, name, "node name must not be empty")
	}
	if fn == nil {
		return invalid(KindInvalidNode, name, "node function must not be nil")
	}
	if name == START || name == END {
		return invalid(KindDuplicateNode, name, "name is reserved for a virtual marker")
	}
	if _, exists := b.nodes[name]; exists {
		return invalid(KindDuplicateNode, name, "node already registered")
	}
	b.nodes[name] = fn
	b.order = append(b.order, name)
	return nil
}

// AddEdge registers a static edge. from may be START and to may be END;
// every other endpoint must already be registered.
func (b *Builder) AddEdge(from, to string) error {
	return b.record(b.addEdge(from, to))
}

func (b *Builder) addEdge(from, to string) error {
	if from == END {
		return invalid(KindInvalidEdge, from, "END has no outgoing edges")
	}
	if to == START {
		return invalid(KindInvalidEdge, from, "START cannot be an edge target")
	}
	if err := b.requireNode(from); err != nil {
		return err
	}
	if err := b.requireNode(to); err != nil {
		return err
	}
	if from == START {
		b.entries = append(b.entries, to)
		return nil
	}
	if prev, exists := b.edges[from]; exists {
		b.warn(WarnAmbiguousEdge, from, "static edge to %q replaced by edge to %q", prev, to)
	}
	if _, conditional := b.branches[from]; conditional {
		b.warn(WarnAmbiguousEdge, from, "static edge to %q is shadowed by the conditional edge", to)
	}
	b.edges[from] = to
	return nil
}

// AddConditionalEdge registers a routing function invoked with the state
// produced by from. possibleTargets, when supplied, declares every name the
// router can return; Compile then checks them and traces them for
// reachability. Without them, target checking is deferred to runtime.
func (b *Builder) AddConditionalEdge(from string, router RouterFunc, possibleTargets ...string) error {
	return b.record(b.addConditionalEdge(from, router, possibleTargets))
}

func (b *Builder) addConditionalEdge(from string, router RouterFunc, targets []string) error {
	if router == nil {
		return invalid(KindInvalidEdge, from, "routing function must not be nil")
	}
	if from == START || from == END {
		return invalid(KindInvalidEdge, from, "conditional edges must start at a registered node")
	}
	if err := b.requireNode(from); err != nil {
		return err
	}
	for _, t := range targets {
		if t == START {
			return invalid(KindInvalidEdge, from, "START cannot be a routing target")
		}
	}
	if _, exists := b.branches[from]; exists {
		b.warn(WarnAmbiguousEdge, from, "conditional edge replaced by a later registration")
	}
	if to, exists := b.edges[from]; exists {
		b.warn(WarnAmbiguousEdge, from, "static edge to %q is shadowed by the conditional edge", to)
	}
	var declared []string
	if len(targets) > 0 {
		declared = append([]string(nil), targets...)
	}
	b.branches[from] = branch{router: router, targets: declared}
	return nil
}

// Err returns the first error recorded by AddNode/AddEdge/AddConditionalEdge.
// It allows registering a whole graph and checking once; Compile returns it too.
func (b *Builder) Err() error { return b.buildError }

// Warnings returns the non-fatal findings recorded so far.
func (b *Builder) Warnings() []Warning {
	return append([]Warning(nil), b.warnings...)
}

func (b *Builder) requireNode(name string) error {
	if name == START || name == END {
		return nil
	}
	if _, ok := b.nodes[name]; !ok {
		return invalid(KindUnknownNode, name, "node is not registered")
	}
	return nil
}

func (b *Builder) record(err error) error {
	if err != nil && b.buildError == nil {
		b.buildError = err
	}
	return err
}

func (b *Builder) warn(kind WarningKind, node, format string, args ...any) {
	b.warnings = append(b.warnings, Warning{Kind: kind, Node: node, Message: fmt.Sprintf(format, args...)})
}
