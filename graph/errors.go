package graph

import (
	"errors"
	"fmt"

	"github.com/hupe1980/agentgraph/state"
)

var (
	// ErrGraphValidation matches every *ValidationError.
	ErrGraphValidation = errors.New("graph validation failed")
	// ErrDuplicateNode is matched by validation errors of KindDuplicateNode.
	ErrDuplicateNode = errors.New("duplicate node")
	// ErrUnknownNode is matched by validation errors of KindUnknownNode.
	ErrUnknownNode = errors.New("unknown node")
	// ErrInvalidEdge is matched by validation errors of KindInvalidEdge.
	ErrInvalidEdge = errors.New("invalid edge")

	// ErrRouting matches every *RoutingError.
	ErrRouting = errors.New("routing error")
	// ErrStepLimitExceeded is returned (inside a *RunError) when a run exceeds WithMaxSteps.
	ErrStepLimitExceeded = errors.New("step limit exceeded")
)

// ValidationKind names the structural invariant a graph violated.
type ValidationKind string

// Validation kinds reported by Builder and Compile.
const (
	KindInvalidNode    ValidationKind = "invalid_node"
	KindDuplicateNode  ValidationKind = "duplicate_node"
	KindUnknownNode    ValidationKind = "unknown_node"
	KindInvalidEdge    ValidationKind = "invalid_edge"
	KindMissingEntry   ValidationKind = "missing_entry"
	KindMultipleEntry  ValidationKind = "multiple_entry"
	KindNoOutgoingEdge ValidationKind = "no_outgoing_edge"
	KindUnreachable    ValidationKind = "unreachable_node"
	KindNoPathToEnd    ValidationKind = "no_path_to_end"
)

// ValidationError is the structural (build/compile time) error. A failed
// Compile never returns a partially compiled graph.
type ValidationError struct {
	Kind    ValidationKind
	Node    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Node == "" {
		return fmt.Sprintf("graph validation failed [%s]: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("graph validation failed [%s] node %q: %s", e.Kind, e.Node, e.Message)
}

// Is lets callers match on the generic sentinel or the sub-kind sentinels.
func (e *ValidationError) Is(target error) bool {
	switch target {
	case ErrGraphValidation:
		return true
	case ErrDuplicateNode:
		return e.Kind == KindDuplicateNode
	case ErrUnknownNode:
		return e.Kind == KindUnknownNode
	case ErrInvalidEdge:
		return e.Kind == KindInvalidEdge
	}
	return false
}

func invalid(kind ValidationKind, node, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Node: node, Message: fmt.Sprintf(format, args...)}
}

// WarningKind names a non-fatal structural finding.
type WarningKind string

const (
	// WarnAmbiguousEdge: an outgoing edge was overridden by a later registration
	// or shadowed by a conditional edge.
	WarnAmbiguousEdge WarningKind = "ambiguous_edge"
	// WarnUnverifiedReachability: a node is not reachable through static edges
	// or declared conditional targets, but a conditional edge without declared
	// targets might still reach it at runtime.
	WarnUnverifiedReachability WarningKind = "unverified_reachability"
)

// Warning is a non-fatal finding recorded while building or compiling a graph.
type Warning struct {
	Kind    WarningKind
	Node    string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("[%s] node %q: %s", w.Kind, w.Node, w.Message)
}

// RoutingError is returned when a routing function names a target that is
// neither END nor a registered node (or is outside its declared targets).
type RoutingError struct {
	From   string
	Target string
	Reason string
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("routing from %q returned invalid target %q: %s", e.From, e.Target, e.Reason)
}

// Is makes errors.Is(err, ErrRouting) succeed.
func (e *RoutingError) Is(target error) bool { return target == ErrRouting }

// NodeExecutionError wraps whatever a node function returned (or panicked with).
type NodeExecutionError struct {
	Node string
	Err  error
}

func (e *NodeExecutionError) Error() string {
	return fmt.Sprintf("node %q failed: %v", e.Node, e.Err)
}

func (e *NodeExecutionError) Unwrap() error { return e.Err }

// RunError is the single error type returned by CompiledGraph.Run. It records
// where the run stopped and the accumulated State at that time. The cause is
// available through errors.Is / errors.As (e.g. *state.SchemaViolationError,
// *RoutingError, *NodeExecutionError and whatever the node returned).
type RunError struct {
	RunID string
	Node  string
	Step  int
	State state.State
	Err   error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("run %s failed at node %q (step %d): %v", e.RunID, e.Node, e.Step, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }

// panicError converts a recovered panic value into an error.
type panicError struct{ val any }

func (p *panicError) Error() string { return fmt.Sprintf("panic recovered: %v", p.val) }
