package graph

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/hupe1980/agentgraph/core"
	"github.com/hupe1980/agentgraph/logging"
	"github.com/hupe1980/agentgraph/state"
)

// Step is emitted by Stream after each node invocation.
type Step struct {
	RunID  string
	Index  int         // 1-based invocation counter
	Node   string      // node that just ran
	Update state.State // partial state the node returned
	State  state.State // accumulated state after the merge
	Next   string      // resolved next node, END when the run is finished
}

// Run executes the graph from START until a route reaches END and returns
// the final accumulated state. Any failure is returned as a *RunError that
// carries the state accumulated up to the failing step.
//
// Run has no internal timeout; a deadline on ctx bounds the whole run and is
// checked between steps. Node functions receive ctx and may honour it.
func (g *CompiledGraph) Run(ctx context.Context, initial state.State) (state.State, error) {
	return g.execute(ctx, initial, nil)
}

// Stream executes the graph like Run but emits a Step after every node.
// The step channel is closed when the run ends; a failure is delivered on the
// error channel (as a *RunError) before it closes.
func (g *CompiledGraph) Stream(ctx context.Context, initial state.State) (<-chan Step, <-chan error) {
	out := make(chan Step, g.opts.streamBuffer)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		_, err := g.execute(ctx, initial, func(s Step) error {
			select {
			case out <- s:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil {
			errCh <- err
		}
	}()

	return out, errCh
}

// execute is the interpreter loop shared by Run and Stream.
func (g *CompiledGraph) execute(ctx context.Context, initial state.State, emit func(Step) error) (final state.State, err error) {
	runID := core.NewID()
	logger := g.runLogger(runID)
	start := time.Now()
	steps := 0

	defer func() {
		if g.opts.hooks.OnRunEnd != nil {
			g.opts.hooks.OnRunEnd(ctx, RunEvent{Graph: g.opts.name, RunID: runID, Steps: steps, Duration: time.Since(start), Err: err})
		}
		if gl, ok := logger.(*logging.GraphLogger); ok {
			gl.With("graph", g.opts.name).LogRun(steps, time.Since(start), err)
			return
		}
		if err != nil {
			logger.Error("graph.run.failed", "graph", g.opts.name, "steps", steps, "error", err.Error())
			return
		}
		logger.Info("graph.run.completed", "graph", g.opts.name, "steps", steps, "duration_ms", time.Since(start).Milliseconds())
	}()

	cur, err := g.schema.New(initial)
	if err != nil {
		return nil, &RunError{RunID: runID, Node: START, State: initial.Clone(), Err: err}
	}
	g.route(ctx, runID, START, g.entry, 0, false)

	node := g.entry
	for node != END {
		steps++
		if err := ctx.Err(); err != nil {
			return nil, &RunError{RunID: runID, Node: node, Step: steps, State: cur, Err: err}
		}
		if g.opts.maxSteps > 0 && steps > g.opts.maxSteps {
			return nil, &RunError{RunID: runID, Node: node, Step: steps, State: cur, Err: ErrStepLimitExceeded}
		}

		partial, err := g.invoke(ctx, runID, node, steps, cur)
		if err != nil {
			return nil, &RunError{RunID: runID, Node: node, Step: steps, State: cur, Err: &NodeExecutionError{Node: node, Err: err}}
		}

		merged, err := g.schema.Merge(cur, partial)
		if err != nil {
			return nil, &RunError{RunID: runID, Node: node, Step: steps, State: cur, Err: err}
		}
		cur = merged

		next, conditional, err := g.next(ctx, node, cur)
		if err != nil {
			return nil, &RunError{RunID: runID, Node: node, Step: steps, State: cur, Err: err}
		}
		g.route(ctx, runID, node, next, steps, conditional)

		if emit != nil {
			if err := emit(Step{RunID: runID, Index: steps, Node: node, Update: partial.Clone(), State: cur.Clone(), Next: next}); err != nil {
				return nil, &RunError{RunID: runID, Node: node, Step: steps, State: cur, Err: err}
			}
		}
		node = next
	}

	return cur, nil
}

// invoke runs a single node, converting panics into errors.
func (g *CompiledGraph) invoke(ctx context.Context, runID, node string, step int, cur state.State) (partial state.State, err error) {
	fn := g.nodes[node]
	logger := g.opts.logger

	if g.opts.hooks.OnNodeStart != nil {
		g.opts.hooks.OnNodeStart(ctx, NodeEvent{Graph: g.opts.name, RunID: runID, Node: node, Step: step})
	}
	logger.Debug("graph.node.start", "graph", g.opts.name, "run_id", runID, "node", node, "step", step)

	began := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{val: r}
			logger.Error("graph.node.panic", "graph", g.opts.name, "run_id", runID, "node", node, "recover", r)
		}
		dur := time.Since(began)
		if g.opts.hooks.OnNodeEnd != nil {
			g.opts.hooks.OnNodeEnd(ctx, NodeEvent{Graph: g.opts.name, RunID: runID, Node: node, Step: step, Duration: dur, Err: err})
		}
		if gl, ok := logger.(*logging.GraphLogger); ok {
			gl.WithRun(runID).LogNodeExecution(node, step, dur, err)
		}
	}()

	partial, err = fn(ctx, cur.Clone())
	if partial == nil && err == nil {
		partial = state.State{}
	}
	return partial, err
}

// next resolves the successor of node: the conditional edge if one exists,
// otherwise the static edge.
func (g *CompiledGraph) next(ctx context.Context, node string, cur state.State) (string, bool, error) {
	br, conditional := g.branches[node]
	if !conditional {
		return g.edges[node], false, nil
	}

	target, err := g.callRouter(ctx, br.router, cur)
	if err != nil {
		return "", true, &RoutingError{From: node, Reason: err.Error()}
	}
	if target != END && !g.HasNode(target) {
		return "", true, &RoutingError{From: node, Target: target, Reason: "not END and not a registered node"}
	}
	if br.targets != nil && !slices.Contains(br.targets, target) {
		return "", true, &RoutingError{From: node, Target: target, Reason: "not among the declared routing targets"}
	}
	return target, true, nil
}

func (g *CompiledGraph) callRouter(ctx context.Context, router RouterFunc, cur state.State) (target string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{val: r}
		}
	}()
	return router(ctx, cur.Clone()), nil
}

func (g *CompiledGraph) route(ctx context.Context, runID, from, to string, step int, conditional bool) {
	g.opts.logger.Debug("graph.route", "graph", g.opts.name, "run_id", runID, "from", from, "to", to, "conditional", conditional)
	if g.opts.hooks.OnRoute != nil {
		g.opts.hooks.OnRoute(ctx, RouteEvent{Graph: g.opts.name, RunID: runID, From: from, To: to, Step: step, Conditional: conditional})
	}
}

func (g *CompiledGraph) runLogger(runID string) logging.Logger {
	if gl, ok := g.opts.logger.(*logging.GraphLogger); ok {
		return gl.WithRun(runID)
	}
	return g.opts.logger
}

// IsRunError reports whether err is (or wraps) a *RunError and returns it.
func IsRunError(err error) (*RunError, bool) {
	var re *RunError
	ok := errors.As(err, &re)
	return re, ok
}
