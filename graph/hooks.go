package graph

import (
	"context"
	"time"
)

// NodeEvent describes one node invocation.
type NodeEvent struct {
	Graph    string
	RunID    string
	Node     string
	Step     int
	Duration time.Duration // zero for OnNodeStart
	Err      error
}

// RouteEvent describes a resolved transition.
type RouteEvent struct {
	Graph       string
	RunID       string
	From        string
	To          string
	Step        int
	Conditional bool
}

// RunEvent summarises a finished run.
type RunEvent struct {
	Graph    string
	RunID    string
	Steps    int
	Duration time.Duration
	Err      error
}

// Hooks are optional lifecycle callbacks. Nil fields are skipped. They must
// not mutate state and should return quickly.
type Hooks struct {
	OnNodeStart func(ctx context.Context, e NodeEvent)
	OnNodeEnd   func(ctx context.Context, e NodeEvent)
	OnRoute     func(ctx context.Context, e RouteEvent)
	OnRunEnd    func(ctx context.Context, e RunEvent)
}

// MergeHooks combines several hook sets; callbacks fire in argument order.
func MergeHooks(hs ...Hooks) Hooks {
	var out Hooks
	for _, h := range hs {
		h := h
		if h.OnNodeStart != nil {
			prev := out.OnNodeStart
			out.OnNodeStart = func(ctx context.Context, e NodeEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnNodeStart(ctx, e)
			}
		}
		if h.OnNodeEnd != nil {
			prev := out.OnNodeEnd
			out.OnNodeEnd = func(ctx context.Context, e NodeEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnNodeEnd(ctx, e)
			}
		}
		if h.OnRoute != nil {
			prev := out.OnRoute
			out.OnRoute = func(ctx context.Context, e RouteEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnRoute(ctx, e)
			}
		}
		if h.OnRunEnd != nil {
			prev := out.OnRunEnd
			out.OnRunEnd = func(ctx context.Context, e RunEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnRunEnd(ctx, e)
			}
		}
	}
	return out
}
