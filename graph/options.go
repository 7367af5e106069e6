package graph

import (
	"github.com/hupe1980/agentgraph/logging"
)

// Option configures a Builder and the CompiledGraph it produces.
type Option func(*options)

type options struct {
	name         string
	logger       logging.Logger
	maxSteps     int
	hooks        Hooks
	streamBuffer int
}

func defaultOptions() options {
	return options{name: "graph", logger: logging.NoOpLogger{}, streamBuffer: 16}
}

// WithName sets the graph name used in logs and metrics labels.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithLogger sets the logger used for compile warnings and run tracing.
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = logging.OrNoOp(l) }
}

// WithMaxSteps bounds the number of node invocations per run. Zero (the
// default) means unlimited: cycles are then the caller's responsibility.
func WithMaxSteps(n int) Option {
	return func(o *options) { o.maxSteps = n }
}

// WithHooks installs lifecycle hooks. Hooks run synchronously on the run's
// goroutine; repeated calls accumulate in order.
func WithHooks(h Hooks) Option {
	return func(o *options) { o.hooks = MergeHooks(o.hooks, h) }
}

// WithStreamBuffer sets the buffer size of the channel returned by Stream.
func WithStreamBuffer(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.streamBuffer = n
		}
	}
}
