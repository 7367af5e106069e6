package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hupe1980/agentgraph/graph"
	"github.com/hupe1980/agentgraph/tool"
)

// Options configures a Collector.
type Options struct {
	// Namespace prefixes every metric name.
	Namespace string
	// Buckets are the histogram buckets in seconds.
	Buckets []float64
}

// Collector holds the graph and tool metrics.
type Collector struct {
	nodeVisits   *prometheus.CounterVec
	nodeDuration *prometheus.HistogramVec
	routes       *prometheus.CounterVec
	runs         *prometheus.CounterVec
	toolCalls    *prometheus.CounterVec
	toolDuration *prometheus.HistogramVec
}

// NewCollector creates the metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer, optFns ...func(o *Options)) (*Collector, error) {
	opts := Options{
		Namespace: "agentgraph",
		Buckets:   prometheus.DefBuckets,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	c := &Collector{
		nodeVisits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Name:      "node_visits_total",
			Help:      "Total number of node invocations.",
		}, []string{"graph", "node", "outcome"}),
		nodeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: opts.Namespace,
			Name:      "node_duration_seconds",
			Help:      "Duration of node invocations.",
			Buckets:   opts.Buckets,
		}, []string{"graph", "node"}),
		routes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Name:      "routes_total",
			Help:      "Total number of resolved transitions.",
		}, []string{"graph", "from", "to"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Name:      "runs_total",
			Help:      "Total number of finished runs.",
		}, []string{"graph", "outcome"}),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Name:      "tool_calls_total",
			Help:      "Total number of tool invocations.",
		}, []string{"tool", "outcome"}),
		toolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: opts.Namespace,
			Name:      "tool_duration_seconds",
			Help:      "Duration of tool invocations.",
			Buckets:   opts.Buckets,
		}, []string{"tool"}),
	}

	for _, col := range []prometheus.Collector{c.nodeVisits, c.nodeDuration, c.routes, c.runs, c.toolCalls, c.toolDuration} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// Hooks returns graph hooks that record node, route and run metrics.
func (c *Collector) Hooks() graph.Hooks {
	return graph.Hooks{
		OnNodeEnd: func(_ context.Context, e graph.NodeEvent) {
			c.nodeVisits.WithLabelValues(e.Graph, e.Node, outcome(e.Err)).Inc()
			c.nodeDuration.WithLabelValues(e.Graph, e.Node).Observe(e.Duration.Seconds())
		},
		OnRoute: func(_ context.Context, e graph.RouteEvent) {
			c.routes.WithLabelValues(e.Graph, e.From, e.To).Inc()
		},
		OnRunEnd: func(_ context.Context, e graph.RunEvent) {
			c.runs.WithLabelValues(e.Graph, outcome(e.Err)).Inc()
		},
	}
}

// ToolObserver returns a dispatch observer that records tool metrics.
func (c *Collector) ToolObserver() tool.Observer {
	return func(name string, dur time.Duration, err error) {
		c.toolCalls.WithLabelValues(name, outcome(err)).Inc()
		c.toolDuration.WithLabelValues(name).Observe(dur.Seconds())
	}
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
