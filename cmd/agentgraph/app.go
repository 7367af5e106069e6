package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/muesli/termenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/hupe1980/agentgraph/agent"
	"github.com/hupe1980/agentgraph/config"
	"github.com/hupe1980/agentgraph/graph"
	"github.com/hupe1980/agentgraph/logging"
	"github.com/hupe1980/agentgraph/metrics"
	"github.com/hupe1980/agentgraph/model"
	"github.com/hupe1980/agentgraph/model/anthropic"
	"github.com/hupe1980/agentgraph/model/openai"
	"github.com/hupe1980/agentgraph/runner"
	"github.com/hupe1980/agentgraph/tool"
)

// app carries what every subcommand needs once flags and configuration
// have been resolved.
type app struct {
	cfg       *config.Config
	logger    *logging.GraphLogger
	profile   termenv.Profile
	collector *metrics.Collector
	server    *http.Server

	newModel func(cfg *config.Config) (model.Model, error)
}

func (a *app) init(cmd *cobra.Command) error {
	flags := cmd.Flags()

	path, _ := flags.GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	if flags.Changed("provider") {
		cfg.Provider, _ = flags.GetString("provider")
	}
	if flags.Changed("model") {
		cfg.Model, _ = flags.GetString("model")
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Addr, _ = flags.GetString("metrics-addr")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = cfg.NewLogger(cmd.ErrOrStderr()).WithComponent("cli")

	a.profile = termenv.NewOutput(cmd.OutOrStdout()).EnvColorProfile()
	if noColor, _ := flags.GetBool("no-color"); noColor {
		a.profile = termenv.Ascii
	}

	if cfg.Metrics.Addr != "" {
		return a.serveMetrics(cfg.Metrics.Addr)
	}
	return nil
}

func (a *app) serveMetrics(addr string) error {
	reg := prometheus.NewRegistry()
	collector, err := metrics.NewCollector(reg)
	if err != nil {
		return err
	}
	a.collector = collector

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	a.server = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics.server.failed", "addr", addr, "error", err.Error())
		}
	}()
	a.logger.Info("metrics.server.started", "addr", addr)
	return nil
}

func (a *app) close(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	return a.server.Shutdown(ctx)
}

// graphOptions returns the options shared by every demo graph.
func (a *app) graphOptions() []graph.Option {
	opts := []graph.Option{
		graph.WithLogger(a.logger.WithComponent("graph")),
		graph.WithMaxSteps(a.cfg.MaxSteps),
	}
	if a.collector != nil {
		opts = append(opts, graph.WithHooks(a.collector.Hooks()))
	}
	return opts
}

// agentOptions wires logging, metrics and model settings into the
// prebuilt agent graphs.
func (a *app) agentOptions() []agent.Option {
	opts := []agent.Option{
		agent.WithLogger(a.logger),
		agent.WithGraphOptions(a.graphOptions()...),
		agent.WithChatOptions(func(o *agent.ChatNodeOptions) {
			o.Timeout = a.cfg.ModelTimeout
		}),
	}
	if a.collector != nil {
		opts = append(opts, agent.WithDispatchOptions(tool.WithObserver(a.collector.ToolObserver())))
	}
	return opts
}

func (a *app) runner(g *graph.CompiledGraph) *runner.Runner {
	return runner.New(g, func(o *runner.Options) {
		o.MaxInputAttempts = a.cfg.Runner.MaxInputAttempts
		o.FallbackPrompt = a.cfg.Runner.FallbackPrompt
		o.Profile = a.profile
		o.Logger = a.logger.WithComponent("runner")
	})
}

func (a *app) style(s, color string) string {
	return a.profile.String(s).Foreground(a.profile.Color(color)).Bold().String()
}

// newModel builds the configured backend, wrapped in a retry policy.
func newModel(cfg *config.Config) (model.Model, error) {
	var m model.Model

	switch cfg.Provider {
	case "openai":
		m = openai.NewModel(func(o *openai.Options) {
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
			o.Temperature = cfg.Temperature
			o.MaxCompletionTokens = cfg.MaxTokens
		})
	case "anthropic":
		m = anthropic.NewModel(func(o *anthropic.Options) {
			if cfg.Model != "" {
				o.Model = anthropicsdk.Model(cfg.Model)
			}
			o.Temperature = cfg.Temperature
			o.MaxTokens = cfg.MaxTokens
		})
	case "mock":
		name := cfg.Model
		if name == "" {
			name = "mock"
		}
		m = model.NewMockModel(name, "mock")
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}

	if cfg.ModelRetries > 1 {
		m = model.NewRetryModel(m, cfg.ModelRetries, time.Second)
	}
	return m, nil
}
