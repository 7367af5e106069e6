package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/muesli/termenv"

	"github.com/hupe1980/agentgraph/core"
	"github.com/hupe1980/agentgraph/graph"
	"github.com/hupe1980/agentgraph/logging"
	"github.com/hupe1980/agentgraph/state"
)

// DefaultFallbackPrompt is used when no usable input arrives.
const DefaultFallbackPrompt = "What do you know about LangGraph?"

// Options holds configuration overrides passed to New.
type Options struct {
	// MessagesKey is the state field holding the conversation.
	MessagesKey string
	// MaxInputAttempts bounds how many empty lines are read before the
	// fallback prompt is used.
	MaxInputAttempts int
	// FallbackPrompt replaces input after MaxInputAttempts empty lines or at EOF.
	FallbackPrompt string
	// QuitWords end the loop (case-insensitive).
	QuitWords []string
	// Prompt is printed before every read.
	Prompt string
	// KeepHistory carries the conversation over to the next turn.
	KeepHistory bool
	// Profile selects the terminal colour profile; termenv.Ascii disables styling.
	Profile termenv.Profile
	Logger  logging.Logger
}

// Runner is an interactive turn loop around a CompiledGraph. A Runner keeps
// per-conversation history and must not be shared by concurrent Run calls.
type Runner struct {
	graph   *graph.CompiledGraph
	opts    Options
	logger  logging.Logger
	history []core.Message
}

// New constructs a Runner with optional overrides.
func New(g *graph.CompiledGraph, optFns ...func(o *Options)) *Runner {
	opts := Options{
		MessagesKey:      state.MessagesKey,
		MaxInputAttempts: 3,
		FallbackPrompt:   DefaultFallbackPrompt,
		QuitWords:        []string{"quit", "exit", "q"},
		Prompt:           "User: ",
		Profile:          termenv.Ascii,
		Logger:           logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MaxInputAttempts < 1 {
		opts.MaxInputAttempts = 1
	}

	return &Runner{
		graph:  g,
		opts:   opts,
		logger: logging.OrNoOp(opts.Logger),
	}
}

// Run reads turns from in until a quit word, end of input, a failed turn or
// cancellation of ctx. A failed turn is reported on out and returned.
func (r *Runner) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		input, last, err := r.read(sc, out)
		if err != nil {
			return err
		}

		if r.isQuit(input) {
			fmt.Fprintln(out, r.style("Goodbye!", "8"))
			return nil
		}

		if err := r.Turn(ctx, input, out); err != nil {
			fmt.Fprintln(out, r.style("Error: "+err.Error(), "1"))
			return err
		}

		if last {
			return nil
		}
	}
}

// read returns the next usable input. last reports that the input ended and
// the fallback prompt is being used for a final turn.
func (r *Runner) read(sc *bufio.Scanner, out io.Writer) (input string, last bool, err error) {
	for attempt := 1; ; attempt++ {
		fmt.Fprint(out, r.opts.Prompt)

		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", false, fmt.Errorf("read input: %w", err)
			}
			fmt.Fprintln(out)
			r.logger.Info("runner.input.eof", "fallback", r.opts.FallbackPrompt)
			fmt.Fprintln(out, r.style("User: "+r.opts.FallbackPrompt, "8"))
			return r.opts.FallbackPrompt, true, nil
		}

		if text := strings.TrimSpace(sc.Text()); text != "" {
			return text, false, nil
		}

		if attempt >= r.opts.MaxInputAttempts {
			r.logger.Warn("runner.input.fallback", "attempts", attempt)
			fmt.Fprintln(out, r.style("No input received, asking: "+r.opts.FallbackPrompt, "8"))
			return r.opts.FallbackPrompt, false, nil
		}

		fmt.Fprintln(out, r.style("Please enter a question.", "3"))
	}
}

func (r *Runner) isQuit(input string) bool {
	return slices.ContainsFunc(r.opts.QuitWords, func(w string) bool {
		return strings.EqualFold(w, input)
	})
}

// Turn runs the graph once for input and prints every message the nodes
// produced.
func (r *Runner) Turn(ctx context.Context, input string, out io.Writer) error {
	start := time.Now()

	msgs := []core.Message{core.NewUserMessage(input)}
	if r.opts.KeepHistory {
		msgs = append(slices.Clone(r.history), msgs...)
	}

	steps, errs := r.graph.Stream(ctx, state.State{r.opts.MessagesKey: msgs})

	var final state.State
	for step := range steps {
		final = step.State
		for _, m := range updateMessages(step.Update[r.opts.MessagesKey]) {
			fmt.Fprintf(out, "%s %s\n", r.style("["+step.Node+"]", "6"), r.render(m))
		}
	}

	if err := <-errs; err != nil {
		r.logger.Error("runner.turn.error", "error", err, "duration", time.Since(start))
		var runErr *graph.RunError
		if errors.As(err, &runErr) && r.opts.KeepHistory {
			r.history = runErr.State.Messages(r.opts.MessagesKey)
		}
		return err
	}

	r.logger.Debug("runner.turn.complete", "duration", time.Since(start))
	if r.opts.KeepHistory && final != nil {
		r.history = final.Messages(r.opts.MessagesKey)
	}
	return nil
}

// History returns the conversation carried between turns.
func (r *Runner) History() []core.Message {
	return slices.Clone(r.history)
}

func updateMessages(v any) []core.Message {
	switch m := v.(type) {
	case core.Message:
		return []core.Message{m}
	case []core.Message:
		return m
	default:
		return nil
	}
}

func (r *Runner) render(m core.Message) string {
	switch {
	case m.HasToolCalls():
		calls := make([]string, len(m.ToolCalls))
		for i, c := range m.ToolCalls {
			calls[i] = fmt.Sprintf("%s(%s)", c.Name, string(c.Arguments))
		}
		return r.style("Assistant -> ", "5") + strings.Join(calls, ", ")
	case m.ToolResult != nil:
		if m.ToolResult.Error != "" {
			return r.style("Tool "+m.ToolResult.Name+" failed: ", "1") + m.ToolResult.Error
		}
		return r.style("Tool "+m.ToolResult.Name+": ", "5") + m.Text()
	case m.Role == core.RoleAssistant:
		return r.style("Assistant: ", "2") + m.Text()
	case m.Role == "":
		return m.Text()
	default:
		role := string(m.Role)
		return r.style(strings.ToUpper(role[:1])+role[1:]+": ", "8") + m.Text()
	}
}

func (r *Runner) style(s, color string) string {
	return r.opts.Profile.String(s).Foreground(r.opts.Profile.Color(color)).String()
}
