package agent

import (
	"context"

	"github.com/hupe1980/agentgraph/internal/util"
	"github.com/hupe1980/agentgraph/state"
)

// Provider supplies instruction text at runtime, derived from the
// accumulated state.
type Provider interface {
	Instruction(ctx context.Context, s state.State) (string, error)
}

// Func adapts an ordinary function to Provider.
type Func func(ctx context.Context, s state.State) (string, error)

// Instruction implements Provider.
func (f Func) Instruction(ctx context.Context, s state.State) (string, error) { return f(ctx, s) }

// Instruction is either static text or a dynamic Provider. Static text may
// use text/template syntax, executed against the current state, e.g.
// "You are helping {{ .user_name }}".
type Instruction struct {
	text     string
	provider Provider
}

// NewInstructionFromText creates an Instruction from (template) text.
func NewInstructionFromText(text string) Instruction { return Instruction{text: text} }

// NewInstructionFromProvider creates an Instruction from a dynamic provider.
func NewInstructionFromProvider(p Provider) Instruction { return Instruction{provider: p} }

// NewInstructionFromFunc creates an Instruction from a function.
func NewInstructionFromFunc(f func(ctx context.Context, s state.State) (string, error)) Instruction {
	return Instruction{provider: Func(f)}
}

// IsStatic returns true if the instruction is backed by text.
func (i Instruction) IsStatic() bool { return i.provider == nil }

// IsZero reports whether no instruction was configured.
func (i Instruction) IsZero() bool { return i.provider == nil && i.text == "" }

// Resolve returns the instruction text for the given state.
func (i Instruction) Resolve(ctx context.Context, s state.State) (string, error) {
	if i.provider != nil {
		return i.provider.Instruction(ctx, s)
	}
	return util.RenderTemplate(i.text, s)
}
