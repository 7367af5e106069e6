package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hupe1980/agentgraph/state"
)

// CompiledGraph is an immutable, validated graph ready for repeated execution.
// It holds no per-run state and is safe for concurrent Run/Stream calls.
type CompiledGraph struct {
	schema   *state.Schema
	opts     options
	entry    string
	nodes    map[string]NodeFunc
	order    []string
	edges    map[string]string
	branches map[string]branch
	warnings []Warning
}

// Edge describes one transition for introspection. Conditional edges are
// listed once per declared target; a conditional edge without declared
// targets is listed with an empty To.
type Edge struct {
	From        string
	To          string
	Conditional bool
}

// Name returns the configured graph name.
func (g *CompiledGraph) Name() string { return g.opts.name }

// Schema returns the state schema the graph was built with.
func (g *CompiledGraph) Schema() *state.Schema { return g.schema }

// EntryPoint returns the node targeted by START.
func (g *CompiledGraph) EntryPoint() string { return g.entry }

// Nodes returns the node names in registration order.
func (g *CompiledGraph) Nodes() []string { return append([]string(nil), g.order...) }

// HasNode reports whether name is a registered node.
func (g *CompiledGraph) HasNode(name string) bool {
	_, ok := g.nodes[name]
	return ok
}

// Warnings returns the non-fatal findings recorded while building and compiling.
func (g *CompiledGraph) Warnings() []Warning { return append([]Warning(nil), g.warnings...) }

// Edges returns every effective transition sorted by source then target,
// beginning with the START edge.
func (g *CompiledGraph) Edges() []Edge {
	out := []Edge{{From: START, To: g.entry}}
	var rest []Edge
	for from, to := range g.edges {
		rest = append(rest, Edge{From: from, To: to})
	}
	for from, br := range g.branches {
		if br.targets == nil {
			rest = append(rest, Edge{From: from, Conditional: true})
			continue
		}
		for _, to := range br.targets {
			rest = append(rest, Edge{From: from, To: to, Conditional: true})
		}
	}
	sort.Slice(rest, func(i, j int) bool {
		if rest[i].From != rest[j].From {
			return rest[i].From < rest[j].From
		}
		return rest[i].To < rest[j].To
	})
	return append(out, rest...)
}

// Mermaid renders the graph as a Mermaid flowchart. Static edges are solid,
// conditional edges dotted; undeclared routers point to a "?" placeholder.
func (g *CompiledGraph) Mermaid() string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	fmt.Fprintf(&sb, "    %s((START))\n", mermaidID(START))
	for _, name := range g.order {
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", mermaidID(name), strings.ReplaceAll(name, `"`, "'"))
	}
	fmt.Fprintf(&sb, "    %s((END))\n", mermaidID(END))
	for _, e := range g.Edges() {
		arrow := "-->"
		if e.Conditional {
			arrow = "-.->"
		}
		to := e.To
		if to == "" {
			to = "?"
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", mermaidID(e.From), arrow, mermaidID(to))
	}
	return sb.String()
}

func mermaidID(name string) string {
	switch name {
	case START:
		return "__start__"
	case END:
		return "__end__"
	case "?":
		return "unknown_target"
	}
	var sb strings.Builder
	for _, r := range name {
		if r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			sb.WriteRune(r)
			continue
		}
		sb.WriteByte('_')
	}
	return "n_" + sb.String()
}
