package graph

import (
	"fmt"
)

// Compile validates the graph and returns an immutable CompiledGraph. It is
// side-effect free apart from logging: calling it twice yields equivalent
// graphs, and the builder may keep being used afterwards.
//
// Checked invariants, in order:
//  1. no earlier AddNode/AddEdge/AddConditionalEdge call failed
//  2. START has exactly one outgoing edge
//  3. every node has at least one outgoing static or conditional edge
//  4. every declared conditional target is a registered node or END
//  5. no node is provably unreachable from START
//  6. every node can reach END (nodes behind undeclared routers are assumed to)
func (b *Builder) Compile() (*CompiledGraph, error) {
	if b.buildError != nil {
		return nil, b.buildError
	}
	if b.schema == nil {
		return nil, invalid(KindInvalidNode, "", "graph requires a state schema")
	}
	switch len(b.entries) {
	case 0:
		return nil, invalid(KindMissingEntry, START, "START has no outgoing edge")
	case 1:
	default:
		return nil, invalid(KindMultipleEntry, START, "START has %d outgoing edges, want exactly one", len(b.entries))
	}

	for _, name := range b.order {
		_, static := b.edges[name]
		_, conditional := b.branches[name]
		if !static && !conditional {
			return nil, invalid(KindNoOutgoingEdge, name, "node has no outgoing edge")
		}
	}
	for _, name := range b.order {
		br, ok := b.branches[name]
		if !ok {
			continue
		}
		for _, t := range br.targets {
			if t == END {
				continue
			}
			if _, known := b.nodes[t]; !known {
				return nil, invalid(KindUnknownNode, t, "declared as routing target of %q but not registered", name)
			}
		}
	}

	warnings := b.Warnings()

	reached, opaque := b.reachable()
	for _, name := range b.order {
		if reached[name] {
			continue
		}
		if !opaque {
			return nil, invalid(KindUnreachable, name, "node is unreachable from START")
		}
		warnings = append(warnings, Warning{
			Kind:    WarnUnverifiedReachability,
			Node:    name,
			Message: "not reachable via static edges or declared routing targets",
		})
	}

	exits := b.reachesEnd()
	for _, name := range b.order {
		if !exits[name] {
			return nil, invalid(KindNoPathToEnd, name, "no path from node reaches END")
		}
	}

	for _, w := range warnings {
		b.opts.logger.Warn("graph.compile.warning", "graph", b.opts.name, "kind", string(w.Kind), "node", w.Node, "message", w.Message)
	}

	cg := &CompiledGraph{
		schema:   b.schema,
		opts:     b.opts,
		entry:    b.entries[0],
		nodes:    make(map[string]NodeFunc, len(b.nodes)),
		order:    append([]string(nil), b.order...),
		edges:    make(map[string]string, len(b.edges)),
		branches: make(map[string]branch, len(b.branches)),
		warnings: warnings,
	}
	for k, v := range b.nodes {
		cg.nodes[k] = v
	}
	for k, v := range b.branches {
		br := branch{router: v.router}
		if v.targets != nil {
			br.targets = append([]string(nil), v.targets...)
		}
		cg.branches[k] = br
	}
	for k, v := range b.edges {
		if _, shadowed := b.branches[k]; shadowed {
			continue
		}
		cg.edges[k] = v
	}

	b.opts.logger.Debug("graph.compiled", "graph", b.opts.name, "nodes", len(cg.nodes), "warnings", len(warnings))
	return cg, nil
}

// MustCompile is like Compile but panics on error.
func (b *Builder) MustCompile() *CompiledGraph {
	g, err := b.Compile()
	if err != nil {
		panic(fmt.Sprintf("graph: %v", err))
	}
	return g
}

// successors returns the statically known next hops of name as they will be
// resolved at runtime (a conditional edge shadows the static one). known is
// false for a conditional edge without declared targets.
func (b *Builder) successors(name string) (next []string, known bool) {
	if br, ok := b.branches[name]; ok {
		return br.targets, br.targets != nil
	}
	if to, ok := b.edges[name]; ok {
		return []string{to}, true
	}
	return nil, true
}

// reachable walks from START. opaque reports whether a reached node routes
// through an undeclared conditional edge.
func (b *Builder) reachable() (map[string]bool, bool) {
	reached := map[string]bool{}
	opaque := false
	queue := []string{b.entries[0]}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == END || reached[cur] {
			continue
		}
		reached[cur] = true
		next, known := b.successors(cur)
		if !known {
			opaque = true
		}
		queue = append(queue, next...)
	}
	return reached, opaque
}

// reachesEnd computes, by fixpoint, which nodes have some path to END.
func (b *Builder) reachesEnd() map[string]bool {
	exits := map[string]bool{}
	for changed := true; changed; {
		changed = false
		for _, name := range b.order {
			if exits[name] {
				continue
			}
			next, known := b.successors(name)
			ok := !known
			for _, n := range next {
				if n == END || exits[n] {
					ok = true
					break
				}
			}
			if ok {
				exits[name] = true
				changed = true
			}
		}
	}
	return exits
}
