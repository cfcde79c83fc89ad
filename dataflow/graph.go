package dataflow

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smallnest/hypernodes/log"
)

// GraphNode is a function placed in a graph.
type GraphNode struct {
	Name   string
	Module string
	Func   *Func

	// Deps are parameters produced by other functions of the graph.
	Deps []string
	// Inputs are parameters that must come from inputs or configuration.
	Inputs []string
	// Local and Upstream partition the parameters. Local parameters belong to
	// the function itself; upstream ones are computed or supplied before it.
	Local    []string
	Upstream []string
}

// Graph is a built, executable dataflow graph.
type Graph struct {
	nodes    map[string]*GraphNode
	order    []string
	inputs   map[string][]string
	config   map[string]any
	adapters []Adapter
	logger   log.Logger
}

// Nodes returns the functions of the graph in declaration order.
func (g *Graph) Nodes() []*GraphNode {
	nodes := make([]*GraphNode, len(g.order))
	for i, name := range g.order {
		nodes[i] = g.nodes[name]
	}
	return nodes
}

// Node returns the function node with the given name.
func (g *Graph) Node(name string) (*GraphNode, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// ExternalInputs returns the names of parameters no function produces, sorted.
func (g *Graph) ExternalInputs() []string {
	names := slices.Collect(maps.Keys(g.inputs))
	sort.Strings(names)
	return names
}

// Variables returns every function name followed by every external input.
func (g *Graph) Variables() []string {
	return append(slices.Clone(g.order), g.ExternalInputs()...)
}

// Config returns a copy of the graph configuration.
func (g *Graph) Config() map[string]any {
	return maps.Clone(g.config)
}

// IsConfig reports whether key is a configuration parameter of the graph.
func (g *Graph) IsConfig(key string) bool {
	_, ok := g.config[key]
	return ok
}

// Upstream returns the non-local parameters of the named function.
func (g *Graph) Upstream(name string) ([]string, error) {
	n, ok := g.nodes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVariable, name)
	}
	return slices.Clone(n.Upstream), nil
}

// plan returns the functions needed for finalVars in dependency order.
func (g *Graph) plan(finalVars []string) ([]string, error) {
	var order []string
	seen := make(map[string]bool)

	var visit func(name string)
	visit = func(name string) {
		if seen[name] {
			return
		}
		seen[name] = true
		for _, dep := range g.nodes[name].Deps {
			visit(dep)
		}
		order = append(order, name)
	}

	for _, v := range finalVars {
		if _, ok := g.nodes[v]; ok {
			visit(v)
			continue
		}
		if _, ok := g.inputs[v]; ok {
			continue
		}
		if _, ok := g.config[v]; ok {
			continue
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownVariable, v)
	}
	return order, nil
}

// Execute computes finalVars from inputs and returns exactly those variables.
// Functions run one at a time in dependency order. A function argument is taken
// from an upstream result, then the graph configuration, then inputs.
func (g *Graph) Execute(ctx context.Context, finalVars []string, inputs map[string]any) (map[string]any, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	plan, err := g.plan(finalVars)
	if err != nil {
		return nil, err
	}

	missing := make(map[string]bool)
	needs := func(name string) {
		if _, ok := g.config[name]; ok {
			return
		}
		if _, ok := inputs[name]; ok {
			return
		}
		missing[name] = true
	}
	for _, name := range plan {
		for _, in := range g.nodes[name].Inputs {
			needs(in)
		}
	}
	for _, v := range finalVars {
		if _, ok := g.nodes[v]; !ok {
			needs(v)
		}
	}
	if len(missing) > 0 {
		names := slices.Collect(maps.Keys(missing))
		sort.Strings(names)
		return nil, fmt.Errorf("%w: %s", ErrMissingInput, strings.Join(names, ", "))
	}

	run := &Run{
		ID:        uuid.NewString(),
		FinalVars: slices.Clone(finalVars),
		Inputs:    inputs,
		StartedAt: time.Now(),
	}
	g.notifyRunStart(ctx, run)

	values := make(map[string]any, len(plan))
	for _, name := range plan {
		if err := ctx.Err(); err != nil {
			g.notifyRunEnd(ctx, run, nil, err)
			return nil, err
		}

		node := g.nodes[name]
		args := make(map[string]any, len(node.Func.Params))
		for _, p := range node.Func.Params {
			args[p.Name] = g.lookup(p.Name, values, inputs)
		}

		g.notifyNodeStart(ctx, run, name, args)
		start := time.Now()
		res, err := node.Func.Call(ctx, args)
		g.notifyNodeEnd(ctx, run, name, res, time.Since(start), err)
		if err != nil {
			err = fmt.Errorf("error in node %s: %w", name, err)
			g.notifyRunEnd(ctx, run, nil, err)
			return nil, err
		}
		values[name] = res
	}

	results := make(map[string]any, len(finalVars))
	for _, v := range finalVars {
		results[v] = g.lookup(v, values, inputs)
	}
	g.notifyRunEnd(ctx, run, results, nil)
	return results, nil
}

func (g *Graph) lookup(name string, values, inputs map[string]any) any {
	if v, ok := values[name]; ok {
		return v
	}
	if v, ok := g.config[name]; ok {
		return v
	}
	return inputs[name]
}
