package dataflow

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/smallnest/hypernodes/log"
)

// Builder assembles modules, configuration and adapters into a Graph.
// A Builder is immutable: every With method returns a new Builder, so one
// value can be shared by several nodes and built any number of times.
type Builder struct {
	modules  []*Module
	adapters []Adapter
	config   map[string]any
	logger   log.Logger
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{config: make(map[string]any)}
}

func (b *Builder) clone() *Builder {
	return &Builder{
		modules:  slices.Clone(b.modules),
		adapters: slices.Clone(b.adapters),
		config:   maps.Clone(b.config),
		logger:   b.logger,
	}
}

// WithModules returns a builder that also includes modules.
func (b *Builder) WithModules(modules ...*Module) *Builder {
	nb := b.clone()
	nb.modules = append(nb.modules, modules...)
	return nb
}

// WithAdapters returns a builder that also notifies adapters.
func (b *Builder) WithAdapters(adapters ...Adapter) *Builder {
	nb := b.clone()
	nb.adapters = append(nb.adapters, adapters...)
	return nb
}

// WithConfig returns a builder with cfg merged over the existing configuration.
// Configuration values are available to every function of the graph by name.
func (b *Builder) WithConfig(cfg map[string]any) *Builder {
	nb := b.clone()
	if nb.config == nil {
		nb.config = make(map[string]any, len(cfg))
	}
	maps.Copy(nb.config, cfg)
	return nb
}

// WithLogger returns a builder whose graphs log through l.
func (b *Builder) WithLogger(l log.Logger) *Builder {
	nb := b.clone()
	nb.logger = l
	return nb
}

// Modules returns the modules of the builder.
func (b *Builder) Modules() []*Module {
	return slices.Clone(b.modules)
}

// Adapters returns the adapters of the builder.
func (b *Builder) Adapters() []Adapter {
	return slices.Clone(b.adapters)
}

// Config returns a copy of the builder configuration.
func (b *Builder) Config() map[string]any {
	return maps.Clone(b.config)
}

// Build resolves every parameter by name and returns the graph.
func (b *Builder) Build() (*Graph, error) {
	if len(b.modules) == 0 {
		return nil, ErrNoModules
	}

	g := &Graph{
		nodes:    make(map[string]*GraphNode),
		inputs:   make(map[string][]string),
		config:   maps.Clone(b.config),
		adapters: slices.Clone(b.adapters),
		logger:   b.logger,
	}
	if g.config == nil {
		g.config = make(map[string]any)
	}
	if g.logger == nil {
		g.logger = log.GetDefaultLogger()
	}

	for _, m := range b.modules {
		for _, f := range m.Funcs {
			if prev, ok := g.nodes[f.Name]; ok {
				return nil, fmt.Errorf("%w: %s is defined in %s and %s", ErrDuplicateFunction, f.Name, prev.Module, m.Name)
			}
			g.nodes[f.Name] = &GraphNode{Name: f.Name, Module: m.Name, Func: f}
			g.order = append(g.order, f.Name)
		}
	}

	for _, name := range g.order {
		node := g.nodes[name]
		for _, p := range node.Func.Params {
			if p.Local || strings.HasPrefix(p.Name, node.Name) {
				node.Local = append(node.Local, p.Name)
			} else {
				node.Upstream = append(node.Upstream, p.Name)
			}

			provider, ok := g.nodes[p.Name]
			if !ok {
				node.Inputs = append(node.Inputs, p.Name)
				g.inputs[p.Name] = append(g.inputs[p.Name], node.Name)
				continue
			}
			if !feeds(provider.Func.Returns, p.Type) {
				return nil, fmt.Errorf("%w: %s returns %s but %s expects %s", ErrTypeMismatch, provider.Name, provider.Func.Returns, node.Name, p.Type)
			}
			node.Deps = append(node.Deps, p.Name)
		}
	}

	if cycle := g.findCycle(); cycle != nil {
		return nil, fmt.Errorf("%w: %s", ErrCycle, strings.Join(cycle, " -> "))
	}

	return g, nil
}

// feeds reports whether a value of type from can be passed to a parameter of
// type to. Interface results are checked when the graph runs.
func feeds(from, to reflect.Type) bool {
	if from.AssignableTo(to) || from.Kind() == reflect.Interface {
		return true
	}
	return isNumericKind(from.Kind()) && isNumericKind(to.Kind())
}

// findCycle returns the first dependency cycle found, or nil.
func (g *Graph) findCycle() []string {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(g.nodes))
	var stack []string
	var cycle []string

	var visit func(name string) bool
	visit = func(name string) bool {
		state[name] = visiting
		stack = append(stack, name)
		for _, dep := range g.nodes[name].Deps {
			switch state[dep] {
			case visiting:
				start := slices.Index(stack, dep)
				cycle = append(slices.Clone(stack[start:]), dep)
				return true
			case unvisited:
				if visit(dep) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = done
		return false
	}

	for _, name := range g.order {
		if state[name] == unvisited && visit(name) {
			return cycle
		}
	}
	return nil
}
