package hypernode

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/smallnest/hypernodes/dataflow"
	"github.com/smallnest/hypernodes/hp"
	"github.com/smallnest/hypernodes/log"
)

// BuilderInput is the input name under which a configuration may provide a
// *dataflow.Builder carrying adapters and graph configuration.
const BuilderInput = "builder"

// Executor runs a node's graph. Dataflow functions that call into another node
// declare a parameter of this type.
type Executor interface {
	Execute(ctx context.Context, finalVars []string, inputs map[string]any) (map[string]any, error)
	Inputs() map[string]any
}

// Node bundles dataflow modules with the configuration that instantiates their
// inputs. Inputs are evaluated on demand and the execution graph is built on
// first use. A Node is not safe for concurrent use.
type Node struct {
	name      string
	modules   []*dataflow.Module
	config    hp.Config
	resolver  hp.Resolver
	factories hp.Factories
	logger    log.Logger

	inputs   map[string]any
	snapshot map[string]any
	graph    *dataflow.Graph
}

// Option configures a Node.
type Option func(*Node)

// WithResolver sets the resolver used for nested node declarations.
func WithResolver(r hp.Resolver) Option {
	return func(n *Node) { n.resolver = r }
}

// WithFactories sets the factories available to the configuration.
func WithFactories(f hp.Factories) Option {
	return func(n *Node) { n.factories = f }
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(n *Node) { n.logger = l }
}

// New creates an in-memory node. config may be nil.
func New(name string, modules []*dataflow.Module, config hp.Config, opts ...Option) *Node {
	n := &Node{
		name:    name,
		modules: slices.Clone(modules),
		config:  config,
		logger:  log.GetDefaultLogger(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Node) Name() string { return n.name }
func (n *Node) Modules() []*dataflow.Module { return slices.Clone(n.modules) }
func (n *Node) Config() hp.Config { return n.config }

// Graph returns the execution graph, or nil before it is built.
func (n *Node) Graph() *dataflow.Graph {
	return n.graph
}

// Inputs returns a copy of the instantiated inputs, or nil before InstantiateInputs.
func (n *Node) Inputs() map[string]any {
	return maps.Clone(n.inputs)
}

// SetInputs replaces the instantiated inputs. Parent configurations use it to
// assign the values evaluated for a nested node.
func (n *Node) SetInputs(inputs map[string]any) {
	n.inputs = maps.Clone(inputs)
	if n.inputs == nil {
		n.inputs = make(map[string]any)
	}
}

// Snapshot returns the parameters chosen by the last InstantiateInputs.
func (n *Node) Snapshot() map[string]any {
	return maps.Clone(n.snapshot)
}

// InstantiateInputs evaluates the configuration with selections and overrides
// and stores the result as the node inputs. With snapshot set, the dotted
// snapshot of every nested parameter is merged over the values; on a key
// conflict the snapshot value wins.
func (n *Node) InstantiateInputs(ctx context.Context, selections, overrides map[string]any, snapshot bool) error {
	res, err := hp.Evaluate(ctx, n.config,
		hp.WithSelections(selections),
		hp.WithOverrides(overrides),
		hp.WithResolver(n.resolver),
		hp.WithFactories(n.factories),
		hp.WithLogger(n.logger),
	)
	if err != nil {
		return fmt.Errorf("instantiate inputs of %s: %w", n.name, err)
	}

	inputs := res.Values
	if snapshot {
		maps.Copy(inputs, res.Snapshot)
	}
	n.inputs = inputs
	n.snapshot = res.Snapshot
	n.logger.Debug("instantiated %d inputs for %s", len(inputs), n.name)
	return nil
}

// InitDriver builds the execution graph from the node modules. The builder is
// taken from the BuilderInput input when present.
func (n *Node) InitDriver() error {
	if n.inputs == nil {
		return fmt.Errorf("%w: node %s", ErrInputsNotInstantiated, n.name)
	}

	builder := dataflow.NewBuilder()
	if v, ok := n.inputs[BuilderInput]; ok && v != nil {
		b, ok := v.(*dataflow.Builder)
		if !ok {
			err := &BuildError{Node: n.name, Err: fmt.Errorf("input %q is %T, not a builder", BuilderInput, v)}
			n.logger.Error("%v", err)
			return err
		}
		builder = b
	}

	g, err := builder.WithModules(n.modules...).Build()
	if err != nil {
		n.logger.Error("failed to build graph for node %s: %v", n.name, err)
		return &BuildError{Node: n.name, Err: err}
	}
	n.graph = g
	return nil
}

func (n *Node) ensureGraph() error {
	if n.graph != nil {
		return nil
	}
	if err := n.InitDriver(); err != nil {
		n.logger.Error("failed to initialize node %s: %v", n.name, err)
		return &InitError{Node: n.name, Err: err}
	}
	return nil
}

// Execute computes finalVars. Keys of inputs that are graph configuration
// parameters are dropped; the caller's map is never modified.
func (n *Node) Execute(ctx context.Context, finalVars []string, inputs map[string]any) (map[string]any, error) {
	if err := n.ensureGraph(); err != nil {
		return nil, err
	}

	in := make(map[string]any, len(inputs))
	for k, v := range inputs {
		if !n.graph.IsConfig(k) {
			in[k] = v
		}
	}
	return n.graph.Execute(ctx, finalVars, in)
}

// NodeInputs computes the upstream arguments of the named function from the
// instantiated inputs. Local parameters are not computed.
func (n *Node) NodeInputs(ctx context.Context, function string) (map[string]any, error) {
	if err := n.ensureGraph(); err != nil {
		return nil, err
	}
	upstream, err := n.graph.Upstream(function)
	if err != nil {
		return nil, err
	}
	return n.Execute(ctx, upstream, n.inputs)
}
