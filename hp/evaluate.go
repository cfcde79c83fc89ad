package hp

import (
	"context"
	"maps"

	"github.com/smallnest/hypernodes/log"
)

// Result is the outcome of evaluating a configuration.
type Result struct {
	// Values are the top-level values bound by the configuration.
	Values map[string]any
	// Snapshot maps the dotted name of every parameter, nested ones included,
	// to its chosen value. Passing it back as overrides reproduces Values.
	Snapshot map[string]any
	// Params describes every parameter in evaluation order.
	Params []ParamSpec
}

type settings struct {
	selections map[string]any
	overrides  map[string]any
	resolver   Resolver
	factories  Factories
	logger     log.Logger
	dryRun     bool
}

// Option configures Evaluate.
type Option func(*settings)

// WithSelections chooses select options. Keys may be dotted to reach nested
// configurations.
func WithSelections(sel map[string]any) Option {
	return func(s *settings) { maps.Copy(s.selections, sel) }
}

// WithOverrides forces parameter values. Keys may be dotted to reach nested
// configurations.
func WithOverrides(ov map[string]any) Option {
	return func(s *settings) { maps.Copy(s.overrides, ov) }
}

// WithResolver sets the resolver used by node declarations.
func WithResolver(r Resolver) Option {
	return func(s *settings) { s.resolver = r }
}

// WithFactories sets the factories used by factory declarations.
func WithFactories(f Factories) Option {
	return func(s *settings) { s.factories = f }
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithDryRun skips factory invocation. Factory values are nil.
func WithDryRun() Option {
	return func(s *settings) { s.dryRun = true }
}

// Evaluate applies cfg and returns its values and snapshot. A nil cfg yields an
// empty result.
func Evaluate(ctx context.Context, cfg Config, opts ...Option) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	s := &settings{
		selections: make(map[string]any),
		overrides:  make(map[string]any),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.GetDefaultLogger()
	}

	h := &HP{
		ctx:        ctx,
		selections: s.selections,
		overrides:  s.overrides,
		resolver:   s.resolver,
		factories:  s.factories,
		logger:     s.logger,
		dryRun:     s.dryRun,
		values:     make(map[string]any),
		snapshot:   make(map[string]any),
	}
	values, err := h.run(cfg)
	if err != nil {
		return nil, err
	}
	return &Result{Values: values, Snapshot: h.snapshot, Params: h.params}, nil
}

// Params evaluates cfg without invoking factories and returns its parameters.
func Params(ctx context.Context, cfg Config, opts ...Option) ([]ParamSpec, error) {
	res, err := Evaluate(ctx, cfg, append(opts[:len(opts):len(opts)], WithDryRun())...)
	if err != nil {
		return nil, err
	}
	return res.Params, nil
}
