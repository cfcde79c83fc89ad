package hp

import (
	"context"
	"fmt"
	"maps"
	"reflect"
	"strings"

	"github.com/smallnest/hypernodes/log"
)

// Config is a configuration function. Apply declares parameters on h and
// reads back their chosen values.
type Config interface {
	Apply(h *HP) error
}

// Func adapts a Go closure to Config. Closure configurations can be evaluated
// but not saved.
type Func func(h *HP) error

// Apply implements Config.
func (f Func) Apply(h *HP) error {
	return f(h)
}

// NodeRef is a nested node bound by a configuration. The evaluator assigns the
// nested configuration's values to it with SetInputs.
type NodeRef interface {
	Name() string
	Config() Config
	SetInputs(inputs map[string]any)
}

// Resolver loads nested nodes named by a configuration.
type Resolver interface {
	Resolve(ctx context.Context, source string) (NodeRef, error)
}

// FactoryFunc builds a value from evaluated arguments.
type FactoryFunc func(ctx context.Context, args map[string]any) (any, error)

// Factories maps factory kinds to constructors.
type Factories map[string]FactoryFunc

// Choice is a keyed option of a select.
type Choice struct {
	Key   string
	Value any
}

// HP is the evaluation state handed to a Config. Primitives return the chosen
// value and record it. The first failure is kept and every later primitive
// returns its zero value, so a configuration can be written without checking
// errors after each call.
type HP struct {
	ctx        context.Context
	prefix     string
	selections map[string]any
	overrides  map[string]any
	resolver   Resolver
	factories  Factories
	logger     log.Logger
	dryRun     bool

	values   map[string]any
	snapshot map[string]any
	params   []ParamSpec
	err      error
}

// Context returns the evaluation context.
func (h *HP) Context() context.Context {
	return h.ctx
}

// Err returns the first error recorded by a primitive.
func (h *HP) Err() error {
	return h.err
}

// Value returns a value bound earlier in this configuration.
func (h *HP) Value(name string) (any, bool) {
	v, ok := h.values[name]
	return v, ok
}

// Values returns a copy of the values bound so far.
func (h *HP) Values() map[string]any {
	return maps.Clone(h.values)
}

func (h *HP) fail(err error) {
	if h.err == nil {
		h.err = err
	}
}

func (h *HP) path(name string) string {
	return h.prefix + name
}

// begin validates name and reports whether the primitive should run.
func (h *HP) begin(name string) bool {
	if h.err != nil {
		return false
	}
	if !validName(name) {
		h.fail(fmt.Errorf("%w: %q", ErrInvalidName, h.path(name)))
		return false
	}
	return true
}

func (h *HP) bind(name string, v any) {
	h.values[name] = v
}

func (h *HP) record(spec ParamSpec, v any) {
	spec.Name = h.path(spec.Name)
	spec.Value = v
	h.params = append(h.params, spec)
	h.snapshot[spec.Name] = v
}

// Select chooses one of options. A selection picks by value; an override forces
// any value. Without either the default is used, or the first option when def
// is nil.
func (h *HP) Select(name string, options []any, def any) any {
	if !h.begin(name) {
		return nil
	}
	if len(options) == 0 {
		h.fail(fmt.Errorf("%w: %s has no options", ErrInvalidSelection, h.path(name)))
		return nil
	}

	like := def
	if like == nil {
		like = options[0]
	}
	find := func(v any) (any, bool) {
		c, err := conform(v, like)
		if err != nil {
			return nil, false
		}
		for _, o := range options {
			if reflect.DeepEqual(o, c) {
				return o, true
			}
		}
		return nil, false
	}

	if def != nil {
		if _, ok := find(def); !ok {
			h.fail(fmt.Errorf("%w: default %v of %s is not an option", ErrInvalidSelection, def, h.path(name)))
			return nil
		}
	}

	var v any
	if o, ok := h.overrides[name]; ok {
		c, err := conform(o, like)
		if err != nil {
			h.fail(fmt.Errorf("%w: %s: %v", ErrUnsupportedValue, h.path(name), err))
			return nil
		}
		v = c
	} else if s, ok := h.selections[name]; ok {
		o, found := find(s)
		if !found {
			h.fail(fmt.Errorf("%w: %v is not an option of %s", ErrInvalidSelection, s, h.path(name)))
			return nil
		}
		v = o
	} else {
		v = like
	}

	h.bind(name, v)
	h.record(ParamSpec{Kind: KindSelect, Name: name, Options: options, Default: like}, v)
	return v
}

// SelectChoice chooses one of keyed options. A selection picks by key and
// resolves to the option value; an override forces the value itself.
func (h *HP) SelectChoice(name string, choices []Choice, defKey string) any {
	if !h.begin(name) {
		return nil
	}
	if len(choices) == 0 {
		h.fail(fmt.Errorf("%w: %s has no options", ErrInvalidSelection, h.path(name)))
		return nil
	}

	lookup := func(key string) (any, bool) {
		for _, c := range choices {
			if c.Key == key {
				return c.Value, true
			}
		}
		return nil, false
	}

	if defKey == "" {
		defKey = choices[0].Key
	}
	def, ok := lookup(defKey)
	if !ok {
		h.fail(fmt.Errorf("%w: default %q of %s is not an option", ErrInvalidSelection, defKey, h.path(name)))
		return nil
	}

	var v any
	if o, ok := h.overrides[name]; ok {
		v = o
	} else if s, ok := h.selections[name]; ok {
		key := fmt.Sprint(s)
		val, found := lookup(key)
		if !found {
			h.fail(fmt.Errorf("%w: %q is not an option of %s", ErrInvalidSelection, key, h.path(name)))
			return nil
		}
		v = val
	} else {
		v = def
	}

	keys := make([]any, len(choices))
	for i, c := range choices {
		keys[i] = c.Key
	}
	h.bind(name, v)
	h.record(ParamSpec{Kind: KindSelect, Name: name, Options: keys, Default: defKey}, v)
	return v
}

// TextInput returns free text, the default unless overridden.
func (h *HP) TextInput(name, def string) string {
	if !h.begin(name) {
		return ""
	}
	v := def
	if o, ok := h.overrides[name]; ok {
		c, err := conform(o, def)
		if err != nil {
			h.fail(fmt.Errorf("%w: %s: %v", ErrUnsupportedValue, h.path(name), err))
			return ""
		}
		v = c.(string)
	}
	h.bind(name, v)
	h.record(ParamSpec{Kind: KindText, Name: name, Default: def}, v)
	return v
}

// NumberInput returns a float, the default unless overridden.
func (h *HP) NumberInput(name string, def float64) float64 {
	if !h.begin(name) {
		return 0
	}
	v := def
	if o, ok := h.overrides[name]; ok {
		c, err := conform(o, def)
		if err != nil {
			h.fail(fmt.Errorf("%w: %s: %v", ErrUnsupportedValue, h.path(name), err))
			return 0
		}
		v = c.(float64)
	}
	h.bind(name, v)
	h.record(ParamSpec{Kind: KindNumber, Name: name, Default: def}, v)
	return v
}

// IntInput returns an integer, the default unless overridden.
func (h *HP) IntInput(name string, def int) int {
	if !h.begin(name) {
		return 0
	}
	v := def
	if o, ok := h.overrides[name]; ok {
		c, err := conform(o, def)
		if err != nil {
			h.fail(fmt.Errorf("%w: %s: %v", ErrUnsupportedValue, h.path(name), err))
			return 0
		}
		v = c.(int)
	}
	h.bind(name, v)
	h.record(ParamSpec{Kind: KindInt, Name: name, Default: def}, v)
	return v
}

// Set binds a computed value. It is not a parameter and is left out of the
// snapshot, but an override still replaces it.
func (h *HP) Set(name string, v any) any {
	if !h.begin(name) {
		return nil
	}
	if o, ok := h.overrides[name]; ok {
		v = o
	}
	h.bind(name, v)
	return v
}

// Propagate evaluates a nested configuration under the name prefix and binds
// its values as a map.
func (h *HP) Propagate(name string, cfg Config) map[string]any {
	if !h.begin(name) {
		return nil
	}
	values, err := h.nest(name, cfg)
	if err != nil {
		h.fail(err)
		return nil
	}
	h.bind(name, values)
	return values
}

// Node resolves source to a nested node, evaluates its configuration under the
// name prefix, assigns the resulting values as the node's inputs and binds the
// node itself. Every call resolves a fresh node.
func (h *HP) Node(name, source string) NodeRef {
	if !h.begin(name) {
		return nil
	}
	if o, ok := h.overrides[name]; ok {
		ref, isRef := o.(NodeRef)
		if !isRef {
			h.fail(fmt.Errorf("%w: %s: %T is not a node", ErrUnsupportedValue, h.path(name), o))
			return nil
		}
		h.bind(name, ref)
		return ref
	}
	if h.resolver == nil {
		h.fail(fmt.Errorf("%w: %s", ErrNoResolver, h.path(name)))
		return nil
	}

	ref, err := h.resolver.Resolve(h.ctx, source)
	if err != nil {
		h.fail(fmt.Errorf("resolve %s (%s): %w", h.path(name), source, err))
		return nil
	}
	values, err := h.nest(name, ref.Config())
	if err != nil {
		h.fail(err)
		return nil
	}
	ref.SetInputs(values)
	h.logger.Debug("bound node %s to %s", h.path(name), ref.Name())

	h.bind(name, ref)
	return ref
}

// Factory builds a value with the factory registered for kind. During a dry
// run factories are not invoked and the value is nil.
func (h *HP) Factory(name, kind string, args map[string]any) any {
	if !h.begin(name) {
		return nil
	}
	if o, ok := h.overrides[name]; ok {
		h.bind(name, o)
		return o
	}
	if h.dryRun {
		h.bind(name, nil)
		return nil
	}
	fn, ok := h.factories[kind]
	if !ok {
		h.fail(fmt.Errorf("%w: %q for %s", ErrUnknownFactory, kind, h.path(name)))
		return nil
	}

	v, err := fn(h.ctx, maps.Clone(args))
	if err != nil {
		h.fail(fmt.Errorf("factory %s for %s: %w", kind, h.path(name), err))
		return nil
	}
	h.bind(name, v)
	return v
}

func (h *HP) child(name string) *HP {
	return &HP{
		ctx:        h.ctx,
		prefix:     h.path(name) + ".",
		selections: scoped(h.selections, name),
		overrides:  scoped(h.overrides, name),
		resolver:   h.resolver,
		factories:  h.factories,
		logger:     h.logger,
		dryRun:     h.dryRun,
		values:     make(map[string]any),
		snapshot:   h.snapshot,
	}
}

// nest evaluates cfg under the name prefix. The snapshot map is shared with
// the child; its params are appended after the parent's.
func (h *HP) nest(name string, cfg Config) (map[string]any, error) {
	c := h.child(name)
	values, err := c.run(cfg)
	h.params = append(h.params, c.params...)
	return values, err
}

func (h *HP) run(cfg Config) (map[string]any, error) {
	if cfg != nil {
		if err := cfg.Apply(h); err != nil {
			h.fail(err)
		}
	}
	if h.err != nil {
		return nil, h.err
	}
	return h.values, nil
}

// scoped returns the entries of m under "name." with the prefix removed.
func scoped(m map[string]any, name string) map[string]any {
	out := make(map[string]any)
	prefix := name + "."
	for k, v := range m {
		if rest, ok := strings.CutPrefix(k, prefix); ok {
			out[rest] = v
		}
	}
	return out
}

func validName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
