package dataflow

import (
	"context"
	"fmt"
	"reflect"
	"slices"

	"github.com/spf13/cast"
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// Param is a named, typed function parameter. The name is what the graph
// resolves: it either names another function or an external input.
type Param struct {
	Name  string
	Type  reflect.Type
	Local bool
}

// Func is a named Go function whose parameter names declare its dependencies.
type Func struct {
	Name    string
	Params  []Param
	Returns reflect.Type

	fn         reflect.Value
	takesCtx   bool
	returnsErr bool
}

// NewFunc wraps fn as a dataflow function. params names every argument of fn in
// order, excluding an optional leading context.Context. fn must return a value,
// optionally followed by an error.
func NewFunc(name string, fn any, params ...string) (*Func, error) {
	if !validName(name) {
		return nil, fmt.Errorf("%w: invalid name %q", ErrInvalidFunc, name)
	}

	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return nil, fmt.Errorf("%w: %s is %T, not a function", ErrInvalidFunc, name, fn)
	}
	t := v.Type()
	if t.IsVariadic() {
		return nil, fmt.Errorf("%w: %s is variadic", ErrInvalidFunc, name)
	}

	f := &Func{Name: name, fn: v}

	offset := 0
	if t.NumIn() > 0 && t.In(0) == contextType {
		f.takesCtx = true
		offset = 1
	}
	if t.NumIn()-offset != len(params) {
		return nil, fmt.Errorf("%w: %s has %d arguments but %d parameter names", ErrInvalidFunc, name, t.NumIn()-offset, len(params))
	}

	switch t.NumOut() {
	case 1:
		if t.Out(0) == errorType {
			return nil, fmt.Errorf("%w: %s returns only an error", ErrInvalidFunc, name)
		}
	case 2:
		if t.Out(1) != errorType {
			return nil, fmt.Errorf("%w: %s second result must be error", ErrInvalidFunc, name)
		}
		f.returnsErr = true
	default:
		return nil, fmt.Errorf("%w: %s must return (T) or (T, error)", ErrInvalidFunc, name)
	}
	f.Returns = t.Out(0)

	seen := make(map[string]bool, len(params))
	for i, p := range params {
		if !validName(p) {
			return nil, fmt.Errorf("%w: %s parameter %q", ErrInvalidFunc, name, p)
		}
		if seen[p] {
			return nil, fmt.Errorf("%w: %s repeats parameter %q", ErrInvalidFunc, name, p)
		}
		seen[p] = true
		f.Params = append(f.Params, Param{Name: p, Type: t.In(i + offset)})
	}

	return f, nil
}

// MustFunc is like NewFunc but panics on error. It is meant for package-level
// module declarations.
func MustFunc(name string, fn any, params ...string) *Func {
	f, err := NewFunc(name, fn, params...)
	if err != nil {
		panic(err)
	}
	return f
}

// WithLocal declares parameters that belong to the function itself rather than
// to upstream computation. They are left out of Graph.Upstream.
func (f *Func) WithLocal(names ...string) *Func {
	for _, n := range names {
		i := f.paramIndex(n)
		if i < 0 {
			panic(fmt.Sprintf("dataflow: %s has no parameter %q", f.Name, n))
		}
		f.Params[i].Local = true
	}
	return f
}

// ParamNames returns the parameter names in declaration order.
func (f *Func) ParamNames() []string {
	names := make([]string, len(f.Params))
	for i, p := range f.Params {
		names[i] = p.Name
	}
	return names
}

func (f *Func) paramIndex(name string) int {
	return slices.IndexFunc(f.Params, func(p Param) bool { return p.Name == name })
}

// Call invokes the function with arguments looked up by parameter name.
// Values are converted to the parameter types where a lossless or numeric
// conversion exists. Panics are returned as ErrPanic.
func (f *Func) Call(ctx context.Context, args map[string]any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: %s: %v", ErrPanic, f.Name, r)
		}
	}()

	in := make([]reflect.Value, 0, len(f.Params)+1)
	if f.takesCtx {
		if ctx == nil {
			ctx = context.Background()
		}
		in = append(in, reflect.ValueOf(ctx))
	}
	for _, p := range f.Params {
		v, err := coerce(args[p.Name], p.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: %s(%s): %v", ErrArgumentType, f.Name, p.Name, err)
		}
		in = append(in, v)
	}

	out := f.fn.Call(in)
	if f.returnsErr {
		if e, _ := out[1].Interface().(error); e != nil {
			return nil, e
		}
	}
	return out[0].Interface(), nil
}

// Signature describes a function for persistence and comparison.
type Signature struct {
	Name    string
	Params  []string
	Types   []string
	Local   []string
	Returns string
}

// Signature returns the persisted shape of the function. Only explicitly
// declared local parameters are part of it.
func (f *Func) Signature() Signature {
	s := Signature{
		Name:    f.Name,
		Params:  make([]string, len(f.Params)),
		Types:   make([]string, len(f.Params)),
		Local:   []string{},
		Returns: f.Returns.String(),
	}
	for i, p := range f.Params {
		s.Params[i] = p.Name
		s.Types[i] = p.Type.String()
		if p.Local {
			s.Local = append(s.Local, p.Name)
		}
	}
	return s
}

// Equal reports whether two signatures describe the same function shape.
func (s Signature) Equal(o Signature) bool {
	return s.Name == o.Name &&
		s.Returns == o.Returns &&
		slices.Equal(s.Params, o.Params) &&
		slices.Equal(s.Types, o.Types) &&
		slices.Equal(s.Local, o.Local)
}

func (s Signature) String() string {
	return fmt.Sprintf("%s(%v %v) %s", s.Name, s.Params, s.Types, s.Returns)
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

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// coerce converts v to a reflect.Value of type t.
func coerce(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}

	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}

	if isNumericKind(rv.Kind()) && isNumericKind(t.Kind()) {
		return rv.Convert(t), nil
	}

	switch t.Kind() {
	case reflect.String:
		s, err := cast.ToStringE(v)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(s).Convert(t), nil
	case reflect.Bool:
		b, err := cast.ToBoolE(v)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(b).Convert(t), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := cast.ToInt64E(v)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(n).Convert(t), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := cast.ToUint64E(v)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(n).Convert(t), nil
	case reflect.Float32, reflect.Float64:
		n, err := cast.ToFloat64E(v)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(n).Convert(t), nil
	case reflect.Slice:
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			break
		}
		out := reflect.MakeSlice(t, rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			ev, err := coerce(rv.Index(i).Interface(), t.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			out.Index(i).Set(ev)
		}
		return out, nil
	case reflect.Map:
		if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String || t.Key().Kind() != reflect.String {
			break
		}
		out := reflect.MakeMapWithSize(t, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			ev, err := coerce(iter.Value().Interface(), t.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("key %q: %w", iter.Key().String(), err)
			}
			out.SetMapIndex(reflect.ValueOf(iter.Key().String()).Convert(t.Key()), ev)
		}
		return out, nil
	}

	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", v, t)
}
