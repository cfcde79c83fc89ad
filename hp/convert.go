package hp

import (
	"fmt"
	"math/big"

	"github.com/spf13/cast"
	"github.com/zclconf/go-cty/cty"
)

// conform converts v to the dynamic type of like. Values of other types pass
// through unchanged.
func conform(v, like any) (any, error) {
	switch like.(type) {
	case string:
		return cast.ToStringE(v)
	case int:
		return cast.ToIntE(v)
	case int64:
		return cast.ToInt64E(v)
	case float64:
		return cast.ToFloat64E(v)
	case bool:
		return cast.ToBoolE(v)
	}
	return v, nil
}

// fromCty converts an HCL value to plain Go values. Whole numbers become int.
func fromCty(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsWhollyKnown() {
		return nil, fmt.Errorf("%w: value is not known", ErrUnsupportedValue)
	}

	t := v.Type()
	switch {
	case t == cty.String:
		return v.AsString(), nil
	case t == cty.Bool:
		return v.True(), nil
	case t == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return int(i), nil
			}
		}
		f, _ := bf.Float64()
		return f, nil
	case t.IsListType() || t.IsTupleType() || t.IsSetType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			gv, err := fromCty(ev)
			if err != nil {
				return nil, err
			}
			out = append(out, gv)
		}
		return out, nil
	case t.IsMapType() || t.IsObjectType():
		out := make(map[string]any, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			gv, err := fromCty(ev)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = gv
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedValue, t.FriendlyName())
}

// toCty converts plain Go values to HCL values. ok is false for values HCL
// cannot represent, such as nodes or clients.
func toCty(v any) (cty.Value, bool) {
	switch x := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), true
	case string:
		return cty.StringVal(x), true
	case bool:
		return cty.BoolVal(x), true
	case int:
		return cty.NumberIntVal(int64(x)), true
	case int64:
		return cty.NumberIntVal(x), true
	case float64:
		return cty.NumberFloatVal(x), true
	case []string:
		vals := make([]any, len(x))
		for i, s := range x {
			vals[i] = s
		}
		return toCty(vals)
	case []any:
		if len(x) == 0 {
			return cty.EmptyTupleVal, true
		}
		elems := make([]cty.Value, len(x))
		for i, e := range x {
			ev, ok := toCty(e)
			if !ok {
				return cty.NilVal, false
			}
			elems[i] = ev
		}
		return cty.TupleVal(elems), true
	case map[string]any:
		if len(x) == 0 {
			return cty.EmptyObjectVal, true
		}
		attrs := make(map[string]cty.Value, len(x))
		for k, e := range x {
			ev, ok := toCty(e)
			if !ok {
				return cty.NilVal, false
			}
			attrs[k] = ev
		}
		return cty.ObjectVal(attrs), true
	}
	return cty.NilVal, false
}
