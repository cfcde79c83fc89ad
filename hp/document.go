package hp

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// Block types of a configuration document.
const (
	BlockSelect      = "select"
	BlockTextInput   = "text_input"
	BlockNumberInput = "number_input"
	BlockValue       = "value"
	BlockNode        = "node"
	BlockFactory     = "factory"
)

var blockAttrs = map[string]struct {
	required []string
	optional []string
}{
	BlockSelect:      {required: []string{"options"}, optional: []string{"default"}},
	BlockTextInput:   {optional: []string{"default"}},
	BlockNumberInput: {optional: []string{"default"}},
	BlockValue:       {required: []string{"value"}},
	BlockNode:        {required: []string{"source"}},
	BlockFactory:     {required: []string{"kind"}, optional: []string{"args"}},
}

// Document is a configuration written in HCL. Blocks are evaluated in file
// order and expressions may refer to any value bound by an earlier block.
//
//	select "chunker" {
//	  options = ["paragraph", "semantic"]
//	  default = "paragraph"
//	}
//	node "ranker" {
//	  source = "tfidf_ranker"
//	}
type Document struct {
	filename string
	src      []byte
	body     *hclsyntax.Body
}

// ParseDocument parses and validates a configuration document.
func ParseDocument(src []byte, filename string) (*Document, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDocument, filename, diags)
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not native HCL syntax", ErrInvalidDocument, filename)
	}

	if len(body.Attributes) > 0 {
		for name, attr := range body.Attributes {
			return nil, fmt.Errorf("%w: %s: unexpected top-level attribute %q", ErrInvalidDocument, attr.SrcRange, name)
		}
	}
	seen := make(map[string]bool, len(body.Blocks))
	for _, b := range body.Blocks {
		spec, ok := blockAttrs[b.Type]
		if !ok {
			return nil, fmt.Errorf("%w: %s: unknown block type %q", ErrInvalidDocument, b.DefRange(), b.Type)
		}
		if len(b.Labels) != 1 {
			return nil, fmt.Errorf("%w: %s: %s block needs exactly one name", ErrInvalidDocument, b.DefRange(), b.Type)
		}
		name := b.Labels[0]
		if !validName(name) {
			return nil, fmt.Errorf("%w: %s: %w: %q", ErrInvalidDocument, b.DefRange(), ErrInvalidName, name)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: %s: %q is declared twice", ErrInvalidDocument, b.DefRange(), name)
		}
		seen[name] = true
		if len(b.Body.Blocks) > 0 {
			return nil, fmt.Errorf("%w: %s: %s %q has nested blocks", ErrInvalidDocument, b.DefRange(), b.Type, name)
		}
		for _, req := range spec.required {
			if _, ok := b.Body.Attributes[req]; !ok {
				return nil, fmt.Errorf("%w: %s: %s %q requires %q", ErrInvalidDocument, b.DefRange(), b.Type, name, req)
			}
		}
		for attr := range b.Body.Attributes {
			if !slices.Contains(spec.required, attr) && !slices.Contains(spec.optional, attr) {
				return nil, fmt.Errorf("%w: %s: %s %q has unknown attribute %q", ErrInvalidDocument, b.DefRange(), b.Type, name, attr)
			}
		}
	}

	return &Document{filename: filename, src: slices.Clone(src), body: body}, nil
}

// LoadDocument reads and parses a configuration document from path.
func LoadDocument(path string) (*Document, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseDocument(src, path)
}

// MustParseDocument is like ParseDocument but panics on error.
func MustParseDocument(src []byte, filename string) *Document {
	d, err := ParseDocument(src, filename)
	if err != nil {
		panic(err)
	}
	return d
}

// Source returns the document text.
func (d *Document) Source() []byte {
	return slices.Clone(d.src)
}

// Filename returns the name the document was parsed with.
func (d *Document) Filename() string {
	return d.filename
}

// Save writes the document text to path.
func (d *Document) Save(path string) error {
	return os.WriteFile(path, d.src, 0o644)
}

// Names returns the declared names in file order.
func (d *Document) Names() []string {
	names := make([]string, len(d.body.Blocks))
	for i, b := range d.body.Blocks {
		names[i] = b.Labels[0]
	}
	return names
}

// Apply implements Config.
func (d *Document) Apply(h *HP) error {
	for _, b := range d.body.Blocks {
		if h.Err() != nil {
			break
		}
		if err := d.apply(h, b); err != nil {
			return err
		}
	}
	return h.Err()
}

func (d *Document) apply(h *HP, b *hclsyntax.Block) error {
	name := b.Labels[0]
	ctx := evalContext(h)
	attrs := b.Body.Attributes

	value := func(attr string) (any, error) {
		a, ok := attrs[attr]
		if !ok {
			return nil, nil
		}
		v, diags := a.Expr.Value(ctx)
		if diags.HasErrors() {
			return nil, fmt.Errorf("%s %q: %w", b.Type, name, diags)
		}
		gv, err := fromCty(v)
		if err != nil {
			return nil, fmt.Errorf("%s %q %s: %w", b.Type, name, attr, err)
		}
		return gv, nil
	}
	str := func(attr string) (string, error) {
		v, err := value(attr)
		if err != nil || v == nil {
			return "", err
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("%w: %s %q %s must be a string", ErrUnsupportedValue, b.Type, name, attr)
		}
		return s, nil
	}

	switch b.Type {
	case BlockSelect:
		def, err := value("default")
		if err != nil {
			return err
		}
		if choices, ok, err := objectChoices(attrs["options"].Expr, ctx); err != nil {
			return fmt.Errorf("select %q options: %w", name, err)
		} else if ok {
			key := ""
			if def != nil {
				key = fmt.Sprint(def)
			}
			h.SelectChoice(name, choices, key)
			return nil
		}
		opts, err := value("options")
		if err != nil {
			return err
		}
		switch o := opts.(type) {
		case []any:
			h.Select(name, o, def)
		case map[string]any:
			choices := make([]Choice, 0, len(o))
			for _, k := range sortedKeys(o) {
				choices = append(choices, Choice{Key: k, Value: o[k]})
			}
			key := ""
			if def != nil {
				key = fmt.Sprint(def)
			}
			h.SelectChoice(name, choices, key)
		default:
			return fmt.Errorf("%w: select %q options must be a list or an object", ErrUnsupportedValue, name)
		}

	case BlockTextInput:
		def, err := str("default")
		if err != nil {
			return err
		}
		h.TextInput(name, def)

	case BlockNumberInput:
		def, err := value("default")
		if err != nil {
			return err
		}
		switch n := def.(type) {
		case nil:
			h.IntInput(name, 0)
		case int:
			// 0.0 evaluates to a whole number but declares a float input
			if lit := attrs["default"].Expr.Range().SliceBytes(d.src); strings.ContainsAny(string(lit), ".eE") {
				h.NumberInput(name, float64(n))
				return nil
			}
			h.IntInput(name, n)
		case float64:
			h.NumberInput(name, n)
		default:
			return fmt.Errorf("%w: number_input %q default must be a number", ErrUnsupportedValue, name)
		}

	case BlockValue:
		v, err := value("value")
		if err != nil {
			return err
		}
		h.Set(name, v)

	case BlockNode:
		source, err := str("source")
		if err != nil {
			return err
		}
		h.Node(name, source)

	case BlockFactory:
		kind, err := str("kind")
		if err != nil {
			return err
		}
		args, err := value("args")
		if err != nil {
			return err
		}
		m, _ := args.(map[string]any)
		if args != nil && m == nil {
			return fmt.Errorf("%w: factory %q args must be an object", ErrUnsupportedValue, name)
		}
		h.Factory(name, kind, m)
	}
	return nil
}

// objectChoices reads keyed select options in source order when they are
// written as an object literal.
func objectChoices(expr hclsyntax.Expression, ctx *hcl.EvalContext) ([]Choice, bool, error) {
	obj, ok := expr.(*hclsyntax.ObjectConsExpr)
	if !ok {
		return nil, false, nil
	}
	choices := make([]Choice, 0, len(obj.Items))
	for _, item := range obj.Items {
		k, diags := item.KeyExpr.Value(ctx)
		if diags.HasErrors() {
			return nil, false, diags
		}
		if k.Type() != cty.String || k.IsNull() {
			return nil, false, fmt.Errorf("%w: option keys must be strings", ErrUnsupportedValue)
		}
		v, diags := item.ValueExpr.Value(ctx)
		if diags.HasErrors() {
			return nil, false, diags
		}
		gv, err := fromCty(v)
		if err != nil {
			return nil, false, err
		}
		choices = append(choices, Choice{Key: k.AsString(), Value: gv})
	}
	return choices, true, nil
}

var functions = map[string]function.Function{
	"coalesce":  stdlib.CoalesceFunc,
	"concat":    stdlib.ConcatFunc,
	"contains":  stdlib.ContainsFunc,
	"format":    stdlib.FormatFunc,
	"join":      stdlib.JoinFunc,
	"keys":      stdlib.KeysFunc,
	"length":    stdlib.LengthFunc,
	"lower":     stdlib.LowerFunc,
	"max":       stdlib.MaxFunc,
	"merge":     stdlib.MergeFunc,
	"min":       stdlib.MinFunc,
	"split":     stdlib.SplitFunc,
	"trimspace": stdlib.TrimSpaceFunc,
	"upper":     stdlib.UpperFunc,
}

// evalContext exposes the HCL-representable values bound so far.
func evalContext(h *HP) *hcl.EvalContext {
	vars := make(map[string]cty.Value, len(h.values))
	for name, v := range h.values {
		if cv, ok := toCty(v); ok {
			vars[name] = cv
		}
	}
	return &hcl.EvalContext{Variables: vars, Functions: functions}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// String returns the document text.
func (d *Document) String() string {
	return strings.TrimSpace(string(d.src))
}
