package hp

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
)

const overridesAttr = "overrides"

// FormatOverrides renders values as an overrides document:
//
//	overrides = {
//	  "rag_qa.chunker" = "paragraph"
//	}
func FormatOverrides(values map[string]any) ([]byte, error) {
	if values == nil {
		values = map[string]any{}
	}
	v, ok := toCty(values)
	if !ok {
		for k, x := range values {
			if _, ok := toCty(x); !ok {
				return nil, fmt.Errorf("%w: %s is %T", ErrUnsupportedValue, k, x)
			}
		}
		return nil, ErrUnsupportedValue
	}
	f := hclwrite.NewEmptyFile()
	f.Body().SetAttributeValue(overridesAttr, v)
	return f.Bytes(), nil
}

// WriteOverrides writes values to path as an overrides document.
func WriteOverrides(path string, values map[string]any) error {
	b, err := FormatOverrides(values)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// ParseOverrides parses an overrides document. A document without an
// overrides attribute yields an empty map.
func ParseOverrides(src []byte, filename string) (map[string]any, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDocument, filename, diags)
	}
	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDocument, filename, diags)
	}

	out := make(map[string]any)
	attr, ok := attrs[overridesAttr]
	if !ok {
		return out, nil
	}
	v, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDocument, filename, diags)
	}
	gv, err := fromCty(v)
	if err != nil {
		return nil, err
	}
	m, ok := gv.(map[string]any)
	if !ok && gv != nil {
		return nil, fmt.Errorf("%w: %s: overrides must be an object", ErrInvalidDocument, filename)
	}
	for k, x := range m {
		out[k] = x
	}
	return out, nil
}

// ReadOverrides reads an overrides document from path.
func ReadOverrides(path string) (map[string]any, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseOverrides(src, path)
}
