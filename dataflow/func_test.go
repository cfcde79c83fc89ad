package dataflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFunc(t *testing.T) {
	t.Run("plain function", func(t *testing.T) {
		f, err := NewFunc("y", func(x int) int { return x + 1 }, "x")
		require.NoError(t, err)
		assert.Equal(t, []string{"x"}, f.ParamNames())
		assert.Equal(t, "int", f.Returns.String())
	})

	t.Run("context and error", func(t *testing.T) {
		f, err := NewFunc("y", func(ctx context.Context, x string) (string, error) { return x, nil }, "x")
		require.NoError(t, err)
		assert.True(t, f.takesCtx)
		assert.True(t, f.returnsErr)
	})

	tests := []struct {
		name   string
		fnName string
		fn     any
		params []string
	}{
		{"not a function", "y", 42, nil},
		{"nil function", "y", (func(int) int)(nil), []string{"x"}},
		{"param count", "y", func(a, b int) int { return a }, []string{"a"}},
		{"no result", "y", func(a int) {}, []string{"a"}},
		{"only error", "y", func(a int) error { return nil }, []string{"a"}},
		{"second result not error", "y", func(a int) (int, int) { return a, a }, []string{"a"}},
		{"variadic", "y", func(a ...int) int { return 0 }, []string{"a"}},
		{"bad name", "1y", func(a int) int { return a }, []string{"a"}},
		{"bad param", "y", func(a int) int { return a }, []string{"a-b"}},
		{"repeated param", "y", func(a, b int) int { return a }, []string{"a", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFunc(tt.fnName, tt.fn, tt.params...)
			assert.ErrorIs(t, err, ErrInvalidFunc)
		})
	}
}

func TestMustFuncPanics(t *testing.T) {
	assert.Panics(t, func() { MustFunc("y", 1) })
}

func TestWithLocal(t *testing.T) {
	f := MustFunc("llm_response", func(p string, c map[string]any) string { return p }, "prompt", "config").WithLocal("config")
	assert.False(t, f.Params[0].Local)
	assert.True(t, f.Params[1].Local)
	assert.Equal(t, []string{"config"}, f.Signature().Local)

	assert.Panics(t, func() { f.WithLocal("missing") })
}

func TestCall(t *testing.T) {
	ctx := context.Background()

	t.Run("coerces numbers and slices", func(t *testing.T) {
		f := MustFunc("sum", func(xs []float64, k int) float64 {
			total := 0.0
			for _, x := range xs[:k] {
				total += x
			}
			return total
		}, "xs", "k")

		out, err := f.Call(ctx, map[string]any{"xs": []any{1, 2.5, "3"}, "k": 3.0})
		require.NoError(t, err)
		assert.Equal(t, 6.5, out)
	})

	t.Run("string conversion", func(t *testing.T) {
		f := MustFunc("n", func(k int) int { return k }, "k")
		out, err := f.Call(ctx, map[string]any{"k": "20"})
		require.NoError(t, err)
		assert.Equal(t, 20, out)
	})

	t.Run("maps", func(t *testing.T) {
		f := MustFunc("cfg", func(c map[string]float64) float64 { return c["temperature"] }, "c")
		out, err := f.Call(ctx, map[string]any{"c": map[string]any{"temperature": 0.5}})
		require.NoError(t, err)
		assert.Equal(t, 0.5, out)
	})

	t.Run("nil is zero value", func(t *testing.T) {
		f := MustFunc("n", func(s []string) int { return len(s) }, "s")
		out, err := f.Call(ctx, map[string]any{})
		require.NoError(t, err)
		assert.Equal(t, 0, out)
	})

	t.Run("argument type", func(t *testing.T) {
		f := MustFunc("n", func(k int) int { return k }, "k")
		_, err := f.Call(ctx, map[string]any{"k": struct{}{}})
		assert.ErrorIs(t, err, ErrArgumentType)
	})

	t.Run("returned error", func(t *testing.T) {
		boom := errors.New("boom")
		f := MustFunc("n", func(k int) (int, error) { return 0, boom }, "k")
		_, err := f.Call(ctx, map[string]any{"k": 1})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("panic is recovered", func(t *testing.T) {
		f := MustFunc("n", func(k []int) int { return k[3] }, "k")
		_, err := f.Call(ctx, map[string]any{"k": []int{1}})
		assert.ErrorIs(t, err, ErrPanic)
	})

	t.Run("context is passed", func(t *testing.T) {
		type key struct{}
		f := MustFunc("v", func(ctx context.Context) string { return ctx.Value(key{}).(string) })
		out, err := f.Call(context.WithValue(ctx, key{}, "hello"), nil)
		require.NoError(t, err)
		assert.Equal(t, "hello", out)
	})
}

func TestSignatureEqual(t *testing.T) {
	a := MustFunc("top_k_chunks", func(c []string, s []float64, k int) []string { return c }, "text_chunks", "similarities", "top_k")
	b := MustFunc("top_k_chunks", func(c []string, s []float64, k int) []string { return nil }, "text_chunks", "similarities", "top_k")
	c := MustFunc("top_k_chunks", func(c []string, s []float64, k float64) []string { return c }, "text_chunks", "similarities", "top_k")

	assert.True(t, a.Signature().Equal(b.Signature()))
	assert.False(t, a.Signature().Equal(c.Signature()))
	assert.Equal(t, []string{"[]string", "[]float64", "int"}, a.Signature().Types)
}
