package hypernode

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/hypernodes/dataflow"
	"github.com/smallnest/hypernodes/hp"
)

func TestPredictor(t *testing.T) {
	ctx := context.Background()
	n := New("scale", []*dataflow.Module{scaleModule(), offsetModule()}, hp.MustParseDocument([]byte(scaleDocument), "scale.hcl"))

	p := NewPredictor(n, []string{"shifted"}, map[string]any{"factor": 2})
	got, err := p.Predict(ctx, map[string]any{"value": 7})
	require.NoError(t, err)
	assert.Equal(t, 15, got)

	require.NoError(t, p.LoadContext(ctx, map[string]any{"factor": 5}))
	got, err = p.Predict(ctx, map[string]any{"value": 1})
	require.NoError(t, err)
	assert.Equal(t, 6, got)
	assert.Equal(t, 2, n.Inputs()["value"])
}

func TestPredictorMultipleVars(t *testing.T) {
	n := New("scale", []*dataflow.Module{scaleModule(), offsetModule()}, hp.MustParseDocument([]byte(scaleDocument), "scale.hcl"))
	p := NewPredictor(n, []string{"scaled", "shifted"}, nil)

	got, err := p.Predict(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"scaled": 6, "shifted": 7}, got)
}
