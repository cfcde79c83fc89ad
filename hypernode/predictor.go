package hypernode

import (
	"context"
	"maps"
	"slices"
)

// Predictor serves a node as a prediction function: inputs are instantiated
// once from fixed overrides and artifacts, and each prediction runs the graph
// with request values merged over them.
type Predictor struct {
	node      *Node
	finalVars []string
	overrides map[string]any
	loaded    bool
}

// NewPredictor creates a predictor computing finalVars.
func NewPredictor(node *Node, finalVars []string, overrides map[string]any) *Predictor {
	return &Predictor{
		node:      node,
		finalVars: slices.Clone(finalVars),
		overrides: maps.Clone(overrides),
	}
}

// LoadContext instantiates the node inputs with the predictor overrides and
// artifacts. Artifacts win over overrides with the same name.
func (p *Predictor) LoadContext(ctx context.Context, artifacts map[string]any) error {
	overrides := maps.Clone(p.overrides)
	if overrides == nil {
		overrides = make(map[string]any, len(artifacts))
	}
	maps.Copy(overrides, artifacts)

	if err := p.node.InstantiateInputs(ctx, nil, overrides, false); err != nil {
		return err
	}
	p.loaded = true
	return nil
}

// Predict runs the node with input merged over the instantiated inputs. With a
// single final variable its value is returned directly, otherwise the result
// map.
func (p *Predictor) Predict(ctx context.Context, input map[string]any) (any, error) {
	if !p.loaded {
		if err := p.LoadContext(ctx, nil); err != nil {
			return nil, err
		}
	}

	inputs := p.node.Inputs()
	maps.Copy(inputs, input)

	results, err := p.node.Execute(ctx, p.finalVars, inputs)
	if err != nil {
		return nil, err
	}
	if len(p.finalVars) == 1 {
		return results[p.finalVars[0]], nil
	}
	return results, nil
}
