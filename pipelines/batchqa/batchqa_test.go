package batchqa

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/hypernodes/dataflow"
	"github.com/smallnest/hypernodes/log"
	"github.com/smallnest/hypernodes/tracking"
	"github.com/smallnest/hypernodes/tracking/memory"
)

// capitalNode answers from a fixed table and records the inputs it saw.
type capitalNode struct {
	inputs map[string]any
	seen   []map[string]any
	fail   bool
}

func (n *capitalNode) Inputs() map[string]any {
	out := make(map[string]any, len(n.inputs))
	for k, v := range n.inputs {
		out[k] = v
	}
	return out
}

func (n *capitalNode) Execute(_ context.Context, _ []string, inputs map[string]any) (map[string]any, error) {
	if n.fail {
		return nil, errors.New("model unavailable")
	}
	n.seen = append(n.seen, inputs)
	answer := "unknown"
	q := inputs["query"].(string)
	switch {
	case strings.Contains(q, "France"):
		answer = "Paris"
	case strings.Contains(q, "Germany"):
		answer = "Berlin"
	}
	return map[string]any{"llm_response": answer}, nil
}

func TestParseQueries(t *testing.T) {
	src := "Answer, Question\nParis,What is the capital of France?\n\"Rome, Italy\",\"Capital of Italy, in full?\"\n"
	qs, err := parseQueries(strings.NewReader(src), "qa.csv")
	require.NoError(t, err)
	assert.Equal(t, []QA{
		{Question: "What is the capital of France?", Answer: "Paris"},
		{Question: "Capital of Italy, in full?", Answer: "Rome, Italy"},
	}, qs)

	_, err = parseQueries(strings.NewReader("q,a\nx,y\n"), "qa.csv")
	assert.Error(t, err)

	_, err = parseQueries(strings.NewReader(""), "qa.csv")
	assert.Error(t, err)

	_, err = ReadQueries(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestAccuracy(t *testing.T) {
	acc, err := Accuracy([]string{"paris", " Berlin ", "Madrid"}, []string{"Paris", "berlin", "Rome"})
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, acc, 1e-9)

	_, err = Accuracy([]string{"a"}, []string{"a", "b"})
	assert.Error(t, err)

	_, err = Accuracy(nil, nil)
	assert.ErrorIs(t, err, ErrNoQueries)
}

func TestLLMResponses(t *testing.T) {
	node := &capitalNode{inputs: map[string]any{"query": "default", "chunker": "paragraph"}}

	out, err := llmResponses(context.Background(), []string{"Capital of France?", "Capital of Germany?"}, "data/raw", node)
	require.NoError(t, err)
	assert.Equal(t, []string{"Paris", "Berlin"}, out)

	require.Len(t, node.seen, 2)
	assert.Equal(t, "Capital of Germany?", node.seen[1]["query"])
	assert.Equal(t, "data/raw", node.seen[1]["texts_path"])
	assert.Equal(t, "paragraph", node.seen[1]["chunker"])
	// The node's own inputs are untouched
	assert.Equal(t, "default", node.inputs["query"])

	_, err = llmResponses(context.Background(), []string{"q"}, "data/raw", &capitalNode{fail: true})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "question 1")

	_, err = llmResponses(context.Background(), []string{"q"}, "data/raw", nil)
	assert.Error(t, err)
}

func TestModuleExecution(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qa.csv")
	require.NoError(t, os.WriteFile(path, []byte("question,answer\nCapital of France?,paris\nCapital of Germany?,Bonn\n"), 0o644))

	store := memory.NewMemoryRunStore()
	b, err := BuilderFactory(store, &log.NoOpLogger{})(context.Background(), map[string]any{
		"tracking":   true,
		"experiment": "capitals",
		"node":       Name,
	})
	require.NoError(t, err)

	g, err := b.(*dataflow.Builder).WithModules(Module()).Build()
	require.NoError(t, err)

	out, err := g.Execute(context.Background(), []string{"accuracy"}, map[string]any{
		"queries_path": path,
		"texts_path":   "data/raw",
		"rag_qa":       &capitalNode{},
	})
	require.NoError(t, err)
	assert.Equal(t, 0.5, out["accuracy"])

	runs, err := store.List(context.Background(), "capitals")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, Name, runs[0].Node)
	assert.Equal(t, 0.5, runs[0].Metrics["accuracy"])
	assert.Equal(t, path, runs[0].Params["queries_path"])
}

func TestBuilderFactory(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemoryRunStore()

	b, err := BuilderFactory(store, nil)(ctx, map[string]any{"tracking": false})
	require.NoError(t, err)
	assert.Empty(t, b.(*dataflow.Builder).Adapters())

	b, err = BuilderFactory(store, nil)(ctx, map[string]any{"tracking": true})
	require.NoError(t, err)
	adapters := b.(*dataflow.Builder).Adapters()
	require.Len(t, adapters, 1)
	tracker, ok := adapters[0].(*tracking.Tracker)
	require.True(t, ok)
	assert.Equal(t, "default", tracker.Experiment())

	b, err = BuilderFactory(nil, &log.NoOpLogger{})(ctx, map[string]any{"tracking": true})
	require.NoError(t, err)
	assert.Empty(t, b.(*dataflow.Builder).Adapters())

	_, err = BuilderFactory(store, nil)(ctx, map[string]any{"tracking": "perhaps"})
	assert.Error(t, err)
}
