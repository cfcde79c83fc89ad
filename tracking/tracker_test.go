package tracking_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/hypernodes/dataflow"
	"github.com/smallnest/hypernodes/tracking"
	"github.com/smallnest/hypernodes/tracking/memory"
)

func qaModule() *dataflow.Module {
	return dataflow.NewModule("qa",
		dataflow.MustFunc("answer", func(query string) string {
			if query == "" {
				return ""
			}
			return "Paris"
		}, "query"),
		dataflow.MustFunc("correct", func(answer, expected string) bool { return answer == expected }, "answer", "expected"),
		dataflow.MustFunc("score", func(correct bool) float64 {
			if correct {
				return 1
			}
			return 0
		}, "correct"),
	)
}

type failingStore struct {
	tracking.Store
}

func (failingStore) Save(context.Context, *tracking.Run) error { return errors.New("disk full") }

func TestTrackerRecordsRun(t *testing.T) {
	store := memory.NewMemoryRunStore()
	tracker := tracking.NewTracker(store, "exp", tracking.WithNodeName("qa_node"))
	assert.Equal(t, "exp", tracker.Experiment())
	assert.Same(t, store, tracker.Store())

	g, err := dataflow.NewBuilder().WithModules(qaModule()).WithAdapters(tracker).Build()
	require.NoError(t, err)

	inputs := map[string]any{
		"query":    "capital of France",
		"expected": "Paris",
		"ignored":  []string{"not", "scalar"},
	}
	_, err = g.Execute(context.Background(), []string{"score"}, inputs)
	require.NoError(t, err)

	runs, err := store.List(context.Background(), "exp")
	require.NoError(t, err)
	require.Len(t, runs, 1)

	run := runs[0]
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "qa_node", run.Node)
	assert.Equal(t, []string{"score"}, run.FinalVars)
	assert.Equal(t, tracking.StatusFinished, run.Status)
	assert.Equal(t, map[string]any{"query": "capital of France", "expected": "Paris"}, run.Params)
	assert.Equal(t, map[string]float64{"score": 1}, run.Metrics)
	assert.Equal(t, map[string]string{"answer": "Paris", "correct": "true"}, run.Outputs)
	assert.False(t, run.EndedAt.IsZero())
	assert.GreaterOrEqual(t, run.Duration().Nanoseconds(), int64(0))
}

func TestTrackerRecordsFailure(t *testing.T) {
	store := memory.NewMemoryRunStore()
	tracker := tracking.NewTracker(store, "exp")

	m := dataflow.NewModule("m",
		dataflow.MustFunc("boom", func(x int) (int, error) { return 0, errors.New("exploded") }, "x"),
	)
	g, err := dataflow.NewBuilder().WithModules(m).WithAdapters(tracker).Build()
	require.NoError(t, err)

	_, err = g.Execute(context.Background(), []string{"boom"}, map[string]any{"x": 1})
	require.Error(t, err)

	runs, err := store.List(context.Background(), "exp")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, tracking.StatusFailed, runs[0].Status)
	assert.Contains(t, runs[0].Error, "exploded")
	assert.Empty(t, runs[0].Metrics)
}

func TestTrackerStoreFailureDoesNotFailRun(t *testing.T) {
	tracker := tracking.NewTracker(failingStore{}, "exp")

	m := dataflow.NewModule("m",
		dataflow.MustFunc("y", func(x int) int { return x + 1 }, "x"),
	)
	g, err := dataflow.NewBuilder().WithModules(m).WithAdapters(tracker).Build()
	require.NoError(t, err)

	out, err := g.Execute(context.Background(), []string{"y"}, map[string]any{"x": 1})
	require.NoError(t, err)
	assert.Equal(t, 2, out["y"])
}
