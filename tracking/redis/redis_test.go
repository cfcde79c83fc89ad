package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/hypernodes/tracking"
)

func newRun(id, experiment string, started time.Time) *tracking.Run {
	return &tracking.Run{
		ID:         id,
		Experiment: experiment,
		Node:       "batch_qa",
		FinalVars:  []string{"accuracy"},
		Params:     map[string]any{"queries_path": "data/qa.csv"},
		Metrics:    map[string]float64{"accuracy": 0.75},
		Outputs:    map[string]string{},
		Status:     tracking.StatusFinished,
		StartedAt:  started,
		EndedAt:    started.Add(time.Second),
	}
}

func TestRedisRunStore(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	store := NewRedisRunStore(RedisOptions{
		Addr: mr.Addr(),
	})
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, store.Save(ctx, newRun("run-2", "exp", base.Add(time.Minute))))
	require.NoError(t, store.Save(ctx, newRun("run-1", "exp", base)))

	assert.True(t, mr.Exists("hypernodes:run:run-1"))
	members, err := mr.Members("hypernodes:experiment:exp:runs")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"run-1", "run-2"}, members)

	loaded, err := store.Load(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "batch_qa", loaded.Node)
	assert.Equal(t, 0.75, loaded.Metrics["accuracy"])
	assert.Equal(t, "data/qa.csv", loaded.Params["queries_path"])

	runs, err := store.List(ctx, "exp")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-1", runs[0].ID)
	assert.Equal(t, "run-2", runs[1].ID)

	require.NoError(t, store.Delete(ctx, "run-1"))
	_, err = store.Load(ctx, "run-1")
	assert.ErrorIs(t, err, tracking.ErrRunNotFound)
	members, err = mr.Members("hypernodes:experiment:exp:runs")
	require.NoError(t, err)
	assert.Equal(t, []string{"run-2"}, members)

	// Deleting an unknown run is a no-op
	assert.NoError(t, store.Delete(ctx, "run-1"))

	require.NoError(t, store.Clear(ctx, "exp"))
	runs, err = store.List(ctx, "exp")
	require.NoError(t, err)
	assert.Empty(t, runs)
	assert.False(t, mr.Exists("hypernodes:experiment:exp:runs"))
}

func TestRedisRunStore_TTL(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	store := NewRedisRunStore(RedisOptions{
		Addr:   mr.Addr(),
		Prefix: "test:",
		TTL:    time.Hour,
	})
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, newRun("run-1", "exp", time.Now())))

	assert.Equal(t, time.Hour, mr.TTL("test:run:run-1"))
	assert.Equal(t, time.Hour, mr.TTL("test:experiment:exp:runs"))

	mr.FastForward(2 * time.Hour)

	runs, err := store.List(ctx, "exp")
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestRedisRunStore_ListSkipsExpiredRuns(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	store := NewRedisRunStore(RedisOptions{Addr: mr.Addr()})
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, newRun("run-1", "exp", time.Now())))
	require.NoError(t, store.Save(ctx, newRun("run-2", "exp", time.Now())))
	mr.Del("hypernodes:run:run-1")

	runs, err := store.List(ctx, "exp")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-2", runs[0].ID)
}
