package tracking

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/smallnest/hypernodes/dataflow"
	"github.com/smallnest/hypernodes/log"
)

// Tracker records graph executions in a Store. It is a dataflow.Adapter:
// scalar inputs become params, numeric function results become metrics,
// string and bool results become outputs.
type Tracker struct {
	store      Store
	experiment string
	node       string
	logger     log.Logger

	mu   sync.Mutex
	runs map[string]*Run
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithNodeName sets the node name recorded on every run.
func WithNodeName(name string) TrackerOption {
	return func(t *Tracker) { t.node = name }
}

// WithTrackerLogger sets the logger used to report store failures.
func WithTrackerLogger(l log.Logger) TrackerOption {
	return func(t *Tracker) { t.logger = l }
}

// NewTracker creates a tracker recording runs under experiment.
func NewTracker(store Store, experiment string, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		store:      store,
		experiment: experiment,
		logger:     log.GetDefaultLogger(),
		runs:       make(map[string]*Run),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Experiment returns the experiment name.
func (t *Tracker) Experiment() string {
	return t.experiment
}

// Store returns the underlying store.
func (t *Tracker) Store() Store {
	return t.store
}

func (t *Tracker) OnRunStart(_ context.Context, run *dataflow.Run) {
	r := &Run{
		ID:         run.ID,
		Experiment: t.experiment,
		Node:       t.node,
		FinalVars:  run.FinalVars,
		Params:     make(map[string]any),
		Metrics:    make(map[string]float64),
		Outputs:    make(map[string]string),
		Status:     StatusRunning,
		StartedAt:  run.StartedAt,
	}
	for k, v := range run.Inputs {
		if s, ok := scalar(v); ok {
			r.Params[k] = s
		}
	}

	t.mu.Lock()
	t.runs[run.ID] = r
	t.mu.Unlock()
}

func (t *Tracker) OnNodeStart(context.Context, *dataflow.Run, string, map[string]any) {}

func (t *Tracker) OnNodeEnd(_ context.Context, run *dataflow.Run, node string, result any, _ time.Duration, err error) {
	if err != nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.runs[run.ID]
	if !ok {
		return
	}

	switch v := result.(type) {
	case float64:
		r.Metrics[node] = v
	case float32:
		r.Metrics[node] = float64(v)
	case int:
		r.Metrics[node] = float64(v)
	case int64:
		r.Metrics[node] = float64(v)
	case string:
		r.Outputs[node] = v
	case bool:
		r.Outputs[node] = strconv.FormatBool(v)
	}
}

func (t *Tracker) OnRunEnd(ctx context.Context, run *dataflow.Run, _ map[string]any, err error) {
	t.mu.Lock()
	r, ok := t.runs[run.ID]
	delete(t.runs, run.ID)
	t.mu.Unlock()
	if !ok {
		return
	}

	r.EndedAt = time.Now()
	r.Status = StatusFinished
	if err != nil {
		r.Status = StatusFailed
		r.Error = err.Error()
	}

	if err := t.store.Save(ctx, r); err != nil {
		t.logger.Error("failed to save run %s of experiment %s: %v", r.ID, r.Experiment, err)
		return
	}
	t.logger.Debug("tracked run %s (%s) in experiment %s", r.ID, r.Status, r.Experiment)
}

func scalar(v any) (any, bool) {
	switch v.(type) {
	case string, bool, int, int64, float32, float64:
		return v, true
	}
	return nil, false
}
