package tracking

import (
	"context"
	"errors"
	"maps"
	"slices"
	"time"
)

// Status is the lifecycle state of a tracked run.
type Status string

const (
	StatusRunning  Status = "running"
	StatusFinished Status = "finished"
	StatusFailed   Status = "failed"
)

// ErrRunNotFound is returned when a run id is unknown to a store.
var ErrRunNotFound = errors.New("run not found")

// Run is one tracked graph execution.
type Run struct {
	ID         string             `json:"id"`
	Experiment string             `json:"experiment"`
	Node       string             `json:"node"`
	FinalVars  []string           `json:"final_vars"`
	Params     map[string]any     `json:"params"`
	Metrics    map[string]float64 `json:"metrics"`
	Outputs    map[string]string  `json:"outputs"`
	Status     Status             `json:"status"`
	Error      string             `json:"error,omitempty"`
	StartedAt  time.Time          `json:"started_at"`
	EndedAt    time.Time          `json:"ended_at"`
}

// Duration returns how long the run took, or zero while it is running.
func (r *Run) Duration() time.Duration {
	if r.EndedAt.IsZero() {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}

// Clone returns a deep copy of the run.
func (r *Run) Clone() *Run {
	c := *r
	c.FinalVars = slices.Clone(r.FinalVars)
	c.Params = maps.Clone(r.Params)
	c.Metrics = maps.Clone(r.Metrics)
	c.Outputs = maps.Clone(r.Outputs)
	return &c
}

// Store persists tracked runs.
type Store interface {
	// Save stores a run, replacing any run with the same id
	Save(ctx context.Context, run *Run) error

	// Load retrieves a run by id
	Load(ctx context.Context, id string) (*Run, error)

	// List returns the runs of an experiment ordered by start time
	List(ctx context.Context, experiment string) ([]*Run, error)

	// Delete removes a run
	Delete(ctx context.Context, id string) error

	// Clear removes all runs of an experiment
	Clear(ctx context.Context, experiment string) error
}
