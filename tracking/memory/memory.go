package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/smallnest/hypernodes/tracking"
)

// MemoryRunStore implements tracking.Store in memory
type MemoryRunStore struct {
	mu   sync.RWMutex
	runs map[string]*tracking.Run
}

// NewMemoryRunStore creates an empty in-memory run store
func NewMemoryRunStore() *MemoryRunStore {
	return &MemoryRunStore{runs: make(map[string]*tracking.Run)}
}

// Save stores a copy of run
func (s *MemoryRunStore) Save(_ context.Context, run *tracking.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run.Clone()
	return nil
}

// Load retrieves a run by id
func (s *MemoryRunStore) Load(_ context.Context, id string) (*tracking.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", tracking.ErrRunNotFound, id)
	}
	return r.Clone(), nil
}

// List returns the runs of an experiment ordered by start time
func (s *MemoryRunStore) List(_ context.Context, experiment string) ([]*tracking.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	runs := []*tracking.Run{}
	for _, r := range s.runs {
		if r.Experiment == experiment {
			runs = append(runs, r.Clone())
		}
	}
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].StartedAt.Before(runs[j].StartedAt) })
	return runs, nil
}

// Delete removes a run
func (s *MemoryRunStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, id)
	return nil
}

// Clear removes all runs of an experiment
func (s *MemoryRunStore) Clear(_ context.Context, experiment string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.runs {
		if r.Experiment == experiment {
			delete(s.runs, id)
		}
	}
	return nil
}
