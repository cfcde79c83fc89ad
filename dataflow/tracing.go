package dataflow

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TraceEvent represents different types of events in graph execution
type TraceEvent string

const (
	// TraceEventRunStart indicates the start of a graph run
	TraceEventRunStart TraceEvent = "run_start"

	// TraceEventRunEnd indicates the end of a graph run
	TraceEventRunEnd TraceEvent = "run_end"

	// TraceEventRunError indicates a graph run failed
	TraceEventRunError TraceEvent = "run_error"

	// TraceEventNodeStart indicates the start of function execution
	TraceEventNodeStart TraceEvent = "node_start"

	// TraceEventNodeEnd indicates the end of function execution
	TraceEventNodeEnd TraceEvent = "node_end"

	// TraceEventNodeError indicates a function returned an error
	TraceEventNodeError TraceEvent = "node_error"
)

// TraceSpan represents a span of execution with timing and metadata
type TraceSpan struct {
	ID       string
	ParentID string
	RunID    string
	Event    TraceEvent
	NodeName string

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// Result is the function result or the run results, set when the span ends
	Result any
	Error  error

	Metadata map[string]any
}

// TraceHook defines the interface for trace event handlers
type TraceHook interface {
	OnEvent(ctx context.Context, span *TraceSpan)
}

// TraceHookFunc is a function adapter for TraceHook
type TraceHookFunc func(ctx context.Context, span *TraceSpan)

// OnEvent implements the TraceHook interface
func (f TraceHookFunc) OnEvent(ctx context.Context, span *TraceSpan) {
	f(ctx, span)
}

// Tracer is an Adapter that records one span per run and one child span per
// executed function.
type Tracer struct {
	mu    sync.Mutex
	hooks []TraceHook
	spans []*TraceSpan
	open  map[string]*TraceSpan
}

// NewTracer creates a new tracer instance
func NewTracer() *Tracer {
	return &Tracer{open: make(map[string]*TraceSpan)}
}

// AddHook registers a new trace hook
func (t *Tracer) AddHook(hook TraceHook) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hooks = append(t.hooks, hook)
}

func (t *Tracer) start(ctx context.Context, key, parent, runID string, event TraceEvent, node string) {
	span := &TraceSpan{
		ID:        uuid.NewString(),
		RunID:     runID,
		Event:     event,
		NodeName:  node,
		StartTime: time.Now(),
		Metadata:  make(map[string]any),
	}

	t.mu.Lock()
	if p, ok := t.open[parent]; ok {
		span.ParentID = p.ID
	}
	t.open[key] = span
	t.spans = append(t.spans, span)
	hooks := t.hooks
	t.mu.Unlock()

	for _, h := range hooks {
		h.OnEvent(ctx, span)
	}
}

func (t *Tracer) end(ctx context.Context, key string, result any, err error) {
	t.mu.Lock()
	span, ok := t.open[key]
	delete(t.open, key)
	hooks := t.hooks
	t.mu.Unlock()
	if !ok {
		return
	}

	span.EndTime = time.Now()
	span.Duration = span.EndTime.Sub(span.StartTime)
	span.Result = result
	span.Error = err
	switch span.Event {
	case TraceEventNodeStart:
		span.Event = TraceEventNodeEnd
		if err != nil {
			span.Event = TraceEventNodeError
		}
	case TraceEventRunStart:
		span.Event = TraceEventRunEnd
		if err != nil {
			span.Event = TraceEventRunError
		}
	}

	for _, h := range hooks {
		h.OnEvent(ctx, span)
	}
}

func (t *Tracer) OnRunStart(ctx context.Context, run *Run) {
	t.start(ctx, run.ID, "", run.ID, TraceEventRunStart, "")
}

func (t *Tracer) OnNodeStart(ctx context.Context, run *Run, node string, _ map[string]any) {
	t.start(ctx, run.ID+"/"+node, run.ID, run.ID, TraceEventNodeStart, node)
}

func (t *Tracer) OnNodeEnd(ctx context.Context, run *Run, node string, result any, _ time.Duration, err error) {
	t.end(ctx, run.ID+"/"+node, result, err)
}

func (t *Tracer) OnRunEnd(ctx context.Context, run *Run, results map[string]any, err error) {
	t.end(ctx, run.ID, results, err)
}

// Spans returns the collected spans in start order.
func (t *Tracer) Spans() []*TraceSpan {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*TraceSpan, len(t.spans))
	copy(out, t.spans)
	return out
}

// Clear removes all collected spans
func (t *Tracer) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.spans = nil
	t.open = make(map[string]*TraceSpan)
}
