package dataflow

import (
	"context"
	"time"

	"github.com/smallnest/hypernodes/log"
)

// Run describes one execution of a graph.
type Run struct {
	ID        string
	FinalVars []string
	// Inputs are the inputs passed to Execute. Adapters must not modify them.
	Inputs    map[string]any
	StartedAt time.Time
}

// Adapter observes graph execution.
type Adapter interface {
	OnRunStart(ctx context.Context, run *Run)
	OnNodeStart(ctx context.Context, run *Run, node string, args map[string]any)
	OnNodeEnd(ctx context.Context, run *Run, node string, result any, elapsed time.Duration, err error)
	OnRunEnd(ctx context.Context, run *Run, results map[string]any, err error)
}

// BaseAdapter implements Adapter with no-ops. Embed it to override only some hooks.
type BaseAdapter struct{}

func (BaseAdapter) OnRunStart(context.Context, *Run) {}
func (BaseAdapter) OnNodeStart(context.Context, *Run, string, map[string]any) {}
func (BaseAdapter) OnNodeEnd(context.Context, *Run, string, any, time.Duration, error) {}
func (BaseAdapter) OnRunEnd(context.Context, *Run, map[string]any, error) {}

// LoggingAdapter logs run and node lifecycle events.
type LoggingAdapter struct {
	Logger log.Logger
}

// NewLoggingAdapter creates a logging adapter. A nil logger uses the package default.
func NewLoggingAdapter(l log.Logger) *LoggingAdapter {
	if l == nil {
		l = log.GetDefaultLogger()
	}
	return &LoggingAdapter{Logger: l}
}

func (a *LoggingAdapter) OnRunStart(_ context.Context, run *Run) {
	a.Logger.Debug("run %s started for %v", run.ID, run.FinalVars)
}

func (a *LoggingAdapter) OnNodeStart(_ context.Context, run *Run, node string, _ map[string]any) {
	a.Logger.Debug("run %s: executing %s", run.ID, node)
}

func (a *LoggingAdapter) OnNodeEnd(_ context.Context, run *Run, node string, _ any, elapsed time.Duration, err error) {
	if err != nil {
		a.Logger.Error("run %s: %s failed after %s: %v", run.ID, node, elapsed, err)
		return
	}
	a.Logger.Debug("run %s: %s finished in %s", run.ID, node, elapsed)
}

func (a *LoggingAdapter) OnRunEnd(_ context.Context, run *Run, _ map[string]any, err error) {
	if err != nil {
		a.Logger.Warn("run %s failed: %v", run.ID, err)
		return
	}
	a.Logger.Info("run %s finished in %s", run.ID, time.Since(run.StartedAt))
}

// Adapter hooks never break a run: a panicking adapter is logged and skipped.
func (g *Graph) each(fn func(a Adapter)) {
	for _, a := range g.adapters {
		func() {
			defer func() {
				if r := recover(); r != nil {
					g.logger.Error("adapter %T panicked: %v", a, r)
				}
			}()
			fn(a)
		}()
	}
}

func (g *Graph) notifyRunStart(ctx context.Context, run *Run) {
	g.each(func(a Adapter) { a.OnRunStart(ctx, run) })
}

func (g *Graph) notifyNodeStart(ctx context.Context, run *Run, node string, args map[string]any) {
	g.each(func(a Adapter) { a.OnNodeStart(ctx, run, node, args) })
}

func (g *Graph) notifyNodeEnd(ctx context.Context, run *Run, node string, result any, elapsed time.Duration, err error) {
	g.each(func(a Adapter) { a.OnNodeEnd(ctx, run, node, result, elapsed, err) })
}

func (g *Graph) notifyRunEnd(ctx context.Context, run *Run, results map[string]any, err error) {
	g.each(func(a Adapter) { a.OnRunEnd(ctx, run, results, err) })
}
