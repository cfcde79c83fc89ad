package command

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/smallnest/hypernodes/tracking"
)

// RunsCommand lists or clears the tracked runs of an experiment.
type RunsCommand struct {
	Meta
}

func (c *RunsCommand) Run(args []string) int {
	var (
		jsonOutput bool
		clearRuns  bool
	)
	f := c.flagSet("runs")
	f.BoolVar(&jsonOutput, "json", false, "print runs as JSON")
	f.BoolVar(&clearRuns, "clear", false, "delete every run of the experiment")
	if err := f.Parse(args); err != nil {
		return c.errorf("%v\n%s", err, c.Help())
	}
	experiment := "hypernodes"
	if f.NArg() > 0 {
		experiment = f.Arg(0)
	}

	a, err := c.app()
	if err != nil {
		return c.errorf("%v", err)
	}
	defer a.Close()
	if a.Store == nil {
		return c.errorf("tracking is disabled")
	}

	ctx := c.commandContext()
	if clearRuns {
		if err := a.Store.Clear(ctx, experiment); err != nil {
			return c.errorf("%v", err)
		}
		c.Ui.Info(fmt.Sprintf("cleared experiment %s", experiment))
		return 0
	}

	runs, err := a.Store.List(ctx, experiment)
	if err != nil {
		return c.errorf("%v", err)
	}
	if jsonOutput {
		return c.outputJSON(runs)
	}

	c.heading(fmt.Sprintf("%s (%d runs)", experiment, len(runs)))
	if len(runs) == 0 {
		return 0
	}
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNODE\tSTATUS\tSTARTED\tDURATION\tMETRICS")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Node, r.Status,
			r.StartedAt.Format(time.DateTime),
			r.Duration().Round(time.Millisecond),
			metrics(r),
		)
	}
	w.Flush()
	c.Ui.Output(strings.TrimRight(sb.String(), "\n"))
	return 0
}

func metrics(r *tracking.Run) string {
	parts := make([]string, 0, len(r.Metrics))
	for _, k := range slices.Sorted(maps.Keys(r.Metrics)) {
		parts = append(parts, fmt.Sprintf("%s=%.4g", k, r.Metrics[k]))
	}
	return strings.Join(parts, " ")
}

func (c *RunsCommand) Help() string {
	return strings.TrimSpace(`
Usage: hypernodes runs [options] [EXPERIMENT]

  Lists the tracked runs of an experiment, "hypernodes" by default, oldest
  first.

Options:

  -clear           Delete every run of the experiment.
  -json            Print the runs as JSON.
  -nodes-dir DIR   Folder holding the saved nodes.
`)
}

func (c *RunsCommand) Synopsis() string {
	return "List tracked runs"
}
