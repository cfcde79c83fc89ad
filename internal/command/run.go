package command

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/smallnest/hypernodes/dataflow"
	"github.com/smallnest/hypernodes/hp"
	"github.com/smallnest/hypernodes/report"
)

// RunCommand instantiates a node and computes final variables.
type RunCommand struct {
	Meta
}

func (c *RunCommand) Run(args []string) int {
	var (
		cfg          configFlags
		jsonOutput   bool
		reportPath   string
		snapshotPath string
	)
	f := c.flagSet("run")
	cfg.register(f)
	f.BoolVar(&jsonOutput, "json", false, "print results as JSON")
	f.StringVar(&reportPath, "report", "", "write a report, HTML unless the file ends in .md")
	f.StringVar(&snapshotPath, "save-overrides", "", "write the chosen parameters as an overrides file")
	if err := f.Parse(args); err != nil {
		return c.errorf("%v\n%s", err, c.Help())
	}
	if f.NArg() < 1 {
		return c.errorf("a node name is required\n%s", c.Help())
	}
	name, finalVars := f.Arg(0), f.Args()[1:]

	selections, overrides, err := cfg.values()
	if err != nil {
		return c.errorf("%v", err)
	}

	a, err := c.app()
	if err != nil {
		return c.errorf("%v", err)
	}
	defer a.Close()

	ctx := c.commandContext()
	node, err := a.Instantiate(ctx, name, selections, overrides)
	if err != nil {
		return c.errorf("%v", err)
	}
	if err := node.InitDriver(); err != nil {
		return c.errorf("%v", err)
	}
	if len(finalVars) == 0 {
		finalVars = sinks(node.Graph())
	}

	results, err := node.Execute(ctx, finalVars, node.Inputs())
	if err != nil {
		return c.errorf("%v", err)
	}

	if snapshotPath != "" {
		if err := hp.WriteOverrides(snapshotPath, node.Snapshot()); err != nil {
			return c.errorf("save overrides: %v", err)
		}
	}
	if reportPath != "" {
		params, err := a.Params(ctx, name, selections, overrides)
		if err != nil {
			return c.errorf("%v", err)
		}
		r := report.FromNode(node, params, results)
		var data []byte
		if strings.EqualFold(filepath.Ext(reportPath), ".md") {
			data = []byte(report.Markdown(r))
		} else {
			data = report.HTML(r)
		}
		if err := os.WriteFile(reportPath, data, 0o644); err != nil {
			return c.errorf("write report: %v", err)
		}
	}

	if jsonOutput {
		return c.outputJSON(results)
	}
	for _, v := range finalVars {
		c.heading(hp.FormatTitle(v))
		c.Ui.Output(formatValue(results[v]))
	}
	return 0
}

// sinks returns the functions no other function depends on.
func sinks(g *dataflow.Graph) []string {
	used := make(map[string]bool)
	for _, n := range g.Nodes() {
		for _, d := range n.Deps {
			used[d] = true
		}
	}
	var out []string
	for _, n := range g.Nodes() {
		if !used[n.Name] {
			out = append(out, n.Name)
		}
	}
	return out
}

func (c *RunCommand) Help() string {
	return strings.TrimSpace(`
Usage: hypernodes run [options] NODE [VAR...]

  Instantiates the inputs of a saved node and computes the given variables,
  or every function no other function depends on.

Options:

  -select name=value     Choose a select option. Dotted names reach nested
                         nodes, e.g. rag_qa.chunker=semantic.
  -set name=value        Force a parameter value.
  -overrides FILE        Read forced values from an HCL overrides file.
  -save-overrides FILE   Write the chosen parameters as an overrides file.
  -report FILE           Write a report. Markdown for .md, HTML otherwise.
  -json                  Print the results as JSON.
  -nodes-dir DIR         Folder holding the saved nodes.
`)
}

func (c *RunCommand) Synopsis() string {
	return "Run a node"
}
