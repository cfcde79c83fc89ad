package command

import (
	"strings"

	"github.com/smallnest/hypernodes/dataflow"
)

// GraphCommand prints the dataflow graph of a node as a mermaid flowchart.
type GraphCommand struct {
	Meta
}

func (c *GraphCommand) Run(args []string) int {
	var direction string
	f := c.flagSet("graph")
	f.StringVar(&direction, "direction", "TD", "flowchart direction")
	if err := f.Parse(args); err != nil {
		return c.errorf("%v\n%s", err, c.Help())
	}
	if f.NArg() != 1 {
		return c.errorf("exactly one node name is required\n%s", c.Help())
	}

	a, err := c.app()
	if err != nil {
		return c.errorf("%v", err)
	}
	defer a.Close()

	node, err := a.Library.Load(f.Arg(0))
	if err != nil {
		return c.errorf("%v", err)
	}
	// The graph shape does not depend on the inputs, so no factory runs here
	g, err := dataflow.NewBuilder().WithModules(node.Modules()...).Build()
	if err != nil {
		return c.errorf("%v", err)
	}
	c.Ui.Output(strings.TrimRight(g.DrawMermaidWithOptions(dataflow.MermaidOptions{Direction: direction}), "\n"))
	return 0
}

func (c *GraphCommand) Help() string {
	return strings.TrimSpace(`
Usage: hypernodes graph [options] NODE

  Prints the dataflow graph of a saved node as a mermaid flowchart.

Options:

  -direction DIR   Flowchart direction, TD or LR.
  -nodes-dir DIR   Folder holding the saved nodes.
`)
}

func (c *GraphCommand) Synopsis() string {
	return "Print the graph of a node"
}
