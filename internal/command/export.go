package command

import (
	"strings"
)

// ExportCommand saves the built-in nodes into the nodes folder.
type ExportCommand struct {
	Meta
}

func (c *ExportCommand) Run(args []string) int {
	f := c.flagSet("export")
	if err := f.Parse(args); err != nil {
		return c.errorf("%v\n%s", err, c.Help())
	}

	a, err := c.app()
	if err != nil {
		return c.errorf("%v", err)
	}
	defer a.Close()

	if err := a.Export(); err != nil {
		return c.errorf("%v", err)
	}
	names, err := a.Library.Names()
	if err != nil {
		return c.errorf("%v", err)
	}
	for _, name := range names {
		c.Ui.Output(a.Library.Path(name))
	}
	return 0
}

func (c *ExportCommand) Help() string {
	return strings.TrimSpace(`
Usage: hypernodes export [options]

  Saves the tfidf_ranker, rag_qa and batch_qa nodes into the nodes folder,
  overwriting existing files.

Options:

  -nodes-dir DIR   Folder holding the saved nodes.
`)
}

func (c *ExportCommand) Synopsis() string {
	return "Save the built-in nodes"
}
