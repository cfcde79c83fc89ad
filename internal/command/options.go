package command

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/smallnest/hypernodes/hp"
)

// OptionsCommand lists the parameters of a node configuration.
type OptionsCommand struct {
	Meta
}

func (c *OptionsCommand) Run(args []string) int {
	var (
		cfg        configFlags
		jsonOutput bool
	)
	f := c.flagSet("options")
	cfg.register(f)
	f.BoolVar(&jsonOutput, "json", false, "print parameters as JSON")
	if err := f.Parse(args); err != nil {
		return c.errorf("%v\n%s", err, c.Help())
	}
	if f.NArg() != 1 {
		return c.errorf("exactly one node name is required\n%s", c.Help())
	}

	selections, overrides, err := cfg.values()
	if err != nil {
		return c.errorf("%v", err)
	}
	a, err := c.app()
	if err != nil {
		return c.errorf("%v", err)
	}
	defer a.Close()

	params, err := a.Params(c.commandContext(), f.Arg(0), selections, overrides)
	if err != nil {
		return c.errorf("%v", err)
	}
	if jsonOutput {
		return c.outputJSON(params)
	}

	c.heading(hp.FormatTitle(f.Arg(0)))
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PARAMETER\tKIND\tVALUE\tOPTIONS")
	for _, p := range params {
		opts := ""
		if len(p.Options) > 0 {
			parts := make([]string, len(p.Options))
			for i, o := range p.Options {
				parts[i] = fmt.Sprint(o)
			}
			opts = strings.Join(parts, " | ")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Name, p.Kind, formatValue(p.Value), mutedStyle.Render(opts))
	}
	w.Flush()
	c.Ui.Output(strings.TrimRight(sb.String(), "\n"))
	return 0
}

func (c *OptionsCommand) Help() string {
	return strings.TrimSpace(`
Usage: hypernodes options [options] NODE

  Lists every parameter of a node configuration, nested nodes included,
  with the value it takes under the given selections. Factories are not
  invoked.

Options:

  -select name=value   Choose a select option.
  -set name=value      Force a parameter value.
  -overrides FILE      Read forced values from an HCL overrides file.
  -json                Print the parameters as JSON.
  -nodes-dir DIR       Folder holding the saved nodes.
`)
}

func (c *OptionsCommand) Synopsis() string {
	return "List the parameters of a node"
}
