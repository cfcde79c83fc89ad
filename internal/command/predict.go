package command

import (
	"strings"

	"github.com/smallnest/hypernodes/hypernode"
)

// PredictCommand serves a node as a prediction function for one request.
type PredictCommand struct {
	Meta
}

func (c *PredictCommand) Run(args []string) int {
	var (
		cfg        configFlags
		finalVar   string
		jsonOutput bool
	)
	f := c.flagSet("predict")
	cfg.register(f)
	f.StringVar(&finalVar, "var", "llm_response", "variable to compute")
	f.BoolVar(&jsonOutput, "json", false, "print the prediction as JSON")
	if err := f.Parse(args); err != nil {
		return c.errorf("%v\n%s", err, c.Help())
	}
	if f.NArg() < 1 {
		return c.errorf("a node name is required\n%s", c.Help())
	}
	input, err := parseKeyValues(f.Args()[1:])
	if err != nil {
		return c.errorf("%v", err)
	}
	_, overrides, err := cfg.values()
	if err != nil {
		return c.errorf("%v", err)
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
	p := hypernode.NewPredictor(node, []string{finalVar}, overrides)
	ctx := c.commandContext()
	if err := p.LoadContext(ctx, nil); err != nil {
		return c.errorf("%v", err)
	}
	out, err := p.Predict(ctx, input)
	if err != nil {
		return c.errorf("%v", err)
	}
	if jsonOutput {
		return c.outputJSON(map[string]any{finalVar: out})
	}
	c.Ui.Output(formatValue(out))
	return 0
}

func (c *PredictCommand) Help() string {
	return strings.TrimSpace(`
Usage: hypernodes predict [options] NODE [name=value...]

  Instantiates a node once and computes one variable with the name=value
  arguments merged over its inputs, e.g.

    hypernodes predict rag_qa "query=What is the capital of France?"

Options:

  -var NAME            Variable to compute, llm_response by default.
  -set name=value      Force a parameter value when instantiating.
  -overrides FILE      Read forced values from an HCL overrides file.
  -json                Print the prediction as JSON.
  -nodes-dir DIR       Folder holding the saved nodes.
`)
}

func (c *PredictCommand) Synopsis() string {
	return "Compute one variable of a node for a request"
}
