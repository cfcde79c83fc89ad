package command

import (
	"github.com/mitchellh/cli"
)

// Commands returns the command factories keyed by name.
func Commands(meta Meta) map[string]cli.CommandFactory {
	return map[string]cli.CommandFactory{
		"run": func() (cli.Command, error) {
			return &RunCommand{Meta: meta}, nil
		},
		"options": func() (cli.Command, error) {
			return &OptionsCommand{Meta: meta}, nil
		},
		"graph": func() (cli.Command, error) {
			return &GraphCommand{Meta: meta}, nil
		},
		"export": func() (cli.Command, error) {
			return &ExportCommand{Meta: meta}, nil
		},
		"runs": func() (cli.Command, error) {
			return &RunsCommand{Meta: meta}, nil
		},
		"predict": func() (cli.Command, error) {
			return &PredictCommand{Meta: meta}, nil
		},
	}
}
