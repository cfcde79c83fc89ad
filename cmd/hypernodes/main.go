// Command hypernodes runs, inspects and evaluates saved nodes.
//
// Configuration comes from the environment, optionally from a .env file in
// the working directory. See internal/app for the variables.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/mitchellh/cli"

	"github.com/smallnest/hypernodes/internal/command"
)

const version = "0.1.0"

func main() {
	os.Exit(realMain())
}

func realMain() int {
	// A missing .env file is fine
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	meta := command.Meta{
		Ui: &cli.ColoredUi{
			ErrorColor: cli.UiColorRed,
			WarnColor:  cli.UiColorYellow,
			Ui: &cli.BasicUi{
				Reader:      os.Stdin,
				Writer:      os.Stdout,
				ErrorWriter: os.Stderr,
			},
		},
		Context: ctx,
	}

	c := &cli.CLI{
		Name:     "hypernodes",
		Version:  version,
		Args:     os.Args[1:],
		Commands: command.Commands(meta),
	}
	code, err := c.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error executing CLI: %s\n", err)
		return 1
	}
	return code
}
