// Package command implements the hypernodes subcommands.
package command

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mitchellh/cli"

	"github.com/smallnest/hypernodes/hp"
	"github.com/smallnest/hypernodes/internal/app"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

// Meta holds the state shared by every command.
type Meta struct {
	Ui cli.Ui

	// Context is the command context, context.Background when nil
	Context context.Context
	// Config loads the application configuration, app.LoadConfig when nil
	Config func() app.Config
	// AppOptions are passed to app.New
	AppOptions []app.Option

	nodesDir string
}

func (m *Meta) commandContext() context.Context {
	if m.Context == nil {
		return context.Background()
	}
	return m.Context
}

// flagSet returns a flag set with the flags common to every command.
func (m *Meta) flagSet(name string) *flag.FlagSet {
	f := flag.NewFlagSet(name, flag.ContinueOnError)
	f.SetOutput(io.Discard)
	f.StringVar(&m.nodesDir, "nodes-dir", "", "folder holding the saved nodes")
	return f
}

func (m *Meta) app() (*app.App, error) {
	load := m.Config
	if load == nil {
		load = app.LoadConfig
	}
	cfg := load()
	if m.nodesDir != "" {
		cfg.NodesDir = m.nodesDir
	}
	return app.New(m.commandContext(), cfg, m.AppOptions...)
}

func (m *Meta) heading(s string) {
	m.Ui.Output(headingStyle.Render(s))
}

func (m *Meta) errorf(format string, v ...any) int {
	m.Ui.Error(errorStyle.Render("Error: ") + fmt.Sprintf(format, v...))
	return 1
}

func (m *Meta) outputJSON(v any) int {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return m.errorf("%v", err)
	}
	m.Ui.Output(string(data))
	return 0
}

// keyValues collects repeated name=value flags. Values are parsed as int,
// float or bool when they look like one and kept as strings otherwise.
type keyValues map[string]any

func (kv keyValues) String() string {
	parts := make([]string, 0, len(kv))
	for _, k := range slices.Sorted(maps.Keys(kv)) {
		parts = append(parts, fmt.Sprintf("%s=%v", k, kv[k]))
	}
	return strings.Join(parts, ",")
}

func (kv keyValues) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return fmt.Errorf("expected name=value, got %q", s)
	}
	kv[strings.TrimSpace(name)] = parseValue(value)
	return nil
}

func parseValue(s string) any {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}

// parseKeyValues parses name=value arguments.
func parseKeyValues(args []string) (map[string]any, error) {
	kv := keyValues{}
	for _, a := range args {
		if err := kv.Set(a); err != nil {
			return nil, err
		}
	}
	return kv, nil
}

// configFlags are the flags of commands that instantiate a node.
type configFlags struct {
	selections    keyValues
	overrides     keyValues
	overridesFile string
}

func (c *configFlags) register(f *flag.FlagSet) {
	c.selections = keyValues{}
	c.overrides = keyValues{}
	f.Var(c.selections, "select", "choose a select option by key or value, name=value (repeatable)")
	f.Var(c.overrides, "set", "force a parameter value, name=value (repeatable)")
	f.StringVar(&c.overridesFile, "overrides", "", "HCL file with an overrides attribute")
}

// values returns the selections and the overrides, flags winning over the file.
func (c *configFlags) values() (map[string]any, map[string]any, error) {
	overrides := make(map[string]any)
	if c.overridesFile != "" {
		ov, err := hp.ReadOverrides(c.overridesFile)
		if err != nil {
			return nil, nil, err
		}
		maps.Copy(overrides, ov)
	}
	maps.Copy(overrides, c.overrides)
	return maps.Clone(c.selections), overrides, nil
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []string:
		return strings.Join(x, "\n")
	case fmt.Stringer:
		return x.String()
	}
	if data, err := json.Marshal(v); err == nil {
		return string(data)
	}
	return fmt.Sprint(v)
}
