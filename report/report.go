// Package report renders the outcome of a node execution as markdown or
// sanitized HTML.
package report

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"

	"github.com/smallnest/hypernodes/dataflow"
	"github.com/smallnest/hypernodes/hp"
	"github.com/smallnest/hypernodes/hypernode"
)

// Report is one execution of a node.
type Report struct {
	Node string
	// Params are the parameters chosen when the inputs were instantiated.
	Params []hp.ParamSpec
	// Results maps each final variable to its value.
	Results map[string]any
	// Graph is drawn as a mermaid flowchart when set.
	Graph *dataflow.Graph
}

// FromNode collects a report from an instantiated node and its results.
func FromNode(n *hypernode.Node, params []hp.ParamSpec, results map[string]any) Report {
	return Report{
		Node:    n.Name(),
		Params:  params,
		Results: results,
		Graph:   n.Graph(),
	}
}

// Markdown renders the report.
func Markdown(r Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", hp.FormatTitle(r.Node))

	if len(r.Params) > 0 {
		sb.WriteString("## Configuration\n\n")
		sb.WriteString("| Parameter | Value | Default |\n")
		sb.WriteString("| --- | --- | --- |\n")
		for _, p := range r.Params {
			fmt.Fprintf(&sb, "| %s | %s | %s |\n", p.Name, cell(p.Value), cell(p.Default))
		}
		sb.WriteString("\n")
	}

	if len(r.Results) > 0 {
		sb.WriteString("## Results\n\n")
		for _, name := range slices.Sorted(maps.Keys(r.Results)) {
			fmt.Fprintf(&sb, "### %s\n\n", hp.FormatTitle(name))
			writeValue(&sb, r.Results[name])
		}
	}

	if r.Graph != nil {
		sb.WriteString("## Graph\n\n```mermaid\n")
		sb.WriteString(r.Graph.DrawMermaid())
		sb.WriteString("```\n")
	}
	return sb.String()
}

// HTML renders the markdown report as HTML safe to embed in a page.
func HTML(r Report) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(Markdown(r)))

	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	out := markdown.Render(doc, renderer)
	return bluemonday.UGCPolicy().SanitizeBytes(out)
}

func writeValue(sb *strings.Builder, v any) {
	switch x := v.(type) {
	case string:
		sb.WriteString(x)
		sb.WriteString("\n\n")
	case []string:
		for _, s := range x {
			fmt.Fprintf(sb, "- %s\n", strings.ReplaceAll(s, "\n", " "))
		}
		sb.WriteString("\n")
	case float64:
		fmt.Fprintf(sb, "%.4g\n\n", x)
	default:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			fmt.Fprintf(sb, "%v\n\n", v)
			return
		}
		fmt.Fprintf(sb, "```json\n%s\n```\n\n", data)
	}
}

func cell(v any) string {
	if v == nil {
		return ""
	}
	s := fmt.Sprint(v)
	return strings.ReplaceAll(s, "|", "\\|")
}
