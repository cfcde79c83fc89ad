package dataflow

import (
	"fmt"
	"strings"
)

// MermaidOptions defines configuration for Mermaid diagram generation
type MermaidOptions struct {
	// Direction of the flowchart (e.g., "TD", "LR")
	Direction string
}

// DrawMermaid generates a Mermaid diagram representation of the graph
func (g *Graph) DrawMermaid() string {
	return g.DrawMermaidWithOptions(MermaidOptions{Direction: "TD"})
}

// DrawMermaidWithOptions generates a Mermaid diagram with custom options.
// Functions are boxes, external inputs are rounded and configuration values
// are hexagons.
func (g *Graph) DrawMermaidWithOptions(opts MermaidOptions) string {
	var sb strings.Builder

	direction := opts.Direction
	if direction == "" {
		direction = "TD"
	}
	fmt.Fprintf(&sb, "flowchart %s\n", direction)

	for _, name := range g.ExternalInputs() {
		if g.IsConfig(name) {
			fmt.Fprintf(&sb, "    %s{{\"%s\"}}\n", name, name)
			continue
		}
		fmt.Fprintf(&sb, "    %s([\"%s\"])\n", name, name)
	}
	for _, name := range g.order {
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", name, name)
	}

	for _, name := range g.order {
		for _, p := range g.nodes[name].Func.Params {
			fmt.Fprintf(&sb, "    %s --> %s\n", p.Name, name)
		}
	}

	for _, name := range g.ExternalInputs() {
		fmt.Fprintf(&sb, "    style %s fill:#F0F0F0\n", name)
	}

	return sb.String()
}

// DrawDOT generates a DOT (Graphviz) representation of the graph
func (g *Graph) DrawDOT() string {
	var sb strings.Builder

	sb.WriteString("digraph G {\n")
	sb.WriteString("    rankdir=TB;\n")
	sb.WriteString("    node [shape=box];\n")

	for _, name := range g.ExternalInputs() {
		fmt.Fprintf(&sb, "    %s [shape=ellipse, style=dashed];\n", name)
	}
	for _, name := range g.order {
		for _, p := range g.nodes[name].Func.Params {
			fmt.Fprintf(&sb, "    %s -> %s;\n", p.Name, name)
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}

// FlowNode is a node of a Flow.
type FlowNode struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Content string `json:"content"`
}

// FlowEdge is an edge of a Flow.
type FlowEdge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// Flow is a JSON-ready projection of the graph for interactive viewers.
type Flow struct {
	Nodes []FlowNode `json:"nodes"`
	Edges []FlowEdge `json:"edges"`
}

const (
	FlowKindFunction = "function"
	FlowKindInput    = "input"
)

// Flow returns the graph as function nodes plus one input node per function,
// grouping all of its external inputs. label formats displayed names; nil
// leaves them unchanged.
func (g *Graph) Flow(label func(string) string) Flow {
	if label == nil {
		label = func(s string) string { return s }
	}

	var flow Flow
	for _, name := range g.order {
		flow.Nodes = append(flow.Nodes, FlowNode{ID: name, Kind: FlowKindFunction, Content: label(name)})
	}

	for _, name := range g.order {
		node := g.nodes[name]
		for _, dep := range node.Deps {
			flow.Edges = append(flow.Edges, FlowEdge{ID: dep + "-" + name, Source: dep, Target: name})
		}

		if len(node.Inputs) == 0 {
			continue
		}
		labels := make([]string, len(node.Inputs))
		for i, in := range node.Inputs {
			labels[i] = label(in)
		}
		id := "input_" + name
		flow.Nodes = append(flow.Nodes, FlowNode{ID: id, Kind: FlowKindInput, Content: strings.Join(labels, "\n\n")})
		flow.Edges = append(flow.Edges, FlowEdge{ID: id + "-" + name, Source: id, Target: name})
	}

	return flow
}
