// HyperNodes - Composable, Configurable Dataflow Nodes in Go
//
// HyperNodes bundles dataflow functions with a declarative configuration
// document into a node that can be saved to a folder, loaded back, nested in
// other nodes, and executed for any subset of its variables. The built-in
// nodes implement retrieval augmented question answering and its batch
// evaluation.
//
// # Quick Start
//
// Install the command:
//
//	go install github.com/smallnest/hypernodes/cmd/hypernodes@latest
//
// Save the built-in nodes and run a batch evaluation:
//
//	hypernodes export -nodes-dir nodes
//	hypernodes run -select rag_qa.llm_model=mini batch_qa accuracy
//
// Or from Go:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//
//		"github.com/smallnest/hypernodes/hypernode"
//		"github.com/smallnest/hypernodes/pipelines"
//	)
//
//	func main() {
//		ctx := context.Background()
//
//		reg, _ := pipelines.Registry()
//		lib := hypernode.NewLibrary("nodes", reg,
//			hypernode.WithFactories(pipelines.Factories(pipelines.Deps{})))
//
//		node, _ := lib.Load("rag_qa")
//		_ = node.InstantiateInputs(ctx,
//			map[string]any{"chunker": "semantic"},
//			map[string]any{"query": "What is the capital of France?"},
//			false)
//
//		out, _ := node.Execute(ctx, []string{"llm_response"}, node.Inputs())
//		fmt.Println(out["llm_response"])
//	}
//
// # Key Features
//
//   - Dataflow Graphs: Dependencies are declared by parameter names
//   - Declarative Configuration: HCL documents with select, text and number inputs
//   - Nesting: Nodes reference other nodes, overrides reach them by dotted names
//   - Persistence: Nodes save to and load from plain folders
//   - Tracking: Runs recorded in memory, SQLite, Redis or PostgreSQL
//   - Visualization: Mermaid flowcharts and HTML reports
//
// # Core Concepts
//
// # Dataflow
//
// A function's parameter names are the names of the values it consumes. A
// parameter named after another function depends on it; every other
// parameter is an input. Executing a graph computes only what the requested
// final variables need:
//
//	m := dataflow.NewModule("math",
//		dataflow.MustFunc("y", func(x int) int { return x + 1 }, "x"),
//		dataflow.MustFunc("z", func(y int) int { return y + 2 }, "y"),
//	)
//	g, _ := dataflow.NewBuilder().WithModules(m).Build()
//	out, _ := g.Execute(ctx, []string{"z"}, map[string]any{"x": 2})
//	// out["z"] == 5
//
// # Configuration
//
// A configuration document declares parameters in order; later blocks may
// refer to earlier values:
//
//	select "chunker" {
//	  options = ["paragraph", "semantic", "text"]
//	  default = "paragraph"
//	}
//
//	node "ranker" {
//	  source = "tfidf_ranker"
//	}
//
// Evaluating it with selections and overrides yields the node inputs and a
// snapshot of every chosen value, nested ones included.
//
// # Package Structure
//
// dataflow/
// Functions, modules, the module registry and the executable graph
//
// hp/
// Configuration documents, their evaluation, parameter listings and
// overrides files
//
// hypernode/
// The node itself, its folder format, the node library and the predictor
//
// pipelines/
// The tfidf_ranker, rag_qa and batch_qa nodes
//
// rag/
// Document loaders, text splitters and the TF-IDF vectorizer
//
// llm/
// Language model construction, completion helpers and response caching
//
// tracking/
// Run tracking adapter and stores for memory, SQLite, Redis and PostgreSQL
//
// report/
// Markdown and HTML run reports
//
// log/
// Logging interface with default and golog implementations
//
// # Environment Variables
//
// The command reads these, optionally from a .env file:
//
//   - HYPERNODES_NODES_DIR: Folder holding the saved nodes
//   - HYPERNODES_LOG_LEVEL: debug, info, warn, error or none
//   - HYPERNODES_TRACKING: none, memory, sqlite, redis or postgres
//   - HYPERNODES_LLM_CACHE: none, memory or redis
//   - OPENAI_API_KEY, ANTHROPIC_API_KEY: Model provider credentials
package hypernodes // import "github.com/smallnest/hypernodes"
