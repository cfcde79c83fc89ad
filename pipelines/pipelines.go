// Package pipelines registers the question answering nodes: tfidf_ranker,
// rag_qa and batch_qa.
//
// Saved nodes refer to their modules by name, so a process loading them
// registers the modules first:
//
//	reg := dataflow.NewModuleRegistry()
//	if err := pipelines.Register(reg); err != nil {
//		return err
//	}
//	lib := hypernode.NewLibrary("nodes", reg, hypernode.WithFactories(pipelines.Factories(deps)))
//	node, err := lib.Load("batch_qa")
package pipelines

import (
	"github.com/smallnest/hypernodes/dataflow"
	"github.com/smallnest/hypernodes/hp"
	"github.com/smallnest/hypernodes/hypernode"
	"github.com/smallnest/hypernodes/llm"
	"github.com/smallnest/hypernodes/log"
	"github.com/smallnest/hypernodes/pipelines/batchqa"
	"github.com/smallnest/hypernodes/pipelines/ragqa"
	"github.com/smallnest/hypernodes/pipelines/tfidfranker"
	"github.com/smallnest/hypernodes/tracking"
)

// Deps are the services the factories hand to nodes.
type Deps struct {
	// Providers holds model credentials per llm provider
	Providers map[string]llm.Options
	// Cache memoizes llm responses when set
	Cache llm.Cache
	// Store records batch runs when set
	Store  tracking.Store
	Logger log.Logger
}

// Modules returns the modules of every node.
func Modules() []*dataflow.Module {
	return []*dataflow.Module{
		tfidfranker.Module(),
		ragqa.Module(),
		batchqa.Module(),
	}
}

// Register adds the modules of every node to reg.
func Register(reg *dataflow.ModuleRegistry) error {
	return reg.Register(Modules()...)
}

// Registry returns a new registry holding the modules of every node.
func Registry() (*dataflow.ModuleRegistry, error) {
	reg := dataflow.NewModuleRegistry()
	if err := Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// Factories returns the factories named by the node configurations.
func Factories(deps Deps) hp.Factories {
	return hp.Factories{
		tfidfranker.FactoryKind: tfidfranker.VectorizerFactory,
		ragqa.FactoryKind:       ragqa.LLMFactory(deps.Providers, deps.Cache),
		batchqa.FactoryKind:     batchqa.BuilderFactory(deps.Store, deps.Logger),
	}
}

// Nodes returns new in-memory nodes, in dependency order.
func Nodes(opts ...hypernode.Option) []*hypernode.Node {
	return []*hypernode.Node{
		tfidfranker.Node(opts...),
		ragqa.Node(opts...),
		batchqa.Node(opts...),
	}
}

// Export saves every node into the library root.
func Export(lib *hypernode.Library) error {
	for _, n := range Nodes() {
		if err := lib.Save(n); err != nil {
			return err
		}
	}
	return nil
}
