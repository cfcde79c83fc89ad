// Package hypernode composes dataflow modules with a configuration into named,
// persistable nodes.
//
// A node's inputs come from evaluating its configuration with user selections
// and overrides. Its execution graph is built from its modules on first use,
// with the builder optionally supplied by the configuration. A dataflow
// function may take an Executor parameter to run another node as part of its
// body, which is how batch evaluation calls question answering and question
// answering calls a ranker.
//
//	lib := hypernode.NewLibrary("nodes", registry, hypernode.WithFactories(factories))
//	node, err := lib.Load("rag_qa")
//	err = node.InstantiateInputs(ctx, map[string]any{"chunker": "paragraph"}, nil, false)
//	out, err := node.Execute(ctx, []string{"llm_response"}, node.Inputs())
package hypernode
