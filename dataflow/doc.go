// Package dataflow builds and runs graphs of named Go functions.
//
// A function's parameter names are its dependencies: a parameter named after
// another function receives that function's result, anything else is an
// external input supplied at execution time or through the graph configuration.
//
//	f := dataflow.MustFunc("y", func(x int) int { return x * 2 }, "x")
//	g := dataflow.MustFunc("z", func(y int) int { return y + 1 }, "y")
//	graph, _ := dataflow.NewBuilder().WithModules(dataflow.NewModule("m", f, g)).Build()
//	out, _ := graph.Execute(ctx, []string{"z"}, map[string]any{"x": 1})
package dataflow
