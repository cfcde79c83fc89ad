// Package hp evaluates hierarchical configurations.
//
// A configuration declares parameters (selects, text and number inputs),
// computed values, nested nodes and factory-built values. Evaluate applies
// selections and overrides and returns the bound values together with a
// snapshot of every parameter. Keys of selections, overrides and snapshots
// are dotted for parameters of nested configurations, e.g. "rag_qa.chunker".
//
// Configurations are either Go closures (Func) or HCL documents (Document).
// Only documents can be persisted.
package hp
