// Package tracking records graph executions as experiment runs.
//
// A Tracker is attached to a dataflow builder as an adapter and writes each
// run to a Store. Stores are provided for memory, SQLite, Redis and
// PostgreSQL in the sub-packages.
package tracking
