// Package log provides the leveled, printf-style logging interface shared by
// the hypernodes packages.
//
// Nodes, the configuration evaluator and the dataflow engine log through the
// Logger interface. By default the package-level DefaultLogger writes to
// stderr at info level; applications usually install a golog-backed logger:
//
//	logger := log.NewGologLoggerWithLevel("[hypernodes] ", log.LogLevelDebug)
//	log.SetDefaultLogger(logger)
//
// NoOpLogger silences output entirely, which is handy in tests.
package log
