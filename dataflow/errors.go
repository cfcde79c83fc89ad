package dataflow

import "errors"

var (
	// ErrInvalidFunc is returned when a Go value cannot be wrapped as a dataflow function.
	ErrInvalidFunc = errors.New("invalid dataflow function")

	// ErrDuplicateFunction is returned when two modules define a function with the same name.
	ErrDuplicateFunction = errors.New("duplicate function")

	// ErrDuplicateModule is returned when a module name is registered twice.
	ErrDuplicateModule = errors.New("duplicate module")

	// ErrModuleNotFound is returned when a registry has no module with the requested name.
	ErrModuleNotFound = errors.New("module not found")

	// ErrNoModules is returned when a graph is built without any module.
	ErrNoModules = errors.New("no modules to build")

	// ErrCycle is returned when function dependencies form a cycle.
	ErrCycle = errors.New("dependency cycle")

	// ErrTypeMismatch is returned when a provider's return type cannot feed a parameter.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrMissingInput is returned when an external input required by the requested
	// variables is neither supplied nor part of the graph configuration.
	ErrMissingInput = errors.New("missing input")

	// ErrUnknownVariable is returned when a requested variable is not part of the graph.
	ErrUnknownVariable = errors.New("unknown variable")

	// ErrArgumentType is returned when an input value cannot be converted to a parameter type.
	ErrArgumentType = errors.New("argument type")

	// ErrPanic is returned when a function panics during execution.
	ErrPanic = errors.New("function panicked")
)
