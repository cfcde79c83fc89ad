package hp

import "errors"

var (
	// ErrInvalidSelection is returned when a selection or default is not one of the options.
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrNoResolver is returned when a configuration nests a node but no resolver is configured.
	ErrNoResolver = errors.New("no node resolver configured")

	// ErrUnknownFactory is returned when a factory kind is not registered.
	ErrUnknownFactory = errors.New("unknown factory")

	// ErrInvalidName is returned for parameter names that are not identifiers.
	ErrInvalidName = errors.New("invalid parameter name")

	// ErrUnsupportedValue is returned when a value cannot be converted for a parameter.
	ErrUnsupportedValue = errors.New("unsupported value")

	// ErrInvalidDocument is returned when a configuration document is malformed.
	ErrInvalidDocument = errors.New("invalid configuration document")
)
