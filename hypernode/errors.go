package hypernode

import (
	"errors"
	"fmt"
)

var (
	// ErrInputsNotInstantiated is returned when a graph is built or executed
	// before InstantiateInputs has been called.
	ErrInputsNotInstantiated = errors.New("inputs not instantiated: call InstantiateInputs first")

	// ErrConfigNotSerializable is returned when saving a node whose configuration
	// is not a document.
	ErrConfigNotSerializable = errors.New("configuration is not serializable")

	// ErrMetadataNotFound is returned when a folder has no metadata file.
	ErrMetadataNotFound = errors.New("metadata file not found")

	// ErrAmbiguousMetadata is returned when a folder has more than one metadata file.
	ErrAmbiguousMetadata = errors.New("more than one metadata file")

	// ErrSignatureMismatch is returned when a registered module no longer
	// matches its saved manifest.
	ErrSignatureMismatch = errors.New("module signature mismatch")

	// ErrInvalidManifest is returned for malformed module manifests or metadata.
	ErrInvalidManifest = errors.New("invalid manifest")
)

// BuildError reports a failure to build a node's execution graph.
type BuildError struct {
	Node string
	Err  error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build graph for node %s: %v", e.Node, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// InitError reports a failure to initialize a node's execution graph on first use.
type InitError struct {
	Node string
	Err  error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("initialize node %s: %v", e.Node, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}
