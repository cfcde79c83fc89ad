package loader

import (
	"context"
	"fmt"
	"maps"
	"os"

	"github.com/smallnest/hypernodes/rag"
)

// TextLoader loads a text file as a single document
type TextLoader struct {
	filePath string
	metadata map[string]any
}

// TextLoaderOption configures the TextLoader
type TextLoaderOption func(*TextLoader)

// WithMetadata sets additional metadata for loaded documents
func WithMetadata(metadata map[string]any) TextLoaderOption {
	return func(l *TextLoader) {
		maps.Copy(l.metadata, metadata)
	}
}

// NewTextLoader creates a new TextLoader
func NewTextLoader(filePath string, opts ...TextLoaderOption) *TextLoader {
	l := &TextLoader{
		filePath: filePath,
		metadata: map[string]any{
			"source": filePath,
			"type":   "text",
		},
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load loads the file
func (l *TextLoader) Load(ctx context.Context) ([]rag.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", l.filePath, err)
	}

	return []rag.Document{{
		ID:       fmt.Sprintf("text_%s", l.filePath),
		Content:  string(content),
		Metadata: maps.Clone(l.metadata),
	}}, nil
}
