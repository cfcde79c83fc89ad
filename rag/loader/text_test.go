package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextLoader(t *testing.T) {
	ctx := context.Background()
	content := "Line 1\nLine 2\nLine 3"
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "test.txt")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	assert.NoError(t, err)

	t.Run("Basic Load", func(t *testing.T) {
		loader := NewTextLoader(tmpFile)
		docs, err := loader.Load(ctx)
		assert.NoError(t, err)
		assert.Len(t, docs, 1)
		assert.Equal(t, content, docs[0].Content)
		assert.Equal(t, tmpFile, docs[0].Metadata["source"])
		assert.Equal(t, "text", docs[0].Metadata["type"])
	})

	t.Run("Load with Metadata", func(t *testing.T) {
		loader := NewTextLoader(tmpFile, WithMetadata(map[string]any{"author": "test"}))
		docs, err := loader.Load(ctx)
		assert.NoError(t, err)
		assert.Equal(t, "test", docs[0].Metadata["author"])
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := NewTextLoader(filepath.Join(tmpDir, "nope.txt")).Load(ctx)
		assert.Error(t, err)
	})
}
