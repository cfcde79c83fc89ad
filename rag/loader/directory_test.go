package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/hypernodes/rag"
)

func TestDirectoryLoader(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"b.txt":     "second",
		"a.txt":     "first",
		"c.html":    "<html><body><p>third</p></body></html>",
		"notes.md":  "ignored",
		"sub/d.txt": "nested",
		"UPPER.TXT": "upper",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	docs, err := NewDirectoryLoader(dir).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"upper", "first", "second", "third"}, rag.Contents(docs))

	docs, err = NewDirectoryLoader(dir, WithExtensions("html")).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"third"}, rag.Contents(docs))
}

func TestDirectoryLoaderErrors(t *testing.T) {
	_, err := NewDirectoryLoader(filepath.Join(t.TempDir(), "missing")).Load(context.Background())
	assert.Error(t, err)

	docs, err := NewDirectoryLoader(t.TempDir()).Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}
