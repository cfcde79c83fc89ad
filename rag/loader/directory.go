package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/smallnest/hypernodes/rag"
)

// DirectoryLoader loads every supported file of a directory, in name order.
// Subdirectories are not visited.
type DirectoryLoader struct {
	dir        string
	extensions map[string]bool
}

// DirectoryLoaderOption configures the DirectoryLoader
type DirectoryLoaderOption func(*DirectoryLoader)

// WithExtensions restricts loading to the given extensions (".txt",
// ".html"). Unsupported extensions are ignored.
func WithExtensions(exts ...string) DirectoryLoaderOption {
	return func(l *DirectoryLoader) {
		l.extensions = make(map[string]bool, len(exts))
		for _, ext := range exts {
			ext = strings.ToLower(ext)
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			l.extensions[ext] = true
		}
	}
}

// NewDirectoryLoader creates a loader for .txt, .html and .htm files
func NewDirectoryLoader(dir string, opts ...DirectoryLoaderOption) *DirectoryLoader {
	l := &DirectoryLoader{
		dir:        dir,
		extensions: map[string]bool{".txt": true, ".html": true, ".htm": true},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads the directory
func (l *DirectoryLoader) Load(ctx context.Context) ([]rag.Document, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", l.dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if l.extensions[strings.ToLower(filepath.Ext(e.Name()))] {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	docs := []rag.Document{}
	for _, name := range names {
		path := filepath.Join(l.dir, name)
		var loader rag.DocumentLoader
		switch strings.ToLower(filepath.Ext(name)) {
		case ".txt":
			loader = NewTextLoader(path)
		case ".html", ".htm":
			loader = NewHTMLLoader(path)
		default:
			continue
		}

		loaded, err := loader.Load(ctx)
		if err != nil {
			return nil, err
		}
		docs = append(docs, loaded...)
	}
	return docs, nil
}
