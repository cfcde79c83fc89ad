package hypernode

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/smallnest/hypernodes/dataflow"
	"github.com/smallnest/hypernodes/hp"
)

// Library loads and saves nodes under a root folder, one folder per node.
// It resolves nested node declarations, so every node it loads can load its
// children. Each resolution returns a fresh node.
type Library struct {
	root     string
	registry *dataflow.ModuleRegistry
	opts     []Option
}

// NewLibrary creates a library rooted at root. opts apply to every loaded node.
func NewLibrary(root string, registry *dataflow.ModuleRegistry, opts ...Option) *Library {
	return &Library{root: root, registry: registry, opts: opts}
}

// Root returns the library folder.
func (l *Library) Root() string {
	return l.root
}

// Path returns the folder of the named node. Absolute names are used as is.
func (l *Library) Path(name string) string {
	return resolvePath(l.root, name)
}

// Load loads the named node.
func (l *Library) Load(name string) (*Node, error) {
	opts := append([]Option{WithResolver(l)}, l.opts...)
	return Load(l.Path(name), l.registry, opts...)
}

// Resolve implements hp.Resolver.
func (l *Library) Resolve(_ context.Context, source string) (hp.NodeRef, error) {
	n, err := l.Load(source)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// Save saves node into its folder under the root.
func (l *Library) Save(node *Node) error {
	return node.Save(l.Path(node.Name()))
}

// Names lists the folders under the root that contain a node.
func (l *Library) Names() ([]string, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		matches, _ := filepath.Glob(filepath.Join(l.root, e.Name(), "*"+metadataSuffix))
		if len(matches) > 0 {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
