package dataflow

import (
	"fmt"
	"sort"
	"sync"
)

// Module is a named, ordered set of functions that are built into a graph together.
type Module struct {
	Name  string
	Funcs []*Func
}

// NewModule creates a module from the given functions.
func NewModule(name string, funcs ...*Func) *Module {
	return &Module{Name: name, Funcs: funcs}
}

// Func returns the function with the given name.
func (m *Module) Func(name string) (*Func, bool) {
	for _, f := range m.Funcs {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Signatures returns the signature of every function in declaration order.
func (m *Module) Signatures() []Signature {
	sigs := make([]Signature, len(m.Funcs))
	for i, f := range m.Funcs {
		sigs[i] = f.Signature()
	}
	return sigs
}

// ModuleRegistry maps module names to modules. Loading persisted nodes resolves
// module manifests through a registry owned by the caller.
type ModuleRegistry struct {
	mu      sync.RWMutex
	modules map[string]*Module
}

// NewModuleRegistry creates an empty registry.
func NewModuleRegistry() *ModuleRegistry {
	return &ModuleRegistry{modules: make(map[string]*Module)}
}

// Register adds modules to the registry.
func (r *ModuleRegistry) Register(modules ...*Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range modules {
		if m == nil || m.Name == "" {
			return fmt.Errorf("%w: module without name", ErrInvalidFunc)
		}
		if _, ok := r.modules[m.Name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateModule, m.Name)
		}
		r.modules[m.Name] = m
	}
	return nil
}

// Get returns the module registered under name.
func (r *ModuleRegistry) Get(name string) (*Module, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.modules[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, name)
	}
	return m, nil
}

// Names returns the registered module names in sorted order.
func (r *ModuleRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
