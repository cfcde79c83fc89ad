package hypernode

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"

	"github.com/smallnest/hypernodes/dataflow"
	"github.com/smallnest/hypernodes/hp"
)

const metadataSuffix = "_metadata.json"

// Metadata is the persisted description of a node.
type Metadata struct {
	Name           string   `json:"name"`
	DagModulePaths []string `json:"dag_module_paths"`
	HPConfigPath   *string  `json:"hp_config_path"`
}

type manifestFile struct {
	Modules []manifestModule `hcl:"module,block"`
}

type manifestModule struct {
	Name  string         `hcl:"name,label"`
	Funcs []manifestFunc `hcl:"func,block"`
}

type manifestFunc struct {
	Name    string   `hcl:"name,label"`
	Params  []string `hcl:"params"`
	Types   []string `hcl:"types"`
	Local   []string `hcl:"local"`
	Returns string   `hcl:"returns"`
}

func (f manifestFunc) signature() dataflow.Signature {
	return dataflow.Signature{
		Name:    f.Name,
		Params:  nonNil(f.Params),
		Types:   nonNil(f.Types),
		Local:   nonNil(f.Local),
		Returns: f.Returns,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func moduleFileName(node string, i int) string {
	if i == 0 {
		return node + "_dag.hcl"
	}
	return fmt.Sprintf("%s_dag_%d.hcl", node, i+1)
}

// Save writes the node to folder: one manifest per module, the configuration
// document when there is one, and the metadata file. Existing files are
// overwritten.
func (n *Node) Save(folder string) error {
	var doc *hp.Document
	if n.config != nil {
		d, ok := n.config.(*hp.Document)
		if !ok {
			return fmt.Errorf("%w: node %s has a %T configuration", ErrConfigNotSerializable, n.name, n.config)
		}
		doc = d
	}

	if err := os.MkdirAll(folder, 0o755); err != nil {
		return fmt.Errorf("create folder for node %s: %w", n.name, err)
	}

	meta := Metadata{Name: n.name, DagModulePaths: make([]string, 0, len(n.modules))}
	for i, m := range n.modules {
		name := moduleFileName(n.name, i)
		if err := writeManifest(filepath.Join(folder, name), m); err != nil {
			return fmt.Errorf("save module %s of node %s: %w", m.Name, n.name, err)
		}
		meta.DagModulePaths = append(meta.DagModulePaths, name)
	}

	if doc != nil {
		name := n.name + "_hp_config.hcl"
		if err := doc.Save(filepath.Join(folder, name)); err != nil {
			return fmt.Errorf("save configuration of node %s: %w", n.name, err)
		}
		meta.HPConfigPath = &name
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(folder, n.name+metadataSuffix), data, 0o644); err != nil {
		return fmt.Errorf("save metadata of node %s: %w", n.name, err)
	}

	n.logger.Info("saved node %s to %s", n.name, folder)
	return nil
}

func writeManifest(path string, m *dataflow.Module) error {
	mm := manifestModule{Name: m.Name}
	for _, s := range m.Signatures() {
		mm.Funcs = append(mm.Funcs, manifestFunc{
			Name:    s.Name,
			Params:  s.Params,
			Types:   s.Types,
			Local:   s.Local,
			Returns: s.Returns,
		})
	}

	f := hclwrite.NewEmptyFile()
	gohcl.EncodeIntoBody(&manifestFile{Modules: []manifestModule{mm}}, f.Body())
	return os.WriteFile(path, f.Bytes(), 0o644)
}

// ReadMetadata finds and decodes the single metadata file of folder.
func ReadMetadata(folder string) (*Metadata, error) {
	matches, err := filepath.Glob(filepath.Join(folder, "*"+metadataSuffix))
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w in %s", ErrMetadataNotFound, folder)
	case 1:
	default:
		return nil, fmt.Errorf("%w in %s: %v", ErrAmbiguousMetadata, folder, matches)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		return nil, err
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidManifest, matches[0], err)
	}
	if meta.Name == "" {
		return nil, fmt.Errorf("%w: %s has no name", ErrInvalidManifest, matches[0])
	}
	return &meta, nil
}

// Load reads a node saved with Save. Modules are resolved by name in registry
// and must match their saved signatures. Every call returns a new Node.
func Load(folder string, registry *dataflow.ModuleRegistry, opts ...Option) (*Node, error) {
	meta, err := ReadMetadata(folder)
	if err != nil {
		return nil, err
	}

	modules := make([]*dataflow.Module, 0, len(meta.DagModulePaths))
	for _, p := range meta.DagModulePaths {
		m, err := loadModule(resolvePath(folder, p), registry)
		if err != nil {
			return nil, fmt.Errorf("load node %s: %w", meta.Name, err)
		}
		modules = append(modules, m)
	}

	var cfg hp.Config
	if meta.HPConfigPath != nil {
		doc, err := hp.LoadDocument(resolvePath(folder, *meta.HPConfigPath))
		if err != nil {
			return nil, fmt.Errorf("load node %s: %w", meta.Name, err)
		}
		cfg = doc
	}

	return New(meta.Name, modules, cfg, opts...), nil
}

func resolvePath(folder, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(folder, p)
}

func loadModule(path string, registry *dataflow.ModuleRegistry) (*dataflow.Module, error) {
	file, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, diags)
	}
	var mf manifestFile
	if diags := gohcl.DecodeBody(file.Body, nil, &mf); diags.HasErrors() {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, diags)
	}
	if len(mf.Modules) != 1 {
		return nil, fmt.Errorf("%w: %s must declare exactly one module", ErrInvalidManifest, path)
	}
	saved := mf.Modules[0]

	if registry == nil {
		return nil, errors.New("no module registry")
	}
	m, err := registry.Get(saved.Name)
	if err != nil {
		return nil, err
	}

	current := m.Signatures()
	if len(current) != len(saved.Funcs) {
		return nil, fmt.Errorf("%w: module %s has %d functions, manifest %d", ErrSignatureMismatch, saved.Name, len(current), len(saved.Funcs))
	}
	for i, f := range saved.Funcs {
		if want := f.signature(); !current[i].Equal(want) {
			return nil, fmt.Errorf("%w: module %s: registered %s, saved %s", ErrSignatureMismatch, saved.Name, current[i], want)
		}
	}
	return m, nil
}
