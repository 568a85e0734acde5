// Package manifest loads the YAML file that describes a migration: the
// ownership tables and the groups of files each rewritten with one namespace,
// import set and pipeline.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"go/token"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/requalify/pkg/ownership"
)

// Sentinel errors.
var (
	// ErrNoGroups indicates a manifest without groups.
	ErrNoGroups = errors.New("manifest has no groups")
	// ErrDuplicateGroup indicates two groups with the same name.
	ErrDuplicateGroup = errors.New("duplicate group name")
	// ErrUnknownGroup indicates a group filter naming no group.
	ErrUnknownGroup = errors.New("unknown group")
	// ErrInvalidNamespace indicates a namespace that is not a Go identifier.
	ErrInvalidNamespace = errors.New("invalid namespace")
)

// Manifest is a decoded migration description.
type Manifest struct {
	Tables *ownership.Table `yaml:"tables,omitempty"`
	Groups []Group          `yaml:"groups"`
}

// Group is one set of files rewritten the same way.
type Group struct {
	Name string `yaml:"name"`

	// Dir is globbed with Pattern unless Files is set; Files are relative to
	// it. Pattern is a doublestar glob, so "**" crosses directories.
	Dir       string   `yaml:"dir,omitempty"`
	Files     []string `yaml:"files,omitempty"`
	Pattern   string   `yaml:"pattern,omitempty"`
	Recursive bool     `yaml:"recursive,omitempty"`

	Namespace string   `yaml:"namespace,omitempty"`
	Imports   []string `yaml:"imports,omitempty"`
	Prefixes  []string `yaml:"prefixes,omitempty"`
	Mode      string   `yaml:"mode,omitempty"`

	SkipLiterals bool     `yaml:"skip_literals,omitempty"`
	StaleImports []string `yaml:"stale_imports,omitempty"`
	Fold         []string `yaml:"fold,omitempty"`
	SelfImport   string   `yaml:"self_import,omitempty"`
}

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}

	return m, nil
}

// Parse validates data against the manifest schema and decodes it.
func Parse(data []byte) (*Manifest, error) {
	var doc any

	err := yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	err = validateSchema(doc)
	if err != nil {
		return nil, err
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var m Manifest

	err = decoder.Decode(&m)
	if err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	err = m.Validate()
	if err != nil {
		return nil, err
	}

	return &m, nil
}

// Validate checks the constraints the schema cannot express.
func (m *Manifest) Validate() error {
	if len(m.Groups) == 0 {
		return ErrNoGroups
	}

	seen := make(map[string]struct{}, len(m.Groups))

	for _, g := range m.Groups {
		if _, dup := seen[g.Name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateGroup, g.Name)
		}

		seen[g.Name] = struct{}{}

		if g.Namespace != "" && !token.IsIdentifier(g.Namespace) {
			return fmt.Errorf("group %s: %w: %q", g.Name, ErrInvalidNamespace, g.Namespace)
		}
	}

	return nil
}

// Group returns the group called name.
func (m *Manifest) Group(name string) (Group, bool) {
	for _, g := range m.Groups {
		if g.Name == name {
			return g, true
		}
	}

	return Group{}, false
}

// GroupNames lists group names in manifest order.
func (m *Manifest) GroupNames() []string {
	names := make([]string, 0, len(m.Groups))
	for _, g := range m.Groups {
		names = append(names, g.Name)
	}

	return names
}
