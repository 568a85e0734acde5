// Package ownership models which namespace prefix owns which bare identifiers.
//
// A Table is pure data: an ordered list of prefixes, each with a set of
// identifiers. The order of prefixes is the order in which qualification
// resolves an identifier, so it is preserved from construction and from YAML.
package ownership

import (
	"errors"
	"fmt"
	"go/token"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"
)

// Sentinel errors for table construction.
var (
	// ErrInvalidPrefix indicates a prefix that is not a valid Go identifier.
	ErrInvalidPrefix = errors.New("invalid namespace prefix")
	// ErrInvalidIdentifier indicates an owned name that is not a valid Go identifier.
	ErrInvalidIdentifier = errors.New("invalid identifier")
	// ErrUnknownPrefix indicates a prefix that is not present in the table.
	ErrUnknownPrefix = errors.New("unknown namespace prefix")
	// ErrNotMapping indicates a YAML node that is not a prefix mapping.
	ErrNotMapping = errors.New("ownership table must be a mapping of prefix to identifiers")
)

// Table maps namespace prefixes to the identifiers they own.
type Table struct {
	prefixes []string
	idents   map[string][]string
	sets     map[string]map[string]struct{}
}

// New returns an empty table.
func New() *Table {
	return &Table{
		idents: make(map[string][]string),
		sets:   make(map[string]map[string]struct{}),
	}
}

// Add registers identifiers under prefix. The prefix keeps the position of its
// first Add call. Identifiers already owned by the prefix are ignored.
func (t *Table) Add(prefix string, idents ...string) error {
	if !token.IsIdentifier(prefix) {
		return fmt.Errorf("%w: %q", ErrInvalidPrefix, prefix)
	}

	for _, ident := range idents {
		if !token.IsIdentifier(ident) {
			return fmt.Errorf("%w: %q (prefix %s)", ErrInvalidIdentifier, ident, prefix)
		}
	}

	set, ok := t.sets[prefix]
	if !ok {
		set = make(map[string]struct{}, len(idents))
		t.sets[prefix] = set
		t.prefixes = append(t.prefixes, prefix)
	}

	for _, ident := range idents {
		if _, seen := set[ident]; seen {
			continue
		}

		set[ident] = struct{}{}
		t.idents[prefix] = append(t.idents[prefix], ident)
	}

	return nil
}

// MustAdd is like Add but panics on error. Intended for static tables.
func (t *Table) MustAdd(prefix string, idents ...string) *Table {
	err := t.Add(prefix, idents...)
	if err != nil {
		panic(err)
	}

	return t
}

// Prefixes returns the prefixes in processing order.
func (t *Table) Prefixes() []string {
	if t == nil {
		return nil
	}

	return slices.Clone(t.prefixes)
}

// Identifiers returns the identifiers owned by prefix in insertion order.
func (t *Table) Identifiers(prefix string) []string {
	if t == nil {
		return nil
	}

	return slices.Clone(t.idents[prefix])
}

// Has reports whether prefix is present in the table.
func (t *Table) Has(prefix string) bool {
	if t == nil {
		return false
	}

	_, ok := t.sets[prefix]

	return ok
}

// Owns reports whether prefix owns ident.
func (t *Table) Owns(prefix, ident string) bool {
	if t == nil {
		return false
	}

	_, ok := t.sets[prefix][ident]

	return ok
}

// Owners returns every prefix owning ident, in processing order.
func (t *Table) Owners(ident string) []string {
	if t == nil {
		return nil
	}

	var owners []string

	for _, prefix := range t.prefixes {
		if _, ok := t.sets[prefix][ident]; ok {
			owners = append(owners, prefix)
		}
	}

	return owners
}

// Resolve returns the prefix that qualifies ident: the first owner in
// processing order.
func (t *Table) Resolve(ident string) (string, bool) {
	if t == nil {
		return "", false
	}

	for _, prefix := range t.prefixes {
		if _, ok := t.sets[prefix][ident]; ok {
			return prefix, true
		}
	}

	return "", false
}

// Len returns the number of prefixes.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}

	return len(t.prefixes)
}

// Ambiguous returns identifiers owned by more than one prefix, mapped to their
// owners in processing order. The table itself never rejects such entries.
func (t *Table) Ambiguous() map[string][]string {
	out := make(map[string][]string)
	if t == nil {
		return out
	}

	for _, prefix := range t.prefixes {
		for _, ident := range t.idents[prefix] {
			if _, done := out[ident]; done {
				continue
			}

			owners := t.Owners(ident)
			if len(owners) > 1 {
				out[ident] = owners
			}
		}
	}

	return out
}

// AmbiguousNames returns the sorted keys of Ambiguous.
func (t *Table) AmbiguousNames() []string {
	amb := t.Ambiguous()

	names := make([]string, 0, len(amb))
	for name := range amb {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Subset returns a new table holding only the given prefixes, in the given
// order. With no prefixes it returns a copy of the whole table.
func (t *Table) Subset(prefixes ...string) (*Table, error) {
	if len(prefixes) == 0 {
		prefixes = t.Prefixes()
	}

	sub := New()

	for _, prefix := range prefixes {
		if !t.Has(prefix) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPrefix, prefix)
		}

		err := sub.Add(prefix, t.idents[prefix]...)
		if err != nil {
			return nil, err
		}
	}

	return sub, nil
}

// UnmarshalYAML decodes a mapping of prefix to identifier list, keeping the
// mapping order as the processing order.
func (t *Table) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%w (line %d)", ErrNotMapping, node.Line)
	}

	fresh := New()

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]

		var idents []string

		decodeErr := valueNode.Decode(&idents)
		if decodeErr != nil {
			return fmt.Errorf("decode identifiers of %q: %w", keyNode.Value, decodeErr)
		}

		addErr := fresh.Add(keyNode.Value, idents...)
		if addErr != nil {
			return addErr
		}
	}

	*t = *fresh

	return nil
}

// MarshalYAML encodes the table as an ordered mapping.
func (t *Table) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}

	for _, prefix := range t.prefixes {
		value := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, ident := range t.idents[prefix] {
			value.Content = append(value.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: ident})
		}

		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: prefix},
			value,
		)
	}

	return node, nil
}
