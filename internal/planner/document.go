package planner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNotMapping is returned when a document's top level is not a mapping.
var ErrNotMapping = errors.New("document root is not a mapping")

// Document is one planner source kept as a yaml.Node tree. The planner reads
// and edits nodes in place, so saving only rewrites what changed and keeps
// key order and comments of the rest.
type Document struct {
	// Path is empty for inline documents; those are never saved.
	Path  string
	label string
	doc   *yaml.Node
	root  *yaml.Node
	dirty bool
}

// LoadDocument reads and parses a YAML or JSON document.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document %s: %w", path, err)
	}
	return ParseDocument(path, data)
}

// ParseDocument parses data as the document stored at path. An empty input
// gives an empty mapping.
func ParseDocument(path string, data []byte) (*Document, error) {
	var n yaml.Node
	if err := yaml.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("parsing document %s: %w", path, err)
	}

	if n.Kind == 0 {
		return newDocument(path, path, &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}), nil
	}
	if n.Kind != yaml.DocumentNode || len(n.Content) == 0 || n.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parsing document %s: %w", path, ErrNotMapping)
	}
	return &Document{Path: path, label: path, doc: &n, root: n.Content[0]}, nil
}

func newDocument(path, label string, root *yaml.Node) *Document {
	return &Document{
		Path:  path,
		label: label,
		doc:   &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}},
		root:  root,
	}
}

// NewInlineDocument wraps a sequence of spawn entries into a document with a
// single spawn_groups key. label names the document in ids and logs.
func NewInlineDocument(label string, entries *yaml.Node) *Document {
	root := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	if entries != nil {
		setValue(root, keySpawnGroups, entries)
	}
	return newDocument("", label, root)
}

// Label returns the path, or the inline label.
func (d *Document) Label() string { return d.label }

// Root returns the top-level mapping node.
func (d *Document) Root() *yaml.Node { return d.root }

// Dirty reports whether the tree was edited since it was loaded or saved.
func (d *Document) Dirty() bool { return d.dirty }

func (d *Document) markDirty() { d.dirty = true }

// Encode renders the tree. Documents with a .json path are written as JSON.
func (d *Document) Encode() ([]byte, error) {
	if strings.EqualFold(filepath.Ext(d.Path), ".json") {
		out, err := yaml.Marshal(jsonStyle(d.root))
		if err != nil {
			return nil, fmt.Errorf("encoding document %s: %w", d.label, err)
		}
		return out, nil
	}

	out, err := yaml.Marshal(d.doc)
	if err != nil {
		return nil, fmt.Errorf("encoding document %s: %w", d.label, err)
	}
	return out, nil
}

// Save writes the document back if it is dirty and has a path.
func (d *Document) Save() error {
	if !d.dirty || d.Path == "" {
		return nil
	}
	data, err := d.Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(d.Path, data, 0o644); err != nil {
		return fmt.Errorf("writing document %s: %w", d.Path, err)
	}
	d.dirty = false
	return nil
}

// jsonStyle returns a copy of n in flow style with double-quoted strings,
// which yaml.v3 emits as valid JSON.
func jsonStyle(n *yaml.Node) *yaml.Node {
	cp := *n
	cp.HeadComment, cp.LineComment, cp.FootComment = "", "", ""
	switch n.Kind {
	case yaml.MappingNode, yaml.SequenceNode:
		cp.Style = yaml.FlowStyle
		cp.Content = make([]*yaml.Node, len(n.Content))
		for i, c := range n.Content {
			cp.Content[i] = jsonStyle(c)
		}
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			cp.Style, cp.Value = 0, "null"
		case "!!int", "!!float", "!!bool":
			cp.Style = 0
		default:
			cp.Style = yaml.DoubleQuotedStyle
		}
	case yaml.AliasNode:
		if n.Alias != nil {
			return jsonStyle(n.Alias)
		}
	}
	return &cp
}

// cloneNode deep-copies a node tree.
func cloneNode(n *yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	cp := *n
	if len(n.Content) > 0 {
		cp.Content = make([]*yaml.Node, len(n.Content))
		for i, c := range n.Content {
			cp.Content[i] = cloneNode(c)
		}
	}
	return &cp
}
