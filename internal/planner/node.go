package planner

import (
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/spawnforge/internal/geom"
)

// Document keys.
const (
	keySpawnGroups = "spawn_groups"
	keyLegacyList  = "assets"
	keyBatch       = "batch_assets"
	keyCandidates  = "candidates"
	keySpawnID     = "spawn_id"
	keyName        = "name"
	keyTag         = "tag"
	keyChance      = "chance"
	keyPercent     = "percent"
	keyPosition    = "position"
	keyPriority    = "priority"
)

// lookup returns the value node of key in mapping m, or nil.
func lookup(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func has(m *yaml.Node, key string) bool {
	return lookup(m, key) != nil
}

// setValue replaces the value of key or appends the pair.
func setValue(m *yaml.Node, key string, v *yaml.Node) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content[i+1] = v
			return
		}
	}
	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		v)
}

func deleteKey(m *yaml.Node, key string) bool {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content = append(m.Content[:i], m.Content[i+2:]...)
			return true
		}
	}
	return false
}

// renameKey moves from to to. If to already exists the old key is dropped.
func renameKey(m *yaml.Node, from, to string) bool {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value != from {
			continue
		}
		if has(m, to) {
			m.Content = append(m.Content[:i], m.Content[i+2:]...)
		} else {
			m.Content[i].Value = to
		}
		return true
	}
	return false
}

func strNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func intNode(v int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(v)}
}

func mappingNode(pairs ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: pairs}
}

func isNull(n *yaml.Node) bool {
	return n == nil || (n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null")
}

func str(m *yaml.Node, key, def string) string {
	n := lookup(m, key)
	if n == nil || n.Kind != yaml.ScalarNode {
		return def
	}
	return n.Value
}

// number reads a number. Malformed values fall back to def.
func number(m *yaml.Node, key string, def float64) (float64, bool) {
	n := lookup(m, key)
	if n == nil || n.Kind != yaml.ScalarNode || isNull(n) {
		return def, false
	}
	var f float64
	if err := n.Decode(&f); err != nil {
		return def, false
	}
	return f, true
}

// integer reads a number rounded half away from zero.
func integer(m *yaml.Node, key string, def int) (int, bool) {
	f, ok := number(m, key, 0)
	if !ok {
		return def, false
	}
	return geom.Round(f), true
}

func boolean(m *yaml.Node, key string, def bool) bool {
	n := lookup(m, key)
	if n == nil || n.Kind != yaml.ScalarNode {
		return def
	}
	var b bool
	if err := n.Decode(&b); err != nil {
		return def
	}
	return b
}

// midpoint returns the integer mean of keyMin and keyMax, each defaulting to def.
func midpoint(m *yaml.Node, keyMin, keyMax string, def int) int {
	lo, _ := integer(m, keyMin, def)
	hi, _ := integer(m, keyMax, def)
	return (lo + hi) / 2
}
