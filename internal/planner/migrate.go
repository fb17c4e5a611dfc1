package planner

import (
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/spawnforge/internal/spawn"
)

// legacyKeys maps old entry keys to their current names.
var legacyKeys = [][2]string{
	{"check_min_spacing", "enforce_spacing"},
	{"exact_dx", "dx"},
	{"exact_dy", "dy"},
	{"exact_origin_width", "origional_width"},
	{"exact_origin_height", "origional_height"},
	{"percent_x_min", "p_x_min"},
	{"percent_x_max", "p_x_max"},
	{"percent_y_min", "p_y_min"},
	{"percent_y_max", "p_y_max"},
	{"border_shift", "percentage_shift_from_center"},
}

// migrate rewrites legacy layouts of d in place and marks it dirty when
// anything changed. It returns the spawn_groups sequence, or nil.
func migrate(d *Document) *yaml.Node {
	root := d.Root()
	if !has(root, keySpawnGroups) && lookup(root, keyLegacyList) != nil && lookup(root, keyLegacyList).Kind == yaml.SequenceNode {
		renameKey(root, keyLegacyList, keySpawnGroups)
		d.markDirty()
	}

	groups := lookup(root, keySpawnGroups)
	if groups == nil {
		return nil
	}
	if groups.Kind != yaml.SequenceNode {
		slog.Warn("spawn_groups is not a list", "document", d.Label())
		return nil
	}

	for _, entry := range groups.Content {
		if entry.Kind != yaml.MappingNode {
			continue
		}
		if migrateEntry(entry) {
			d.markDirty()
		}
	}
	return groups
}

func migrateEntry(entry *yaml.Node) bool {
	changed := false

	if pos := lookup(entry, keyPosition); pos != nil && pos.Kind == yaml.ScalarNode && pos.Value == "Exact Position" {
		pos.Value = string(spawn.PositionExact)
		changed = true
	}
	for _, k := range legacyKeys {
		if renameKey(entry, k[0], k[1]) {
			changed = true
		}
	}

	cands := lookup(entry, keyCandidates)
	if cands == nil || cands.Kind != yaml.SequenceNode {
		cands = &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		// legacy entries name the asset directly
		if name := str(entry, keyName, ""); name != "" {
			cands.Content = append(cands.Content, candidateNode(name, 100))
		}
		setValue(entry, keyCandidates, cands)
		changed = true
	}
	if migrateCandidates(cands) {
		changed = true
	}
	return changed
}

// migrateCandidates turns bare strings and nulls into {name, chance} maps
// and makes sure a null option is present.
func migrateCandidates(cands *yaml.Node) bool {
	changed, hasNull := false, false

	for i, c := range cands.Content {
		switch {
		case isNull(c):
			cands.Content[i] = candidateNode(spawn.NullCandidate, 0)
			hasNull, changed = true, true
		case c.Kind == yaml.ScalarNode:
			chance := 100
			if c.Value == spawn.NullCandidate {
				chance = 0
				hasNull = true
			}
			cands.Content[i] = candidateNode(c.Value, chance)
			changed = true
		case c.Kind == yaml.MappingNode:
			isNullName := nullName(c)
			if isNullName {
				hasNull = true
			}
			if !has(c, keyChance) {
				chance := 100
				if isNullName {
					chance = 0
				}
				setValue(c, keyChance, intNode(chance))
				changed = true
			}
		}
	}

	if !hasNull {
		cands.Content = append([]*yaml.Node{candidateNode(spawn.NullCandidate, 0)}, cands.Content...)
		changed = true
	}
	return changed
}

func candidateNode(name string, chance int) *yaml.Node {
	return mappingNode(
		strNode(keyName), strNode(name),
		strNode(keyChance), intNode(chance),
	)
}

// nullName reports whether a candidate map names the null option.
func nullName(c *yaml.Node) bool {
	n := lookup(c, keyName)
	return n != nil && (isNull(n) || n.Value == spawn.NullCandidate)
}
