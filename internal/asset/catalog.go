package asset

import (
	"fmt"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/spawnforge/internal/geom"
)

// Catalog maps asset names to descriptors.
type Catalog struct {
	byName map[string]*Descriptor
	byTag  map[string][]string
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		byName: make(map[string]*Descriptor),
		byTag:  make(map[string][]string),
	}
}

// Add registers d, replacing any descriptor with the same name.
func (c *Catalog) Add(d *Descriptor) {
	if old, ok := c.byName[d.Name]; ok {
		for _, t := range old.Tags() {
			c.byTag[t] = slices.DeleteFunc(c.byTag[t], func(n string) bool { return n == d.Name })
		}
	}
	c.byName[d.Name] = d
	for _, t := range d.Tags() {
		names := c.byTag[t]
		if i, found := slices.BinarySearch(names, d.Name); !found {
			c.byTag[t] = slices.Insert(names, i, d.Name)
		}
	}
}

// Get returns the descriptor for name.
func (c *Catalog) Get(name string) (*Descriptor, bool) {
	d, ok := c.byName[name]
	return d, ok
}

// WithTag returns descriptors carrying tag, sorted by name.
func (c *Catalog) WithTag(tag string) []*Descriptor {
	names := c.byTag[tag]
	out := make([]*Descriptor, 0, len(names))
	for _, n := range names {
		out = append(out, c.byName[n])
	}
	return out
}

// Names returns all asset names, sorted.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.byName))
	for n := range c.byName {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// Len returns the number of assets.
func (c *Catalog) Len() int { return len(c.byName) }

type catalogFile struct {
	Assets []descriptorYAML `yaml:"assets"`
}

type descriptorYAML struct {
	Name                string              `yaml:"name"`
	Type                string              `yaml:"type"`
	Tags                []string            `yaml:"tags"`
	CanvasWidth         int                 `yaml:"canvas_width"`
	CanvasHeight        int                 `yaml:"canvas_height"`
	Scale               float64             `yaml:"scale"`
	Flippable           bool                `yaml:"flippable"`
	SpacingArea         [][2]int            `yaml:"spacing_area"`
	CollisionArea       [][2]int            `yaml:"collision_area"`
	InteractionArea     [][2]int            `yaml:"interaction_area"`
	Areas               map[string][][2]int `yaml:"areas"`
	MinSameTypeDistance int                 `yaml:"min_same_type_distance"`
	MinDistanceAll      int                 `yaml:"min_distance_all"`
	Children            []childYAML         `yaml:"child_assets"`
}

type childYAML struct {
	Area     string    `yaml:"area"`
	JSONPath string    `yaml:"json_path"`
	ZOffset  int       `yaml:"z_offset"`
	Inline   yaml.Node `yaml:"spawn_groups"`
}

// LoadCatalog reads a YAML (or JSON) catalog file with a top-level
// "assets" list. Entries with unusable polygons keep loading without them.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes catalog data.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	c := NewCatalog()
	for _, raw := range f.Assets {
		if raw.Name == "" {
			slog.Warn("skipping catalog entry without name")
			continue
		}
		c.Add(raw.descriptor())
	}
	return c, nil
}

func (r descriptorYAML) descriptor() *Descriptor {
	d := NewDescriptor(r.Name, r.Tags...)
	d.Type = r.Type
	d.CanvasWidth = r.CanvasWidth
	d.CanvasHeight = r.CanvasHeight
	if r.Scale > 0 {
		d.Scale = r.Scale
	}
	d.Flippable = r.Flippable
	d.MinSameTypeDistance = r.MinSameTypeDistance
	d.MinDistanceAll = r.MinDistanceAll
	d.Spacing = polygon(r.Name, "spacing_area", r.SpacingArea)
	d.Collision = polygon(r.Name, "collision_area", r.CollisionArea)
	d.Interaction = polygon(r.Name, "interaction_area", r.InteractionArea)

	for name, pts := range r.Areas {
		if a := polygon(r.Name, name, pts); a != nil {
			d.Areas[name] = a
		}
	}

	for _, ch := range r.Children {
		region := ChildRegion{
			Area:     ch.Area,
			JSONPath: ch.JSONPath,
			ZOffset:  ch.ZOffset,
		}
		if ch.Inline.Kind == yaml.SequenceNode {
			inline := ch.Inline
			region.Inline = &inline
		}
		d.Children = append(d.Children, region)
	}
	return d
}

// polygon converts raw pairs to an area. Missing polygons yield nil; invalid
// ones are logged and dropped.
func polygon(assetName, field string, raw [][2]int) *geom.Area {
	if len(raw) == 0 {
		return nil
	}
	pts := make([]geom.Point, len(raw))
	for i, p := range raw {
		pts[i] = geom.Point{X: p[0], Y: p[1]}
	}
	a, err := geom.NewArea(field, pts)
	if err != nil {
		slog.Warn("dropping invalid asset polygon",
			"asset", assetName,
			"field", field,
			"error", err)
		return nil
	}
	return a
}
