package asset

import (
	"github.com/zyedidia/generic/mapset"
	"gopkg.in/yaml.v3"

	"github.com/udisondev/spawnforge/internal/geom"
)

// TypeBoundary marks structural pieces that may sit edge to edge.
const TypeBoundary = "boundary"

// Descriptor is the immutable catalog entry for one asset.
type Descriptor struct {
	Name string
	Type string

	// Original canvas size and authoring scale.
	CanvasWidth  int
	CanvasHeight int
	Scale        float64
	// Flippable assets are mirrored at random when placed.
	Flippable bool

	// Optional polygons in asset-local coordinates (origin = asset position).
	Spacing     *geom.Area
	Collision   *geom.Area
	Interaction *geom.Area

	// Named local areas that child regions refer to.
	Areas map[string]*geom.Area

	MinSameTypeDistance int
	MinDistanceAll      int

	Children []ChildRegion

	tags mapset.Set[string]
}

// ChildRegion declares nested content placed inside one of the asset's areas.
type ChildRegion struct {
	Area     string
	JSONPath string
	ZOffset  int
	// Inline holds spawn entries written directly in the catalog.
	Inline *yaml.Node
}

// HasInline reports whether the region carries inline spawn entries.
func (c ChildRegion) HasInline() bool {
	return c.Inline != nil && len(c.Inline.Content) > 0
}

// IsBoundary reports whether spacing rules are waived for this asset.
func (d *Descriptor) IsBoundary() bool {
	return d.Type == TypeBoundary
}

// HasTag reports whether the asset carries tag.
func (d *Descriptor) HasTag(tag string) bool {
	return d.tags.Has(tag)
}

// Tags returns the asset tags in no particular order.
func (d *Descriptor) Tags() []string {
	out := make([]string, 0, d.tags.Size())
	d.tags.Each(func(t string) {
		out = append(out, t)
	})
	return out
}

// SpacingSize returns the width and height of the spacing polygon and
// whether the asset has one.
func (d *Descriptor) SpacingSize() (int, int, bool) {
	if d == nil || d.Spacing == nil {
		return 0, 0, false
	}
	b := d.Spacing.Bounds()
	return b.Width(), b.Height(), true
}

// Area returns a fresh copy of the named local area.
func (d *Descriptor) Area(name string) (*geom.Area, bool) {
	a, ok := d.Areas[name]
	if !ok {
		return nil, false
	}
	return a.Clone(), true
}

// NewDescriptor builds a descriptor with the given tags. Used by loaders
// and tests.
func NewDescriptor(name string, tags ...string) *Descriptor {
	d := &Descriptor{
		Name:  name,
		Scale: 1,
		Areas: make(map[string]*geom.Area),
		tags:  mapset.New[string](),
	}
	for _, t := range tags {
		d.tags.Put(t)
	}
	return d
}
