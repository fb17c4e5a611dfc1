package geom

import (
	"fmt"
	"math"
)

// Point is an integer position in room coordinates. Y grows downwards.
type Point struct {
	X int
	Y int
}

// Add returns p shifted by (dx, dy).
func (p Point) Add(dx, dy int) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// DistSq returns the squared euclidean distance between p and q.
func (p Point) DistSq(q Point) int64 {
	dx := int64(p.X - q.X)
	dy := int64(p.Y - q.Y)
	return dx*dx + dy*dy
}

// Within reports whether q lies strictly closer than r to p.
func (p Point) Within(q Point, r int) bool {
	return p.DistSq(q) < int64(r)*int64(r)
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Round converts f to the nearest integer, halves away from zero.
func Round(f float64) int {
	return int(math.Round(f))
}

// Bounds is an inclusive axis-aligned box.
type Bounds struct {
	MinX int
	MinY int
	MaxX int
	MaxY int
}

// Width returns MaxX - MinX.
func (b Bounds) Width() int { return b.MaxX - b.MinX }

// Height returns MaxY - MinY.
func (b Bounds) Height() int { return b.MaxY - b.MinY }

// Center returns the midpoint of the box.
func (b Bounds) Center() Point {
	return Point{X: (b.MinX + b.MaxX) / 2, Y: (b.MinY + b.MaxY) / 2}
}

// Contains reports whether p lies inside b, edges included.
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// Overlaps reports whether the two boxes share interior area.
// Boxes that only touch along an edge do not overlap.
func (b Bounds) Overlaps(o Bounds) bool {
	return b.MinX < o.MaxX && o.MinX < b.MaxX &&
		b.MinY < o.MaxY && o.MinY < b.MaxY
}

// Anchor selects how a box of a given size is positioned around a point.
type Anchor int

const (
	// AnchorCenter puts the point in the middle of the box.
	AnchorCenter Anchor = iota
	// AnchorBottom puts the point on the middle of the bottom edge.
	AnchorBottom
)

// ParseAnchor maps a config value to an Anchor. Empty means AnchorCenter.
func ParseAnchor(s string) (Anchor, error) {
	switch s {
	case "", "center":
		return AnchorCenter, nil
	case "bottom":
		return AnchorBottom, nil
	default:
		return AnchorCenter, fmt.Errorf("unknown anchor %q", s)
	}
}

func (a Anchor) String() string {
	if a == AnchorBottom {
		return "bottom"
	}
	return "center"
}

// Box returns the w x h box positioned at p under anchor a.
func (a Anchor) Box(p Point, w, h int) Bounds {
	left := p.X - w/2
	top := p.Y - h/2
	if a == AnchorBottom {
		top = p.Y - h
	}
	return Bounds{MinX: left, MinY: top, MaxX: left + w, MaxY: top + h}
}
