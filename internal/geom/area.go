package geom

import (
	"errors"
	"math"
	"math/rand/v2"
)

var (
	// ErrEmptyArea is returned when an area is built from no points.
	ErrEmptyArea = errors.New("area has no points")
	// ErrTooFewPoints is returned for a polygon with fewer than 3 vertices.
	ErrTooFewPoints = errors.New("polygon needs at least 3 points")
)

// Kind distinguishes polygon areas from degenerate single-point areas.
type Kind int

const (
	KindPolygon Kind = iota
	KindPoint
)

func (k Kind) String() string {
	if k == KindPoint {
		return "point"
	}
	return "polygon"
}

// Area is a closed polygon (or a single point) with lazily cached geometry.
// The placement engine treats an Area as read-only; mutators exist for the
// loaders that position child regions and mark the cache dirty.
type Area struct {
	name   string
	kind   Kind
	points []Point
	anchor Point

	dirty    bool
	bounds   Bounds
	centroid Point
	signed   float64
}

// NewArea builds an area from pts. One point gives a point area, two points
// are rejected. The slice is copied.
func NewArea(name string, pts []Point) (*Area, error) {
	switch {
	case len(pts) == 0:
		return nil, ErrEmptyArea
	case len(pts) == 1:
		return NewPointArea(name, pts[0]), nil
	case len(pts) < 3:
		return nil, ErrTooFewPoints
	}

	a := &Area{
		name:   name,
		kind:   KindPolygon,
		points: append([]Point(nil), pts...),
		dirty:  true,
	}
	return a, nil
}

// NewPointArea builds a degenerate area that only contains p itself.
func NewPointArea(name string, p Point) *Area {
	return &Area{
		name:   name,
		kind:   KindPoint,
		points: []Point{p},
		anchor: p,
		dirty:  true,
	}
}

// RectArea builds an axis-aligned rectangle with its top-left corner at (minX, minY).
func RectArea(name string, minX, minY, w, h int) *Area {
	a, _ := NewArea(name, []Point{
		{X: minX, Y: minY},
		{X: minX + w, Y: minY},
		{X: minX + w, Y: minY + h},
		{X: minX, Y: minY + h},
	})
	return a
}

func (a *Area) Name() string { return a.name }

func (a *Area) Kind() Kind { return a.kind }

// Points returns a copy of the vertices.
func (a *Area) Points() []Point {
	return append([]Point(nil), a.points...)
}

// Anchor returns the reference point moved by Align. It starts at the origin
// of the coordinate space the points were authored in.
func (a *Area) Anchor() Point { return a.anchor }

// Bounds returns the cached bounding box.
func (a *Area) Bounds() Bounds {
	a.refresh()
	return a.bounds
}

// Center returns the midpoint of the bounding box.
func (a *Area) Center() Point {
	return a.Bounds().Center()
}

// Centroid returns the area-weighted polygon centroid, or the bounding box
// center for point areas and zero-area polygons.
func (a *Area) Centroid() Point {
	a.refresh()
	return a.centroid
}

// SignedArea returns the shoelace area; positive for clockwise winding in
// y-down coordinates.
func (a *Area) SignedArea() float64 {
	a.refresh()
	return a.signed
}

// Size returns the absolute polygon area.
func (a *Area) Size() float64 {
	return math.Abs(a.SignedArea())
}

func (a *Area) refresh() {
	if !a.dirty {
		return
	}

	b := Bounds{MinX: a.points[0].X, MinY: a.points[0].Y, MaxX: a.points[0].X, MaxY: a.points[0].Y}
	for _, p := range a.points[1:] {
		b.MinX = min(b.MinX, p.X)
		b.MinY = min(b.MinY, p.Y)
		b.MaxX = max(b.MaxX, p.X)
		b.MaxY = max(b.MaxY, p.Y)
	}
	a.bounds = b

	a.signed = 0
	a.centroid = b.Center()
	if a.kind == KindPolygon {
		var cross, cx, cy float64
		n := len(a.points)
		for i := range n {
			p, q := a.points[i], a.points[(i+1)%n]
			c := float64(p.X)*float64(q.Y) - float64(q.X)*float64(p.Y)
			cross += c
			cx += float64(p.X+q.X) * c
			cy += float64(p.Y+q.Y) * c
		}
		a.signed = cross / 2
		if cross != 0 {
			a.centroid = Point{X: Round(cx / (3 * cross)), Y: Round(cy / (3 * cross))}
		}
	}

	a.dirty = false
}

// Contains reports whether p is inside the area. Points on the polygon
// boundary count as inside. A point area contains only its own point.
func (a *Area) Contains(p Point) bool {
	if a.kind == KindPoint {
		return p == a.points[0]
	}
	if !a.Bounds().Contains(p) {
		return false
	}

	n := len(a.points)
	count := 0
	j := n - 1
	for i := range n {
		pi, pj := a.points[i], a.points[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) {
			slope := int64(p.X-pi.X)*int64(pj.Y-pi.Y) - int64(pj.X-pi.X)*int64(p.Y-pi.Y)
			if slope == 0 {
				return true
			}
			if (slope < 0) != (pj.Y-pi.Y < 0) {
				count++
			}
		}
		j = i
	}
	return count%2 == 1
}

// RandomPoint samples uniformly inside the bounding box until a contained
// point is found or tries runs out.
func (a *Area) RandomPoint(rng *rand.Rand, tries int) (Point, bool) {
	b := a.Bounds()
	for range tries {
		p := Point{
			X: b.MinX + rng.IntN(b.Width()+1),
			Y: b.MinY + rng.IntN(b.Height()+1),
		}
		if a.Contains(p) {
			return p, true
		}
	}
	return Point{}, false
}

// Offset translates every vertex and the anchor.
func (a *Area) Offset(dx, dy int) {
	for i := range a.points {
		a.points[i] = a.points[i].Add(dx, dy)
	}
	a.anchor = a.anchor.Add(dx, dy)
	a.dirty = true
}

// Align moves the area so that its anchor lands on p.
func (a *Area) Align(p Point) {
	a.Offset(p.X-a.anchor.X, p.Y-a.anchor.Y)
}

// FlipHorizontal mirrors the area around the vertical line x = axisX.
func (a *Area) FlipHorizontal(axisX int) {
	for i := range a.points {
		a.points[i].X = 2*axisX - a.points[i].X
	}
	a.anchor.X = 2*axisX - a.anchor.X
	a.dirty = true
}

// Scale resizes the area around its bounding box center. The anchor is
// reset to the bottom middle of the new bounds.
func (a *Area) Scale(f float64) {
	if f <= 0 {
		return
	}
	c := a.Center()
	for i, p := range a.points {
		a.points[i] = Point{
			X: c.X + Round(float64(p.X-c.X)*f),
			Y: c.Y + Round(float64(p.Y-c.Y)*f),
		}
	}
	a.dirty = true
	b := a.Bounds()
	a.anchor = Point{X: b.Center().X, Y: b.MaxY}
}

// Contract pulls every vertex inset units towards the bounding box center.
// Vertices closer than inset collapse onto the center.
func (a *Area) Contract(inset int) {
	if inset <= 0 || a.kind == KindPoint {
		return
	}
	c := a.Center()
	for i, p := range a.points {
		dx := float64(p.X - c.X)
		dy := float64(p.Y - c.Y)
		d := math.Hypot(dx, dy)
		if d <= float64(inset) {
			a.points[i] = c
			continue
		}
		k := (d - float64(inset)) / d
		a.points[i] = Point{X: c.X + Round(dx*k), Y: c.Y + Round(dy*k)}
	}
	a.dirty = true
}

// Clone returns an independent copy.
func (a *Area) Clone() *Area {
	cp := *a
	cp.points = append([]Point(nil), a.points...)
	return &cp
}
