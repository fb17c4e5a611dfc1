package spawn

import (
	"github.com/udisondev/spawnforge/internal/asset"
	"github.com/udisondev/spawnforge/internal/geom"
	"github.com/udisondev/spawnforge/internal/world"
)

// Checker validates candidate positions. It holds no state besides its
// configuration, so Check is a pure function of its arguments.
type Checker struct {
	// Anchor positions spacing boxes around object positions.
	Anchor geom.Anchor
}

// NewChecker creates a checker using anchor for spacing boxes.
func NewChecker(anchor geom.Anchor) *Checker {
	return &Checker{Anchor: anchor}
}

// Check reports whether placing desc at p violates a rule. true means
// reject the point. Rules, in order: exclusion zones, global minimum
// distance, then (unless desc is a boundary piece) spacing overlap against
// the k nearest objects and same-type minimum distance.
func (c *Checker) Check(
	desc *asset.Descriptor,
	p geom.Point,
	exclusions []*geom.Area,
	objects []*world.Object,
	checkSpacing, checkMinType, checkMinAll bool,
	k int,
) bool {
	for _, zone := range exclusions {
		if zone.Contains(p) {
			return true
		}
	}
	if desc == nil {
		return false
	}

	if checkMinAll && desc.MinDistanceAll > 0 {
		for _, obj := range objects {
			if p.Within(obj.Pos, desc.MinDistanceAll) {
				return true
			}
		}
	}

	if desc.IsBoundary() {
		return false
	}

	if checkSpacing && desc.Spacing != nil && k > 0 && len(objects) > 0 {
		if c.spacingOverlap(desc, p, nearest(objects, p, k)) {
			return true
		}
	}

	if checkMinType && desc.MinSameTypeDistance > 0 {
		for _, obj := range objects {
			if obj.Name == desc.Name && p.Within(obj.Pos, desc.MinSameTypeDistance) {
				return true
			}
		}
	}

	return false
}

func (c *Checker) spacingOverlap(desc *asset.Descriptor, p geom.Point, neighbors []*world.Object) bool {
	w, h, _ := desc.SpacingSize()
	box := c.Anchor.Box(p, w, h)

	for _, n := range neighbors {
		nw, nh, ok := n.Desc.SpacingSize()
		if !ok {
			nw, nh = 1, 1
		}
		if box.Overlaps(c.Anchor.Box(n.Pos, nw, nh)) {
			return true
		}
	}
	return false
}

// nearest returns up to k objects closest to p. It keeps a sorted window of
// size k instead of sorting all objects.
func nearest(objects []*world.Object, p geom.Point, k int) []*world.Object {
	if len(objects) <= k {
		return objects
	}

	best := make([]*world.Object, 0, k)
	dist := make([]int64, 0, k)
	for _, obj := range objects {
		d := p.DistSq(obj.Pos)
		if len(best) == k && d >= dist[k-1] {
			continue
		}
		if len(best) < k {
			best = append(best, obj)
			dist = append(dist, d)
		} else {
			best[k-1] = obj
			dist[k-1] = d
		}
		// insertion step
		for i := len(best) - 1; i > 0 && dist[i] < dist[i-1]; i-- {
			best[i], best[i-1] = best[i-1], best[i]
			dist[i], dist[i-1] = dist[i-1], dist[i]
		}
	}
	return best
}
