package spawn

import (
	"github.com/udisondev/spawnforge/internal/geom"
)

// Method places the objects of one queue entry. Every implementation
// reports exactly one outcome per entry through ctx.Log (DistributedBatch
// reports one per asset name) and stops after its attempt cap.
type Method interface {
	Name() string
	Spawn(info *Info, area *geom.Area, ctx *Context)
}

// Attempt cap multipliers per method.
const (
	randomAttemptFactor   = 10
	percentAttemptFactor  = 20
	childrenAttemptFactor = 50
)

// DefaultCenterBias lifts center placements above the geometric center.
const DefaultCenterBias = 200

// Methods returns the seven placement methods keyed by position tag.
func Methods() map[Position]Method {
	return map[Position]Method{
		PositionExact:       Exact{},
		PositionCenter:      Center{},
		PositionRandom:      Random{},
		PositionPerimeter:   Perimeter{},
		PositionPercent:     Percent{},
		PositionChildren:    ChildrenRandom{},
		PositionDistributed: DistributedBatch{},
	}
}

// snap moves p onto the nearest free grid cell. Without a grid p is
// returned unchanged. ok is false when the grid has no free cell.
func snap(ctx *Context, p geom.Point, occupy bool) (geom.Point, bool) {
	if ctx.Grid == nil {
		return p, true
	}
	cell := ctx.Grid.NearestFree(p)
	if cell == nil {
		return p, false
	}
	if occupy {
		ctx.Grid.SetOccupied(cell, true)
	}
	return cell.Pos(), true
}

// scaled returns the (dx, dy) offset of info rescaled from the authoring
// size to the current area size.
func scaled(info *Info, b geom.Bounds) (int, int) {
	sx, sy := 1.0, 1.0
	if info.OriginWidth > 0 {
		sx = float64(b.Width()) / float64(info.OriginWidth)
	}
	if info.OriginHeight > 0 {
		sy = float64(b.Height()) / float64(info.OriginHeight)
	}
	return geom.Round(float64(info.DX) * sx), geom.Round(float64(info.DY) * sy)
}
