package spawn

import (
	"github.com/udisondev/spawnforge/internal/geom"
)

// ChildrenRandom scatters objects anywhere inside the area. Spacing and
// distance rules are not applied and the grid is not used. A null pick
// still uses up one of the requested slots.
type ChildrenRandom struct{}

func (ChildrenRandom) Name() string { return "children_random" }

func (m ChildrenRandom) Spawn(info *Info, area *geom.Area, ctx *Context) {
	attemptCap := max(info.Quantity, 0) * childrenAttemptFactor

	slots, placed, attempts := 0, 0, 0
	for slots < info.Quantity && attempts < attemptCap {
		attempts++

		p, ok := area.RandomPoint(ctx.Rng, 1)
		if !ok {
			continue
		}

		slots++
		cand := info.SelectCandidate(ctx.Rng)
		if cand == nil || cand.Null {
			continue
		}
		ctx.SpawnAsset(cand, p, info, m.Name())
		placed++
	}

	ctx.Log.OutputAndLog(info.Name, info.Quantity, placed, attempts, attemptCap, m.Name())
}
