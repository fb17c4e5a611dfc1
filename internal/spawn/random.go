package spawn

import (
	"github.com/udisondev/spawnforge/internal/geom"
)

// rejectionTries bounds area sampling per attempt when no grid is present.
const rejectionTries = 32

// Random scatters objects over free grid cells inside the area, or over
// uniformly sampled area points when there is no grid. Quantity counts
// slots: a null pick fills one without placing anything.
type Random struct{}

func (Random) Name() string { return "random" }

func (m Random) Spawn(info *Info, area *geom.Area, ctx *Context) {
	attemptCap := max(info.Quantity, 0) * randomAttemptFactor

	slots, placed, attempts := 0, 0, 0
	for slots < info.Quantity && attempts < attemptCap {
		var p geom.Point
		if ctx.Grid != nil {
			cell := ctx.Grid.RandomFreeInArea(area, ctx.Rng)
			if cell == nil {
				break
			}
			p = cell.Pos()
		} else {
			var ok bool
			if p, ok = area.RandomPoint(ctx.Rng, rejectionTries); !ok {
				attempts++
				continue
			}
		}
		attempts++

		cand := info.SelectCandidate(ctx.Rng)
		if cand == nil || cand.Null {
			// null picks use up a slot and leave the spot empty
			slots++
			continue
		}
		if ctx.Violates(cand.Desc, p, info) {
			continue
		}

		if ctx.Grid != nil {
			ctx.Grid.SetOccupiedAt(p, true)
		}
		ctx.SpawnAsset(cand, p, info, m.Name())
		slots++
		placed++
	}

	ctx.Log.OutputAndLog(info.Name, info.Quantity, placed, attempts, attemptCap, m.Name())
}
