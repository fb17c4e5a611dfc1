package spawn

import (
	"math/rand/v2"

	"github.com/udisondev/spawnforge/internal/geom"
)

// Percent places objects at random offsets from the area center, expressed
// in percent of the half extent on each axis. Null picks use up a slot as
// in Random.
type Percent struct{}

func (Percent) Name() string { return "percent" }

func (m Percent) Spawn(info *Info, area *geom.Area, ctx *Context) {
	attemptCap := max(info.Quantity, 0) * percentAttemptFactor
	b := area.Bounds()
	c := area.Center()
	xMin, xMax := percentRange(info.PXMin, info.PXMax)
	yMin, yMax := percentRange(info.PYMin, info.PYMax)

	slots, placed, attempts := 0, 0, 0
	for slots < info.Quantity && attempts < attemptCap {
		attempts++

		px := uniform(ctx.Rng, xMin, xMax)
		py := uniform(ctx.Rng, yMin, yMax)
		target := c.Add(
			geom.Round(float64(px)/100*float64(b.Width())/2),
			geom.Round(float64(py)/100*float64(b.Height())/2),
		)

		p, ok := snap(ctx, target, false)
		if !ok {
			break
		}
		if !area.Contains(p) {
			continue
		}

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

// percentRange clamps both ends into [-100, 100] and orders them.
func percentRange(lo, hi int) (int, int) {
	lo = min(max(lo, -100), 100)
	hi = min(max(hi, -100), 100)
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi
}

// uniform returns an integer in [lo, hi].
func uniform(rng *rand.Rand, lo, hi int) int {
	return lo + rng.IntN(hi-lo+1)
}
