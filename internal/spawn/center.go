package spawn

import (
	"log/slog"

	"github.com/udisondev/spawnforge/internal/geom"
)

// Center places objects at the area centroid lifted by the context's center
// bias. It snaps to the grid but leaves the cell free, so later scatter
// entries may still use it.
type Center struct{}

func (Center) Name() string { return "center" }

func (m Center) Spawn(info *Info, area *geom.Area, ctx *Context) {
	target := area.Centroid().Add(0, -ctx.CenterBias)
	attemptCap := max(info.Quantity, 0)

	placed, attempts := 0, 0
	for placed < info.Quantity && attempts < attemptCap {
		attempts++

		cand := info.SelectCandidate(ctx.Rng)
		if cand == nil || cand.Null {
			continue
		}

		p, ok := snap(ctx, target, false)
		if !ok {
			break
		}
		if ctx.Violates(cand.Desc, p, info) {
			slog.Debug("center position rejected", "asset", cand.Name, "pos", p)
			continue
		}

		ctx.SpawnAsset(cand, p, info, m.Name())
		placed++
	}

	ctx.Log.OutputAndLog(info.Name, info.Quantity, placed, attempts, attemptCap, m.Name())
}
