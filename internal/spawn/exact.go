package spawn

import (
	"log/slog"

	"github.com/udisondev/spawnforge/internal/geom"
)

// Exact places objects at a fixed offset from the area center. The offset
// is either a pixel offset rescaled from its authoring size or a percent
// position. Area containment is not required.
type Exact struct{}

func (Exact) Name() string { return "exact" }

func (m Exact) Spawn(info *Info, area *geom.Area, ctx *Context) {
	target := exactPoint(info, area)
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
			slog.Debug("exact position rejected", "asset", cand.Name, "pos", p)
			continue
		}

		if ctx.Grid != nil {
			ctx.Grid.SetOccupiedAt(p, true)
		}
		ctx.SpawnAsset(cand, p, info, m.Name())
		placed++
	}

	ctx.Log.OutputAndLog(info.Name, info.Quantity, placed, attempts, attemptCap, m.Name())
}

func exactPoint(info *Info, area *geom.Area) geom.Point {
	b := area.Bounds()
	c := area.Center()
	if info.UsePercentPos {
		return c.Add(
			geom.Round((info.EPX-50)/100*float64(b.Width())),
			geom.Round((info.EPY-50)/100*float64(b.Height())),
		)
	}
	dx, dy := scaled(info, b)
	return c.Add(dx, dy)
}
