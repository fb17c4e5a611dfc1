package spawn

import (
	"log/slog"
	"slices"

	"github.com/udisondev/spawnforge/internal/geom"
)

// DistributedBatch walks a jittered lattice over the area bounds and makes
// one weighted pick among all batch members per lattice point. A null pick
// leaves the point empty. It reports one outcome per member asset.
type DistributedBatch struct{}

func (DistributedBatch) Name() string { return "distributed_batch" }

type batchTally struct {
	picks  int
	placed int
}

func (m DistributedBatch) Spawn(info *Info, area *geom.Area, ctx *Context) {
	b := area.Bounds()
	spacing := max(info.GridSpacing, 1)
	jitter := max(info.Jitter, 0)
	attemptCap := (b.Width()/spacing + 1) * (b.Height()/spacing + 1)

	tally := make(map[string]*batchTally)
	for _, c := range info.Candidates {
		if !c.Null {
			tally[c.Name] = &batchTally{}
		}
	}

	attempts := 0
walk:
	for y := b.MinY; y <= b.MaxY; y += spacing {
		for x := b.MinX; x <= b.MaxX; x += spacing {
			if ctx.Grid != nil && ctx.Grid.FreeCount() == 0 {
				break walk
			}
			attempts++

			p := geom.Point{X: x, Y: y}
			if jitter > 0 {
				p = p.Add(uniform(ctx.Rng, -jitter, jitter), uniform(ctx.Rng, -jitter, jitter))
			}
			if !area.Contains(p) {
				continue
			}
			if ctx.Grid != nil && ctx.Grid.CellAt(p).Occupied() {
				continue
			}

			cand := info.SelectCandidate(ctx.Rng)
			if cand == nil || cand.Null {
				continue
			}
			t := tally[cand.Name]
			t.picks++
			if ctx.Violates(cand.Desc, p, info) {
				continue
			}

			if ctx.Grid != nil {
				ctx.Grid.SetOccupiedAt(p, true)
			}
			ctx.SpawnAsset(cand, p, info, m.Name())
			t.placed++
		}
	}

	slog.Debug("lattice walked",
		"entry", info.Name,
		"points", attempts,
		"cap", attemptCap)

	names := make([]string, 0, len(tally))
	for name := range tally {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		t := tally[name]
		ctx.Log.OutputAndLog(name, t.picks, t.placed, t.picks, attemptCap, m.Name())
	}
}
