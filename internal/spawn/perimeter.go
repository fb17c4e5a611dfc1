package spawn

import (
	"math"

	"github.com/udisondev/spawnforge/internal/geom"
)

// Perimeter spreads objects evenly around a circle centered on the area
// center (plus an optional rescaled offset). Each point picks its own
// candidate. Points are not snapped; a point landing on the grid marks its
// cell occupied, points off the grid leave it untouched.
type Perimeter struct{}

func (Perimeter) Name() string { return "perimeter" }

func (m Perimeter) Spawn(info *Info, area *geom.Area, ctx *Context) {
	b := area.Bounds()
	dx, dy := scaled(info, b)
	center := area.Center().Add(dx, dy)
	radius := perimeterRadius(info, b)
	q := max(info.Quantity, 0)

	var phase float64
	if info.HasPhase {
		phase = degToRad(info.Phase)
	} else {
		phase = ctx.Rng.Float64() * 2 * math.Pi
	}

	sector, useSector := 0.0, info.SectorRange > 0 && info.SectorRange < 360
	if useSector {
		sector = perimeterBearing(info, area.Center(), center, ctx)
	}

	placed, attempts := 0, 0
	for i := range q {
		attempts++
		angle := phase + 2*math.Pi*float64(i)/float64(q)
		if useSector && angularDistance(angle, sector) > degToRad(info.SectorRange)/2 {
			continue
		}

		sin, cos := math.Sincos(angle)
		p := center.Add(geom.Round(float64(radius)*cos), geom.Round(float64(radius)*sin))

		cand := info.SelectCandidate(ctx.Rng)
		if cand == nil || cand.Null {
			continue
		}
		if ctx.Violates(cand.Desc, p, info) {
			continue
		}

		if ctx.Grid != nil {
			ctx.Grid.SetOccupiedAt(p, true)
		}
		ctx.SpawnAsset(cand, p, info, m.Name())
		placed++
	}

	ctx.Log.OutputAndLog(info.Name, info.Quantity, placed, attempts, q, m.Name())
}

// perimeterRadius returns the configured radius, or half the smaller extent
// shrunk by the shift percentage.
func perimeterRadius(info *Info, b geom.Bounds) int {
	if info.Radius > 0 {
		return info.Radius
	}
	r := float64(min(b.Width(), b.Height())) / 2
	shift := min(max(info.ShiftFromCenter, 0), 100)
	return geom.Round(r * float64(100-shift) / 100)
}

// perimeterBearing returns the sector direction in radians. Without an
// explicit sector center it faces from the circle center towards the area
// center, or a random bearing when both coincide.
func perimeterBearing(info *Info, areaCenter, circleCenter geom.Point, ctx *Context) float64 {
	if info.HasSectorCenter {
		return degToRad(info.SectorCenter)
	}
	if areaCenter == circleCenter {
		return ctx.Rng.Float64() * 2 * math.Pi
	}
	return math.Atan2(float64(areaCenter.Y-circleCenter.Y), float64(areaCenter.X-circleCenter.X))
}

func degToRad(d float64) float64 {
	return d * math.Pi / 180
}

// angularDistance returns the absolute difference of two angles in [0, pi].
func angularDistance(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 2*math.Pi)
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return d
}
