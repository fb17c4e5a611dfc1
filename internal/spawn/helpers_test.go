package spawn

import (
	"math/rand/v2"

	"github.com/udisondev/spawnforge/internal/asset"
	"github.com/udisondev/spawnforge/internal/geom"
	"github.com/udisondev/spawnforge/internal/grid"
	"github.com/udisondev/spawnforge/internal/world"
)

// outcome: одна строка OutputAndLog
type outcome struct {
	name                               string
	requested, placed, attempts, limit int
	method                             string
}

// fakeRecorder для тестов
type fakeRecorder struct {
	out      []outcome
	timers   int
	progress int
}

func (r *fakeRecorder) StartTimer() { r.timers++ }

func (r *fakeRecorder) OutputAndLog(name string, requested, placed, attempts, attemptCap int, method string) {
	r.out = append(r.out, outcome{name, requested, placed, attempts, attemptCap, method})
}

func (r *fakeRecorder) Progress(string, int, int) { r.progress++ }

func newTestContext(seed uint64) (*Context, *fakeRecorder) {
	rec := &fakeRecorder{}
	ctx := &Context{
		Rng:            rand.New(rand.NewPCG(seed, seed)),
		Checker:        NewChecker(geom.AnchorCenter),
		Log:            rec,
		Catalog:        asset.NewCatalog(),
		World:          world.New(),
		CenterBias:     DefaultCenterBias,
		NeighborSample: 5,
	}
	return ctx, rec
}

func singleInfo(name string, desc *asset.Descriptor, q int) *Info {
	info := DefaultInfo(name)
	info.SpawnID = "spn-" + name
	info.Quantity = q
	info.Candidates = []*Candidate{{Name: name, Weight: 100, Desc: desc}}
	return info
}

func fullGrid(a *geom.Area, spacing int) *grid.Grid {
	g := grid.FromAreaBounds(a, spacing)
	for j := range g.Rows() {
		for i := range g.Cols() {
			g.SetOccupied(g.At(i, j), true)
		}
	}
	return g
}

func positions(w *world.World) []geom.Point {
	var out []geom.Point
	for _, obj := range w.Objects() {
		out = append(out, obj.Pos)
	}
	return out
}

func spacedDescriptor(name string, size int) *asset.Descriptor {
	d := asset.NewDescriptor(name)
	d.Spacing = geom.RectArea("spacing", -size/2, -size/2, size, size)
	return d
}
