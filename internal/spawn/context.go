package spawn

import (
	"log/slog"
	"math/rand/v2"

	"github.com/udisondev/spawnforge/internal/asset"
	"github.com/udisondev/spawnforge/internal/geom"
	"github.com/udisondev/spawnforge/internal/grid"
	"github.com/udisondev/spawnforge/internal/world"
)

// Recorder receives one outcome per queue entry.
type Recorder interface {
	StartTimer()
	OutputAndLog(name string, requested, placed, attempts, attemptCap int, method string)
	Progress(name string, current, total int)
}

// ChildPlanner builds the queue for a child region of a placed asset.
// area is already aligned to the parent.
type ChildPlanner interface {
	PlanChild(region asset.ChildRegion, area *geom.Area, rng *rand.Rand) ([]*Info, error)
}

// Context is the shared state of one spawn pass.
type Context struct {
	Rng        *rand.Rand
	Checker    *Checker
	Log        Recorder
	Exclusions []*geom.Area
	Catalog    *asset.Catalog
	World      *world.World
	// Grid is optional; methods fall back to sampling the area when nil.
	Grid     *grid.Grid
	Children ChildPlanner

	CenterBias     int
	NeighborSample int

	childRng *rand.Rand
}

// Violates runs the checker for info's flags against every placed object,
// adopted children included.
func (c *Context) Violates(desc *asset.Descriptor, p geom.Point, info *Info) bool {
	return c.Checker.Check(desc, p, c.Exclusions, c.World.Objects(),
		info.EnforceSpacing, info.CheckMinTypeDistance, info.CheckMinDistanceAll,
		c.NeighborSample)
}

// childRand returns the stream used for child ordering and flipping. It is
// seeded once from the main stream so nested work does not shift the main
// sequence afterwards.
func (c *Context) childRand() *rand.Rand {
	if c.childRng == nil {
		c.childRng = rand.New(rand.NewPCG(c.Rng.Uint64(), c.Rng.Uint64()))
	}
	return c.childRng
}

// SpawnAsset creates an object for cand at p, then places the descriptor's
// child regions inside the new object.
func (c *Context) SpawnAsset(cand *Candidate, p geom.Point, info *Info, method string) *world.Object {
	obj := &world.Object{
		Name:        cand.Name,
		Pos:         p,
		SpawnID:     info.SpawnID,
		SpawnMethod: method,
		Desc:        cand.Desc,
	}
	if cand.Desc != nil && cand.Desc.Flippable {
		obj.Flipped = c.childRand().IntN(2) == 0
	}
	c.World.AddObject(obj)

	if cand.Desc != nil && len(cand.Desc.Children) > 0 {
		c.spawnChildren(obj, cand.Desc)
	}
	return obj
}

func (c *Context) spawnChildren(parent *world.Object, desc *asset.Descriptor) {
	if c.Children == nil {
		slog.Warn("asset declares children but no child planner is set", "asset", desc.Name)
		return
	}

	rng := c.childRand()
	regions := append([]asset.ChildRegion(nil), desc.Children...)
	rng.Shuffle(len(regions), func(i, j int) {
		regions[i], regions[j] = regions[j], regions[i]
	})

	for _, region := range regions {
		area, ok := desc.Area(region.Area)
		if !ok {
			slog.Warn("child region has no area",
				"asset", desc.Name,
				"area", region.Area)
			continue
		}
		area.Align(parent.Pos)
		if parent.Flipped {
			area.FlipHorizontal(parent.Pos.X)
		}

		queue, err := c.Children.PlanChild(region, area, rng)
		if err != nil {
			slog.Warn("planning child region",
				"asset", desc.Name,
				"area", region.Area,
				"error", err)
			continue
		}

		nested := &Context{
			Rng:            rng,
			Checker:        c.Checker,
			Log:            c.Log,
			Catalog:        c.Catalog,
			World:          world.New(),
			Children:       c.Children,
			NeighborSample: c.NeighborSample,
			childRng:       rng,
		}
		method := ChildrenRandom{}
		for _, info := range queue {
			if !info.HasRealCandidate() {
				continue
			}
			nested.Log.StartTimer()
			method.Spawn(info, area, nested)
		}

		c.World.Adopt(parent.ID, nested.World, region.ZOffset)
	}
}
