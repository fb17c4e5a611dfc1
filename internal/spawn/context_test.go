package spawn

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/spawnforge/internal/asset"
	"github.com/udisondev/spawnforge/internal/geom"
	"github.com/udisondev/spawnforge/internal/world"
)

// fakeChildPlanner для тестов
type fakeChildPlanner struct {
	areas []geom.Bounds
	queue func(region asset.ChildRegion) []*Info
	err   error
}

func (p *fakeChildPlanner) PlanChild(region asset.ChildRegion, area *geom.Area, _ *rand.Rand) ([]*Info, error) {
	p.areas = append(p.areas, area.Bounds())
	if p.err != nil {
		return nil, p.err
	}
	return p.queue(region), nil
}

func chestDescriptor() *asset.Descriptor {
	d := asset.NewDescriptor("chest")
	d.Areas["inside"] = geom.RectArea("inside", -20, -40, 40, 40)
	d.Children = []asset.ChildRegion{{Area: "inside", ZOffset: 2}}
	return d
}

func coinQueue(asset.ChildRegion) []*Info {
	info := DefaultInfo("coins")
	info.SpawnID = "spn-coins"
	info.Position = PositionChildren
	info.Quantity = 3
	info.Candidates = []*Candidate{{Name: "coin", Weight: 1, Desc: asset.NewDescriptor("coin")}}
	return []*Info{info}
}

func TestContext_SpawnAsset_Children(t *testing.T) {
	ctx, rec := newTestContext(3)
	planner := &fakeChildPlanner{queue: coinQueue}
	ctx.Children = planner

	chest := chestDescriptor()
	info := singleInfo("chest", chest, 1)
	parent := ctx.SpawnAsset(info.Candidates[0], geom.Point{X: 500, Y: 500}, info, "exact")

	require.Len(t, planner.areas, 1)
	assert.Equal(t, geom.Bounds{MinX: 480, MinY: 460, MaxX: 520, MaxY: 500}, planner.areas[0])

	// the descriptor's own area is not moved
	orig, ok := chest.Area("inside")
	require.True(t, ok)
	assert.Equal(t, -20, orig.Bounds().MinX)

	require.Len(t, parent.Children, 3)
	assert.Equal(t, 4, ctx.World.Len())
	for _, id := range parent.Children {
		child, ok := ctx.World.GetObject(id)
		require.True(t, ok)
		assert.Equal(t, "coin", child.Name)
		assert.Equal(t, parent.ID, child.Parent)
		assert.Equal(t, 2, child.ZOffset)
		assert.Equal(t, "spn-coins", child.SpawnID)
		assert.True(t, planner.areas[0].Contains(child.Pos))
	}

	// дети не корни, но проверки их видят
	assert.Len(t, ctx.World.Roots(), 1)
	require.Len(t, rec.out, 1)
	assert.Equal(t, "children_random", rec.out[0].method)
}

func TestContext_SpawnAsset_ChildFailures(t *testing.T) {
	t.Run("missing area is skipped", func(t *testing.T) {
		ctx, _ := newTestContext(3)
		planner := &fakeChildPlanner{queue: coinQueue}
		ctx.Children = planner

		d := chestDescriptor()
		d.Children = append(d.Children, asset.ChildRegion{Area: "lid"})
		info := singleInfo("chest", d, 1)
		ctx.SpawnAsset(info.Candidates[0], geom.Point{}, info, "exact")

		assert.Len(t, planner.areas, 1)
		assert.Equal(t, 4, ctx.World.Len())
	})

	t.Run("planner error leaves parent alone", func(t *testing.T) {
		ctx, _ := newTestContext(3)
		ctx.Children = &fakeChildPlanner{err: errors.New("boom")}

		info := singleInfo("chest", chestDescriptor(), 1)
		parent := ctx.SpawnAsset(info.Candidates[0], geom.Point{}, info, "exact")

		assert.Empty(t, parent.Children)
		assert.Equal(t, 1, ctx.World.Len())
	})

	t.Run("no planner", func(t *testing.T) {
		ctx, _ := newTestContext(3)
		info := singleInfo("chest", chestDescriptor(), 1)
		ctx.SpawnAsset(info.Candidates[0], geom.Point{}, info, "exact")
		assert.Equal(t, 1, ctx.World.Len())
	})
}

func TestContext_SpawnAsset_Flipped(t *testing.T) {
	ctx, _ := newTestContext(7)
	planner := &fakeChildPlanner{queue: coinQueue}
	ctx.Children = planner

	d := chestDescriptor()
	d.Flippable = true
	d.Areas["inside"] = geom.RectArea("inside", 10, -40, 30, 40)
	info := singleInfo("chest", d, 1)

	var flipped, plain int
	for range 40 {
		obj := ctx.SpawnAsset(info.Candidates[0], geom.Point{X: 100}, info, "exact")
		if obj.Flipped {
			flipped++
		} else {
			plain++
		}
	}
	assert.Positive(t, flipped)
	assert.Positive(t, plain)

	want := map[geom.Bounds]bool{
		{MinX: 110, MinY: -40, MaxX: 140, MaxY: 0}: true,
		{MinX: 60, MinY: -40, MaxX: 90, MaxY: 0}:   true,
	}
	for _, b := range planner.areas {
		assert.True(t, want[b], "unexpected child area %+v", b)
	}
}

func TestContext_Violates_SeesChildren(t *testing.T) {
	ctx, _ := newTestContext(1)
	house := ctx.World.AddObject(&world.Object{Name: "house", Pos: geom.Point{X: 0, Y: 0}})
	ctx.World.AddObject(&world.Object{Name: "bush", Pos: geom.Point{X: 10, Y: 10}, Parent: house})

	bush := asset.NewDescriptor("bush")
	bush.MinSameTypeDistance = 500
	info := singleInfo("bush", bush, 1)

	assert.True(t, ctx.Violates(bush, geom.Point{X: 12, Y: 12}, info))
	assert.False(t, ctx.Violates(bush, geom.Point{X: 900, Y: 900}, info))

	info.CheckMinTypeDistance = false
	assert.False(t, ctx.Violates(bush, geom.Point{X: 12, Y: 12}, info))
}
