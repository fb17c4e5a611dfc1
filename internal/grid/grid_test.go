package grid

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/spawnforge/internal/geom"
)

// countFree считает свободные ячейки перебором, для сверки с FreeCount.
func countFree(g *Grid) int {
	n := 0
	for k := range g.cells {
		if !g.cells[k].occupied {
			n++
		}
	}
	return n
}

func TestNew_Dimensions(t *testing.T) {
	tests := []struct {
		name       string
		w, h, sp   int
		cols, rows int
	}{
		{"exact multiple", 1000, 500, 100, 11, 6},
		{"remainder", 1050, 99, 100, 11, 1},
		{"zero spacing", 3, 2, 0, 4, 3},
		{"degenerate", 0, 0, 100, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(tt.w, tt.h, tt.sp, geom.Point{})
			assert.Equal(t, tt.cols, g.Cols())
			assert.Equal(t, tt.rows, g.Rows())
			assert.Equal(t, tt.cols*tt.rows, g.FreeCount())
		})
	}
}

func TestFromAreaBounds(t *testing.T) {
	a := geom.RectArea("room", 100, 200, 400, 300)
	g := FromAreaBounds(a, 100)

	assert.Equal(t, 5, g.Cols())
	assert.Equal(t, 4, g.Rows())
	assert.Equal(t, geom.Point{X: 100, Y: 200}, g.At(0, 0).Pos())
	assert.Equal(t, geom.Point{X: 500, Y: 500}, g.At(4, 3).Pos())
	assert.Nil(t, g.At(5, 0))
}

func TestSetOccupied_FreeCountInvariant(t *testing.T) {
	g := New(500, 500, 50, geom.Point{})
	rng := rand.New(rand.NewPCG(7, 7))

	for range 2000 {
		c := g.At(rng.IntN(g.Cols()), rng.IntN(g.Rows()))
		g.SetOccupied(c, rng.IntN(2) == 0)
		require.Equal(t, countFree(g), g.FreeCount())
	}

	c := g.At(0, 0)
	g.SetOccupied(c, true)
	before := g.FreeCount()
	g.SetOccupied(c, true)
	assert.Equal(t, before, g.FreeCount(), "idempotent")
}

func TestNearestFree(t *testing.T) {
	t.Run("free nearest cell", func(t *testing.T) {
		g := New(100, 100, 10, geom.Point{})
		c := g.NearestFree(geom.Point{X: 34, Y: 56})
		require.NotNil(t, c)
		assert.Equal(t, geom.Point{X: 30, Y: 60}, c.Pos())
	})

	t.Run("single free cell found from every start", func(t *testing.T) {
		g := New(60, 40, 10, geom.Point{})
		for k := range g.cells {
			g.SetOccupied(&g.cells[k], true)
		}
		target := g.At(5, 1)
		g.SetOccupied(target, false)

		for j := range g.Rows() {
			for i := range g.Cols() {
				p := g.At(i, j).Pos()
				got := g.NearestFree(p)
				require.NotNil(t, got, "from %v", p)
				assert.Same(t, target, got)
			}
		}
	})

	t.Run("ring order prefers top edge", func(t *testing.T) {
		g := New(40, 40, 10, geom.Point{})
		center := g.At(2, 2)
		g.SetOccupied(center, true)
		got := g.NearestFree(center.Pos())
		require.NotNil(t, got)
		i, j := got.Index()
		assert.Equal(t, 1, i)
		assert.Equal(t, 1, j)
	})

	t.Run("full grid", func(t *testing.T) {
		g := New(20, 20, 10, geom.Point{})
		for k := range g.cells {
			g.SetOccupied(&g.cells[k], true)
		}
		assert.Nil(t, g.NearestFree(geom.Point{}))
	})
}

func TestRandomFreeInArea(t *testing.T) {
	tri, err := geom.NewArea("tri", []geom.Point{{X: 0, Y: 0}, {X: 200, Y: 0}, {X: 0, Y: 200}})
	require.NoError(t, err)
	g := FromAreaBounds(tri, 20)
	rng := rand.New(rand.NewPCG(1, 1))

	for range 500 {
		c := g.RandomFreeInArea(tri, rng)
		if c == nil {
			break
		}
		require.True(t, tri.Contains(c.Pos()))
		require.False(t, c.Occupied())
		g.SetOccupied(c, true)
	}

	assert.Empty(t, g.FreeCellsInArea(tri))
	assert.Nil(t, g.RandomFreeInArea(tri, rng))
	assert.Positive(t, g.FreeCount(), "cells outside the triangle stay free")
}

func TestSeed(t *testing.T) {
	g := New(100, 100, 50, geom.Point{})
	g.Seed([]geom.Point{{X: 2, Y: 3}, {X: 49, Y: 51}, {X: 1000, Y: 1000}})

	assert.True(t, g.At(0, 0).Occupied())
	assert.True(t, g.At(1, 1).Occupied())
	assert.False(t, g.At(2, 2).Occupied(), "off-grid points are not clamped")
	assert.Equal(t, 7, g.FreeCount())
}

func TestCellOn(t *testing.T) {
	g := New(100, 100, 50, geom.Point{X: 10, Y: 10})

	tests := []struct {
		name string
		p    geom.Point
		want *Cell
	}{
		{"on a cell", geom.Point{X: 60, Y: 60}, g.At(1, 1)},
		{"inside the slot", geom.Point{X: 80, Y: 40}, g.At(1, 1)},
		{"border slot overhang", geom.Point{X: 130, Y: 10}, g.At(2, 0)},
		{"past the border slot", geom.Point{X: 200, Y: 10}, nil},
		{"before the origin", geom.Point{X: -40, Y: 10}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Same(t, tt.want, g.CellOn(tt.p))
		})
	}

	// CellAt keeps clamping for snapping
	assert.Same(t, g.At(2, 0), g.CellAt(geom.Point{X: 200, Y: 10}))
}

func TestSetOccupied_ForeignCell(t *testing.T) {
	g := New(100, 100, 50, geom.Point{})
	other := New(100, 100, 50, geom.Point{})

	g.SetOccupied(other.At(1, 1), true)

	assert.Equal(t, 9, g.FreeCount())
	assert.Equal(t, 9, other.FreeCount())
	assert.False(t, other.At(1, 1).Occupied())
	assert.False(t, g.At(1, 1).Occupied())
}
