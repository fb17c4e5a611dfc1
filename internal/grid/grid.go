package grid

import (
	"math/rand/v2"

	"github.com/udisondev/spawnforge/internal/geom"
)

// Cell is one candidate position of the grid.
type Cell struct {
	pos      geom.Point
	i, j     int
	occupied bool
}

// Pos returns the world position of the cell.
func (c *Cell) Pos() geom.Point { return c.pos }

// Index returns the column and row of the cell.
func (c *Cell) Index() (int, int) { return c.i, c.j }

// Occupied reports whether something was placed on the cell.
func (c *Cell) Occupied() bool { return c.occupied }

// Grid is a uniform occupancy grid laid over an area's bounding box.
// Cells are stored row-major. Occupancy changes go through SetOccupied so
// FreeCount always matches the number of free cells.
type Grid struct {
	origin  geom.Point
	spacing int
	cols    int
	rows    int
	cells   []Cell
	free    int
}

// New builds a grid covering width x height starting at origin.
// Spacing below 1 is treated as 1.
func New(width, height, spacing int, origin geom.Point) *Grid {
	spacing = max(spacing, 1)
	cols := max(width, 0)/spacing + 1
	rows := max(height, 0)/spacing + 1

	g := &Grid{
		origin:  origin,
		spacing: spacing,
		cols:    cols,
		rows:    rows,
		cells:   make([]Cell, cols*rows),
		free:    cols * rows,
	}
	for j := range rows {
		for i := range cols {
			g.cells[j*cols+i] = Cell{
				pos: origin.Add(i*spacing, j*spacing),
				i:   i,
				j:   j,
			}
		}
	}
	return g
}

// FromAreaBounds builds a grid over the bounding box of a.
func FromAreaBounds(a *geom.Area, spacing int) *Grid {
	b := a.Bounds()
	return New(b.Width(), b.Height(), spacing, geom.Point{X: b.MinX, Y: b.MinY})
}

func (g *Grid) Cols() int    { return g.cols }
func (g *Grid) Rows() int    { return g.rows }
func (g *Grid) Len() int     { return len(g.cells) }
func (g *Grid) Spacing() int { return g.spacing }

// FreeCount returns the number of unoccupied cells.
func (g *Grid) FreeCount() int { return g.free }

// At returns the cell at column i, row j, or nil when out of range.
func (g *Grid) At(i, j int) *Cell {
	if i < 0 || j < 0 || i >= g.cols || j >= g.rows {
		return nil
	}
	return &g.cells[j*g.cols+i]
}

// index converts a world position to the nearest in-range cell index.
func (g *Grid) index(p geom.Point) (int, int) {
	i, j := g.slot(p)
	return min(max(i, 0), g.cols-1), min(max(j, 0), g.rows-1)
}

func (g *Grid) slot(p geom.Point) (int, int) {
	return geom.Round(float64(p.X-g.origin.X) / float64(g.spacing)),
		geom.Round(float64(p.Y-g.origin.Y) / float64(g.spacing))
}

// CellAt returns the cell nearest to p regardless of occupancy.
// Positions outside the grid are clamped to the border.
func (g *Grid) CellAt(p geom.Point) *Cell {
	i, j := g.index(p)
	return g.At(i, j)
}

// CellOn returns the cell whose slot contains p, that is the cell within
// half a spacing of p on both axes. Returns nil for points off the grid.
func (g *Grid) CellOn(p geom.Point) *Cell {
	return g.At(g.slot(p))
}

// NearestFree returns the cell nearest to p if it is free, otherwise the
// first free cell found by a square spiral around it. Each ring visits the
// top and bottom edges left to right, then the left and right edges without
// the corners. Returns nil when no free cell exists.
func (g *Grid) NearestFree(p geom.Point) *Cell {
	if g.free == 0 {
		return nil
	}

	cx, cy := g.index(p)
	if c := g.At(cx, cy); !c.occupied {
		return c
	}

	free := func(i, j int) *Cell {
		if c := g.At(i, j); c != nil && !c.occupied {
			return c
		}
		return nil
	}

	maxR := max(g.cols, g.rows)
	for r := 1; r <= maxR; r++ {
		for dx := -r; dx <= r; dx++ {
			if c := free(cx+dx, cy-r); c != nil {
				return c
			}
			if c := free(cx+dx, cy+r); c != nil {
				return c
			}
		}
		for dy := -r + 1; dy <= r-1; dy++ {
			if c := free(cx-r, cy+dy); c != nil {
				return c
			}
			if c := free(cx+r, cy+dy); c != nil {
				return c
			}
		}
	}
	return nil
}

// FreeCellsInArea returns every free cell whose position lies inside a.
// The scan is O(Len).
func (g *Grid) FreeCellsInArea(a *geom.Area) []*Cell {
	var out []*Cell
	for k := range g.cells {
		c := &g.cells[k]
		if !c.occupied && a.Contains(c.pos) {
			out = append(out, c)
		}
	}
	return out
}

// CellsInArea returns every cell inside a, occupied or not.
func (g *Grid) CellsInArea(a *geom.Area) []*Cell {
	var out []*Cell
	for k := range g.cells {
		c := &g.cells[k]
		if a.Contains(c.pos) {
			out = append(out, c)
		}
	}
	return out
}

// RandomFreeInArea picks a free cell inside a uniformly at random.
// Returns nil when none qualifies. The scan is O(Len).
func (g *Grid) RandomFreeInArea(a *geom.Area, rng *rand.Rand) *Cell {
	if g.free == 0 {
		return nil
	}
	cells := g.FreeCellsInArea(a)
	if len(cells) == 0 {
		return nil
	}
	return cells[rng.IntN(len(cells))]
}

// SetOccupied sets the occupancy of c. Repeated calls with the same value
// are no-ops, and so are cells of another grid.
func (g *Grid) SetOccupied(c *Cell, occupied bool) {
	if c == nil || c.occupied == occupied || g.At(c.i, c.j) != c {
		return
	}
	c.occupied = occupied
	if occupied {
		g.free--
	} else {
		g.free++
	}
}

// SetOccupiedAt sets the occupancy of the cell under p. Points off the
// grid change nothing.
func (g *Grid) SetOccupiedAt(p geom.Point, occupied bool) {
	g.SetOccupied(g.CellOn(p), occupied)
}

// Seed marks the cells under already placed objects as occupied. Points
// off the grid are ignored.
func (g *Grid) Seed(points []geom.Point) {
	for _, p := range points {
		g.SetOccupiedAt(p, true)
	}
}
