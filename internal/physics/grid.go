package physics

import "math"

// SpatialGrid is a uniform grid for broad-phase hit detection over a bounded area.
// Items are inserted by position and index, then nearby items can be queried
// in O(1) per cell via a neighborhood lookup. The grid does not wrap: queries
// near an edge only visit cells that exist.
//
// Cell size must be >= the maximum interaction distance used with QueryAround
// so that all candidates are found within the 3x3 neighborhood.
type SpatialGrid struct {
	originX     float64
	originY     float64
	cellSize    float64
	invCellSize float64 // 1 / cellSize
	cols        int
	rows        int
	cells       []gridCell
	count       int
}

// gridCell stores the indices of items that fall within a grid cell.
// The slice is reused between rebuilds (reset to [:0]) to avoid allocations.
type gridCell struct {
	items []int
}

// NewSpatialGrid creates a grid covering [0, width) x [0, height).
func NewSpatialGrid(width, height, cellSize float64) *SpatialGrid {
	return NewSpatialGridAt(0, 0, width, height, cellSize)
}

// NewSpatialGridAt creates a grid whose top-left corner is at (originX, originY).
func NewSpatialGridAt(originX, originY, width, height, cellSize float64) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = 1
	}
	cols := int(math.Ceil(width / cellSize))
	rows := int(math.Ceil(height / cellSize))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	return &SpatialGrid{
		originX:     originX,
		originY:     originY,
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		cols:        cols,
		rows:        rows,
		cells:       make([]gridCell, cols*rows),
	}
}

// Clear removes all items from the grid without deallocating cell memory.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i].items = g.cells[i].items[:0]
	}
	g.count = 0
}

// Len returns the number of inserted items.
func (g *SpatialGrid) Len() int { return g.count }

// Insert adds an item (identified by index) at the given position.
// Positions outside the grid are clamped into the border cells.
func (g *SpatialGrid) Insert(x, y float64, index int) {
	col, row := g.posToCell(x, y)
	idx := row*g.cols + col
	g.cells[idx].items = append(g.cells[idx].items, index)
	g.count++
}

// QueryAround calls fn for each item index in the 3x3 cell neighborhood
// around the given position. If fn returns true, iteration stops early.
func (g *SpatialGrid) QueryAround(x, y float64, fn func(index int) bool) {
	g.query(x, y, 1, fn)
}

// QueryRadius calls fn for every item in cells that may hold points within
// radius of (x, y). Callers still perform the exact distance test.
func (g *SpatialGrid) QueryRadius(x, y, radius float64, fn func(index int) bool) {
	reach := int(math.Ceil(radius*g.invCellSize)) + 1
	if reach < 1 {
		reach = 1
	}
	g.query(x, y, reach, fn)
}

func (g *SpatialGrid) query(x, y float64, reach int, fn func(index int) bool) {
	col, row := g.posToCell(x, y)

	for r := max(0, row-reach); r <= min(g.rows-1, row+reach); r++ {
		rowOffset := r * g.cols
		for c := max(0, col-reach); c <= min(g.cols-1, col+reach); c++ {
			for _, itemIdx := range g.cells[rowOffset+c].items {
				if fn(itemIdx) {
					return
				}
			}
		}
	}
}

// posToCell converts coordinates to grid cell coordinates.
// Clamps to valid range to handle edge cases with floating point.
func (g *SpatialGrid) posToCell(x, y float64) (col, row int) {
	col = int(math.Floor((x - g.originX) * g.invCellSize))
	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}

	row = int(math.Floor((y - g.originY) * g.invCellSize))
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}

	return col, row
}
