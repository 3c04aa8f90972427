package physics

import "math"

// SpatialGrid is a uniform grid for broad-phase collision detection in a
// wrapping arena. Items are inserted by position and index; QueryAround
// visits the 3x3 cell neighborhood of a point.
//
// Cell size must be >= the largest interaction distance so that every
// overlapping pair shares a neighborhood.
type SpatialGrid struct {
	cellSize    float64
	invCellSize float64
	cols        int
	rows        int
	cells       [][]int
}

// NewSpatialGrid creates a grid covering a width x height arena.
func NewSpatialGrid(width, height, cellSize float64) *SpatialGrid {
	cols := max(int(math.Ceil(width/cellSize)), 1)
	rows := max(int(math.Ceil(height/cellSize)), 1)
	return &SpatialGrid{
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		cols:        cols,
		rows:        rows,
		cells:       make([][]int, cols*rows),
	}
}

// Clear empties every cell, keeping the backing arrays.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds an item index at the given position.
func (g *SpatialGrid) Insert(x, y float64, index int) {
	col, row := g.posToCell(x, y)
	idx := row*g.cols + col
	g.cells[idx] = append(g.cells[idx], index)
}

// QueryAround calls fn for each item in the 3x3 neighborhood of (x, y),
// wrapping at the arena edges. Each cell is visited at most once.
func (g *SpatialGrid) QueryAround(x, y float64, fn func(index int)) {
	col, row := g.posToCell(x, y)
	seen := g.neighborhood(col, row)
	for _, cell := range seen {
		for _, item := range g.cells[cell] {
			fn(item)
		}
	}
}

// neighborhood returns the distinct cell offsets around (col, row).
func (g *SpatialGrid) neighborhood(col, row int) []int {
	cells := make([]int, 0, 9)
	for dr := -1; dr <= 1; dr++ {
		r := (row + dr + g.rows) % g.rows
		for dc := -1; dc <= 1; dc++ {
			c := (col + dc + g.cols) % g.cols
			idx := r*g.cols + c
			dup := false
			for _, existing := range cells {
				if existing == idx {
					dup = true
					break
				}
			}
			if !dup {
				cells = append(cells, idx)
			}
		}
	}
	return cells
}

// posToCell converts a position to cell coordinates, clamping positions
// that fall outside the arena.
func (g *SpatialGrid) posToCell(x, y float64) (col, row int) {
	col = min(max(int(x*g.invCellSize), 0), g.cols-1)
	row = min(max(int(y*g.invCellSize), 0), g.rows-1)
	return col, row
}
