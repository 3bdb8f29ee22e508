// Package blocks implements the game state engine: the grid, the piece
// catalog, placement and line clearing, scoring and the timed match loop.
// It has no terminal or network dependencies; the platform and multiplayer
// packages drive it through Match.
package blocks

import "fmt"

// Invalid is returned by Grid.Get for coordinates outside the grid.
// Placement checks treat it as an occupied cell.
const Invalid = -1

// Grid is a fixed-size board of cell values indexed by (column, row).
// Zero means empty; a positive value is the value of the piece that filled it.
type Grid struct {
	cols  int
	rows  int
	cells [][]int // [x][y]
}

// NewGrid creates an empty grid. Both dimensions must be positive.
func NewGrid(cols, rows int) *Grid {
	if cols <= 0 || rows <= 0 {
		panic(fmt.Sprintf("blocks: invalid grid size %dx%d", cols, rows))
	}
	cells := make([][]int, cols)
	for x := range cells {
		cells[x] = make([]int, rows)
	}
	return &Grid{cols: cols, rows: rows, cells: cells}
}

// Cols returns the number of columns.
func (g *Grid) Cols() int {
	return g.cols
}

// Rows returns the number of rows.
func (g *Grid) Rows() int {
	return g.rows
}

// InBounds reports whether (x, y) is a cell of the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.cols && y >= 0 && y < g.rows
}

// Get returns the value at (x, y), or Invalid when out of bounds.
func (g *Grid) Get(x, y int) int {
	if !g.InBounds(x, y) {
		return Invalid
	}
	return g.cells[x][y]
}

// Set writes a value at (x, y).
// Writing outside the grid is a programming error and panics.
func (g *Grid) Set(x, y, value int) {
	if !g.InBounds(x, y) {
		panic(fmt.Sprintf("blocks: Set(%d, %d) outside %dx%d grid", x, y, g.cols, g.rows))
	}
	g.cells[x][y] = value
}

// Reset empties every cell.
func (g *Grid) Reset() {
	for x := range g.cells {
		for y := range g.cells[x] {
			g.cells[x][y] = 0
		}
	}
}

// Snapshot returns a copy of the cells indexed [x][y].
func (g *Grid) Snapshot() [][]int {
	out := make([][]int, g.cols)
	for x := range g.cells {
		out[x] = make([]int, g.rows)
		copy(out[x], g.cells[x])
	}
	return out
}
