package blocks

import "sort"

// Coord is a (column, row) position on a grid or inside a piece.
type Coord struct {
	X, Y int
}

// Footprint returns the grid cells p covers with its centre cell on (x, y).
// Cells may lie outside the grid.
func Footprint(p Piece, x, y int) []Coord {
	blocks := p.Blocks()
	for i, b := range blocks {
		blocks[i] = Coord{X: x + b.X - 1, Y: y + b.Y - 1}
	}
	return blocks
}

// CanPlay reports whether piece p fits with its centre cell on (x, y).
// Every occupied cell must land on an empty in-bounds grid cell.
func CanPlay(g *Grid, p Piece, x, y int) bool {
	for _, c := range Footprint(p, x, y) {
		if g.Get(c.X, c.Y) != 0 {
			return false
		}
	}
	return true
}

// Play writes p into the grid centred on (x, y).
// The caller must have checked CanPlay with the same arguments.
func Play(g *Grid, p Piece, x, y int) {
	v := p.Value()
	for _, c := range Footprint(p, x, y) {
		g.Set(c.X, c.Y, v)
	}
}

// CellSet is an unordered set of grid coordinates.
type CellSet map[Coord]struct{}

// Add inserts c.
func (s CellSet) Add(c Coord) {
	s[c] = struct{}{}
}

// Has reports whether c is in the set.
func (s CellSet) Has(c Coord) bool {
	_, ok := s[c]
	return ok
}

// Sorted returns the coordinates ordered by column, then row.
func (s CellSet) Sorted() []Coord {
	out := make([]Coord, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Y < out[j].Y
	})
	return out
}

// Clear is the outcome of one sweep.
type Clear struct {
	Lines  int     // full columns plus full rows
	Blocks int     // distinct cells zeroed
	Cells  CellSet // every zeroed cell
}

// Sweep zeroes every full column and every full row.
// A cell on both a full row and a full column is cleared once but the
// row and the column each count as a line.
func Sweep(g *Grid) Clear {
	var fullCols, fullRows []int

	for x := 0; x < g.cols; x++ {
		full := true
		for y := 0; y < g.rows; y++ {
			if g.cells[x][y] == 0 {
				full = false
				break
			}
		}
		if full {
			fullCols = append(fullCols, x)
		}
	}

	for y := 0; y < g.rows; y++ {
		full := true
		for x := 0; x < g.cols; x++ {
			if g.cells[x][y] == 0 {
				full = false
				break
			}
		}
		if full {
			fullRows = append(fullRows, y)
		}
	}

	cells := make(CellSet)
	for _, x := range fullCols {
		for y := 0; y < g.rows; y++ {
			cells.Add(Coord{X: x, Y: y})
		}
	}
	for _, y := range fullRows {
		for x := 0; x < g.cols; x++ {
			cells.Add(Coord{X: x, Y: y})
		}
	}
	for c := range cells {
		g.cells[c.X][c.Y] = 0
	}

	return Clear{
		Lines:  len(fullCols) + len(fullRows),
		Blocks: len(cells),
		Cells:  cells,
	}
}
