// Package core provides small front-end types shared by the terminal and SSH
// interfaces. It contains no external dependencies (especially no Bubble Tea)
// so it stays trivially testable.
package core

// Cursor is a grid position bounded to Cols x Rows.
type Cursor struct {
	X, Y       int
	Cols, Rows int
}

// NewCursor creates a cursor at the centre of a cols x rows grid.
func NewCursor(cols, rows int) Cursor {
	return Cursor{X: cols / 2, Y: rows / 2, Cols: cols, Rows: rows}
}

// Move shifts the cursor, stopping at the grid edges.
func (c Cursor) Move(dx, dy int) Cursor {
	c.X = Clamp(c.X+dx, 0, Max(c.Cols-1, 0))
	c.Y = Clamp(c.Y+dy, 0, Max(c.Rows-1, 0))
	return c
}

// Apply moves the cursor for a directional action. Other actions leave it unchanged.
func (c Cursor) Apply(a Action) Cursor {
	dx, dy := a.Delta()
	return c.Move(dx, dy)
}

// At reports whether the cursor is on (x, y).
func (c Cursor) At(x, y int) bool {
	return c.X == x && c.Y == y
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Max returns the larger of two integers.
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
