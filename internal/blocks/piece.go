package blocks

import (
	"errors"
	"fmt"
	"math/rand"
)

// CatalogSize is the number of piece shapes.
const CatalogSize = 15

// pieceSize is the edge of the square matrix every shape fits in.
const pieceSize = 3

// ErrUnknownPiece is returned when a catalog index is out of range.
var ErrUnknownPiece = errors.New("blocks: unknown piece")

// catalog lists every shape as rows from top to bottom.
var catalog = [CatalogSize]struct {
	name string
	rows [pieceSize]string
}{
	{"Line", [3]string{"000", "111", "000"}},
	{"C", [3]string{"000", "111", "101"}},
	{"Plus", [3]string{"010", "111", "010"}},
	{"Dot", [3]string{"000", "010", "000"}},
	{"Square", [3]string{"110", "110", "000"}},
	{"L", [3]string{"000", "111", "001"}},
	{"J", [3]string{"001", "111", "000"}},
	{"S", [3]string{"000", "110", "011"}},
	{"Z", [3]string{"011", "110", "000"}},
	{"T", [3]string{"100", "110", "100"}},
	{"X", [3]string{"101", "010", "101"}},
	{"Corner", [3]string{"000", "110", "100"}},
	{"Inverse Corner", [3]string{"100", "110", "000"}},
	{"Double", [3]string{"010", "010", "000"}},
	{"Triple", [3]string{"010", "010", "010"}},
}

// Piece is an immutable shape in one of four rotations.
// Pieces are comparable: two pieces are equal when index, rotation and
// occupied cells match.
type Piece struct {
	index    int
	rotation int
	cells    [pieceSize][pieceSize]bool // [x][y]
}

// NewPiece builds the catalog piece at index, turned clockwise rotation times.
// Rotation is taken modulo 4.
func NewPiece(index, rotation int) (Piece, error) {
	if index < 0 || index >= CatalogSize {
		return Piece{}, fmt.Errorf("%w: index %d", ErrUnknownPiece, index)
	}

	p := Piece{index: index}
	for y, row := range catalog[index].rows {
		for x, c := range row {
			p.cells[x][y] = c == '1'
		}
	}

	for range ((rotation % 4) + 4) % 4 {
		p = p.Rotate()
	}
	return p, nil
}

// MustPiece is NewPiece for indexes known to be valid.
func MustPiece(index, rotation int) Piece {
	p, err := NewPiece(index, rotation)
	if err != nil {
		panic(err)
	}
	return p
}

// RandomPiece draws a catalog index uniformly using rng.
func RandomPiece(rng *rand.Rand) Piece {
	return MustPiece(rng.Intn(CatalogSize), 0)
}

// Index returns the catalog index.
func (p Piece) Index() int {
	return p.index
}

// Rotation returns the number of clockwise quarter turns from the base shape.
func (p Piece) Rotation() int {
	return p.rotation
}

// Value is the cell value written into the grid for this piece.
func (p Piece) Value() int {
	return p.index + 1
}

// Name returns the catalog name of the shape.
func (p Piece) Name() string {
	return catalog[p.index].name
}

// Occupied reports whether local cell (x, y) of the 3x3 matrix is filled.
func (p Piece) Occupied(x, y int) bool {
	if x < 0 || x >= pieceSize || y < 0 || y >= pieceSize {
		return false
	}
	return p.cells[x][y]
}

// Blocks returns the occupied local offsets, column by column.
func (p Piece) Blocks() []Coord {
	blocks := make([]Coord, 0, pieceSize*pieceSize)
	for x := range pieceSize {
		for y := range pieceSize {
			if p.cells[x][y] {
				blocks = append(blocks, Coord{X: x, Y: y})
			}
		}
	}
	return blocks
}

// Rotate returns the piece turned a quarter clockwise.
func (p Piece) Rotate() Piece {
	out := Piece{index: p.index, rotation: (p.rotation + 1) % 4}
	for x := range pieceSize {
		for y := range pieceSize {
			out.cells[pieceSize-1-y][x] = p.cells[x][y]
		}
	}
	return out
}

// RotateBack returns the piece turned a quarter anticlockwise.
func (p Piece) RotateBack() Piece {
	out := Piece{index: p.index, rotation: (p.rotation + 3) % 4}
	for x := range pieceSize {
		for y := range pieceSize {
			out.cells[y][pieceSize-1-x] = p.cells[x][y]
		}
	}
	return out
}

// String implements fmt.Stringer.
func (p Piece) String() string {
	return fmt.Sprintf("%s/r%d", p.Name(), p.rotation)
}
