// Package tetris implements the falling-block game engine: the board, piece
// geometry, player actions and the scoring state machine.
package tetris

import (
	"errors"
	"fmt"
)

// ErrUnknownKind is returned when a piece is requested for a kind outside the table.
var ErrUnknownKind = errors.New("unknown piece kind")

// Cell is a single board or shape cell. Zero is empty, 1..7 is a piece color.
type Cell uint8

// Empty is the value of an unoccupied cell.
const Empty Cell = 0

// Kind identifies one of the seven pieces. The numeric value of a Kind is the
// cell value its shape paints.
type Kind uint8

const (
	KindI Kind = iota + 1
	KindL
	KindJ
	KindO
	KindZ
	KindS
	KindT
)

// kindOrder is the draw order used by the randomizer.
var kindOrder = [...]Kind{KindI, KindL, KindJ, KindO, KindT, KindS, KindZ}

// Kinds returns all piece kinds in draw order.
func Kinds() []Kind {
	return kindOrder[:]
}

// Valid reports whether k is one of the seven piece kinds.
func (k Kind) Valid() bool {
	return k >= KindI && k <= KindT
}

// Cell returns the cell value painted by pieces of this kind.
func (k Kind) Cell() Cell {
	return Cell(k)
}

func (k Kind) String() string {
	switch k {
	case KindI:
		return "I"
	case KindL:
		return "L"
	case KindJ:
		return "J"
	case KindO:
		return "O"
	case KindZ:
		return "Z"
	case KindS:
		return "S"
	case KindT:
		return "T"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Shape is a square grid of cells describing one piece orientation.
type Shape [][]Cell

var shapeTable = map[Kind]Shape{
	KindI: {
		{0, 1, 0, 0},
		{0, 1, 0, 0},
		{0, 1, 0, 0},
		{0, 1, 0, 0},
	},
	KindL: {
		{0, 2, 0},
		{0, 2, 0},
		{0, 2, 2},
	},
	KindJ: {
		{0, 3, 0},
		{0, 3, 0},
		{3, 3, 0},
	},
	KindO: {
		{4, 4},
		{4, 4},
	},
	KindZ: {
		{5, 5, 0},
		{0, 5, 5},
		{0, 0, 0},
	},
	KindS: {
		{0, 6, 6},
		{6, 6, 0},
		{0, 0, 0},
	},
	KindT: {
		{0, 7, 0},
		{7, 7, 7},
		{0, 0, 0},
	},
}

// NewShape returns a fresh copy of the spawn orientation for k.
func NewShape(k Kind) (Shape, error) {
	src, ok := shapeTable[k]
	if !ok {
		return nil, fmt.Errorf("new shape %d: %w", uint8(k), ErrUnknownKind)
	}
	return src.Clone(), nil
}

// mustPiece is NewPiece for kinds that came out of the table itself.
func mustPiece(k Kind) Piece {
	p, err := NewPiece(k)
	if err != nil {
		panic(err)
	}
	return p
}

// Width returns the number of columns in the first row.
func (s Shape) Width() int {
	if len(s) == 0 {
		return 0
	}
	return len(s[0])
}

// Clone returns a deep copy of the shape.
func (s Shape) Clone() Shape {
	out := make(Shape, len(s))
	for y, row := range s {
		out[y] = append([]Cell(nil), row...)
	}
	return out
}

func (s Shape) square() bool {
	for _, row := range s {
		if len(row) != len(s) {
			return false
		}
	}
	return true
}

// Rotate turns the shape 90 degrees in place: clockwise for dir > 0,
// counter-clockwise otherwise. Non-square shapes are left as they are.
func (s Shape) Rotate(dir int) {
	if !s.square() {
		return
	}
	for y := range s {
		for x := 0; x < y; x++ {
			s[x][y], s[y][x] = s[y][x], s[x][y]
		}
	}
	if dir > 0 {
		for _, row := range s {
			for i, j := 0, len(row)-1; i < j; i, j = i+1, j-1 {
				row[i], row[j] = row[j], row[i]
			}
		}
		return
	}
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// Each calls fn for every non-empty cell with its local offset.
func (s Shape) Each(fn func(x, y int, c Cell)) {
	for y, row := range s {
		for x, c := range row {
			if c != Empty {
				fn(x, y, c)
			}
		}
	}
}

// KindOf identifies a shape by its first non-empty cell. Shapes without a
// valid cell fall back to KindI.
func KindOf(s Shape) Kind {
	for _, row := range s {
		for _, c := range row {
			if c == Empty {
				continue
			}
			if k := Kind(c); k.Valid() {
				return k
			}
			return KindI
		}
	}
	return KindI
}

// Piece is a shape tagged with the kind it was built from.
type Piece struct {
	Kind  Kind
	Shape Shape
}

// NewPiece builds a piece in spawn orientation.
func NewPiece(k Kind) (Piece, error) {
	s, err := NewShape(k)
	if err != nil {
		return Piece{}, err
	}
	return Piece{Kind: k, Shape: s}, nil
}

// Point is a position in board coordinates.
type Point struct {
	X, Y int
}
