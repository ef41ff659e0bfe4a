package tetris

import (
	"errors"
	"fmt"
	"slices"
)

// ErrOverlap is returned by Merge when a shape would land outside the board or
// on an occupied cell.
var ErrOverlap = errors.New("shape overlaps board")

// Board is the fixed-size grid of placed cells. Row 0 is the top.
type Board struct {
	width    int
	height   int
	rows     [][]Cell
	sweepTop bool // when set, a full row 0 is cleared as well
}

// BoardOption configures a Board.
type BoardOption func(*Board)

// SweepTopRow makes Sweep consider row 0 a candidate for clearing.
func SweepTopRow() BoardOption {
	return func(b *Board) {
		b.sweepTop = true
	}
}

// NewBoard creates an empty board of the given dimensions.
func NewBoard(width, height int, opts ...BoardOption) *Board {
	b := &Board{
		width:  width,
		height: height,
		rows:   make([][]Cell, height),
	}
	for y := range b.rows {
		b.rows[y] = make([]Cell, width)
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Width returns the number of columns.
func (b *Board) Width() int {
	return b.width
}

// Height returns the number of rows.
func (b *Board) Height() int {
	return b.height
}

// At returns the cell at (x, y), or Empty when out of bounds.
func (b *Board) At(x, y int) Cell {
	if !b.inBounds(x, y) {
		return Empty
	}
	return b.rows[y][x]
}

func (b *Board) inBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// Collides reports whether any non-empty cell of shape, placed at pos, is out
// of bounds or on top of an occupied cell.
func (b *Board) Collides(shape Shape, pos Point) bool {
	for y, row := range shape {
		for x, c := range row {
			if c == Empty {
				continue
			}
			bx, by := pos.X+x, pos.Y+y
			if !b.inBounds(bx, by) || b.rows[by][bx] != Empty {
				return true
			}
		}
	}
	return false
}

// Merge writes the shape into the board at pos. The caller must have checked
// Collides first; a colliding merge returns ErrOverlap and changes nothing.
func (b *Board) Merge(shape Shape, pos Point) error {
	if b.Collides(shape, pos) {
		return fmt.Errorf("merge at (%d,%d): %w", pos.X, pos.Y, ErrOverlap)
	}
	shape.Each(func(x, y int, c Cell) {
		b.rows[pos.Y+y][pos.X+x] = c
	})
	return nil
}

// Sweep removes full rows and returns how many were cleared.
func (b *Board) Sweep() int {
	return len(b.SweepRows())
}

// SweepRows removes full rows, scanning bottom to top, and returns the index
// each row had at the moment it was removed. Rows above a removed row shift
// down by one and the same index is examined again. Row 0 is only a
// candidate when the board was built with SweepTopRow.
func (b *Board) SweepRows() []int {
	cleared, _ := b.SweepCells()
	return cleared
}

// SweepCells is SweepRows that also returns a copy of each removed row's
// cells, in the same order as the indexes.
func (b *Board) SweepCells() ([]int, [][]Cell) {
	if b.width == 0 {
		return nil, nil
	}
	stop := 0
	if b.sweepTop {
		stop = -1
	}
	var cleared []int
	var removed [][]Cell
	for y := b.height - 1; y > stop; y-- {
		if !b.rowFull(y) {
			continue
		}
		row := b.rows[y]
		removed = append(removed, slices.Clone(row))
		copy(b.rows[1:y+1], b.rows[:y])
		clear(row)
		b.rows[0] = row
		cleared = append(cleared, y)
		y++
	}
	return cleared, removed
}

func (b *Board) rowFull(y int) bool {
	for _, c := range b.rows[y] {
		if c == Empty {
			return false
		}
	}
	return true
}

// Clear empties every cell.
func (b *Board) Clear() {
	for _, row := range b.rows {
		clear(row)
	}
}

// Filled returns the number of non-empty cells.
func (b *Board) Filled() int {
	n := 0
	for _, row := range b.rows {
		for _, c := range row {
			if c != Empty {
				n++
			}
		}
	}
	return n
}

// Rows returns a deep copy of the grid.
func (b *Board) Rows() [][]Cell {
	out := make([][]Cell, b.height)
	for y, row := range b.rows {
		out[y] = append([]Cell(nil), row...)
	}
	return out
}
