package draw

import (
	"github.com/tomz197/sshtris/internal/tetris"
)

// Layer says what occupies a grid cell.
type Layer uint8

const (
	LayerEmpty Layer = iota
	LayerBlock
	LayerGhost
	LayerSpark
)

// GridCell is one board position as it will be drawn.
type GridCell struct {
	Cell  tetris.Cell
	Layer Layer
}

// Surface accepts "fill cell (x, y) with color c" in board coordinates.
type Surface interface {
	FillCell(x, y int, c tetris.Cell)
}

// Grid is a board-sized drawing surface with ghost and particle overlays.
type Grid struct {
	width  int
	height int
	cells  []GridCell
}

// NewGrid creates an empty grid.
func NewGrid(width, height int) *Grid {
	g := &Grid{}
	g.Reset(width, height)
	return g
}

// Reset clears the grid, resizing it if needed.
func (g *Grid) Reset(width, height int) {
	if width*height != len(g.cells) {
		g.cells = make([]GridCell, width*height)
	} else {
		clear(g.cells)
	}
	g.width = width
	g.height = height
}

// Width returns the column count.
func (g *Grid) Width() int { return g.width }

// Height returns the row count.
func (g *Grid) Height() int { return g.height }

func (g *Grid) index(x, y int) (int, bool) {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return 0, false
	}
	return y*g.width + x, true
}

// At returns the cell at (x, y). Out-of-range positions read as empty.
func (g *Grid) At(x, y int) GridCell {
	i, ok := g.index(x, y)
	if !ok {
		return GridCell{}
	}
	return g.cells[i]
}

// FillCell paints a solid block. Empty values are ignored.
func (g *Grid) FillCell(x, y int, c tetris.Cell) {
	i, ok := g.index(x, y)
	if !ok || c == tetris.Empty {
		return
	}
	g.cells[i] = GridCell{Cell: c, Layer: LayerBlock}
}

// GhostCell marks where the falling piece would land. Occupied cells win.
func (g *Grid) GhostCell(x, y int, c tetris.Cell) {
	i, ok := g.index(x, y)
	if !ok || g.cells[i].Layer != LayerEmpty {
		return
	}
	g.cells[i] = GridCell{Cell: c, Layer: LayerGhost}
}

// Spark draws a particle over whatever is there.
func (g *Grid) Spark(x, y int, c tetris.Cell) {
	i, ok := g.index(x, y)
	if !ok {
		return
	}
	g.cells[i] = GridCell{Cell: c, Layer: LayerSpark}
}

var _ Surface = (*Grid)(nil)

// PaintShape fills every non-empty cell of shape at pos.
func PaintShape(s Surface, shape tetris.Shape, pos tetris.Point) {
	shape.Each(func(x, y int, c tetris.Cell) {
		s.FillCell(pos.X+x, pos.Y+y, c)
	})
}

// PaintSnapshot draws the placed cells, the ghost and the falling piece.
// After game over the piece that failed to spawn is left out.
func PaintSnapshot(g *Grid, snap tetris.Snapshot) {
	g.Reset(snap.Width, snap.Height)
	for y, row := range snap.Board {
		for x, c := range row {
			g.FillCell(x, y, c)
		}
	}
	if snap.State == tetris.StateGameOver {
		return
	}
	if snap.Ghost != snap.Position {
		snap.Current.Shape.Each(func(x, y int, c tetris.Cell) {
			g.GhostCell(snap.Ghost.X+x, snap.Ghost.Y+y, c)
		})
	}
	PaintShape(g, snap.Current.Shape, snap.Position)
}
