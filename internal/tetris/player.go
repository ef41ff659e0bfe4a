package tetris

import (
	"math/rand/v2"
)

// Randomizer picks the next piece. *rand.Rand from math/rand/v2 satisfies it.
type Randomizer interface {
	IntN(n int) int
}

// NewRandomizer returns a time-seeded PCG source.
func NewRandomizer() Randomizer {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Player is the active falling piece together with the next and held pieces.
type Player struct {
	current Piece
	pos     Point
	next    *Piece
	held    Kind // zero when nothing is held
	canHold bool
	rng     Randomizer
}

// NewPlayer creates a player with no piece in play. Call Reset to spawn.
func NewPlayer(rng Randomizer) *Player {
	if rng == nil {
		rng = NewRandomizer()
	}
	return &Player{rng: rng, canHold: true}
}

// Current returns the piece in play.
func (p *Player) Current() Piece {
	return p.current
}

// Position returns the origin of the current piece in board coordinates.
func (p *Player) Position() Point {
	return p.pos
}

// Next returns the queued piece, if one has been drawn.
func (p *Player) Next() (Piece, bool) {
	if p.next == nil {
		return Piece{}, false
	}
	return *p.next, true
}

// Held returns the held kind, if any.
func (p *Player) Held() (Kind, bool) {
	return p.held, p.held.Valid()
}

// CanHold reports whether Hold is currently allowed.
func (p *Player) CanHold() bool {
	return p.canHold
}

func (p *Player) draw() *Piece {
	kinds := Kinds()
	k := kinds[p.rng.IntN(len(kinds))]
	piece := mustPiece(k)
	return &piece
}

// Reset moves the next piece into play, queues a fresh one and places the new
// piece at the spawn point. It returns false when the spawned piece collides,
// which ends the game.
func (p *Player) Reset(board *Board) bool {
	if p.next == nil {
		p.next = p.draw()
	}
	p.current = *p.next
	p.next = p.draw()
	return p.spawn(board)
}

func (p *Player) spawn(board *Board) bool {
	p.pos = Point{
		X: board.Width()/2 - p.current.Shape.Width()/2,
		Y: 0,
	}
	return !board.Collides(p.current.Shape, p.pos)
}

// Move shifts the piece horizontally. It returns false and leaves the piece
// where it was when the target position collides.
func (p *Player) Move(board *Board, dx int) bool {
	p.pos.X += dx
	if board.Collides(p.current.Shape, p.pos) {
		p.pos.X -= dx
		return false
	}
	return true
}

// Descend moves the piece down one row, reverting on collision.
func (p *Player) Descend(board *Board) bool {
	p.pos.Y++
	if board.Collides(p.current.Shape, p.pos) {
		p.pos.Y--
		return false
	}
	return true
}

// DropToFloor descends until the next step would collide and returns the
// number of rows travelled.
func (p *Player) DropToFloor(board *Board) int {
	rows := 0
	for p.Descend(board) {
		rows++
	}
	return rows
}

// Rotate turns the piece and, if it then collides, tries horizontal kicks of
// +1, -1, +2, -2, ... (offsets +1, -2, +3, -4 applied cumulatively) until the
// offset exceeds the shape width. When no kick fits the rotation and position
// are restored and Rotate returns false.
func (p *Player) Rotate(board *Board, dir int) bool {
	shape := p.current.Shape
	x := p.pos.X
	offset := 1
	shape.Rotate(dir)
	for board.Collides(shape, p.pos) {
		p.pos.X += offset
		if offset > 0 {
			offset = -(offset + 1)
		} else {
			offset = -(offset - 1)
		}
		if offset > shape.Width() {
			shape.Rotate(-dir)
			p.pos.X = x
			return false
		}
	}
	return true
}

// Hold sets the current piece aside. With an empty hold slot the next piece
// comes into play; otherwise the held piece is swapped in at the spawn point.
// held is false when holding is locked; spawned is false when the incoming
// piece collides at spawn.
func (p *Player) Hold(board *Board) (held, spawned bool) {
	if !p.canHold {
		return false, true
	}
	outgoing := p.current.Kind
	if !p.held.Valid() {
		p.held = outgoing
		spawned = p.Reset(board)
	} else {
		incoming := p.held
		p.held = outgoing
		p.current = mustPiece(incoming)
		spawned = p.spawn(board)
	}
	p.canHold = false
	return true, spawned
}

// unlockHold re-enables Hold after a piece locks.
func (p *Player) unlockHold() {
	p.canHold = true
}
