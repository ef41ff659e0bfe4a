package tetris

import (
	"fmt"
	"time"
)

// State is the phase of a session.
type State int

const (
	StateReady    State = iota // Piece spawned, waiting for Start
	StateRunning               // Auto-drop and input active
	StatePaused                // Frozen until resumed
	StateGameOver              // Spawn collided; only Restart leaves this state
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateGameOver:
		return "game-over"
	default:
		return "unknown"
	}
}

// Session owns one game: board, player, score and the drop timer.
// A Session is not safe for concurrent use; one goroutine must own it.
type Session struct {
	board     *Board
	player    *Player
	rng       Randomizer
	notifier  Notifier
	width     int
	height    int
	boardOpts []BoardOption

	state        State
	score        int
	level        int
	lines        int
	dropInterval time.Duration
	dropCounter  time.Duration
	lastTick     time.Time // zero means the next Tick rebases instead of advancing
}

// Option configures a Session.
type Option func(*Session)

// WithRandomizer sets the piece source.
func WithRandomizer(r Randomizer) Option {
	return func(s *Session) {
		s.rng = r
	}
}

// WithNotifier sets the receiver of session events.
func WithNotifier(n Notifier) Option {
	return func(s *Session) {
		s.notifier = n
	}
}

// WithBoardSize overrides the 10x20 default.
func WithBoardSize(width, height int) Option {
	return func(s *Session) {
		s.width = width
		s.height = height
	}
}

// WithTopRowSweep lets a full top row clear like any other.
func WithTopRowSweep() Option {
	return func(s *Session) {
		s.boardOpts = append(s.boardOpts, SweepTopRow())
	}
}

// NewSession creates a session in the Ready state with its first piece spawned.
func NewSession(opts ...Option) *Session {
	s := &Session{
		width:        BoardWidth,
		height:       BoardHeight,
		level:        1,
		dropInterval: BaseDropInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = NewRandomizer()
	}
	s.board = NewBoard(s.width, s.height, s.boardOpts...)
	s.spawnFirst()
	return s
}

func (s *Session) spawnFirst() {
	s.player = NewPlayer(s.rng)
	s.state = StateReady
	if !s.player.Reset(s.board) {
		s.state = StateGameOver
	}
}

// Board returns the placed-cell grid.
func (s *Session) Board() *Board { return s.board }

// Player returns the active piece state.
func (s *Session) Player() *Player { return s.player }

// State returns the current phase.
func (s *Session) State() State { return s.state }

// Score returns the points earned so far.
func (s *Session) Score() int { return s.score }

// Level returns the current level, starting at 1.
func (s *Session) Level() int { return s.level }

// Lines returns the total rows cleared.
func (s *Session) Lines() int { return s.lines }

// DropInterval returns the current auto-drop interval.
func (s *Session) DropInterval() time.Duration { return s.dropInterval }

func (s *Session) notify(e Event) {
	if s.notifier == nil {
		return
	}
	e.Score = s.score
	e.Level = s.level
	s.notifier.Notify(e)
}

// Start moves a Ready session to Running.
func (s *Session) Start() bool {
	if s.state != StateReady {
		return false
	}
	s.state = StateRunning
	s.dropCounter = 0
	s.lastTick = time.Time{}
	s.notify(Event{Type: EventStart})
	return true
}

// TogglePause pauses a running session or resumes a paused one. Resuming
// rebases the tick clock so the time spent paused is not counted.
func (s *Session) TogglePause() bool {
	switch s.state {
	case StateRunning:
		s.state = StatePaused
		s.notify(Event{Type: EventPause})
	case StatePaused:
		s.state = StateRunning
		s.lastTick = time.Time{}
		s.notify(Event{Type: EventResume})
	default:
		return false
	}
	return true
}

// Restart resets a finished game: empty board, zeroed counters, base speed
// and a fresh piece. The session ends up Ready.
func (s *Session) Restart() bool {
	if s.state != StateGameOver {
		return false
	}
	s.board.Clear()
	s.score = 0
	s.lines = 0
	s.level = 1
	s.dropInterval = BaseDropInterval
	s.dropCounter = 0
	s.lastTick = time.Time{}
	s.spawnFirst()
	s.notify(Event{Type: EventRestart})
	return true
}

// Tick advances the drop timer by the wall time since the previous tick.
// The first tick after Start or resume only records the time.
func (s *Session) Tick(now time.Time) {
	if s.state != StateRunning {
		return
	}
	if s.lastTick.IsZero() {
		s.lastTick = now
		return
	}
	delta := now.Sub(s.lastTick)
	s.lastTick = now
	s.Advance(delta)
}

// Advance adds d to the drop counter and soft-drops once it exceeds the
// current interval.
func (s *Session) Advance(d time.Duration) {
	if s.state != StateRunning || d < 0 {
		return
	}
	s.dropCounter += d
	if s.dropCounter > s.dropInterval {
		s.SoftDrop()
	}
}

// Apply performs a player action. It reports whether anything changed.
func (s *Session) Apply(a Action) bool {
	switch a {
	case ActionMoveLeft:
		return s.Move(-1)
	case ActionMoveRight:
		return s.Move(1)
	case ActionSoftDrop:
		return s.SoftDrop()
	case ActionHardDrop:
		return s.HardDrop()
	case ActionRotateCW:
		return s.Rotate(1)
	case ActionRotateCCW:
		return s.Rotate(-1)
	case ActionHold:
		return s.Hold()
	case ActionTogglePause:
		return s.TogglePause()
	default:
		return false
	}
}

// Move shifts the piece horizontally by dx.
func (s *Session) Move(dx int) bool {
	if s.state != StateRunning {
		return false
	}
	if !s.player.Move(s.board, dx) {
		s.notify(Event{Type: EventBlocked})
		return false
	}
	s.notify(Event{Type: EventMove})
	return true
}

// Rotate turns the piece, kicking it sideways if needed.
func (s *Session) Rotate(dir int) bool {
	if s.state != StateRunning {
		return false
	}
	if !s.player.Rotate(s.board, dir) {
		s.notify(Event{Type: EventBlocked})
		return false
	}
	s.notify(Event{Type: EventRotate})
	return true
}

// SoftDrop moves the piece down one row, locking it if it cannot descend.
// The drop timer restarts either way.
func (s *Session) SoftDrop() bool {
	if s.state != StateRunning {
		return false
	}
	if !s.player.Descend(s.board) {
		s.lock()
	}
	s.dropCounter = 0
	return true
}

// HardDrop drops the piece to the floor and locks it.
func (s *Session) HardDrop() bool {
	if s.state != StateRunning {
		return false
	}
	s.player.DropToFloor(s.board)
	s.lock()
	s.dropCounter = 0
	return true
}

// Hold swaps the current piece into the hold slot.
func (s *Session) Hold() bool {
	if s.state != StateRunning {
		return false
	}
	held, spawned := s.player.Hold(s.board)
	if !held {
		return false
	}
	s.notify(Event{Type: EventHold})
	if !spawned {
		s.gameOver()
	}
	return true
}

// lock merges the piece, spawns the next one, sweeps and scores.
func (s *Session) lock() {
	cur := s.player.Current()
	if err := s.board.Merge(cur.Shape, s.player.Position()); err != nil {
		// The player never rests on a colliding position.
		panic(fmt.Sprintf("tetris: lock %s: %v", cur.Kind, err))
	}
	s.notify(Event{Type: EventLock})

	spawned := s.player.Reset(s.board)
	s.player.unlockHold()

	if cleared, cells := s.board.SweepCells(); len(cleared) > 0 {
		s.award(cleared, cells)
	}
	if !spawned {
		s.gameOver()
	}
}

func (s *Session) award(cleared []int, cells [][]Cell) {
	rows := len(cleared)
	s.score += LinePoints(rows, s.level)
	s.lines += rows
	s.level = LevelForLines(s.lines)
	s.dropInterval = DropIntervalFor(s.level)
	s.notify(Event{Type: EventLineClear, Rows: rows, Lines: cleared, Cleared: cells})
}

func (s *Session) gameOver() {
	s.state = StateGameOver
	s.notify(Event{Type: EventGameOver})
}

// GhostPosition returns where the current piece would land on a hard drop.
func (s *Session) GhostPosition() Point {
	shape := s.player.Current().Shape
	pos := s.player.Position()
	for range s.board.Height() {
		pos.Y++
		if s.board.Collides(shape, pos) {
			pos.Y--
			return pos
		}
	}
	return pos
}

// Snapshot is a read-only copy of everything a renderer needs.
type Snapshot struct {
	State        State
	Width        int
	Height       int
	Board        [][]Cell
	Current      Piece
	Position     Point
	Ghost        Point
	Next         Piece
	HasNext      bool
	Held         Kind
	HasHeld      bool
	CanHold      bool
	Score        int
	Level        int
	Lines        int
	DropInterval time.Duration
}

// Snapshot copies the session state.
func (s *Session) Snapshot() Snapshot {
	cur := s.player.Current()
	snap := Snapshot{
		State:        s.state,
		Width:        s.board.Width(),
		Height:       s.board.Height(),
		Board:        s.board.Rows(),
		Current:      Piece{Kind: cur.Kind, Shape: cur.Shape.Clone()},
		Position:     s.player.Position(),
		Ghost:        s.GhostPosition(),
		CanHold:      s.player.CanHold(),
		Score:        s.score,
		Level:        s.level,
		Lines:        s.lines,
		DropInterval: s.dropInterval,
	}
	if next, ok := s.player.Next(); ok {
		snap.Next = Piece{Kind: next.Kind, Shape: next.Shape.Clone()}
		snap.HasNext = true
	}
	snap.Held, snap.HasHeld = s.player.Held()
	return snap
}
