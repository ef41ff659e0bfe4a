package tetris

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, kinds []Kind, opts ...Option) (*Session, *recorder) {
	t.Helper()
	rec := &recorder{}
	opts = append([]Option{WithRandomizer(kindsRand(kinds...)), WithNotifier(rec)}, opts...)
	s := NewSession(opts...)
	require.Equal(t, StateReady, s.State())
	return s, rec
}

func TestNewSession(t *testing.T) {
	s, _ := newTestSession(t, []Kind{KindT})

	assert.Equal(t, 0, s.Score())
	assert.Equal(t, 0, s.Lines())
	assert.Equal(t, 1, s.Level())
	assert.Equal(t, BaseDropInterval, s.DropInterval())
	assert.Equal(t, 0, s.Board().Filled())
	assert.Equal(t, KindT, s.Player().Current().Kind)
}

func TestSessionIgnoresInputUntilStarted(t *testing.T) {
	s, rec := newTestSession(t, []Kind{KindT})

	for _, a := range []Action{ActionMoveLeft, ActionRotateCW, ActionHardDrop, ActionHold, ActionTogglePause} {
		assert.False(t, s.Apply(a), a.String())
	}
	s.Advance(5 * time.Second)

	assert.Equal(t, Point{X: 4, Y: 0}, s.Player().Position())
	assert.Empty(t, rec.events)
}

func TestSessionStart(t *testing.T) {
	s, rec := newTestSession(t, []Kind{KindT})

	require.True(t, s.Start())
	assert.Equal(t, StateRunning, s.State())
	assert.False(t, s.Start())
	assert.Equal(t, []EventType{EventStart}, rec.types())
}

func TestSessionTickDrops(t *testing.T) {
	s, _ := newTestSession(t, []Kind{KindT})
	require.True(t, s.Start())
	t0 := time.Unix(1000, 0)

	s.Tick(t0)
	s.Tick(t0.Add(500 * time.Millisecond))
	assert.Equal(t, 0, s.Player().Position().Y)

	s.Tick(t0.Add(1001 * time.Millisecond))
	assert.Equal(t, 1, s.Player().Position().Y)
}

func TestSessionAdvanceNeedsToExceedInterval(t *testing.T) {
	s, _ := newTestSession(t, []Kind{KindT})
	require.True(t, s.Start())

	s.Advance(BaseDropInterval)
	assert.Equal(t, 0, s.Player().Position().Y)

	s.Advance(time.Millisecond)
	assert.Equal(t, 1, s.Player().Position().Y)

	s.Advance(-time.Hour)
	assert.Equal(t, 1, s.Player().Position().Y)
}

func TestSessionSoftDropResetsCounter(t *testing.T) {
	s, _ := newTestSession(t, []Kind{KindT})
	require.True(t, s.Start())

	s.Advance(900 * time.Millisecond)
	require.True(t, s.SoftDrop())
	assert.Equal(t, 1, s.Player().Position().Y)

	s.Advance(900 * time.Millisecond)
	assert.Equal(t, 1, s.Player().Position().Y)
}

func TestSessionPauseRebasesClock(t *testing.T) {
	s, rec := newTestSession(t, []Kind{KindT})
	require.True(t, s.Start())
	t0 := time.Unix(1000, 0)
	s.Tick(t0)

	require.True(t, s.TogglePause())
	assert.Equal(t, StatePaused, s.State())
	s.Tick(t0.Add(5 * time.Second))
	assert.False(t, s.Apply(ActionMoveLeft))

	require.True(t, s.Apply(ActionTogglePause))
	assert.Equal(t, StateRunning, s.State())
	s.Tick(t0.Add(10 * time.Second))
	s.Tick(t0.Add(10*time.Second + 900*time.Millisecond))

	assert.Equal(t, 0, s.Player().Position().Y, "paused time must not count towards the drop")
	assert.Equal(t, []EventType{EventStart, EventPause, EventResume}, rec.types())
}

func TestSessionMoveEvents(t *testing.T) {
	s, rec := newTestSession(t, []Kind{KindT})
	require.True(t, s.Start())

	for range 4 {
		require.True(t, s.Move(-1))
	}
	assert.False(t, s.Move(-1))

	e, ok := rec.last(EventMove)
	require.True(t, ok)
	assert.Equal(t, 1, e.Level)
	assert.Equal(t, EventBlocked, rec.events[len(rec.events)-1].Type)
}

func TestSessionHardDropLocks(t *testing.T) {
	s, rec := newTestSession(t, []Kind{KindO})
	require.True(t, s.Start())

	require.True(t, s.HardDrop())

	assert.Equal(t, 4, s.Board().Filled())
	for _, p := range []Point{{4, 18}, {5, 18}, {4, 19}, {5, 19}} {
		assert.Equal(t, KindO.Cell(), s.Board().At(p.X, p.Y))
	}
	assert.Equal(t, Point{X: 4, Y: 0}, s.Player().Position())
	assert.Equal(t, 0, s.Score(), "hard drop awards no distance bonus")
	assert.Contains(t, rec.types(), EventLock)
}

func TestSessionClearsTwoRows(t *testing.T) {
	s, rec := newTestSession(t, []Kind{KindO})
	fillRow(s.board, 18, 1, 4, 5)
	fillRow(s.board, 19, 2, 4, 5)
	require.True(t, s.Start())

	require.True(t, s.HardDrop())

	assert.Equal(t, 100, s.Score())
	assert.Equal(t, 2, s.Lines())
	assert.Equal(t, 0, s.Board().Filled())
	e, ok := rec.last(EventLineClear)
	require.True(t, ok)
	assert.Equal(t, 2, e.Rows)
	assert.Equal(t, []int{19, 19}, e.Lines)
	assert.Equal(t, [][]Cell{
		{2, 2, 2, 2, 4, 4, 2, 2, 2, 2},
		{1, 1, 1, 1, 4, 4, 1, 1, 1, 1},
	}, e.Cleared)
	assert.Equal(t, 100, e.Score)
}

func TestSessionScoreUsesLevelBeforeClear(t *testing.T) {
	s, rec := newTestSession(t, []Kind{KindO})
	s.lines = 8
	fillRow(s.board, 18, 1, 4, 5)
	fillRow(s.board, 19, 2, 4, 5)
	require.True(t, s.Start())

	require.True(t, s.HardDrop())

	assert.Equal(t, 100, s.Score())
	assert.Equal(t, 10, s.Lines())
	assert.Equal(t, 2, s.Level())
	assert.Equal(t, 900*time.Millisecond, s.DropInterval())
	e, _ := rec.last(EventLineClear)
	assert.Equal(t, 2, e.Level)
}

func TestSessionFourRowsScaledByLevel(t *testing.T) {
	s, _ := newTestSession(t, []Kind{KindI})
	s.lines = 20
	s.level = 3
	for y := 16; y < 20; y++ {
		fillRow(s.board, y, 3, 4)
	}
	require.True(t, s.Start())

	require.True(t, s.HardDrop())

	assert.Equal(t, 3600, s.Score())
	assert.Equal(t, 24, s.Lines())
	assert.Equal(t, 3, s.Level())
	assert.Equal(t, 0, s.Board().Filled())
}

func TestSessionGameOverAndRestart(t *testing.T) {
	s, rec := newTestSession(t, []Kind{KindO}, WithBoardSize(10, 4))
	require.True(t, s.Start())

	require.True(t, s.HardDrop())
	require.Equal(t, StateRunning, s.State())
	require.True(t, s.HardDrop())

	assert.Equal(t, StateGameOver, s.State())
	types := rec.types()
	assert.Equal(t, EventGameOver, types[len(types)-1])
	assert.Equal(t, EventLock, types[len(types)-2])
	assert.False(t, s.Apply(ActionMoveLeft))
	assert.False(t, s.TogglePause())

	require.True(t, s.Restart())
	assert.Equal(t, StateReady, s.State())
	assert.Equal(t, 0, s.Board().Filled())
	assert.Equal(t, 0, s.Score())
	assert.Equal(t, 1, s.Level())
	assert.Equal(t, BaseDropInterval, s.DropInterval())
	assert.Equal(t, EventRestart, rec.events[len(rec.events)-1].Type)
	assert.True(t, s.Start())
}

func TestSessionLockSpawnsBeforeSweep(t *testing.T) {
	s, rec := newTestSession(t, []Kind{KindO}, WithBoardSize(10, 4))
	fillRow(s.board, 1, 1, 4, 5)
	fillRow(s.board, 2, 2, 4, 5)
	fillRow(s.board, 3, 3, 0)
	require.True(t, s.Start())

	// The O rests on rows 1-2 and completes both, but the next O is placed
	// while they are still on the board.
	require.True(t, s.HardDrop())

	assert.Equal(t, StateGameOver, s.State())
	assert.Equal(t, 100, s.Score())
	assert.Equal(t, 2, s.Lines())
	types := rec.types()
	require.GreaterOrEqual(t, len(types), 3)
	assert.Equal(t, []EventType{EventLock, EventLineClear, EventGameOver}, types[len(types)-3:])
}

func TestSessionRestartOnlyAfterGameOver(t *testing.T) {
	s, _ := newTestSession(t, []Kind{KindT})
	assert.False(t, s.Restart())
	require.True(t, s.Start())
	assert.False(t, s.Restart())
}

func TestSessionHoldLocksUntilNextLock(t *testing.T) {
	s, rec := newTestSession(t, []Kind{KindT, KindO, KindS, KindZ})
	require.True(t, s.Start())

	require.True(t, s.Hold())
	assert.False(t, s.Hold())
	assert.Equal(t, KindO, s.Player().Current().Kind)

	require.True(t, s.HardDrop())
	assert.True(t, s.Player().CanHold())
	require.True(t, s.Hold())
	assert.Equal(t, KindT, s.Player().Current().Kind)

	n := 0
	for _, e := range rec.events {
		if e.Type == EventHold {
			n++
		}
	}
	assert.Equal(t, 2, n)
}

func TestSessionTopRowSweepOption(t *testing.T) {
	s := NewSession(WithRandomizer(kindsRand(KindT)), WithTopRowSweep())
	assert.True(t, s.Board().sweepTop)

	s = NewSession(WithRandomizer(kindsRand(KindT)))
	assert.False(t, s.Board().sweepTop)
}

func TestSessionSnapshot(t *testing.T) {
	s, _ := newTestSession(t, []Kind{KindT, KindO})
	require.True(t, s.Start())

	snap := s.Snapshot()

	assert.Equal(t, StateRunning, snap.State)
	assert.Equal(t, KindT, snap.Current.Kind)
	assert.Equal(t, Point{X: 4, Y: 0}, snap.Position)
	assert.Equal(t, Point{X: 4, Y: 18}, snap.Ghost)
	assert.True(t, snap.HasNext)
	assert.Equal(t, KindO, snap.Next.Kind)
	assert.False(t, snap.HasHeld)
	assert.True(t, snap.CanHold)

	snap.Board[19][0] = 5
	snap.Current.Shape[0][0] = 5
	assert.Equal(t, Empty, s.Board().At(0, 19))
	assert.Equal(t, Empty, s.Player().Current().Shape[0][0])
}
