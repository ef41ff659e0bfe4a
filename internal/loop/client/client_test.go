package client

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/sshtris/internal/hub"
	"github.com/tomz197/sshtris/internal/input"
	"github.com/tomz197/sshtris/internal/loop/config"
	"github.com/tomz197/sshtris/internal/tetris"
)

// fakeLobby records what a client reports.
type fakeLobby struct {
	mu           sync.Mutex
	handle       *hub.Handle
	scores       []hub.ScoreEntry
	unregistered []int
	snap         hub.Snapshot
}

func (l *fakeLobby) Register(username string) *hub.Handle {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handle = &hub.Handle{ID: 7, Username: username, Events: make(chan hub.Event, 4)}
	return l.handle
}

func (l *fakeLobby) Unregister(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.unregistered = append(l.unregistered, id)
}

func (l *fakeLobby) ReportScore(entry hub.ScoreEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.scores = append(l.scores, entry)
}

func (l *fakeLobby) Snapshot() *hub.Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	snap := l.snap
	return &snap
}

func (l *fakeLobby) reported() []hub.ScoreEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]hub.ScoreEntry(nil), l.scores...)
}

// soundSwitch is a mutable listener that counts what it hears.
type soundSwitch struct {
	on     bool
	err    error
	events int
}

func (s *soundSwitch) Notify(tetris.Event) { s.events++ }
func (s *soundSwitch) Enabled() bool { return s.on }

func (s *soundSwitch) SetEnabled(on bool) error {
	if s.err != nil {
		return s.err
	}
	s.on = on
	return nil
}

// fixed always draws the same piece: 3 is O, 4 is T.
type fixed int

func (f fixed) IntN(n int) int { return int(f) % n }

func size(w, h int) func() (int, int, error) {
	return func() (int, int, error) { return w, h, nil }
}

// idleReader never produces input until the test ends.
func idleReader(t *testing.T) io.ByteReader {
	t.Helper()
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })
	return bufio.NewReader(pr)
}

func newTestClient(t *testing.T, r io.ByteReader, w io.Writer, opts ClientOptions) (*Client, *fakeLobby) {
	t.Helper()
	lobby := &fakeLobby{}
	if opts.TermSizeFunc == nil {
		opts.TermSizeFunc = size(80, 30)
	}
	if opts.Username == "" {
		opts.Username = "alice"
	}
	if opts.Randomizer == nil {
		opts.Randomizer = fixed(4)
	}
	opts.Profile = termenv.Ascii
	opts.Logger = log.New(io.Discard)
	return NewClient(lobby, r, w, opts), lobby
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"alice", "alice"},
		{"  bob ", "bob"},
		{"", config.DefaultUsername},
		{"\x1b[31mred", "[31mred"},
		{"abcdefghijklmnopqrstuvwxyz", "abcdefghijklmnop"},
		{"ünïcödé", "ünïcödé"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DisplayName(tt.in), tt.in)
	}
}

func TestNewClientRegisters(t *testing.T) {
	c, lobby := newTestClient(t, idleReader(t), io.Discard, ClientOptions{Username: "alice"})

	require.NotNil(t, lobby.handle)
	assert.Equal(t, "alice", lobby.handle.Username)
	assert.Equal(t, tetris.StateReady, c.session.State())
	assert.Equal(t, 80, c.canvas.Width())
	assert.Equal(t, 30, c.canvas.Height())
}

func TestConfirmStartsAndActionsApply(t *testing.T) {
	c, _ := newTestClient(t, idleReader(t), io.Discard, ClientOptions{})

	c.handleInput(input.Input{Actions: []tetris.Action{tetris.ActionMoveLeft}})
	assert.Equal(t, tetris.StateReady, c.session.State(), "actions are ignored before start")
	assert.Equal(t, 4, c.session.Player().Position().X)

	c.handleInput(input.Input{Confirm: true})
	require.Equal(t, tetris.StateRunning, c.session.State())

	c.handleInput(input.Input{Actions: []tetris.Action{tetris.ActionMoveLeft, tetris.ActionMoveLeft}})
	assert.Equal(t, 2, c.session.Player().Position().X)

	c.handleInput(input.Input{Actions: []tetris.Action{tetris.ActionTogglePause}})
	assert.Equal(t, tetris.StatePaused, c.session.State())
}

func TestGameOverReportsScoreAndRestarts(t *testing.T) {
	c, lobby := newTestClient(t, idleReader(t), io.Discard, ClientOptions{Randomizer: fixed(3)})
	c.handleInput(input.Input{Confirm: true})

	for i := 0; i < 20 && c.session.State() != tetris.StateGameOver; i++ {
		c.handleInput(input.Input{Actions: []tetris.Action{tetris.ActionHardDrop}})
	}
	require.Equal(t, tetris.StateGameOver, c.session.State())

	scores := lobby.reported()
	require.Len(t, scores, 1)
	assert.Equal(t, "alice", scores[0].Name)
	assert.Equal(t, 7, scores[0].ClientID)
	assert.Equal(t, 1, scores[0].Level)
	assert.False(t, scores[0].When.IsZero())

	c.state.HighScoreRank = 3
	c.handleInput(input.Input{Confirm: true})
	assert.Equal(t, tetris.StateRunning, c.session.State())
	assert.Zero(t, c.session.Score())
	assert.Zero(t, c.state.HighScoreRank)
}

func TestHubEvents(t *testing.T) {
	c, lobby := newTestClient(t, idleReader(t), io.Discard, ClientOptions{})

	lobby.handle.Events <- hub.Event{Type: hub.EventNewHighScore, Rank: 2}
	c.processHubEvents()
	assert.Equal(t, 2, c.state.HighScoreRank)

	lobby.handle.Events <- hub.Event{Type: hub.EventShutdown}
	c.processHubEvents()
	assert.Equal(t, ScreenShutdown, c.state.Screen)
	assert.True(t, c.state.Running)

	c.state.delta = time.Duration(config.ShutdownDisplaySeconds+1) * time.Second
	c.update(time.Now())
	assert.False(t, c.state.Running)
}

func TestClosedEventsStopClient(t *testing.T) {
	c, lobby := newTestClient(t, idleReader(t), io.Discard, ClientOptions{})

	close(lobby.handle.Events)
	c.processHubEvents()
	assert.False(t, c.state.Running)
}

func TestInactivity(t *testing.T) {
	c, _ := newTestClient(t, idleReader(t), io.Discard, ClientOptions{})
	now := time.Now()

	c.lastInput = now.Add(-(config.InactivityWarnUser + 1) * time.Second)
	c.processInput(now)
	assert.True(t, c.state.isInactive)
	assert.True(t, c.state.Running)

	c.lastInput = now.Add(-(config.InactivityDisconnectUser + 1) * time.Second)
	c.processInput(now)
	assert.False(t, c.state.Running)
}

func TestBellRingsOnce(t *testing.T) {
	var out bytes.Buffer
	c, _ := newTestClient(t, idleReader(t), &out, ClientOptions{Bell: true})

	c.Notify(tetris.Event{Type: tetris.EventLineClear, Rows: 1, Lines: []int{19}})
	require.True(t, c.state.bell)
	require.NoError(t, c.drawFrame())
	assert.Contains(t, out.String(), "\a")
	assert.False(t, c.state.bell)

	out.Reset()
	require.NoError(t, c.drawFrame())
	assert.NotContains(t, out.String(), "\a")
}

func TestNoBellWhenDisabled(t *testing.T) {
	c, _ := newTestClient(t, idleReader(t), io.Discard, ClientOptions{})

	c.Notify(tetris.Event{Type: tetris.EventLineClear, Rows: 1, Lines: []int{19}})
	assert.False(t, c.state.bell)
}

func TestDrawFrameScreens(t *testing.T) {
	var out bytes.Buffer
	c, lobby := newTestClient(t, idleReader(t), &out, ClientOptions{})
	lobby.snap = hub.Snapshot{
		Players:   3,
		TopScores: []hub.ScoreEntry{{Name: "bob", Score: 1200}},
	}

	require.NoError(t, c.drawFrame())
	assert.Equal(t, layoutTitle, c.state.prevLayout)
	assert.Contains(t, out.String(), "Controls")
	assert.Contains(t, out.String(), "3 online")

	out.Reset()
	c.handleInput(input.Input{Confirm: true})
	require.NoError(t, c.drawFrame())
	assert.Equal(t, layoutPlaying, c.state.prevLayout)
	assert.Contains(t, out.String(), "Top scores")
	assert.Contains(t, out.String(), "bob")
	assert.Contains(t, out.String(), "3 playing")

	out.Reset()
	c.handleInput(input.Input{Actions: []tetris.Action{tetris.ActionTogglePause}})
	require.NoError(t, c.drawFrame())
	assert.Contains(t, out.String(), "PAUSED")

	out.Reset()
	c.termSizeFunc = size(40, 10)
	c.updateScreen()
	require.NoError(t, c.drawFrame())
	assert.Equal(t, layoutTooSmall, c.state.prevLayout)
	assert.Contains(t, out.String(), "Terminal too small")
}

func TestRunQuits(t *testing.T) {
	var out bytes.Buffer
	c, lobby := newTestClient(t, strings.NewReader("q"), &out, ClientOptions{})

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("client did not quit")
	}
	assert.Equal(t, []int{7}, lobby.unregistered)
}

func TestRunStopsOnCancel(t *testing.T) {
	c, lobby := newTestClient(t, idleReader(t), io.Discard, ClientOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, c.Run(ctx))
	assert.Equal(t, []int{7}, lobby.unregistered)
}

func TestSoundKeyTogglesListener(t *testing.T) {
	var out bytes.Buffer
	sw := &soundSwitch{}
	c, _ := newTestClient(t, idleReader(t), &out, ClientOptions{Sound: sw})
	require.NotNil(t, c.sound)

	c.handleInput(input.Input{Sound: true})
	assert.True(t, sw.on)

	c.handleInput(input.Input{Confirm: true})
	assert.Positive(t, sw.events, "the listener still hears session events")
	require.NoError(t, c.drawFrame())
	assert.Contains(t, out.String(), "m sound on")

	c.handleInput(input.Input{Sound: true})
	assert.False(t, sw.on)
}

func TestSoundKeyKeepsStateOnError(t *testing.T) {
	sw := &soundSwitch{err: errors.New("no audio device")}
	c, _ := newTestClient(t, idleReader(t), io.Discard, ClientOptions{Sound: sw})

	c.handleInput(input.Input{Sound: true})
	assert.False(t, sw.on)
}

func TestSoundKeyWithoutListener(t *testing.T) {
	var out bytes.Buffer
	c, _ := newTestClient(t, idleReader(t), &out, ClientOptions{})

	c.handleInput(input.Input{Sound: true, Confirm: true})
	assert.Equal(t, tetris.StateRunning, c.session.State())
	require.NoError(t, c.drawFrame())
	assert.NotContains(t, out.String(), "m sound")
}

func TestPlayingScreenShowsBoardBest(t *testing.T) {
	var out bytes.Buffer
	c, lobby := newTestClient(t, idleReader(t), &out, ClientOptions{})
	lobby.snap = hub.Snapshot{Best: 4321}

	c.handleInput(input.Input{Confirm: true})
	require.NoError(t, c.drawFrame())
	assert.Contains(t, out.String(), "Best")
	assert.Contains(t, out.String(), "4321")
}
