// Package client runs one player's game over a terminal stream.
package client

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/tomz197/sshtris/internal/draw"
	"github.com/tomz197/sshtris/internal/effect"
	"github.com/tomz197/sshtris/internal/hub"
	"github.com/tomz197/sshtris/internal/input"
	"github.com/tomz197/sshtris/internal/loop/config"
	"github.com/tomz197/sshtris/internal/tetris"
)

// Client handles the game, rendering and input for a single connection.
// Everything it owns is touched only by the goroutine running Run.
type Client struct {
	lobby        hub.Lobby
	handle       *hub.Handle
	state        *ClientState
	session      *tetris.Session
	grid         *draw.Grid
	particles    *effect.System
	renderer     *draw.Renderer
	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter // Accumulates frame output for chunked writes
	writer       io.Writer
	inputStream  *input.Stream
	lastInput    time.Time
	username     string
	termSizeFunc draw.TermSizeFunc
	bell         bool
	sound        SoundSwitch
	logger       *log.Logger
}

// SoundSwitch is an event listener that can be muted at runtime, such as
// *audio.Engine.
type SoundSwitch interface {
	Enabled() bool
	SetEnabled(bool) error
}

// ClientOptions configures the client.
type ClientOptions struct {
	TermSizeFunc draw.TermSizeFunc
	Username     string
	Profile      termenv.Profile
	Bell         bool            // Ring the terminal bell on line clears and game over
	Sound        tetris.Notifier // Extra listener for game events, e.g. local audio
	SweepTopRow  bool
	Randomizer   tetris.Randomizer
	Logger       *log.Logger
}

// NewClient creates a client registered with lobby. Input is read from r
// and frames are written to w.
func NewClient(lobby hub.Lobby, r io.ByteReader, w io.Writer, opts ClientOptions) *Client {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	username := DisplayName(opts.Username)

	c := &Client{
		lobby:        lobby,
		handle:       lobby.Register(username),
		state:        NewClientState(),
		particles:    effect.NewSystem(tetris.BoardWidth, nil),
		renderer:     draw.NewRenderer(w, opts.Profile),
		chunkWriter:  draw.NewChunkWriter(w, 0, 0),
		writer:       w,
		inputStream:  input.StartStream(r),
		lastInput:    time.Now(),
		username:     username,
		termSizeFunc: termSizeFunc,
		bell:         opts.Bell,
		logger:       logger.With("user", username),
	}

	notifiers := tetris.MultiNotifier{c.particles, c}
	if opts.Sound != nil {
		notifiers = append(notifiers, opts.Sound)
		c.sound, _ = opts.Sound.(SoundSwitch)
	}
	sessionOpts := []tetris.Option{tetris.WithNotifier(notifiers)}
	if opts.Randomizer != nil {
		sessionOpts = append(sessionOpts, tetris.WithRandomizer(opts.Randomizer))
	}
	if opts.SweepTopRow {
		sessionOpts = append(sessionOpts, tetris.WithTopRowSweep())
	}
	c.session = tetris.NewSession(sessionOpts...)
	c.grid = draw.NewGrid(c.session.Board().Width(), c.session.Board().Height())

	termWidth, termHeight, _ := termSizeFunc()
	c.canvas = draw.NewCanvas(termWidth, termHeight)
	return c
}

// DisplayName strips control characters from a login name and trims it to
// the display length. Empty names fall back to a default.
func DisplayName(name string) string {
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "" {
		return config.DefaultUsername
	}
	runes := []rune(name)
	if len(runes) > config.MaxUsernameLength {
		runes = runes[:config.MaxUsernameLength]
	}
	return string(runes)
}

// Run starts the client loop. Blocks until the player quits, the input
// closes, the server shuts down or ctx is cancelled.
func (c *Client) Run(ctx context.Context) error {
	draw.HideCursor(c.writer)
	defer draw.ShowCursor(c.writer)
	draw.ClearScreen(c.writer)
	defer c.lobby.Unregister(c.handle.ID)

	lastTime := time.Now()

	for c.state.Running {
		select {
		case <-ctx.Done():
			c.state.Running = false
			continue
		default:
		}

		frameStart := time.Now()
		c.state.delta = frameStart.Sub(lastTime)
		lastTime = frameStart

		c.processInput(frameStart)
		c.processHubEvents()
		c.updateScreen()
		c.update(frameStart)

		if err := c.drawFrame(); err != nil {
			return fmt.Errorf("draw frame: %w", err)
		}

		// Frame timing
		elapsed := time.Since(frameStart)
		if elapsed < config.ClientTargetFrameTime {
			time.Sleep(config.ClientTargetFrameTime - elapsed)
		}
	}

	draw.ClearScreen(c.writer)
	return nil
}

// processInput reads pending keys and applies them.
func (c *Client) processInput(now time.Time) {
	in := input.ReadInput(c.inputStream)
	c.state.Input = in

	idle := now.Sub(c.lastInput).Seconds()
	switch {
	case in.Any():
		c.lastInput = now
		c.state.isInactive = false
	case idle > config.InactivityDisconnectUser:
		c.logger.Info("disconnecting idle player")
		c.state.Running = false
		return
	case idle > config.InactivityWarnUser:
		c.state.isInactive = true
	}

	if in.Quit || in.Closed {
		c.state.Running = false
		return
	}
	if c.state.Screen == ScreenShutdown {
		return
	}
	c.handleInput(in)
}

// handleInput maps one frame of input onto the session.
func (c *Client) handleInput(in input.Input) {
	if in.Sound {
		c.toggleSound()
	}
	if in.Confirm {
		switch c.session.State() {
		case tetris.StateReady:
			c.startGame()
		case tetris.StateGameOver:
			c.session.Restart()
			c.startGame()
		}
	}
	for _, a := range in.Actions {
		c.session.Apply(a)
	}
}

func (c *Client) toggleSound() {
	if c.sound == nil {
		return
	}
	on := !c.sound.Enabled()
	if err := c.sound.SetEnabled(on); err != nil {
		c.logger.Warn("sound unavailable", "err", err)
		return
	}
	c.logger.Debug("sound toggled", "on", on)
}

func (c *Client) startGame() {
	c.state.HighScoreRank = 0
	if c.session.Start() {
		c.logger.Debug("game started")
	}
}

// processHubEvents handles notifications from the lobby.
func (c *Client) processHubEvents() {
	for {
		select {
		case event, ok := <-c.handle.Events:
			if !ok {
				c.state.Running = false
				return
			}
			switch event.Type {
			case hub.EventNewHighScore:
				c.state.HighScoreRank = event.Rank
			case hub.EventShutdown:
				c.state.Screen = ScreenShutdown
				c.state.shutdownTimer = config.ShutdownDisplaySeconds
			}
		default:
			return
		}
	}
}

// updateScreen picks up terminal resizes. The canvas clears on the next
// render when the size changed.
func (c *Client) updateScreen() {
	width, height, err := c.termSizeFunc()
	if err != nil {
		return
	}
	c.canvas.Resize(width, height)
}

// update advances the game clock and the effects.
func (c *Client) update(now time.Time) {
	switch c.state.Screen {
	case ScreenShutdown:
		c.state.shutdownTimer -= c.state.delta.Seconds()
		if c.state.shutdownTimer <= 0 {
			c.state.Running = false
		}
	default:
		c.session.Tick(now)
	}
	c.particles.Update(c.state.delta)
}

// Notify receives session events on the Run goroutine.
func (c *Client) Notify(e tetris.Event) {
	switch e.Type {
	case tetris.EventLineClear:
		c.state.bell = c.bell
	case tetris.EventGameOver:
		c.state.bell = c.bell
		c.logger.Info("game over", "score", e.Score, "level", e.Level, "lines", c.session.Lines())
		c.lobby.ReportScore(hub.ScoreEntry{
			Name:     c.username,
			Score:    e.Score,
			Lines:    c.session.Lines(),
			Level:    e.Level,
			When:     time.Now(),
			ClientID: c.handle.ID,
		})
	}
}

var _ tetris.Notifier = (*Client)(nil)
