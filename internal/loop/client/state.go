package client

import (
	"time"

	"github.com/tomz197/sshtris/internal/input"
)

// Screen is the client-level phase, layered over the session state.
type Screen int

const (
	ScreenGame     Screen = iota // Title, playing, paused and game over all come from the session
	ScreenShutdown               // Server is shutting down
)

// ClientState holds per-connection state that is not part of the game itself.
// Each client has its own instance, managed by the Client.
type ClientState struct {
	Input         input.Input
	Screen        Screen
	Running       bool          // Client loop running
	HighScoreRank int           // Rank of the last finished game, 0 if it missed the board
	delta         time.Duration // Frame delta time
	shutdownTimer float64       // Countdown before auto-disconnect on shutdown
	isInactive    bool          // Whether the client is in inactive warning state
	bell          bool          // Ring once on the next flush
	prevLayout    layout        // Layout drawn last frame, to clear on transitions
}

// NewClientState creates a new initialized client state.
func NewClientState() *ClientState {
	return &ClientState{
		Screen:  ScreenGame,
		Running: true,
	}
}
