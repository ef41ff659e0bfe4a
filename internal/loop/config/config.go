// Package config centralizes the client loop's tunables.
package config

import "time"

// Terminal size the playing screen needs: hold and stats on the left, the
// framed board in the middle, next piece and leaderboard on the right.
const (
	MinTermWidth  = 60
	MinTermHeight = 23
)

// Player
const (
	MaxUsernameLength = 16 // Maximum display length for player usernames
	DefaultUsername   = "player"
)

// Lobby panels
const (
	TopScoresShown = 5
)

// Shutdown
const (
	ShutdownDisplaySeconds = 10.0 // Seconds to show shutdown message before auto-disconnect
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Client rendering
const (
	ClientTargetFPS       = 60
	ClientTargetFrameTime = time.Second / ClientTargetFPS
	PromptBlinkMillis     = 600
)
