package client

import (
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tomz197/sshtris/internal/draw"
	"github.com/tomz197/sshtris/internal/hub"
	"github.com/tomz197/sshtris/internal/loop/config"
	"github.com/tomz197/sshtris/internal/tetris"
)

// layout identifies which screen a frame shows.
type layout int

const (
	layoutTitle layout = iota
	layoutPlaying
	layoutShutdown
	layoutInactive
	layoutTooSmall
)

const repoURL = "https://github.com/tomz197/sshtris"

// figlet "small"
var titleArt = []string{
	`  ___ ___ _  _ _____ ___ ___ ___ `,
	` / __/ __| || |_   _| _ \_ _/ __|`,
	` \__ \__ \ __ | | | |   /| |\__ \`,
	` |___/___/_||_| |_| |_|_\___|___/`,
}

var controlLines = [][2]string{
	{"A D / < >", "Move"},
	{"W X / ^", "Rotate"},
	{"Z", "Rotate back"},
	{"S / v", "Soft drop"},
	{"SPACE", "Hard drop"},
	{"C", "Hold"},
	{"P / ESC", "Pause"},
	{"M", "Sound"},
	{"Q", "Quit"},
}

// drawFrame composes the current screen and writes the lines that changed.
func (c *Client) drawFrame() error {
	l, frame := c.compose()

	// On screen transitions, do a full terminal clear so nothing from the
	// previous layout persists.
	if l != c.state.prevLayout {
		c.canvas.ForceRedraw()
		c.state.prevLayout = l
	}
	c.canvas.Render(c.chunkWriter, frame)

	if c.state.bell {
		c.chunkWriter.Bell()
		c.state.bell = false
	}
	return c.chunkWriter.Flush()
}

func (c *Client) compose() (layout, string) {
	width, height := c.canvas.Width(), c.canvas.Height()
	switch {
	case c.state.Screen == ScreenShutdown:
		return layoutShutdown, c.shutdownScreen(width, height)
	case c.state.isInactive:
		return layoutInactive, c.inactivityScreen(width, height)
	case width < config.MinTermWidth || height < config.MinTermHeight:
		return layoutTooSmall, c.tooSmallScreen(width, height)
	}

	lobby := c.lobby.Snapshot()
	if lobby == nil {
		lobby = &hub.Snapshot{}
	}
	snap := c.session.Snapshot()
	if snap.State == tetris.StateReady {
		return layoutTitle, c.titleScreen(width, height, lobby)
	}
	return layoutPlaying, c.playingScreen(width, height, snap, lobby)
}

// titleScreen draws the title, controls and start prompt.
func (c *Client) titleScreen(width, height int, lobby *hub.Snapshot) string {
	r := c.renderer

	art := make([]string, len(titleArt))
	for i, line := range titleArt {
		art[i] = r.Accent(line)
	}

	controls := make([]string, len(controlLines))
	for i, cl := range controlLines {
		controls[i] = r.Text(fmt.Sprintf("%-10s", cl[0])) + r.Dim(fmt.Sprintf("%12s", cl[1]))
	}

	// Blinking start prompt
	prompt := ""
	if time.Now().UnixMilli()/config.PromptBlinkMillis%2 == 0 {
		prompt = r.Title(">>  Press ENTER to Start  <<")
	}

	best := "no scores yet"
	if len(lobby.TopScores) > 0 {
		top := lobby.TopScores[0]
		best = fmt.Sprintf("best: %s %d", top.Name, top.Score)
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left, art...),
		"",
		r.Text("~ Tetris over SSH ~"),
		"",
		r.Title("Controls"),
		lipgloss.JoinVertical(lipgloss.Left, controls...),
		"",
		prompt,
		"",
		r.Dim(fmt.Sprintf("%d online  %s", lobby.Players, best)),
		r.Dim(draw.Link(repoURL, "github.com/tomz197/sshtris")),
	)
	return r.Place(width, height, content)
}

// playingScreen draws hold and stats, the board, the next piece and the lobby panels.
func (c *Client) playingScreen(width, height int, snap tetris.Snapshot, lobby *hub.Snapshot) string {
	r := c.renderer

	draw.PaintSnapshot(c.grid, snap)
	c.particles.Draw(c.grid)

	var board string
	switch snap.State {
	case tetris.StatePaused:
		board = r.BoardOverlay(c.grid,
			r.Accent("PAUSED"),
			"",
			r.Dim("P to resume"),
		)
	case tetris.StateGameOver:
		lines := []string{
			r.Warn("GAME OVER"),
			"",
			r.Text(fmt.Sprintf("Score %d", snap.Score)),
			r.Text(fmt.Sprintf("Lines %d", snap.Lines)),
		}
		if c.state.HighScoreRank > 0 {
			lines = append(lines, "", r.Accent(fmt.Sprintf("High score #%d", c.state.HighScoreRank)))
		}
		lines = append(lines, "", r.Dim("ENTER to retry"), r.Dim("Q to quit"))
		board = r.BoardOverlay(c.grid, lines...)
	default:
		board = r.Board(c.grid)
	}

	left := lipgloss.JoinVertical(lipgloss.Left,
		r.Preview("Hold", snap.Held, snap.HasHeld, !snap.CanHold),
		r.Stats(snap, lobby.Best),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		r.Preview("Next", snap.Next.Kind, snap.HasNext, false),
		r.Panel("Top scores", c.scoreLines(lobby)),
		r.Panel("Online", []string{fmt.Sprintf("%d playing", lobby.Players)}),
	)

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, " ", board, " ", right)
	help := fmt.Sprintf("%s  q quit  p pause  c hold", c.username)
	if c.sound != nil {
		help += "  m sound " + onOff(c.sound.Enabled())
	}
	footer := r.Dim(help)
	return r.Place(width, height, lipgloss.JoinVertical(lipgloss.Center, body, footer))
}

// scoreLines formats the top of the leaderboard for a narrow panel.
func (c *Client) scoreLines(lobby *hub.Snapshot) []string {
	if len(lobby.TopScores) == 0 {
		return []string{"no scores yet"}
	}
	n := min(len(lobby.TopScores), config.TopScoresShown)
	lines := make([]string, n)
	for i, e := range lobby.TopScores[:n] {
		name := []rune(e.Name)
		if len(name) > 10 {
			name = name[:10]
		}
		lines[i] = fmt.Sprintf("%d. %-10s %6d", i+1, string(name), e.Score)
	}
	return lines
}

// inactivityScreen draws the inactivity warning.
func (c *Client) inactivityScreen(width, height int) string {
	r := c.renderer
	remaining := int(config.InactivityDisconnectUser - time.Since(c.lastInput).Seconds())
	content := lipgloss.JoinVertical(lipgloss.Center,
		r.Warn("INACTIVITY WARNING"),
		"",
		r.Text(fmt.Sprintf("You will be disconnected in %d seconds.", max(remaining, 0))),
		"",
		r.Dim("Press any key to continue"),
	)
	return r.Place(width, height, content)
}

// shutdownScreen tells the player the server is going away.
func (c *Client) shutdownScreen(width, height int) string {
	r := c.renderer
	content := lipgloss.JoinVertical(lipgloss.Center,
		r.Warn("SERVER SHUTTING DOWN"),
		"",
		r.Text(fmt.Sprintf("Final score: %d", c.session.Score())),
		"",
		r.Dim(fmt.Sprintf("Disconnecting in %d seconds", int(math.Ceil(max(c.state.shutdownTimer, 0))))),
	)
	return r.Place(width, height, content)
}

// tooSmallScreen asks for a bigger terminal.
func (c *Client) tooSmallScreen(width, height int) string {
	r := c.renderer
	content := lipgloss.JoinVertical(lipgloss.Center,
		r.Warn("Terminal too small"),
		r.Text(fmt.Sprintf("%dx%d", width, height)),
		r.Dim(fmt.Sprintf("need %dx%d", config.MinTermWidth, config.MinTermHeight)),
	)
	return r.Place(width, height, content)
}

// onOff labels a switch in the footer.
func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
