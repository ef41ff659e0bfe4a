package draw

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/tomz197/sshtris/internal/tetris"
)

// CellWidth is the number of terminal columns per board cell.
const CellWidth = 2

// Palette maps cell values to piece colors.
var Palette = [...]lipgloss.Color{
	0: "",
	1: "#FF0D72",
	2: "#0DC2FF",
	3: "#0DFF72",
	4: "#F538FF",
	5: "#FF8E0D",
	6: "#FFE138",
	7: "#3877FF",
}

// Glyphs for each layer, CellWidth columns wide.
const (
	glyphEmpty = "  "
	glyphBlock = "██"
	glyphGhost = "░░"
	glyphSpark = "**"
)

var (
	colorBorder = lipgloss.Color("#5C5C7A")
	colorText   = lipgloss.Color("#C8C8D8")
	colorAccent = lipgloss.Color("#FFE138")
	colorWarn   = lipgloss.Color("#FF4040")
	colorDim    = lipgloss.Color("#6C6C80")
)

// ProfileFor picks a color profile from the client's TERM and environment.
func ProfileFor(term string, environ []string) termenv.Profile {
	for _, kv := range environ {
		k, v, _ := strings.Cut(kv, "=")
		if k == "COLORTERM" && (v == "truecolor" || v == "24bit") {
			return termenv.TrueColor
		}
	}
	switch {
	case term == "" || term == "dumb":
		return termenv.Ascii
	case strings.Contains(term, "truecolor") || strings.Contains(term, "direct"):
		return termenv.TrueColor
	case strings.Contains(term, "256color"):
		return termenv.ANSI256
	default:
		return termenv.ANSI
	}
}

// Renderer turns grids and game state into styled strings for one terminal.
// Every SSH session gets its own so color profiles never leak between clients.
type Renderer struct {
	lg *lipgloss.Renderer

	frame  lipgloss.Style
	panel  lipgloss.Style
	title  lipgloss.Style
	text   lipgloss.Style
	accent lipgloss.Style
	warn   lipgloss.Style
	dim    lipgloss.Style
	spark  lipgloss.Style
	blocks [len(Palette)]lipgloss.Style
	ghosts [len(Palette)]lipgloss.Style
}

// NewRenderer creates a renderer writing for w with a fixed color profile.
func NewRenderer(w io.Writer, profile termenv.Profile) *Renderer {
	lg := lipgloss.NewRenderer(w, termenv.WithProfile(profile))
	r := &Renderer{
		lg:     lg,
		frame:  lg.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(colorBorder),
		panel:  lg.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorBorder).Padding(0, 1),
		title:  lg.NewStyle().Foreground(colorAccent).Bold(true),
		text:   lg.NewStyle().Foreground(colorText),
		accent: lg.NewStyle().Foreground(colorAccent).Bold(true),
		warn:   lg.NewStyle().Foreground(colorWarn).Bold(true),
		dim:    lg.NewStyle().Foreground(colorDim),
		spark:  lg.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true),
	}
	for i, c := range Palette {
		if c == "" {
			r.blocks[i] = lg.NewStyle()
			r.ghosts[i] = lg.NewStyle()
			continue
		}
		r.blocks[i] = lg.NewStyle().Foreground(c)
		r.ghosts[i] = lg.NewStyle().Foreground(c).Faint(true)
	}
	return r
}

func (r *Renderer) cell(gc GridCell) string {
	c := int(gc.Cell)
	if c >= len(Palette) {
		c = 0
	}
	switch gc.Layer {
	case LayerBlock:
		return r.blocks[c].Render(glyphBlock)
	case LayerGhost:
		return r.ghosts[c].Render(glyphGhost)
	case LayerSpark:
		if c == 0 {
			return r.spark.Render(glyphSpark)
		}
		return r.blocks[c].Bold(true).Render(glyphSpark)
	default:
		return glyphEmpty
	}
}

// Board draws the grid inside a frame.
func (r *Renderer) Board(g *Grid) string {
	rows := make([]string, g.Height())
	var b strings.Builder
	for y := range rows {
		b.Reset()
		for x := 0; x < g.Width(); x++ {
			b.WriteString(r.cell(g.At(x, y)))
		}
		rows[y] = b.String()
	}
	return r.frame.Render(strings.Join(rows, "\n"))
}

// BoardOverlay draws a framed box the size of the board with lines centered
// in it, used for the pause and game-over screens.
func (r *Renderer) BoardOverlay(g *Grid, lines ...string) string {
	body := lipgloss.JoinVertical(lipgloss.Center, lines...)
	inner := r.lg.Place(g.Width()*CellWidth, g.Height(), lipgloss.Center, lipgloss.Center, body)
	return r.frame.Render(inner)
}

// Preview draws a piece in its spawn orientation under a title.
func (r *Renderer) Preview(title string, k tetris.Kind, ok, faded bool) string {
	body := r.dim.Render("(empty)")
	if ok {
		body = r.shape(k, faded)
	}
	content := lipgloss.JoinVertical(lipgloss.Left, r.title.Render(title), body)
	return r.panel.Width(4*CellWidth + 2).Render(content)
}

func (r *Renderer) shape(k tetris.Kind, faded bool) string {
	s, err := tetris.NewShape(k)
	if err != nil {
		return r.warn.Render("?")
	}
	var rows []string
	var b strings.Builder
	for _, row := range s {
		b.Reset()
		filled := false
		for _, c := range row {
			if c == tetris.Empty {
				b.WriteString(glyphEmpty)
				continue
			}
			filled = true
			style := r.blocks[c]
			if faded {
				style = r.ghosts[c]
			}
			b.WriteString(style.Render(glyphBlock))
		}
		if filled {
			rows = append(rows, b.String())
		}
	}
	return strings.Join(rows, "\n")
}

// Stats draws the score, level and line counters and the best score on
// the shared leaderboard.
func (r *Renderer) Stats(snap tetris.Snapshot, best int) string {
	lines := []string{
		r.title.Render("Score"),
		r.text.Render(fmt.Sprintf("%d", snap.Score)),
		r.title.Render("Level"),
		r.text.Render(fmt.Sprintf("%d", snap.Level)),
		r.title.Render("Lines"),
		r.text.Render(fmt.Sprintf("%d", snap.Lines)),
		r.title.Render("Best"),
		r.text.Render(fmt.Sprintf("%d", max(best, snap.Score))),
	}
	return r.panel.Width(4*CellWidth + 2).Render(strings.Join(lines, "\n"))
}

// Panel draws a titled box around plain text lines.
func (r *Renderer) Panel(title string, lines []string) string {
	styled := make([]string, 0, len(lines)+1)
	styled = append(styled, r.title.Render(title))
	for _, l := range lines {
		styled = append(styled, r.text.Render(l))
	}
	return r.panel.Render(strings.Join(styled, "\n"))
}

// Place centers content in a width x height area.
func (r *Renderer) Place(width, height int, content string) string {
	if width <= 0 || height <= 0 {
		return content
	}
	return r.lg.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

// Title renders emphasized text.
func (r *Renderer) Title(s string) string { return r.title.Render(s) }

// Text renders regular text.
func (r *Renderer) Text(s string) string { return r.text.Render(s) }

// Accent renders highlighted text.
func (r *Renderer) Accent(s string) string { return r.accent.Render(s) }

// Warn renders a warning.
func (r *Renderer) Warn(s string) string { return r.warn.Render(s) }

// Dim renders secondary text.
func (r *Renderer) Dim(s string) string { return r.dim.Render(s) }

// Link wraps label in an OSC 8 hyperlink.
func Link(url, label string) string {
	return fmt.Sprintf("\033]8;;%s\033\\%s\033]8;;\033\\", url, label)
}
