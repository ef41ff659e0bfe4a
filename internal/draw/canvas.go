package draw

import (
	"strings"
)

// Canvas remembers what the terminal currently shows, line by line, so a new
// frame only rewrites the lines that changed.
type Canvas struct {
	width  int
	height int
	lines  []string
	force  bool
}

// NewCanvas creates a canvas for a terminal of the given size. The first
// Render clears the screen.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		width:  width,
		height: height,
		force:  true,
	}
}

// Resize updates the terminal size. A change forces a full redraw and is
// reported to the caller.
func (c *Canvas) Resize(width, height int) bool {
	if width == c.width && height == c.height {
		return false
	}
	c.width = width
	c.height = height
	c.force = true
	return true
}

// ForceRedraw makes the next Render clear the screen and write every line.
func (c *Canvas) ForceRedraw() {
	c.force = true
}

// Width returns the terminal column count.
func (c *Canvas) Width() int {
	return c.width
}

// Height returns the terminal row count.
func (c *Canvas) Height() int {
	return c.height
}

// Render queues the lines of frame that differ from the previous frame and
// returns how many were written. Lines past the terminal height are dropped.
func (c *Canvas) Render(cw *ChunkWriter, frame string) int {
	next := strings.Split(frame, "\n")
	if len(next) > c.height {
		next = next[:c.height]
	}
	if c.force {
		cw.Clear()
	}

	rows := max(len(next), len(c.lines))
	written := 0
	for row := 0; row < rows && row < c.height; row++ {
		line := ""
		if row < len(next) {
			line = next[row]
		}
		if !c.force && row < len(c.lines) && c.lines[row] == line {
			continue
		}
		if c.force && line == "" {
			continue
		}
		cw.WriteAt(1, row+1, line+seqClearLine)
		written++
	}

	c.lines = append(c.lines[:0], next...)
	c.force = false
	return written
}
