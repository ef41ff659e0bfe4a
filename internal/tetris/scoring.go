package tetris

import "time"

// Game tuning.
const (
	BoardWidth  = 10
	BoardHeight = 20

	LinesPerLevel = 10

	BaseDropInterval = 1000 * time.Millisecond
	MinDropInterval  = 100 * time.Millisecond
	DropIntervalStep = 100 * time.Millisecond
)

// linePoints is indexed by rows cleared in a single sweep.
var linePoints = [...]int{0, 40, 100, 300, 1200}

// LinePoints returns the points for clearing rows at once on the given level.
func LinePoints(rows, level int) int {
	if rows <= 0 {
		return 0
	}
	if rows >= len(linePoints) {
		rows = len(linePoints) - 1
	}
	return linePoints[rows] * level
}

// LevelForLines returns the level reached after clearing lines in total.
func LevelForLines(lines int) int {
	return lines/LinesPerLevel + 1
}

// DropIntervalFor returns the auto-drop interval for a level.
func DropIntervalFor(level int) time.Duration {
	interval := BaseDropInterval - time.Duration(level-1)*DropIntervalStep
	return max(interval, MinDropInterval)
}
