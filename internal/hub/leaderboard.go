package hub

import (
	"slices"
	"sync"
	"time"
)

// LeaderboardSize is the number of scores kept.
const LeaderboardSize = 10

// ScoreEntry is one finished game.
type ScoreEntry struct {
	Name     string
	Score    int
	Lines    int
	Level    int
	When     time.Time
	ClientID int
}

// Leaderboard keeps the best scores in memory, highest first. Equal scores
// rank the more recent game higher.
type Leaderboard struct {
	mu      sync.RWMutex
	size    int
	entries []ScoreEntry
}

// NewLeaderboard creates an empty leaderboard holding up to size entries.
func NewLeaderboard(size int) *Leaderboard {
	return &Leaderboard{size: size}
}

// Insert records entry and returns its 1-based rank, or 0 if it did not
// make the board. Zero scores never qualify.
func (l *Leaderboard) Insert(entry ScoreEntry) int {
	if entry.Score <= 0 || l.size <= 0 {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, entry)
	slices.SortStableFunc(l.entries, func(a, b ScoreEntry) int {
		if a.Score != b.Score {
			return b.Score - a.Score
		}
		return b.When.Compare(a.When)
	})
	if len(l.entries) > l.size {
		l.entries = l.entries[:l.size]
	}
	for i, e := range l.entries {
		if e == entry {
			return i + 1
		}
	}
	return 0
}

// Entries returns a copy of the board.
func (l *Leaderboard) Entries() []ScoreEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.entries)
}

// Best returns the top score, or 0 when empty.
func (l *Leaderboard) Best() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.entries) == 0 {
		return 0
	}
	return l.entries[0].Score
}
