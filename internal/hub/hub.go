// Package hub tracks the players connected to one process: who is online,
// the shared leaderboard and the shutdown broadcast. Games themselves never
// pass through the hub; each client owns its own session.
package hub

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

// Lobby is what a client needs from the hub. It decouples the frame loop from
// the concrete Hub for tests.
type Lobby interface {
	Register(username string) *Handle
	Unregister(id int)
	ReportScore(entry ScoreEntry)
	Snapshot() *Snapshot
}

// EventType identifies a hub-to-client notification.
type EventType int

const (
	EventShutdown EventType = iota
	EventNewHighScore
)

// Event is sent from the hub to one client.
type Event struct {
	Type EventType
	Rank int // 1-based leaderboard position, for EventNewHighScore
}

// Handle is one registered client.
type Handle struct {
	ID       int
	Username string
	Events   chan Event // closed on Unregister
}

// Snapshot is an immutable view of the hub for rendering.
type Snapshot struct {
	Players   int
	TopScores []ScoreEntry
	Best      int // top score, 0 when the board is empty
}

// Hub serializes registration and score reports through channels and publishes
// an atomic snapshot after each change.
type Hub struct {
	clients      map[int]*Handle
	nextID       int
	leaderboard  *Leaderboard
	registerCh   chan *Handle
	unregisterCh chan int
	scoreCh      chan ScoreEntry
	done         chan struct{}
	mu           sync.RWMutex
	snapshot     atomic.Pointer[Snapshot]
	logger       *log.Logger
}

var _ Lobby = (*Hub)(nil)

// New creates a hub. Call Run to start processing.
func New(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	h := &Hub{
		clients:      make(map[int]*Handle),
		nextID:       1,
		leaderboard:  NewLeaderboard(LeaderboardSize),
		registerCh:   make(chan *Handle, 16),
		unregisterCh: make(chan int, 16),
		scoreCh:      make(chan ScoreEntry, 64),
		done:         make(chan struct{}),
		logger:       logger.WithPrefix("hub"),
	}
	h.snapshot.Store(&Snapshot{})
	return h
}

// Run processes hub traffic until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			return
		case handle := <-h.registerCh:
			h.logger.Debug("player joined", "id", handle.ID, "user", handle.Username)
		case id := <-h.unregisterCh:
			h.mu.Lock()
			if handle, ok := h.clients[id]; ok {
				close(handle.Events)
				delete(h.clients, id)
				h.logger.Debug("player left", "id", id, "user", handle.Username)
			}
			h.mu.Unlock()
		case entry := <-h.scoreCh:
			h.recordScore(entry)
		}
		h.publish()
	}
}

func (h *Hub) recordScore(entry ScoreEntry) {
	if entry.When.IsZero() {
		entry.When = time.Now()
	}
	rank := h.leaderboard.Insert(entry)
	if rank == 0 {
		return
	}
	h.logger.Info("new high score", "user", entry.Name, "score", entry.Score, "rank", rank)
	h.mu.RLock()
	defer h.mu.RUnlock()
	if handle, ok := h.clients[entry.ClientID]; ok {
		select {
		case handle.Events <- Event{Type: EventNewHighScore, Rank: rank}:
		default:
		}
	}
}

func (h *Hub) publish() {
	h.mu.RLock()
	players := len(h.clients)
	h.mu.RUnlock()
	h.snapshot.Store(&Snapshot{
		Players:   players,
		TopScores: h.leaderboard.Entries(),
		Best:      h.leaderboard.Best(),
	})
}

// Register adds a client and returns its handle. The client is tracked
// before Register returns, so a following Unregister always finds it; Run
// only logs the join and republishes the snapshot.
func (h *Hub) Register(username string) *Handle {
	h.mu.Lock()
	handle := &Handle{
		ID:       h.nextID,
		Username: username,
		Events:   make(chan Event, 16),
	}
	h.nextID++
	h.clients[handle.ID] = handle
	h.mu.Unlock()

	select {
	case h.registerCh <- handle:
	case <-h.done:
	}
	return handle
}

// Unregister removes a client and closes its event channel.
func (h *Hub) Unregister(id int) {
	select {
	case h.unregisterCh <- id:
	case <-h.done:
	}
}

// ReportScore submits a finished game. Reports are dropped when the queue is full.
func (h *Hub) ReportScore(entry ScoreEntry) {
	select {
	case h.scoreCh <- entry:
	default:
		h.logger.Warn("score dropped", "user", entry.Name, "score", entry.Score)
	}
}

// Snapshot returns the latest published view.
func (h *Hub) Snapshot() *Snapshot {
	return h.snapshot.Load()
}

// Players returns the number of connected clients.
func (h *Hub) Players() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown tells every client the process is stopping and waits until they
// have all unregistered or the timeout passes. Cancel Run's context afterwards.
func (h *Hub) Shutdown(timeout time.Duration) {
	h.mu.RLock()
	for _, handle := range h.clients {
		select {
		case handle.Events <- Event{Type: EventShutdown}:
		default:
		}
	}
	h.mu.RUnlock()

	deadline := time.After(timeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-deadline:
			h.logger.Warn("shutdown timeout", "remaining", h.Players())
			return
		case <-ticker.C:
			if h.Players() == 0 {
				return
			}
		}
	}
}
