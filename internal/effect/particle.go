// Package effect animates line-clear bursts on top of the board.
package effect

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/tomz197/sshtris/internal/tetris"
)

// Burst tuning.
const (
	ParticlesPerCell = 2
	BurstSpeed       = 6.0 // cells per second
	BurstLifetime    = 0.6 // seconds
	particleDrag     = 0.92
	fadeThreshold    = 0.25
)

var particlePool = sync.Pool{
	New: func() any {
		return &Particle{}
	},
}

// Particle is a short-lived spark in board coordinates.
type Particle struct {
	X, Y        float64
	VX, VY      float64
	Lifetime    float64 // seconds remaining
	MaxLifetime float64
	Drag        float64 // velocity multiplier per 1/60 s
	Cell        tetris.Cell
}

func newParticle(x, y, vx, vy, lifetime float64, c tetris.Cell) *Particle {
	p := particlePool.Get().(*Particle)
	*p = Particle{
		X:           x,
		Y:           y,
		VX:          vx,
		VY:          vy,
		Lifetime:    lifetime,
		MaxLifetime: lifetime,
		Drag:        particleDrag,
		Cell:        c,
	}
	return p
}

func (p *Particle) release() {
	particlePool.Put(p)
}

// update advances the particle and reports whether it expired.
func (p *Particle) update(dt float64) bool {
	p.Lifetime -= dt
	if p.Lifetime <= 0 {
		return true
	}
	drag := math.Pow(p.Drag, dt*60)
	p.VX *= drag
	p.VY *= drag
	p.X += p.VX * dt
	p.Y += p.VY * dt
	return false
}

// Visible reports whether the particle is still bright enough to draw.
func (p *Particle) Visible() bool {
	return p.MaxLifetime > 0 && p.Lifetime/p.MaxLifetime >= fadeThreshold
}

// Source supplies randomness for burst directions.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	Float64() float64
	IntN(n int) int
}

// Spark is anything that can show a particle at a board cell.
type Spark interface {
	Spark(x, y int, c tetris.Cell)
}

// System owns the live particles of one game. It is not safe for concurrent use.
type System struct {
	rng       Source
	width     int
	particles []*Particle
}

// NewSystem creates an empty particle system for a board of the given width.
func NewSystem(width int, rng Source) *System {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &System{rng: rng, width: width}
}

// Burst spawns sparks along each cleared row, colored like the cell they
// came from. cells holds the removed rows in the same order as rows; when a
// row's cells are missing the sparks get random piece colors.
func (s *System) Burst(rows []int, cells [][]tetris.Cell) {
	for i, row := range rows {
		var colors []tetris.Cell
		if i < len(cells) {
			colors = cells[i]
		}
		for x := 0; x < s.width; x++ {
			c := tetris.Empty
			if x < len(colors) {
				c = colors[x]
			}
			for range ParticlesPerCell {
				angle := s.rng.Float64() * 2 * math.Pi
				speed := BurstSpeed * (0.5 + s.rng.Float64())
				life := BurstLifetime * (0.5 + s.rng.Float64()*0.5)
				if c == tetris.Empty {
					c = tetris.Cell(1 + s.rng.IntN(7))
				}
				s.particles = append(s.particles, newParticle(
					float64(x)+0.5, float64(row)+0.5,
					math.Cos(angle)*speed, math.Sin(angle)*speed,
					life, c,
				))
			}
		}
	}
}

// Update advances every particle by d and drops the expired ones.
func (s *System) Update(d time.Duration) {
	dt := d.Seconds()
	if dt <= 0 {
		return
	}
	kept := s.particles[:0]
	for _, p := range s.particles {
		if p.update(dt) {
			p.release()
			continue
		}
		kept = append(kept, p)
	}
	clear(s.particles[len(kept):])
	s.particles = kept
}

// Draw shows every visible particle on dst.
func (s *System) Draw(dst Spark) {
	for _, p := range s.particles {
		if !p.Visible() {
			continue
		}
		dst.Spark(int(math.Floor(p.X)), int(math.Floor(p.Y)), p.Cell)
	}
}

// Len returns the number of live particles.
func (s *System) Len() int {
	return len(s.particles)
}

// Reset drops every particle.
func (s *System) Reset() {
	for _, p := range s.particles {
		p.release()
	}
	clear(s.particles)
	s.particles = s.particles[:0]
}

// Notify bursts on line clears and clears the screen of sparks on restart.
func (s *System) Notify(e tetris.Event) {
	switch e.Type {
	case tetris.EventLineClear:
		s.Burst(e.Lines, e.Cleared)
	case tetris.EventRestart:
		s.Reset()
	}
}

var _ tetris.Notifier = (*System)(nil)
