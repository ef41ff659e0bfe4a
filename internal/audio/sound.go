// Package audio plays short synthesized tones for game events.
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/tomz197/sshtris/internal/tetris"
)

const (
	sampleRate     = 44100
	channelCount   = 2
	bytesPerSample = 2 * channelCount // signed 16-bit little endian per channel
	toneGap        = 10 * time.Millisecond
	fadeDuration   = 3 * time.Millisecond
	defaultVolume  = 0.7
)

// ErrUnavailable is returned when no audio device could be opened.
var ErrUnavailable = errors.New("audio unavailable")

// oto allows a single context per process.
var (
	contextOnce sync.Once
	sharedCtx   *oto.Context
	contextErr  error
)

func openContext() (*oto.Context, error) {
	contextOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channelCount,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			contextErr = fmt.Errorf("open audio context: %w: %w", ErrUnavailable, err)
			return
		}
		<-ready
		sharedCtx = ctx
	})
	return sharedCtx, contextErr
}

// Tone is one note of a cue.
type Tone struct {
	Frequency float64
	Duration  time.Duration
	Volume    float64
}

// Cue returns the tones played for an event, or nil for silent events.
func Cue(e tetris.Event) []Tone {
	switch e.Type {
	case tetris.EventMove:
		return []Tone{{Frequency: 380, Duration: 25 * time.Millisecond, Volume: 0.18}}
	case tetris.EventRotate:
		return []Tone{{Frequency: 520, Duration: 40 * time.Millisecond, Volume: 0.25}}
	case tetris.EventLock:
		return []Tone{{Frequency: 220, Duration: 70 * time.Millisecond, Volume: 0.3}}
	case tetris.EventHold:
		return []Tone{{Frequency: 300, Duration: 50 * time.Millisecond, Volume: 0.22}}
	case tetris.EventLineClear:
		return lineClearCue(e.Rows)
	case tetris.EventGameOver:
		return []Tone{
			{Frequency: 220, Duration: 120 * time.Millisecond, Volume: 0.28},
			{Frequency: 180, Duration: 200 * time.Millisecond, Volume: 0.28},
		}
	case tetris.EventStart, tetris.EventRestart:
		return []Tone{{Frequency: 520, Duration: 70 * time.Millisecond, Volume: 0.2}}
	default:
		return nil
	}
}

func lineClearCue(rows int) []Tone {
	notes := []float64{440, 660, 880, 990}
	rows = min(max(rows, 1), len(notes))
	tones := make([]Tone, rows)
	for i := range tones {
		d := 70 * time.Millisecond
		if i == rows-1 {
			d = 110 * time.Millisecond
		}
		tones[i] = Tone{Frequency: notes[i], Duration: d, Volume: 0.3}
	}
	return tones
}

// Engine plays cues on the shared audio context. A disabled or unavailable
// engine accepts events and stays silent.
type Engine struct {
	mu      sync.RWMutex
	ctx     *oto.Context
	enabled bool
	volume  float64
}

// NewEngine opens the audio device when enabled is true. On failure the
// returned engine is silent and the error says why.
func NewEngine(enabled bool) (*Engine, error) {
	e := &Engine{volume: defaultVolume}
	if !enabled {
		return e, nil
	}
	ctx, err := openContext()
	if err != nil {
		return e, err
	}
	e.ctx = ctx
	e.enabled = true
	return e, nil
}

// Enabled reports whether cues are being played.
func (e *Engine) Enabled() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.enabled && e.ctx != nil
}

// SetEnabled toggles playback. Enabling an engine created without a device
// opens one; on failure the engine stays silent.
func (e *Engine) SetEnabled(enabled bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if enabled && e.ctx == nil {
		ctx, err := openContext()
		if err != nil {
			e.enabled = false
			return err
		}
		e.ctx = ctx
	}
	e.enabled = enabled
	return nil
}

// SetVolume sets the master volume, clamped to [0, 1].
func (e *Engine) SetVolume(v float64) {
	e.mu.Lock()
	e.volume = clampVolume(v)
	e.mu.Unlock()
}

// Notify plays the cue for ev in the background.
func (e *Engine) Notify(ev tetris.Event) {
	e.mu.RLock()
	ctx, enabled, volume := e.ctx, e.enabled, e.volume
	e.mu.RUnlock()
	if !enabled || ctx == nil {
		return
	}
	tones := Cue(ev)
	if len(tones) == 0 {
		return
	}
	go func() {
		player := ctx.NewPlayer(bytes.NewReader(Render(tones, volume)))
		player.Play()
		for player.IsPlaying() {
			time.Sleep(5 * time.Millisecond)
		}
		_ = player.Close()
	}()
}

var _ tetris.Notifier = (*Engine)(nil)

func samplesFor(d time.Duration) int {
	return int(float64(sampleRate) * d.Seconds())
}

// Render synthesizes tones as interleaved stereo PCM with a short gap between notes.
func Render(tones []Tone, volume float64) []byte {
	gap := samplesFor(toneGap)
	total := 0
	for i, t := range tones {
		total += samplesFor(t.Duration)
		if i < len(tones)-1 {
			total += gap
		}
	}
	buf := make([]byte, total*bytesPerSample)
	offset := 0
	for i, t := range tones {
		renderTone(buf[offset:], t, t.Volume*clampVolume(volume))
		offset += samplesFor(t.Duration) * bytesPerSample
		if i < len(tones)-1 {
			offset += gap * bytesPerSample
		}
	}
	return buf
}

func renderTone(buf []byte, t Tone, volume float64) {
	const maxInt16 = 1<<15 - 1
	n := samplesFor(t.Duration)
	fade := samplesFor(fadeDuration)
	for i := 0; i < n; i++ {
		env := 1.0
		if fade > 0 {
			switch {
			case i < fade:
				env = float64(i) / float64(fade)
			case i > n-fade:
				env = max(float64(n-i)/float64(fade), 0)
			}
		}
		s := math.Sin(2 * math.Pi * t.Frequency * float64(i) / sampleRate)
		v := int16(s * volume * env * maxInt16)
		j := i * bytesPerSample
		buf[j] = byte(v)
		buf[j+1] = byte(v >> 8)
		buf[j+2] = byte(v)
		buf[j+3] = byte(v >> 8)
	}
}

func clampVolume(v float64) float64 {
	return min(max(v, 0), 1)
}
