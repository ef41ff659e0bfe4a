// Package input turns the raw terminal byte stream into discrete game actions.
package input

import (
	"io"
	"slices"
	"time"

	"github.com/tomz197/sshtris/internal/tetris"
)

const (
	keyEscape = 0x1b
	keyCtrlC  = 0x03
	keyCtrlD  = 0x04
)

// Input is everything pressed since the previous frame.
type Input struct {
	Actions []tetris.Action // in the order the keys arrived
	Quit    bool
	Confirm bool // ENTER
	Closed  bool // the underlying reader is gone
	Sound   bool // toggle sound effects
	Pressed []byte
}

// Any reports whether at least one byte arrived.
func (in Input) Any() bool {
	return len(in.Pressed) > 0
}

// escapeTimeout is how long an incomplete escape sequence waits for the rest
// of its bytes before it is read as a bare ESC.
const escapeTimeout = 50 * time.Millisecond

// Stream delivers input bytes via a channel. An escape sequence cut off at the
// end of one drain is held back and completed by the next.
type Stream struct {
	ch           chan byte
	pending      []byte
	pendingSince time.Time
}

// StartStream spawns a goroutine that copies bytes from r into the stream.
// The channel is closed when r returns an error.
func StartStream(r io.ByteReader) *Stream {
	s := &Stream{ch: make(chan byte, 128)}
	go func() {
		defer close(s.ch)
		for {
			b, err := r.ReadByte()
			if err != nil {
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// ReadInput drains every byte currently buffered in the stream without
// blocking and parses them.
func ReadInput(s *Stream) Input {
	var buf []byte
	closed := false
drain:
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}
	in := s.Feed(buf, closed, time.Now())
	in.Closed = closed
	return in
}

// Feed parses buf after any escape sequence held over from the previous call.
// A trailing ESC or ESC [ is held back until more bytes arrive, escapeTimeout
// passes or the input ends. Pressed reports only the bytes in buf.
func (s *Stream) Feed(buf []byte, final bool, now time.Time) Input {
	data := buf
	if len(s.pending) > 0 {
		data = append(slices.Clone(s.pending), buf...)
	}
	flush := final || (len(buf) == 0 && now.Sub(s.pendingSince) >= escapeTimeout)

	in, rest := parse(data, flush)
	in.Pressed = buf

	switch {
	case len(rest) == 0:
		s.pending = nil
	case len(s.pending) > 0 && len(rest) == len(data):
		// Same sequence still incomplete; keep its first timestamp.
		s.pending = slices.Clone(rest)
	default:
		s.pending = slices.Clone(rest)
		s.pendingSince = now
	}
	return in
}

// Parse maps a complete chunk of terminal input to actions. Arrow keys arrive
// as ESC [ A..D (or ESC O A..D in application mode); a lone ESC pauses.
func Parse(buf []byte) Input {
	in, _ := parse(buf, true)
	in.Pressed = buf
	return in
}

// parse decodes buf. Unless flush is set, an escape sequence cut off at the
// end is left undecoded and returned as rest.
func parse(buf []byte, flush bool) (in Input, rest []byte) {
	for i := 0; i < len(buf); i++ {
		b := buf[i]
		if b != keyEscape {
			applyByte(&in, b)
			continue
		}
		introducer := i+1 < len(buf) && (buf[i+1] == '[' || buf[i+1] == 'O')
		if !flush && (i+1 == len(buf) || (introducer && i+2 == len(buf))) {
			return in, buf[i:]
		}
		if introducer && i+2 < len(buf) {
			if a, ok := arrowAction(buf[i+2]); ok {
				in.Actions = append(in.Actions, a)
			}
			i += 2
			continue
		}
		in.Actions = append(in.Actions, tetris.ActionTogglePause)
		if introducer {
			i++
		}
	}
	return in, nil
}

func arrowAction(code byte) (tetris.Action, bool) {
	switch code {
	case 'A':
		return tetris.ActionRotateCW, true
	case 'B':
		return tetris.ActionSoftDrop, true
	case 'C':
		return tetris.ActionMoveRight, true
	case 'D':
		return tetris.ActionMoveLeft, true
	}
	return tetris.ActionNone, false
}

// applyByte handles single-byte keys.
func applyByte(in *Input, b byte) {
	switch b {
	case 'q', 'Q', keyCtrlC, keyCtrlD:
		in.Quit = true
	case '\r', '\n':
		in.Confirm = true
	case 'a', 'A', 'h', 'H':
		in.Actions = append(in.Actions, tetris.ActionMoveLeft)
	case 'd', 'D', 'l', 'L':
		in.Actions = append(in.Actions, tetris.ActionMoveRight)
	case 's', 'S', 'j', 'J':
		in.Actions = append(in.Actions, tetris.ActionSoftDrop)
	case 'w', 'W', 'k', 'K', 'x', 'X':
		in.Actions = append(in.Actions, tetris.ActionRotateCW)
	case 'z', 'Z':
		in.Actions = append(in.Actions, tetris.ActionRotateCCW)
	case ' ':
		in.Actions = append(in.Actions, tetris.ActionHardDrop)
	case 'c', 'C':
		in.Actions = append(in.Actions, tetris.ActionHold)
	case 'p', 'P':
		in.Actions = append(in.Actions, tetris.ActionTogglePause)
	case 'm', 'M':
		in.Sound = !in.Sound
	}
}
