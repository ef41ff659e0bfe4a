package tetris

import (
	"slices"
)

// seqRand replays a fixed sequence of indexes.
type seqRand struct {
	seq []int
	n   int
}

func (r *seqRand) IntN(n int) int {
	v := r.seq[r.n%len(r.seq)]
	r.n++
	return v % n
}

// kindsRand yields the given kinds in order, repeating.
func kindsRand(kinds ...Kind) *seqRand {
	r := &seqRand{}
	for _, k := range kinds {
		r.seq = append(r.seq, slices.Index(kindOrder[:], k))
	}
	return r
}

// fillRow paints row y with c, leaving the listed columns empty.
func fillRow(b *Board, y int, c Cell, except ...int) {
	for x := range b.rows[y] {
		if slices.Contains(except, x) {
			b.rows[y][x] = Empty
			continue
		}
		b.rows[y][x] = c
	}
}

type recorder struct {
	events []Event
}

func (r *recorder) Notify(e Event) {
	r.events = append(r.events, e)
}

func (r *recorder) types() []EventType {
	out := make([]EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func (r *recorder) last(t EventType) (Event, bool) {
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == t {
			return r.events[i], true
		}
	}
	return Event{}, false
}

func mustShape(k Kind) Shape {
	return mustPiece(k).Shape
}
