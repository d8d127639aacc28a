package scroll

import (
	"git.lost.host/meutraa/vsrg/internal/fixed"
	"git.lost.host/meutraa/vsrg/internal/timing"
)

// Cursor answers a stream of position queries without a binary search
// per call. A renderer advancing its clock every frame crosses at
// most a few segment boundaries per query, so the cursor just nudges
// an index. Queries that jump backward are handled too, they simply
// walk the index back.
//
// A cursor is a few words of state and is cheap to copy along with a
// state snapshot.
type Cursor struct {
	m   *Map
	idx int
}

// NewCursor returns a cursor positioned at the first segment.
func (m *Map) NewCursor() Cursor {
	return Cursor{m: m}
}

// PositionAt returns the same value as Map.PositionAt.
func (c *Cursor) PositionAt(t timing.ChartTime) Position {
	m := c.m
	for c.idx+1 < len(m.times) && m.times[c.idx+1] <= t {
		c.idx++
	}
	for c.idx > 0 && m.times[c.idx] > t {
		c.idx--
	}
	return Position(fixed.Unscale(m.rawFrom(c.idx, t) - m.raw0))
}
