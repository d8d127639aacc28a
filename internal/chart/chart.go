// Package chart holds the validated, immutable chart model: lanes of
// notes, the scroll velocity map, cosmetic timing lines and the
// authored local offset.
//
// A chart is constructed once from raw data and never changes
// afterward. The only mutable gameplay data, per-note hit state,
// lives in the judge package.
package chart

import (
	"errors"
	"fmt"
	"sort"

	"git.lost.host/meutraa/vsrg/internal/fixed"
	"git.lost.host/meutraa/vsrg/internal/scroll"
	"git.lost.host/meutraa/vsrg/internal/timing"
)

var (
	// ErrLongNoteOrder marks a long note whose end is not after its
	// start.
	ErrLongNoteOrder = errors.New("long note end not after start")
	// ErrOverlap marks two notes in one lane that overlap in time.
	ErrOverlap = errors.New("notes overlap")
	// ErrTimeRange marks a timestamp outside the valid fixed-point
	// range.
	ErrTimeRange = errors.New("timestamp out of range")
)

type Chart struct {
	lanes [][]Note
	lines []TimingLine
	local timing.Delta
	svs   *scroll.Map
}

// New validates raw chart data and builds a chart. Construction
// either succeeds completely or fails with an error identifying the
// offending lane, note or velocity entry; there is no partially
// valid chart.
//
// Notes are sorted by start time per lane; within a lane each note
// must end strictly before the next one starts. Tap notes have their
// End normalised to Start. The velocity list must not be empty;
// charts without authored velocities pass scroll.Baseline().
func New(lanes [][]Note, velocities []scroll.Velocity, lines []TimingLine, localOffset timing.Delta) (*Chart, error) {
	svs, err := scroll.NewMap(velocities)
	if err != nil {
		return nil, fmt.Errorf("chart: %w", err)
	}

	owned := make([][]Note, len(lanes))
	for l, lane := range lanes {
		notes := make([]Note, len(lane))
		copy(notes, lane)
		sort.SliceStable(notes, func(i, j int) bool { return notes[i].Start < notes[j].Start })

		for i := range notes {
			n := &notes[i]
			if !n.Long {
				n.End = n.Start
			}
			if !fixed.InTimeRange(int64(n.Start)) || !fixed.InTimeRange(int64(n.End)) {
				return nil, fmt.Errorf("chart: lane %d note %d: %w", l, i, ErrTimeRange)
			}
			if n.Long && n.End <= n.Start {
				return nil, fmt.Errorf("chart: lane %d note %d: %w", l, i, ErrLongNoteOrder)
			}
			if i > 0 && notes[i-1].End >= n.Start {
				return nil, fmt.Errorf("chart: lane %d notes %d and %d: %w", l, i-1, i, ErrOverlap)
			}
		}
		owned[l] = notes
	}

	for i, line := range lines {
		if !fixed.InTimeRange(int64(line.Time)) {
			return nil, fmt.Errorf("chart: timing line %d: %w", i, ErrTimeRange)
		}
	}
	ownedLines := make([]TimingLine, len(lines))
	copy(ownedLines, lines)
	sort.SliceStable(ownedLines, func(i, j int) bool { return ownedLines[i].Time < ownedLines[j].Time })

	return &Chart{
		lanes: owned,
		lines: ownedLines,
		local: localOffset,
		svs:   svs,
	}, nil
}

// LaneCount returns the number of lanes.
func (c *Chart) LaneCount() int { return len(c.lanes) }

// Notes returns the notes of a lane, sorted by start time. The slice
// is shared; callers must not modify it.
func (c *Chart) Notes(lane int) []Note { return c.lanes[lane] }

// TimingLines returns the cosmetic markers, sorted by time. Shared,
// read-only.
func (c *Chart) TimingLines() []TimingLine { return c.lines }

// LocalOffset returns the authored per-chart offset.
func (c *Chart) LocalOffset() timing.Delta { return c.local }

// Converter builds the timestamp converter for a play session with
// the given global offset.
func (c *Chart) Converter(global timing.Delta) timing.Converter {
	return timing.Converter{Global: global, Local: c.local}
}

// PositionAt delegates a point query to the scroll map.
func (c *Chart) PositionAt(t timing.ChartTime) scroll.Position {
	return c.svs.PositionAt(t)
}

// TimeAt delegates the position inversion to the scroll map.
func (c *Chart) TimeAt(p scroll.Position) (timing.ChartTime, bool) {
	return c.svs.TimeAt(p)
}

// NewCursor returns a sequential query cursor for rendering.
func (c *Chart) NewCursor() scroll.Cursor { return c.svs.NewCursor() }

// Velocities returns the normalised velocity changes.
func (c *Chart) Velocities() []scroll.Velocity {
	out := make([]scroll.Velocity, c.svs.Len())
	for i := range out {
		out[i] = c.svs.Velocity(i)
	}
	return out
}
