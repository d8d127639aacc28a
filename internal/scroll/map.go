package scroll

import (
	"errors"
	"fmt"
	"sort"

	"git.lost.host/meutraa/vsrg/internal/fixed"
	"git.lost.host/meutraa/vsrg/internal/timing"
)

// ErrNoVelocities is returned when a map is built from an empty
// velocity list. A chart needs at least the explicit Baseline.
var ErrNoVelocities = errors.New("scroll: no velocity changes")

// Map answers position queries over a fixed set of velocity changes.
//
// Construction walks the sorted changes once and stores the raw
// (Scale-scaled) position at every segment boundary, so a point query
// is one binary search plus one multiplication. The raw prefix sums
// are exact; the single Unscale at the end of a query is the only
// rounding step.
type Map struct {
	times  []timing.ChartTime
	mults  []Multiplier
	prefix []int64 // raw position at times[i], anchored at prefix[0] = 0
	raw0   int64   // raw position at chart time zero
}

// NewMap builds a position map from authored velocity changes.
//
// Changes are sorted by timestamp; ties keep their authored order and
// collapse so that the last-authored multiplier takes effect at that
// instant. Changes that do not alter the multiplier are dropped. The
// first and last segments extend to -inf and +inf at their boundary
// multipliers.
func NewMap(changes []Velocity) (*Map, error) {
	if len(changes) == 0 {
		return nil, ErrNoVelocities
	}
	for i, c := range changes {
		if !fixed.InTimeRange(int64(c.Time)) {
			return nil, fmt.Errorf("scroll: velocity %d: timestamp %d out of range", i, c.Time)
		}
		if !fixed.InMultiplierRange(int64(c.Multiplier)) {
			return nil, fmt.Errorf("scroll: velocity %d: multiplier %d out of range", i, c.Multiplier)
		}
	}

	sorted := make([]Velocity, len(changes))
	copy(sorted, changes)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })

	m := &Map{}
	for _, c := range sorted {
		n := len(m.times)
		if n > 0 && m.times[n-1] == c.Time {
			// Later-authored change at the same instant wins; the
			// earlier one has zero duration.
			m.mults[n-1] = c.Multiplier
			continue
		}
		if n > 0 && m.mults[n-1] == c.Multiplier {
			continue
		}
		m.times = append(m.times, c.Time)
		m.mults = append(m.mults, c.Multiplier)
	}
	// Collapsing can leave a change equal to its predecessor.
	for i := 1; i < len(m.times); {
		if m.mults[i] == m.mults[i-1] {
			m.times = append(m.times[:i], m.times[i+1:]...)
			m.mults = append(m.mults[:i], m.mults[i+1:]...)
			continue
		}
		i++
	}

	m.prefix = make([]int64, len(m.times))
	for i := 1; i < len(m.times); i++ {
		dt := int64(m.times[i] - m.times[i-1])
		m.prefix[i] = m.prefix[i-1] + fixed.Mul(dt, int64(m.mults[i-1]))
	}
	m.raw0 = m.rawAt(0)
	return m, nil
}

// segment returns the index of the segment containing t: the last
// boundary at or before t, or 0 when t is before the first boundary
// (the first segment extends backward).
func (m *Map) segment(t timing.ChartTime) int {
	// First index with times[i] > t.
	i := sort.Search(len(m.times), func(i int) bool { return m.times[i] > t })
	if i == 0 {
		return 0
	}
	return i - 1
}

func (m *Map) rawFrom(idx int, t timing.ChartTime) int64 {
	dt := int64(t - m.times[idx])
	return m.prefix[idx] + fixed.Mul(dt, int64(m.mults[idx]))
}

func (m *Map) rawAt(t timing.ChartTime) int64 {
	return m.rawFrom(m.segment(t), t)
}

// PositionAt returns the scroll-adjusted position of a chart time.
// Total: defined for every t, including before the first and after
// the last change.
func (m *Map) PositionAt(t timing.ChartTime) Position {
	return Position(fixed.Unscale(m.rawAt(t) - m.raw0))
}

// TimeAt is the inverse of PositionAt. It returns the earliest chart
// time whose position equals p, and false when no such time exists
// (position ranges can have gaps when a multiplier magnitude exceeds
// 1x, and values can be skipped entirely under negative velocities).
//
// Under negative multipliers a position can be reached several times;
// the earliest is returned. On a zero-velocity plateau the plateau
// start is returned; if that plateau is the backward extension of the
// first segment, the result clamps to the range floor. Display aid
// only; gameplay never inverts positions.
func (m *Map) TimeAt(p Position) (timing.ChartTime, bool) {
	lo := int64(p)*fixed.Scale + m.raw0
	hi := lo + fixed.Scale - 1

	for i := range m.times {
		from := int64(fixed.MinTime)
		if i > 0 {
			from = int64(m.times[i-1])
		}
		// Segment i-1 covers [from, times[i]); for i == 0 the first
		// multiplier extends backward from times[0].
		var t0, r0, mult, to int64
		if i == 0 {
			t0, r0, mult = int64(m.times[0]), m.prefix[0], int64(m.mults[0])
			to = int64(m.times[0])
			if len(m.times) == 1 {
				to = int64(fixed.MaxTime) + 1
			}
		} else {
			t0, r0, mult = int64(m.times[i-1]), m.prefix[i-1], int64(m.mults[i-1])
			to = int64(m.times[i])
		}
		if t, ok := seek(t0, r0, mult, from, to, lo, hi); ok {
			return timing.ChartTime(t), true
		}
	}
	if len(m.times) > 1 {
		last := len(m.times) - 1
		t0, r0, mult := int64(m.times[last]), m.prefix[last], int64(m.mults[last])
		if t, ok := seek(t0, r0, mult, t0, int64(fixed.MaxTime)+1, lo, hi); ok {
			return timing.ChartTime(t), true
		}
	}
	return 0, false
}

// seek finds the earliest t in [from, to) where r0+(t-t0)*mult lands
// inside [lo, hi].
func seek(t0, r0, mult, from, to, lo, hi int64) (int64, bool) {
	if from >= to {
		return 0, false
	}
	switch {
	case mult == 0:
		if r0 >= lo && r0 <= hi {
			return from, true
		}
		return 0, false
	case mult > 0:
		t := t0 + fixed.DivCeil(lo-r0, mult)
		if t < from {
			t = from
		}
		raw := r0 + (t-t0)*mult
		if t < to && raw >= lo && raw <= hi {
			return t, true
		}
		return 0, false
	default:
		// Raw decreases with t; the earliest hit is the first t with
		// raw <= hi.
		t := t0 + fixed.DivCeil(r0-hi, -mult)
		if t < from {
			t = from
		}
		raw := r0 + (t-t0)*mult
		if t < to && raw >= lo && raw <= hi {
			return t, true
		}
		return 0, false
	}
}

// Len returns the number of distinct velocity segments.
func (m *Map) Len() int { return len(m.times) }

// Velocity returns the i'th effective velocity change after
// normalisation.
func (m *Map) Velocity(i int) Velocity {
	return Velocity{Time: m.times[i], Multiplier: m.mults[i]}
}
