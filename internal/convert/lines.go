package convert

import (
	"fmt"
	"math/big"

	"git.lost.host/meutraa/vsrg/internal/chart"
	"git.lost.host/meutraa/vsrg/internal/fixed"
	"git.lost.host/meutraa/vsrg/internal/timing"
)

// Lines expands timing points into display beat markers: one line per
// beat from each point up to the next, and from the last point up to
// and including until. Every signature'th beat is a measure line.
// Line times round to the nearest unit from the exact beat fraction,
// so they never drift.
func Lines(points []TimingPoint, until timing.ChartTime) ([]chart.TimingLine, error) {
	if len(points) == 0 {
		return nil, ErrNoTimingPoints
	}
	pts := sortedPoints(points)

	var out []chart.TimingLine
	for i, tp := range pts {
		if tp.BPM == nil || tp.BPM.Sign() <= 0 {
			return nil, fmt.Errorf("%w: timing point %d", ErrBadBPM, i)
		}
		// Units per beat: 60000 ms at the scale, over the BPM.
		beat := new(big.Rat).SetFrac64(60000*fixed.Scale, 1)
		beat.Quo(beat, tp.BPM)
		if beat.Cmp(big.NewRat(1, 1)) < 0 {
			return nil, fmt.Errorf("%w: timing point %d: beat shorter than one unit", ErrBadBPM, i)
		}
		sig := int64(tp.Signature)
		if sig == 0 {
			sig = 4
		}

		// Interior points stop where the next one starts. Same-time
		// points leave only the last in effect.
		stop := int64(until) + 1
		if i+1 < len(pts) && int64(pts[i+1].Time) < stop {
			stop = int64(pts[i+1].Time)
		}

		at := new(big.Rat).SetInt64(int64(tp.Time))
		for k := int64(0); ; k++ {
			t, ok := roundRat(at)
			if !ok || t >= stop {
				break
			}
			out = append(out, chart.TimingLine{
				Time:    timing.ChartTime(t),
				Measure: k%sig == 0,
			})
			at.Add(at, beat)
		}
	}
	return out, nil
}

// roundRat rounds half away from zero. The second result is false
// when the value does not fit in an int64.
func roundRat(r *big.Rat) (int64, bool) {
	q, rem := new(big.Int).QuoRem(r.Num(), r.Denom(), new(big.Int))
	rem.Abs(rem).Lsh(rem, 1)
	if rem.Cmp(r.Denom()) >= 0 {
		if r.Sign() < 0 {
			q.Sub(q, big.NewInt(1))
		} else {
			q.Add(q, big.NewInt(1))
		}
	}
	if !q.IsInt64() {
		return 0, false
	}
	return q.Int64(), true
}
