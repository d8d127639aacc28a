// Package convert translates charts between the legacy tempo-coupled
// velocity format and the native one.
//
// Legacy charts couple scroll velocity to tempo: every velocity
// multiplier rides on the ratio of the current BPM to a base BPM, and
// each timing point resets the multiplier to 1x. The native format
// has no such coupling; timing points are display-only and velocity
// changes stand alone. ToNative folds the tempo into plain velocity
// changes, FromNative unfolds them again. Legacy multipliers are
// exact rationals, so a native chart survives the round trip with
// identical positions at every timestamp.
package convert

import (
	"errors"
	"fmt"
	"math/big"
	"sort"

	"git.lost.host/meutraa/vsrg/internal/fixed"
	"git.lost.host/meutraa/vsrg/internal/scroll"
	"git.lost.host/meutraa/vsrg/internal/timing"
)

var (
	ErrNoTimingPoints = errors.New("convert: chart has no timing points")
	ErrBadBPM         = errors.New("convert: BPM must be positive")
)

// TimingPoint is a tempo marker. In the native format it only seeds
// display timing lines; in the legacy format it also resets the
// scroll multiplier.
type TimingPoint struct {
	Time      timing.ChartTime
	BPM       *big.Rat
	Signature uint8 // beats per measure, 0 means 4
}

// LegacyVelocity is a tempo-relative velocity change. The effective
// multiplier is Multiplier times the ratio of the BPM in effect to
// the chart's base BPM.
type LegacyVelocity struct {
	Time       timing.ChartTime
	Multiplier *big.Rat
}

// Legacy is a chart's timing data in the tempo-coupled format.
type Legacy struct {
	TimingPoints []TimingPoint
	Velocities   []LegacyVelocity
}

// BaseBPM picks the multiplier-1x reference tempo: the BPM in effect
// for the longest stretch of time up to lastObject. Ties go to the
// higher BPM.
func BaseBPM(points []TimingPoint, lastObject timing.ChartTime) (*big.Rat, error) {
	if len(points) == 0 {
		return nil, ErrNoTimingPoints
	}
	pts := sortedPoints(points)

	type span struct {
		bpm *big.Rat
		dur int64
	}
	var spans []span
	last := int64(lastObject)
	for i := len(pts) - 1; i >= 0; i-- {
		p := pts[i]
		if p.BPM == nil || p.BPM.Sign() <= 0 {
			return nil, fmt.Errorf("%w: timing point %d", ErrBadBPM, i)
		}
		if int64(p.Time) > last {
			continue
		}
		found := false
		for j := range spans {
			if spans[j].bpm.Cmp(p.BPM) == 0 {
				spans[j].dur += last - int64(p.Time)
				found = true
				break
			}
		}
		if !found {
			spans = append(spans, span{p.BPM, last - int64(p.Time)})
		}
		last = int64(p.Time)
	}
	if len(spans) == 0 {
		return pts[0].BPM, nil
	}
	best := spans[0]
	for _, s := range spans[1:] {
		if s.dur > best.dur || (s.dur == best.dur && s.bpm.Cmp(best.bpm) > 0) {
			best = s
		}
	}
	return best.bpm, nil
}

// ToNative folds a legacy chart's tempo changes into standalone
// velocity changes against the given base BPM. The first change in
// the result carries the multiplier in effect at the chart start.
// Multipliers quantize to the fixed-point grid, saturating at the
// representable range.
func ToNative(l Legacy, base *big.Rat) ([]scroll.Velocity, error) {
	if len(l.TimingPoints) == 0 {
		return nil, ErrNoTimingPoints
	}
	if base == nil || base.Sign() <= 0 {
		return nil, fmt.Errorf("%w: base", ErrBadBPM)
	}
	pts := sortedPoints(l.TimingPoints)
	svs := sortedLegacy(l.Velocities)

	var out []scroll.Velocity
	var adjusted scroll.Multiplier
	have := false
	push := func(t timing.ChartTime, r *big.Rat) {
		m := quantize(r)
		if have && m == adjusted {
			return
		}
		have = true
		adjusted = m
		out = append(out, scroll.Velocity{Time: t, Multiplier: m})
	}

	currentBPM := pts[0].BPM
	currentSV := big.NewRat(1, 1)
	lastSV := timing.ChartTime(0)
	haveSV := false
	svi := 0
	for i, tp := range pts {
		if tp.BPM == nil || tp.BPM.Sign() <= 0 {
			return nil, fmt.Errorf("%w: timing point %d", ErrBadBPM, i)
		}
		for svi < len(svs) && svs[svi].Time <= tp.Time {
			sv := svs[svi]
			if sv.Time < tp.Time {
				push(sv.Time, adjust(sv.Multiplier, currentBPM, base))
			}
			lastSV = sv.Time
			haveSV = true
			currentSV = sv.Multiplier
			svi++
		}

		// A timing point clears any multiplier authored before it.
		if !haveSV || lastSV < tp.Time {
			currentSV = big.NewRat(1, 1)
		}
		currentBPM = tp.BPM
		push(tp.Time, adjust(currentSV, currentBPM, base))
	}
	for ; svi < len(svs); svi++ {
		push(svs[svi].Time, adjust(svs[svi].Multiplier, currentBPM, base))
	}
	return out, nil
}

// FromNative unfolds native velocity changes back into the
// tempo-coupled format against the given timing points and base BPM.
// The result reproduces the native chart's position at every
// timestamp when converted forward again.
func FromNative(vels []scroll.Velocity, points []TimingPoint, base *big.Rat) (Legacy, error) {
	if len(vels) == 0 {
		return Legacy{}, scroll.ErrNoVelocities
	}
	if len(points) == 0 {
		return Legacy{}, ErrNoTimingPoints
	}
	if base == nil || base.Sign() <= 0 {
		return Legacy{}, fmt.Errorf("%w: base", ErrBadBPM)
	}
	pts := sortedPoints(points)
	sorted := append([]scroll.Velocity(nil), vels...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })
	initial := sorted[0].Multiplier
	changes := sorted[1:]

	out := Legacy{TimingPoints: pts}
	emit := func(t timing.ChartTime, r *big.Rat) {
		out.Velocities = append(out.Velocities, LegacyVelocity{Time: t, Multiplier: r})
	}
	// One scaled millisecond before t, to seat the start multiplier
	// ahead of the first authored change.
	early := func(t timing.ChartTime) timing.ChartTime {
		return timing.ChartTime(int64(t) - fixed.Scale)
	}

	currentBPM := pts[0].BPM
	currentSV := initial
	var adjusted *big.Rat
	ci := 0
	for i, tp := range pts {
		if tp.BPM == nil || tp.BPM.Sign() <= 0 {
			return Legacy{}, fmt.Errorf("%w: timing point %d", ErrBadBPM, i)
		}
		for ci < len(changes) && changes[ci].Time <= tp.Time {
			sv := changes[ci]
			if sv.Time < tp.Time {
				m := unadjust(sv.Multiplier, currentBPM, base)
				if adjusted == nil || m.Cmp(adjusted) != 0 {
					if adjusted == nil && sv.Multiplier != initial {
						emit(early(sv.Time), unadjust(initial, currentBPM, base))
					}
					emit(sv.Time, m)
					adjusted = m
				}
			}
			currentSV = sv.Multiplier
			ci++
		}

		currentBPM = tp.BPM
		if adjusted == nil && currentSV != initial {
			emit(early(tp.Time), unadjust(initial, currentBPM, base))
		}
		// The timing point itself resets the multiplier to 1x.
		adjusted = big.NewRat(1, 1)

		// Only the last of several same-time points takes effect.
		if i+1 < len(pts) && pts[i+1].Time == tp.Time {
			continue
		}
		if m := unadjust(currentSV, currentBPM, base); m.Cmp(adjusted) != 0 {
			emit(tp.Time, m)
			adjusted = m
		}
	}
	for ; ci < len(changes); ci++ {
		m := unadjust(changes[ci].Multiplier, currentBPM, base)
		if m.Cmp(adjusted) != 0 {
			emit(changes[ci].Time, m)
			adjusted = m
		}
	}
	return out, nil
}

// adjust is legacy to native: multiplier times bpm over base.
func adjust(m, bpm, base *big.Rat) *big.Rat {
	r := new(big.Rat).Quo(bpm, base)
	return r.Mul(r, m)
}

// unadjust is native to legacy: fixed multiplier divided by bpm over
// base, kept exact as a rational.
func unadjust(m scroll.Multiplier, bpm, base *big.Rat) *big.Rat {
	r := new(big.Rat).SetFrac64(int64(m), fixed.Scale)
	ratio := new(big.Rat).Quo(bpm, base)
	return r.Quo(r, ratio)
}

// quantize rounds a rational multiplier to the fixed-point grid,
// half away from zero, saturating at the representable range.
func quantize(r *big.Rat) scroll.Multiplier {
	scaled := new(big.Rat).SetInt64(fixed.Scale)
	scaled.Mul(scaled, r)
	v, ok := roundRat(scaled)
	if !ok {
		if scaled.Sign() < 0 {
			return scroll.Multiplier(fixed.MinMultiplier)
		}
		return scroll.Multiplier(fixed.MaxMultiplier)
	}
	return scroll.Multiplier(fixed.ClampMultiplier(v))
}

func sortedPoints(points []TimingPoint) []TimingPoint {
	out := append([]TimingPoint(nil), points...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}

func sortedLegacy(vels []LegacyVelocity) []LegacyVelocity {
	out := append([]LegacyVelocity(nil), vels...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}
