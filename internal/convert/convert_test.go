package convert

import (
	"math/big"
	"math/rand"
	"testing"

	"git.lost.host/meutraa/vsrg/internal/scroll"
	"git.lost.host/meutraa/vsrg/internal/timing"
)

func mm(v int64) timing.ChartTime { return timing.ChartFromMillis(v) }

func rat(a, b int64) *big.Rat { return big.NewRat(a, b) }

func TestBaseBPM(t *testing.T) {
	points := []TimingPoint{
		{Time: mm(0), BPM: rat(120, 1)},
		{Time: mm(10000), BPM: rat(180, 1)},
	}
	base, err := BaseBPM(points, mm(40000))
	if err != nil {
		t.Fatalf("BaseBPM: %v", err)
	}
	if base.Cmp(rat(180, 1)) != 0 {
		t.Errorf("base = %v, want 180", base)
	}

	// Equal durations, the higher BPM wins.
	base, err = BaseBPM(points, mm(20000))
	if err != nil {
		t.Fatalf("BaseBPM: %v", err)
	}
	if base.Cmp(rat(180, 1)) != 0 {
		t.Errorf("base = %v, want 180", base)
	}

	if _, err := BaseBPM(nil, 0); err != ErrNoTimingPoints {
		t.Errorf("BaseBPM(nil) error = %v", err)
	}
}

func TestToNative(t *testing.T) {
	l := Legacy{
		TimingPoints: []TimingPoint{
			{Time: mm(0), BPM: rat(120, 1)},
			{Time: mm(2000), BPM: rat(240, 1)},
		},
		Velocities: []LegacyVelocity{
			{Time: mm(1000), Multiplier: rat(3, 1)},
		},
	}
	got, err := ToNative(l, rat(120, 1))
	if err != nil {
		t.Fatalf("ToNative: %v", err)
	}
	// The second timing point clears the 3x back to 1x at double
	// tempo.
	want := []scroll.Velocity{
		{Time: mm(0), Multiplier: 1000},
		{Time: mm(1000), Multiplier: 3000},
		{Time: mm(2000), Multiplier: 2000},
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("change %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestToNativeChangeAtTimingPoint(t *testing.T) {
	l := Legacy{
		TimingPoints: []TimingPoint{
			{Time: mm(0), BPM: rat(120, 1)},
			{Time: mm(2000), BPM: rat(240, 1)},
		},
		Velocities: []LegacyVelocity{
			{Time: mm(2000), Multiplier: rat(3, 1)},
		},
	}
	got, err := ToNative(l, rat(120, 1))
	if err != nil {
		t.Fatalf("ToNative: %v", err)
	}
	// A change exactly on a timing point survives the clear.
	want := []scroll.Velocity{
		{Time: mm(0), Multiplier: 1000},
		{Time: mm(2000), Multiplier: 6000},
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("change %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestToNativeSaturates(t *testing.T) {
	l := Legacy{
		TimingPoints: []TimingPoint{{Time: mm(0), BPM: rat(120, 1)}},
		Velocities: []LegacyVelocity{
			{Time: mm(1000), Multiplier: rat(1 << 40, 1)},
		},
	}
	got, err := ToNative(l, rat(120, 1))
	if err != nil {
		t.Fatalf("ToNative: %v", err)
	}
	last := got[len(got)-1]
	if int64(last.Multiplier) != 1<<24-1 {
		t.Errorf("multiplier = %d, want saturated maximum", last.Multiplier)
	}
}

func TestToNativeErrors(t *testing.T) {
	if _, err := ToNative(Legacy{}, rat(120, 1)); err != ErrNoTimingPoints {
		t.Errorf("no timing points: err = %v", err)
	}
	l := Legacy{TimingPoints: []TimingPoint{{Time: 0, BPM: rat(-120, 1)}}}
	if _, err := ToNative(l, rat(120, 1)); err == nil {
		t.Error("negative BPM accepted")
	}
	l = Legacy{TimingPoints: []TimingPoint{{Time: 0, BPM: rat(120, 1)}}}
	if _, err := ToNative(l, rat(0, 1)); err == nil {
		t.Error("zero base BPM accepted")
	}
}

func positions(t *testing.T, vels []scroll.Velocity, at []timing.ChartTime) []scroll.Position {
	t.Helper()
	m, err := scroll.NewMap(vels)
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	out := make([]scroll.Position, len(at))
	for i, tt := range at {
		out[i] = m.PositionAt(tt)
	}
	return out
}

// A native chart converted to the legacy format and back must place
// every object at the same position, even when the change lists end
// up written differently.
func TestRoundTripPositions(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	bpms := []*big.Rat{rat(120, 1), rat(150, 1), rat(601, 5), rat(240, 1)}

	var sample []timing.ChartTime
	for ms := int64(-1000); ms <= 9000; ms += 7 {
		sample = append(sample, mm(ms))
	}

	for round := 0; round < 100; round++ {
		var points []TimingPoint
		for i, n := 0, 1+rng.Intn(3); i < n; i++ {
			points = append(points, TimingPoint{
				Time: mm(int64(i) * 2000),
				BPM:  bpms[rng.Intn(len(bpms))],
			})
		}

		// Even change times keep the exported start seed, placed one
		// millisecond early, off the timing point grid.
		var vels []scroll.Velocity
		ms := int64(2 * (1 + rng.Intn(25)))
		for i, n := 0, 1+rng.Intn(6); i < n; i++ {
			vels = append(vels, scroll.Velocity{
				Time:       mm(ms),
				Multiplier: scroll.Multiplier(rng.Intn(8001) - 2000),
			})
			ms += int64(2 * (3 + rng.Intn(450)))
		}

		base, err := BaseBPM(points, mm(8000))
		if err != nil {
			t.Fatalf("round %d: BaseBPM: %v", round, err)
		}
		legacy, err := FromNative(vels, points, base)
		if err != nil {
			t.Fatalf("round %d: FromNative: %v", round, err)
		}
		back, err := ToNative(legacy, base)
		if err != nil {
			t.Fatalf("round %d: ToNative: %v", round, err)
		}

		want := positions(t, vels, sample)
		got := positions(t, back, sample)
		for i := range sample {
			if got[i] != want[i] {
				t.Fatalf("round %d: position(%d) = %d, want %d\nnative: %v\nlegacy: %+v\nback: %v",
					round, sample[i], got[i], want[i], vels, legacy, back)
			}
		}
	}
}

func TestFromNativeErrors(t *testing.T) {
	points := []TimingPoint{{Time: 0, BPM: rat(120, 1)}}
	if _, err := FromNative(nil, points, rat(120, 1)); err != scroll.ErrNoVelocities {
		t.Errorf("no velocities: err = %v", err)
	}
	vels := []scroll.Velocity{{Time: 0, Multiplier: 1000}}
	if _, err := FromNative(vels, nil, rat(120, 1)); err != ErrNoTimingPoints {
		t.Errorf("no timing points: err = %v", err)
	}
}

func TestLines(t *testing.T) {
	points := []TimingPoint{
		{Time: mm(0), BPM: rat(120, 1), Signature: 4},
		{Time: mm(1250), BPM: rat(240, 1), Signature: 3},
	}
	lines, err := Lines(points, mm(3000))
	if err != nil {
		t.Fatalf("Lines: %v", err)
	}

	type line struct {
		ms      int64
		measure bool
	}
	want := []line{
		{0, true}, {500, false}, {1000, false},
		{1250, true}, {1500, false}, {1750, false},
		{2000, true}, {2250, false}, {2500, false},
		{2750, true}, {3000, false},
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d: %v", len(lines), len(want), lines)
	}
	for i, w := range want {
		if lines[i].Time != mm(w.ms) || lines[i].Measure != w.measure {
			t.Errorf("line %d = %+v, want %+v", i, lines[i], w)
		}
	}
}

func TestLinesRounding(t *testing.T) {
	// 130 BPM beats are 461.538...ms; the 13th beat lands on 6s
	// exactly, so per-beat rounding must not accumulate.
	points := []TimingPoint{{Time: mm(0), BPM: rat(130, 1)}}
	lines, err := Lines(points, mm(6000))
	if err != nil {
		t.Fatalf("Lines: %v", err)
	}
	if last := lines[len(lines)-1]; last.Time != mm(6000) {
		t.Errorf("last line at %d, want %d", last.Time, mm(6000))
	}
	for i := 1; i < len(lines); i++ {
		if lines[i].Time <= lines[i-1].Time {
			t.Fatalf("line %d at %d not after %d", i, lines[i].Time, lines[i-1].Time)
		}
	}
}
