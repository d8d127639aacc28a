// Package fixed is the integer numeric kernel shared by every other
// package. All time and velocity quantities in the engine are stored
// as int64 values scaled by a decimal constant; there is no floating
// point anywhere in the gameplay pipeline.
package fixed

// Scale is the decimal scaling factor. A real value v is stored as
// round(v * Scale), so a 1.0x velocity multiplier is 1000 and one
// millisecond of time is 1000 units.
const Scale = 1000

// Valid magnitude ranges. Timestamps are confined to the i32 range of
// scaled units (about +/-35.8 minutes of chart time) and velocity
// multipliers to +/-2^24 (+/-16777.216x).
//
// With |t| < 2^31 and |m| < 2^24 any single product |t*m| is below
// 2^55. The segment walk sums products of non-overlapping durations,
// so the raw position accumulator is bounded by
// max|m| * totalSpan < 2^24 * 2^32 = 2^56, well inside int64. Values
// are checked once, at chart construction; arithmetic on validated
// values cannot overflow.
const (
	MaxTime = 1<<31 - 1
	MinTime = -(1 << 31)

	MaxMultiplier = 1<<24 - 1
	MinMultiplier = -(1 << 24)
)

// FromMillis converts whole milliseconds to scaled units.
func FromMillis(ms int64) int64 { return ms * Scale }

// Millis converts scaled units to whole milliseconds, truncating.
func Millis(v int64) int64 { return v / Scale }

// InTimeRange reports whether v is a valid scaled timestamp.
func InTimeRange(v int64) bool { return v >= MinTime && v <= MaxTime }

// InMultiplierRange reports whether v is a valid velocity multiplier.
func InMultiplierRange(v int64) bool { return v >= MinMultiplier && v <= MaxMultiplier }

// ClampMultiplier saturates v into the valid multiplier range.
func ClampMultiplier(v int64) int64 {
	if v > MaxMultiplier {
		return MaxMultiplier
	}
	if v < MinMultiplier {
		return MinMultiplier
	}
	return v
}

// Mul is the velocity weighting step of the position pipeline: a
// scaled duration times a scaled multiplier. The result keeps the
// extra factor of Scale; callers accumulate raw products and call
// Unscale once, so no precision is lost across segments.
func Mul(t, m int64) int64 { return t * m }

// Unscale removes one factor of Scale using floor division, so the
// result is exact to within one unit in the last place and remains
// monotonic in the raw value.
func Unscale(raw int64) int64 {
	q := raw / Scale
	if raw%Scale != 0 && raw < 0 {
		q--
	}
	return q
}

// DivCeil divides a by b rounding toward positive infinity. b must be
// positive. Used by the position inversion to find the first time a
// segment reaches a raw target.
func DivCeil(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a > 0) == (b > 0) {
		q++
	}
	return q
}
