// Package timing defines the two time coordinate systems the engine
// works in and the only conversion between them.
//
// ChartTime is time as authored in the chart. GameTime is time in the
// live play session. The two are related by a session-wide global
// offset and a per-chart local offset; nothing else in the engine may
// mix them.
package timing

import (
	"time"

	"git.lost.host/meutraa/vsrg/internal/fixed"
)

// ChartTime is a point in chart time, in scaled milliseconds. May be
// negative for pre-roll.
type ChartTime int64

// GameTime is a point in session time, in scaled milliseconds.
type GameTime int64

// Delta is a difference between two times of the same kind, in scaled
// milliseconds. Offsets and hit errors are Deltas.
type Delta int64

func ChartFromMillis(ms int64) ChartTime { return ChartTime(fixed.FromMillis(ms)) }
func GameFromMillis(ms int64) GameTime   { return GameTime(fixed.FromMillis(ms)) }
func DeltaFromMillis(ms int64) Delta     { return Delta(fixed.FromMillis(ms)) }

// GameFromDuration converts a wall-clock duration since session start
// into game time. One scaled millisecond is one microsecond, so the
// conversion is exact.
func GameFromDuration(d time.Duration) GameTime {
	return GameTime(d / time.Microsecond)
}

// Duration converts a delta back to a wall-clock duration for
// display.
func (d Delta) Duration() time.Duration {
	return time.Duration(d) * time.Microsecond
}

func (t ChartTime) Add(d Delta) ChartTime  { return t + ChartTime(d) }
func (t ChartTime) Sub(o ChartTime) Delta  { return Delta(t - o) }
func (t GameTime) Add(d Delta) GameTime    { return t + GameTime(d) }
func (t GameTime) Sub(o GameTime) Delta    { return Delta(t - o) }

// Abs returns the magnitude of the delta.
func (d Delta) Abs() Delta {
	if d < 0 {
		return -d
	}
	return d
}

// Converter maps between game time and chart time.
//
// ChartTime = GameTime - Global - Local. Global is fixed for the
// whole session, Local is authored per chart.
type Converter struct {
	Global Delta
	Local  Delta
}

// ToChart converts a session timestamp into chart time.
func (c Converter) ToChart(t GameTime) ChartTime {
	return ChartTime(int64(t) - int64(c.Global) - int64(c.Local))
}

// ToGame converts a chart timestamp into session time. Exact inverse
// of ToChart.
func (c Converter) ToGame(t ChartTime) GameTime {
	return GameTime(int64(t) + int64(c.Global) + int64(c.Local))
}
