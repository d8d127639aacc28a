// Package scroll converts chart time into scroll-adjusted positions.
//
// Scroll velocity changes partition chart time into constant-velocity
// segments. Timing points (tempo changes) never appear here; they are
// cosmetic markers owned by the chart package. Foreign conventions
// where a tempo change drives scroll velocity are translated into
// this representation by the convert package before a chart is built.
package scroll

import (
	"git.lost.host/meutraa/vsrg/internal/fixed"
	"git.lost.host/meutraa/vsrg/internal/timing"
)

// Multiplier is a scroll velocity multiplier, scaled by fixed.Scale.
// A value of 1000 is 1.0x. Negative multipliers are legal and move
// position backward.
type Multiplier int64

// One is the neutral multiplier.
const One Multiplier = fixed.Scale

// Position is a scroll-adjusted coordinate derived from chart time.
// Position 0 corresponds to chart time 0. It is monotonic in chart
// time wherever the multiplier is positive.
type Position int64

// ScreenPosition is a position scaled by the player's scroll speed
// and shifted to the hit line. Pure display quantity; nothing feeds
// back from it into gameplay.
type ScreenPosition int64

// Velocity is an authored scroll velocity change. From Time onward
// the multiplier applies, until the next change.
type Velocity struct {
	Time       timing.ChartTime `json:"time"`
	Multiplier Multiplier       `json:"multiplier"`
}

// Baseline is the implicit 1x velocity from chart time 0 that charts
// without authored changes must pass explicitly.
func Baseline() []Velocity {
	return []Velocity{{Time: 0, Multiplier: One}}
}

// Screen is the display transform from positions to screen
// coordinates.
//
// Speed follows the convention of a small unit-less multiplier; the
// default of 32 means a note travels about one and a half screens per
// second at 1x velocity. Keeping Speed under 2^8 bounds the product
// with any reachable position difference well inside int64.
type Screen struct {
	Speed       uint8
	HitPosition ScreenPosition
	Upscroll    bool
}

// Project maps an object position to a screen coordinate given the
// current position of the hit line. With downscroll (the default) an
// object ahead of the current time is drawn above the hit position;
// upscroll flips the sign of the speed-scaled offset.
func (s Screen) Project(object, current Position) ScreenPosition {
	offset := ScreenPosition((int64(object) - int64(current)) * int64(s.Speed))
	if s.Upscroll {
		return s.HitPosition + offset
	}
	return s.HitPosition - offset
}
