package judge

import (
	"errors"
	"fmt"

	"git.lost.host/meutraa/vsrg/internal/timing"
)

// Grade is a discrete hit quality category.
type Grade uint8

const (
	Exact Grade = iota
	Ridiculous
	Marvelous
	Great
	Good
	Okay
	Miss
)

var gradeNames = []string{"Exact", "Ridiculous", "Marvelous", "Great", "Good", "Okay", "Miss"}

func (g Grade) String() string {
	if int(g) < len(gradeNames) {
		return gradeNames[g]
	}
	return fmt.Sprintf("Grade(%d)", uint8(g))
}

// GradeCount is the number of grades, counting Miss.
const GradeCount = int(Miss) + 1

// Window maps an absolute timing error to a grade. Tables are ordered
// finest to coarsest; the last entry is the widest acceptable error.
// An error exactly equal to a width classifies as that grade
// (inclusive edges).
type Window struct {
	Grade Grade
	Width timing.Delta
}

// ErrWindows marks an invalid window table: empty, non-positive or
// non-increasing widths, or not ending before Miss.
var ErrWindows = errors.New("judge: invalid window table")

// DefaultWindows is the press table.
func DefaultWindows() []Window {
	return []Window{
		{Exact, timing.DeltaFromMillis(5)},
		{Ridiculous, timing.DeltaFromMillis(10)},
		{Marvelous, timing.DeltaFromMillis(20)},
		{Great, timing.DeltaFromMillis(40)},
		{Good, timing.DeltaFromMillis(60)},
		{Okay, timing.DeltaFromMillis(100)},
	}
}

// DefaultReleaseWindows is the release table for long notes, half
// again as forgiving as the press table.
func DefaultReleaseWindows() []Window {
	ws := DefaultWindows()
	for i := range ws {
		ws[i].Width += ws[i].Width / 2
	}
	return ws
}

func validWindows(ws []Window) bool {
	if len(ws) == 0 {
		return false
	}
	var prev timing.Delta
	for _, w := range ws {
		if w.Width <= prev || w.Grade >= Miss {
			return false
		}
		prev = w.Width
	}
	return true
}

// classify maps an absolute error onto the table. The second result
// is false when the error exceeds the widest window.
func classify(ws []Window, abs timing.Delta) (Grade, bool) {
	for _, w := range ws {
		if abs <= w.Width {
			return w.Grade, true
		}
	}
	return Miss, false
}

func widest(ws []Window) timing.Delta {
	return ws[len(ws)-1].Width
}
