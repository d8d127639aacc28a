package chart

import "git.lost.host/meutraa/vsrg/internal/timing"

// Note is a single chart object in a lane. A tap note has End equal
// to Start; a long note (Long true) is held from Start and released
// at End, which must be strictly after Start.
type Note struct {
	Start timing.ChartTime `json:"start"`
	End   timing.ChartTime `json:"end"`
	Long  bool             `json:"long,omitempty"`
}

// TimingLine is a cosmetic beat or measure marker. It never affects
// scroll velocity or judgement; renderers draw it and nothing else
// reads it.
type TimingLine struct {
	Time    timing.ChartTime `json:"time"`
	Measure bool             `json:"measure,omitempty"`
}
