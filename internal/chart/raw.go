package chart

import (
	"git.lost.host/meutraa/vsrg/internal/scroll"
	"git.lost.host/meutraa/vsrg/internal/timing"
)

// Raw is the chart as serialized, before validation. It is what the
// native JSON representation decodes into; format-specific loaders
// for foreign map files would produce one of these after translating
// their velocity convention through the convert package.
type Raw struct {
	Artist     string `json:"artist,omitempty"`
	Title      string `json:"title,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`

	Lanes       [][]Note          `json:"lanes"`
	Velocities  []scroll.Velocity `json:"velocities"`
	TimingLines []TimingLine      `json:"timingLines,omitempty"`
	LocalOffset timing.Delta      `json:"localOffset,omitempty"`
}

// Build validates the raw data into a chart.
func (r *Raw) Build() (*Chart, error) {
	return New(r.Lanes, r.Velocities, r.TimingLines, r.LocalOffset)
}
