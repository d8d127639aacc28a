// Package replay records and restores the raw input stream of a
// play, keyed by a hash of the chart it was played against. Scores
// are never stored; they are recomputed from the inputs.
package replay

import (
	"crypto/sha256"
	"encoding/base64"
	"sort"

	"git.lost.host/meutraa/vsrg/internal/timing"
)

// Event is one key edge.
type Event struct {
	Lane    int             `json:"lane"`
	Release bool            `json:"release"`
	Time    timing.GameTime `json:"time"`
}

// History is one stored play.
type History struct {
	ID     int64
	Sum    string
	Events []Event
}

// EventsCompact groups one lane's edges for storage.
type EventsCompact struct {
	Lane     int     `json:"lane"`
	Presses  []int64 `json:"presses"`
	Releases []int64 `json:"releases"`
}

func compactEvents(events []Event) []EventsCompact {
	laneCount := 0
	for _, e := range events {
		if e.Lane >= laneCount {
			laneCount = e.Lane + 1
		}
	}
	out := make([]EventsCompact, laneCount)
	for i := range out {
		out[i].Lane = i
	}
	for _, e := range events {
		c := &out[e.Lane]
		if e.Release {
			c.Releases = append(c.Releases, int64(e.Time))
		} else {
			c.Presses = append(c.Presses, int64(e.Time))
		}
	}
	return out
}

// uncompactEvents merges the per-lane groups back into one stream
// ordered by time, presses before releases on a tie.
func uncompactEvents(compact []EventsCompact) []Event {
	events := []Event{}
	for _, c := range compact {
		for _, t := range c.Presses {
			events = append(events, Event{Lane: c.Lane, Time: timing.GameTime(t)})
		}
		for _, t := range c.Releases {
			events = append(events, Event{Lane: c.Lane, Release: true, Time: timing.GameTime(t)})
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Time != events[j].Time {
			return events[i].Time < events[j].Time
		}
		if events[i].Release != events[j].Release {
			return !events[i].Release
		}
		return events[i].Lane < events[j].Lane
	})
	return events
}

// Sum is the storage key for a chart's serialized form.
func Sum(raw []byte) string {
	sum := sha256.Sum256(raw)
	return base64.StdEncoding.EncodeToString(sum[:])
}
