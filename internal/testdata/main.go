package testdata

import (
	"encoding/json"

	"git.lost.host/meutraa/vsrg/internal/chart"
)

// GetChart returns a small validated 4k chart along with its
// serialized form, for tests and for the replay store key.
func GetChart() (*chart.Chart, []byte, error) {
	var raw chart.Raw
	if err := json.Unmarshal([]byte(data), &raw); nil != err {
		return nil, nil, err
	}
	c, err := raw.Build()
	if nil != err {
		return nil, nil, err
	}
	return c, []byte(data), nil
}

// Four lanes over four seconds at 1x, with a slow middle section and
// one long note per outer lane. Times are scaled milliseconds.
const data = `{
	"artist": "example",
	"title": "four lanes",
	"difficulty": "normal",
	"lanes": [
		[
			{"start": 500000, "end": 500000},
			{"start": 1500000, "end": 2250000, "long": true},
			{"start": 3000000, "end": 3000000}
		],
		[
			{"start": 750000, "end": 750000},
			{"start": 1750000, "end": 1750000},
			{"start": 2750000, "end": 2750000}
		],
		[
			{"start": 1000000, "end": 1000000},
			{"start": 2000000, "end": 2000000},
			{"start": 3250000, "end": 3250000}
		],
		[
			{"start": 1250000, "end": 1250000},
			{"start": 2500000, "end": 3500000, "long": true}
		]
	],
	"velocities": [
		{"time": 0, "multiplier": 1000},
		{"time": 1500000, "multiplier": 500},
		{"time": 2500000, "multiplier": 1000}
	],
	"timingLines": [
		{"time": 0, "measure": true},
		{"time": 500000},
		{"time": 1000000},
		{"time": 1500000},
		{"time": 2000000, "measure": true},
		{"time": 2500000},
		{"time": 3000000},
		{"time": 3500000}
	],
	"localOffset": 5000
}`
