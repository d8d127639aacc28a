package replay

import (
	"testing"
)

var compactTests = map[*[]Event][]EventsCompact{
	{}: {},
	{{Lane: 0, Time: 100}, {Lane: 3, Time: 200}}: {
		{Lane: 0, Presses: []int64{100}},
		{Lane: 1},
		{Lane: 2},
		{Lane: 3, Presses: []int64{200}},
	},
	{{Lane: 1, Time: 50}, {Lane: 1, Release: true, Time: 90}, {Lane: 1, Time: 120}}: {
		{Lane: 0},
		{Lane: 1, Presses: []int64{50, 120}, Releases: []int64{90}},
	},
}

func TestCompactEvents(t *testing.T) {
	equal := func(p, q []EventsCompact) bool {
		if len(p) != len(q) {
			return false
		}
		for i := 0; i < len(p); i++ {
			pi, qi := p[i], q[i]
			if pi.Lane != qi.Lane {
				return false
			}
			if len(pi.Presses) != len(qi.Presses) || len(pi.Releases) != len(qi.Releases) {
				return false
			}
			for j := 0; j < len(pi.Presses); j++ {
				if pi.Presses[j] != qi.Presses[j] {
					return false
				}
			}
			for j := 0; j < len(pi.Releases); j++ {
				if pi.Releases[j] != qi.Releases[j] {
					return false
				}
			}
		}
		return true
	}

	for in, expected := range compactTests {
		out := compactEvents(*in)
		if !equal(out, expected) {
			t.Log("out     ", out)
			t.Log("expected", expected)
			t.Fail()
		}
	}
}

func TestUncompactEvents(t *testing.T) {
	for expected, in := range compactTests {
		out := uncompactEvents(in)
		if len(out) != len(*expected) {
			t.Log("out     ", out)
			t.Log("expected", *expected)
			t.Fail()
			continue
		}
		for i, e := range *expected {
			if out[i] != e {
				t.Log("out     ", out)
				t.Log("expected", *expected)
				t.Fail()
				break
			}
		}
	}
}

func TestUncompactOrdersByTime(t *testing.T) {
	compact := []EventsCompact{
		{Lane: 0, Presses: []int64{300, 100}},
		{Lane: 1, Presses: []int64{100}, Releases: []int64{100, 200}},
	}
	out := uncompactEvents(compact)
	want := []Event{
		{Lane: 0, Time: 100},
		{Lane: 1, Time: 100},
		{Lane: 1, Release: true, Time: 100},
		{Lane: 1, Release: true, Time: 200},
		{Lane: 0, Time: 300},
	}
	if len(out) != len(want) {
		t.Fatalf("got %v, want %v", out, want)
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestSumStable(t *testing.T) {
	a := Sum([]byte("chart"))
	b := Sum([]byte("chart"))
	c := Sum([]byte("charu"))
	if a != b {
		t.Error("same bytes hash differently")
	}
	if a == c {
		t.Error("different bytes hash the same")
	}
}
