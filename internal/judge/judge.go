package judge

import (
	"errors"
	"fmt"

	"git.lost.host/meutraa/vsrg/internal/chart"
	"git.lost.host/meutraa/vsrg/internal/timing"
)

// NoteState tracks a single note through judgement. Transitions only
// move forward: Unhit to Hit or Missed for taps, Unhit to Held to
// Released or ReleaseMissed for long notes. Held is the only
// non-terminal state a note can rest in.
type NoteState uint8

const (
	Unhit NoteState = iota
	Hit
	Missed
	Held
	Released
	ReleaseMissed
)

var stateNames = []string{"Unhit", "Hit", "Missed", "Held", "Released", "ReleaseMissed"}

func (s NoteState) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("NoteState(%d)", uint8(s))
}

func (s NoteState) terminal() bool {
	return s == Hit || s == Missed || s == Released || s == ReleaseMissed
}

// ObjectState is the judged record of one note. Press fields are set
// once the note leaves Unhit through a press or a miss; Release
// fields are set when a held note resolves.
type ObjectState struct {
	State        NoteState
	PressGrade   Grade
	PressError   timing.Delta
	ReleaseGrade Grade
	ReleaseError timing.Delta
}

// Judgement is one emitted grading event.
type Judgement struct {
	Lane    int
	Note    int
	Grade   Grade
	Error   timing.Delta
	Time    timing.GameTime
	Release bool
}

var ErrLane = errors.New("judge: lane out of range")

const recentCap = 32

type laneState struct {
	states []ObjectState
	// firstActive is the index of the earliest note that can still
	// change state. Everything before it is terminal.
	firstActive int
}

func (l *laneState) advance() {
	for l.firstActive < len(l.states) && l.states[l.firstActive].State.terminal() {
		l.firstActive++
	}
}

// State grades one chart. It is deterministic: the same sequence of
// calls with the same arguments yields the same judgements, and no
// call mutates the chart. Not safe for concurrent use; Snapshot gives
// an independent copy for readers on other goroutines.
type State struct {
	chart    *chart.Chart
	conv     timing.Converter
	press    []Window
	release  []Window
	maxPress timing.Delta
	maxRel   timing.Delta
	lanes    []laneState

	recent     [recentCap]Judgement
	recentLen  int
	recentNext int
}

// New builds judgement state over c with the given window tables.
// globalOffset combines with the chart's local offset for all game
// time conversion.
func New(c *chart.Chart, globalOffset timing.Delta, press, release []Window) (*State, error) {
	if !validWindows(press) || !validWindows(release) {
		return nil, ErrWindows
	}
	s := &State{
		chart:    c,
		conv:     c.Converter(globalOffset),
		press:    press,
		release:  release,
		maxPress: widest(press),
		maxRel:   widest(release),
		lanes:    make([]laneState, c.LaneCount()),
	}
	for i := range s.lanes {
		s.lanes[i].states = make([]ObjectState, len(c.Notes(i)))
	}
	return s, nil
}

// Note returns the judged record for one note.
func (s *State) Note(lane, i int) (ObjectState, error) {
	if lane < 0 || lane >= len(s.lanes) {
		return ObjectState{}, ErrLane
	}
	if i < 0 || i >= len(s.lanes[lane].states) {
		return ObjectState{}, fmt.Errorf("judge: note %d out of range in lane %d", i, lane)
	}
	return s.lanes[lane].states[i], nil
}

// ProcessPress grades a key press in lane at game time at. The target
// is the earliest Unhit note whose start lies within the widest press
// window of the converted chart time, edges inclusive. Taps move to
// Hit, long notes to Held. The second result is false when no note
// was in range; presses with nothing to hit are not an error.
func (s *State) ProcessPress(lane int, at timing.GameTime) (Judgement, bool, error) {
	if lane < 0 || lane >= len(s.lanes) {
		return Judgement{}, false, fmt.Errorf("%w: %d", ErrLane, lane)
	}
	ls := &s.lanes[lane]
	notes := s.chart.Notes(lane)
	t := s.conv.ToChart(at)
	for i := ls.firstActive; i < len(notes); i++ {
		st := &ls.states[i]
		if st.State != Unhit {
			continue
		}
		err := t.Sub(notes[i].Start)
		if err < -s.maxPress {
			// Everything later is further away still.
			break
		}
		if err > s.maxPress {
			// Stale, waits for miss detection.
			continue
		}
		grade, _ := classify(s.press, err.Abs())
		st.PressGrade = grade
		st.PressError = err
		if notes[i].Long {
			st.State = Held
		} else {
			st.State = Hit
		}
		ls.advance()
		j := Judgement{Lane: lane, Note: i, Grade: grade, Error: err, Time: at}
		s.push(j)
		return j, true, nil
	}
	return Judgement{}, false, nil
}

// ProcessRelease resolves the held note in lane, if any. Releases
// inside the release window grade normally and move the note to
// Released; an early release moves it to ReleaseMissed with a Miss
// judgement. A release with nothing held is a no-op.
func (s *State) ProcessRelease(lane int, at timing.GameTime) (Judgement, bool, error) {
	if lane < 0 || lane >= len(s.lanes) {
		return Judgement{}, false, fmt.Errorf("%w: %d", ErrLane, lane)
	}
	ls := &s.lanes[lane]
	notes := s.chart.Notes(lane)
	t := s.conv.ToChart(at)
	for i := ls.firstActive; i < len(notes); i++ {
		st := &ls.states[i]
		switch st.State {
		case Held:
			err := t.Sub(notes[i].End)
			grade, ok := classify(s.release, err.Abs())
			if !ok {
				grade = Miss
			}
			if ok {
				st.State = Released
			} else {
				st.State = ReleaseMissed
			}
			st.ReleaseGrade = grade
			st.ReleaseError = err
			ls.advance()
			j := Judgement{Lane: lane, Note: i, Grade: grade, Error: err, Time: at, Release: true}
			s.push(j)
			return j, true, nil
		case Unhit:
			if t.Sub(notes[i].Start) < -s.maxPress {
				return Judgement{}, false, nil
			}
		}
	}
	return Judgement{}, false, nil
}

// AdvanceMissDetection expires overdue notes as of game time at.
// Unhit notes whose latest acceptable press time is strictly in the
// past move to Missed; held notes whose release window has closed
// move to ReleaseMissed. One Miss judgement is emitted per expired
// note. Calling again with the same time is a no-op.
func (s *State) AdvanceMissDetection(at timing.GameTime) []Judgement {
	t := s.conv.ToChart(at)
	var out []Judgement
	for lane := range s.lanes {
		ls := &s.lanes[lane]
		notes := s.chart.Notes(lane)
	scan:
		for i := ls.firstActive; i < len(notes); i++ {
			st := &ls.states[i]
			switch st.State {
			case Unhit:
				if t.Sub(notes[i].Start) <= s.maxPress {
					// Still hittable, and so is everything later.
					break scan
				}
				st.State = Missed
				st.PressGrade = Miss
				st.PressError = t.Sub(notes[i].Start)
				j := Judgement{Lane: lane, Note: i, Grade: Miss, Error: st.PressError, Time: at}
				s.push(j)
				out = append(out, j)
			case Held:
				if t.Sub(notes[i].End) <= s.maxRel {
					break scan
				}
				st.State = ReleaseMissed
				st.ReleaseGrade = Miss
				st.ReleaseError = t.Sub(notes[i].End)
				j := Judgement{Lane: lane, Note: i, Grade: Miss, Error: st.ReleaseError, Time: at, Release: true}
				s.push(j)
				out = append(out, j)
			}
		}
		ls.advance()
	}
	return out
}

// Done reports whether every note has reached a terminal state.
func (s *State) Done() bool {
	for i := range s.lanes {
		if s.lanes[i].firstActive < len(s.lanes[i].states) {
			return false
		}
	}
	return true
}

// Counts tallies emitted grades per note event, indexed by Grade.
// Presses and releases count separately; unresolved notes do not
// count at all.
func (s *State) Counts() [GradeCount]int {
	var out [GradeCount]int
	for i := range s.lanes {
		for _, st := range s.lanes[i].states {
			switch st.State {
			case Hit, Missed:
				out[st.PressGrade]++
			case Held:
				out[st.PressGrade]++
			case Released, ReleaseMissed:
				out[st.PressGrade]++
				out[st.ReleaseGrade]++
			}
		}
	}
	return out
}

func (s *State) push(j Judgement) {
	s.recent[s.recentNext] = j
	s.recentNext = (s.recentNext + 1) % recentCap
	if s.recentLen < recentCap {
		s.recentLen++
	}
}

// Recent returns up to the last 32 judgements, oldest first.
func (s *State) Recent() []Judgement {
	out := make([]Judgement, 0, s.recentLen)
	start := s.recentNext - s.recentLen
	if start < 0 {
		start += recentCap
	}
	for i := 0; i < s.recentLen; i++ {
		out = append(out, s.recent[(start+i)%recentCap])
	}
	return out
}

// Snapshot copies the state so a reader can inspect it while grading
// continues on the original.
func (s *State) Snapshot() *State {
	ns := *s
	ns.lanes = make([]laneState, len(s.lanes))
	for i := range s.lanes {
		ns.lanes[i].firstActive = s.lanes[i].firstActive
		ns.lanes[i].states = append([]ObjectState(nil), s.lanes[i].states...)
	}
	return &ns
}
