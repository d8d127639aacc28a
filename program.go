package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"math"

	"git.lost.host/meutraa/vsrg/internal/chart"
	"git.lost.host/meutraa/vsrg/internal/config"
	"git.lost.host/meutraa/vsrg/internal/judge"
	"git.lost.host/meutraa/vsrg/internal/replay"
	"git.lost.host/meutraa/vsrg/internal/scroll"
	"git.lost.host/meutraa/vsrg/internal/timing"
)

type Program struct {
	Store *replay.Store

	chart  *chart.Chart
	sum    string
	offset timing.Delta
	screen scroll.Screen
}

func (g *Program) Init() error {
	data, err := ioutil.ReadFile(*config.Chart)
	if nil != err {
		return fmt.Errorf("unable to read chart file: %w", err)
	}
	var raw chart.Raw
	if err := json.Unmarshal(data, &raw); nil != err {
		return fmt.Errorf("unable to parse chart file: %w", err)
	}
	g.chart, err = raw.Build()
	if nil != err {
		return fmt.Errorf("invalid chart: %w", err)
	}
	g.sum = replay.Sum(data)
	g.offset = timing.Delta((*config.Offset).Microseconds())
	g.screen = scroll.Screen{
		Speed:       *config.ScrollSpeed,
		HitPosition: scroll.ScreenPosition(*config.HitPosition),
		Upscroll:    *config.Upscroll,
	}

	g.Store = &replay.Store{}
	if err := g.Store.Init(*config.Database); nil != err {
		return err
	}
	return nil
}

func (g *Program) Deinit() {
	if nil != g.Store {
		g.Store.Deinit()
	}
}

func (g *Program) Run() error {
	if *config.Import != "" {
		if err := g.importReplay(*config.Import); nil != err {
			return err
		}
	}

	if *config.Positions >= 0 {
		g.printPositions(timing.ChartFromMillis(*config.Positions))
	}

	histories, err := g.Store.Load(g.sum)
	if nil != err {
		return err
	}
	if len(histories) == 0 {
		log.Println("no replays stored for this chart")
		return nil
	}
	for i := range histories {
		h := &histories[i]
		if *config.Replay >= 0 && h.ID != *config.Replay {
			continue
		}
		if err := g.grade(h); nil != err {
			return err
		}
	}
	return nil
}

func (g *Program) importReplay(path string) error {
	data, err := ioutil.ReadFile(path)
	if nil != err {
		return fmt.Errorf("unable to read replay file: %w", err)
	}
	var events []replay.Event
	if err := json.Unmarshal(data, &events); nil != err {
		return fmt.Errorf("unable to parse replay file: %w", err)
	}
	if err := g.Store.Save(g.sum, events); nil != err {
		return err
	}
	log.Printf("imported %v events\n", len(events))
	return nil
}

// grade replays the stored event stream through a fresh judgement
// state and prints the result.
func (g *Program) grade(h *replay.History) error {
	state, err := judge.New(g.chart, g.offset, judge.DefaultWindows(), judge.DefaultReleaseWindows())
	if nil != err {
		return err
	}

	errs := []float64{}
	for _, e := range h.Events {
		state.AdvanceMissDetection(e.Time)
		var j judge.Judgement
		var ok bool
		if e.Release {
			j, ok, err = state.ProcessRelease(e.Lane, e.Time)
		} else {
			j, ok, err = state.ProcessPress(e.Lane, e.Time)
		}
		if nil != err {
			return fmt.Errorf("replay %v: %w", h.ID, err)
		}
		if ok && j.Grade != judge.Miss {
			errs = append(errs, float64(j.Error.Duration().Microseconds())/1000.0)
		}
	}
	state.AdvanceMissDetection(g.endTime())

	mean := 0.0
	stdev := 0.0
	if len(errs) > 0 {
		sum := 0.0
		for _, e := range errs {
			sum += e
		}
		mean = sum / float64(len(errs))
		for _, e := range errs {
			xi := e - mean
			stdev += xi * xi
		}
		if len(errs) > 1 {
			stdev /= float64(len(errs) - 1)
		}
		stdev = math.Sqrt(stdev)
	}

	fmt.Printf("replay %v\n", h.ID)
	counts := state.Counts()
	for grade, count := range counts {
		fmt.Printf("%14v:  %6v\n", judge.Grade(grade), count)
	}
	fmt.Printf("%14v:  %6.2f ms\n", "Mean", mean)
	fmt.Printf("%14v:  %6.2f ms\n", "Stdev", stdev)
	return nil
}

// endTime is a game time safely past the last note's release window.
func (g *Program) endTime() timing.GameTime {
	var last timing.ChartTime
	for lane := 0; lane < g.chart.LaneCount(); lane++ {
		for _, n := range g.chart.Notes(lane) {
			if n.End > last {
				last = n.End
			}
		}
	}
	return g.chart.Converter(g.offset).ToGame(last.Add(timing.DeltaFromMillis(1000)))
}

// printPositions renders a text snapshot of the playfield around one
// instant of chart time.
func (g *Program) printPositions(at timing.ChartTime) {
	current := g.chart.PositionAt(at)
	window := timing.DeltaFromMillis(2000)

	fmt.Printf("chart time %v ms, position %v\n", int64(at)/1000, current)
	for lane := 0; lane < g.chart.LaneCount(); lane++ {
		cursor := g.chart.NewCursor()
		for i, n := range g.chart.Notes(lane) {
			if n.Start < at.Add(-window) || n.Start > at.Add(window) {
				continue
			}
			sp := g.screen.Project(cursor.PositionAt(n.Start), current)
			fmt.Printf("  lane %v note %v  start %6v ms  screen %v\n",
				lane, i, int64(n.Start)/1000, sp)
		}
	}
}
