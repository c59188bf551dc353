// Package play drives a session frame by frame: it routes player input to
// the judge and feeds every final judgement to the score calculator.
package play

import (
	"log/slog"
	"sort"
	"time"

	"git.lost.host/meutraa/tandem/internal/game"
	"git.lost.host/meutraa/tandem/internal/judge"
	"git.lost.host/meutraa/tandem/internal/score"
	"git.lost.host/meutraa/tandem/internal/session"
)

type EventKind uint8

const (
	KeyDown EventKind = iota
	KeyUp
	MouseDown
	MouseUp
	MouseMove
)

// Event is one input since the previous frame. Lane is used by key events,
// X and Y by mouse events.
type Event struct {
	Kind EventKind
	Lane int
	X, Y float64
}

// Judgement is a final tier handed to the calculator, kept for the
// renderer's feedback.
type Judgement struct {
	Result   game.Result
	HitError float64 // ms, positive is early
	Lane     int     // -1 for path notes
	Time     time.Duration
}

type Driver struct {
	state  *session.State
	judge  *judge.Judge
	calc   *score.Calculator
	logger *slog.Logger

	holds   map[int]*game.HoldState   // By lane note index
	sliders map[int]*game.SliderState // By path note index

	cursor    game.Point
	mouseDown bool

	last     Judgement
	finished bool
}

func New(state *session.State, j *judge.Judge, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		state:   state,
		judge:   j,
		calc:    score.NewCalculator(),
		logger:  logger,
		holds:   map[int]*game.HoldState{},
		sliders: map[int]*game.SliderState{},
	}
}

// Start starts the session and prepares the judge and calculator for it.
func (d *Driver) Start(info *game.Info, difficulty int) bool {
	if !d.state.Start(info, difficulty) {
		return false
	}
	d.judge.Initialize(d.state.Config().JudgeOffset)
	d.calc.Initialize(d.state.NoteCount())
	clear(d.holds)
	clear(d.sliders)
	d.cursor = game.Point{}
	d.mouseDown = false
	d.last = Judgement{Lane: -1}
	d.finished = false
	return true
}

// Frame advances the session by dt and applies the events at the new time.
func (d *Driver) Frame(dt time.Duration, events []Event) {
	d.state.Update(dt)

	if d.state.IsFinished() {
		d.finish()
		return
	}
	if !d.state.IsPlaying() {
		return
	}

	now := d.state.Now()
	for _, e := range events {
		d.handle(e, now)
	}
	d.tick(now)
}

func (d *Driver) handle(e Event, now time.Duration) {
	switch e.Kind {
	case KeyDown:
		d.keyDown(e.Lane, now)
	case KeyUp:
		for i, h := range d.holds {
			if d.state.LaneNotes()[i].Lane == e.Lane {
				h.Release(now)
			}
		}
	case MouseMove:
		d.cursor = game.Point{X: e.X, Y: e.Y}
	case MouseDown:
		d.cursor = game.Point{X: e.X, Y: e.Y}
		d.mouseDown = true
		d.click(now)
	case MouseUp:
		d.cursor = game.Point{X: e.X, Y: e.Y}
		d.mouseDown = false
	}
}

// keyDown completes a drag arriving on lane, or else hits the earliest
// open note of the lane.
func (d *Driver) keyDown(lane int, now time.Duration) {
	active := d.state.ActiveLaneNotes()
	begin := d.state.ActiveLaneRange().Begin

	for i := range active {
		n := &active[i]
		if n.Kind != game.Drag || n.Judged || n.Head == game.None || n.DragTo != lane {
			continue
		}
		if r := d.judge.JudgeDragEnd(n, now, lane); r != game.None {
			d.record(r, judge.HitError(n.End(), now), lane, now)
			return
		}
	}

	for i := range active {
		n := &active[i]
		if n.Lane != lane || n.Judged || n.Head != game.None {
			continue
		}
		r := d.judge.JudgeKeyboardNote(n, now)
		switch {
		case r == game.None:
			// Too early, and every later note on the lane is even earlier.
		case n.Judged:
			d.record(r, judge.HitError(n.Time, now), lane, now)
		case n.Kind == game.Hold:
			d.holds[begin+i] = game.NewHoldState(begin+i, r)
		}
		return
	}
}

// click hits the earliest path note under the cursor.
func (d *Driver) click(now time.Duration) {
	active := d.state.ActivePathNotes()
	begin := d.state.ActivePathRange().Begin

	for i := range active {
		n := &active[i]
		if n.Judged || n.Head != game.None {
			continue
		}
		r := d.judge.JudgeMouseNote(n, now, d.cursor.X, d.cursor.Y)
		if r == game.None {
			continue
		}
		if n.Judged {
			d.record(r, judge.HitError(n.Time, now), -1, now)
		} else {
			d.sliders[begin+i] = game.NewSliderState(begin+i, r)
		}
		return
	}
}

func (d *Driver) tick(now time.Duration) {
	// Holds and sliders are visited by note index so the calculator sees
	// the same order for the same input.
	lanes := d.state.LaneNotes()
	for _, i := range sortedKeys(d.holds) {
		h, n := d.holds[i], &lanes[i]
		if r := d.judge.UpdateHoldTick(h, n, now); r != game.None {
			d.record(r, judge.HitError(n.Time, n.HitTime), n.Lane, now)
			delete(d.holds, i)
		}
	}

	paths := d.state.PathNotes()
	for _, i := range sortedKeys(d.sliders) {
		s, n := d.sliders[i], &paths[i]
		d.judge.UpdateSliderTracking(s, n, now, d.cursor.X, d.cursor.Y, d.mouseDown)
		if r := d.judge.FinalizeSlider(s, n, now); r != game.None {
			d.record(r, judge.HitError(n.Time, n.HitTime), -1, now)
			delete(d.sliders, i)
		}
	}

	active := d.state.ActiveLaneNotes()
	misses := d.judge.CheckDragExpiry(active, now)
	misses += d.judge.CheckMisses(active, now)
	misses += d.judge.CheckMouseMisses(d.state.ActivePathNotes(), now)
	for ; misses > 0; misses-- {
		d.record(game.Miss, 0, -1, now)
	}
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func (d *Driver) record(r game.Result, hitError float64, lane int, now time.Duration) {
	d.calc.OnJudge(r, hitError)
	d.last = Judgement{Result: r, HitError: hitError, Lane: lane, Time: now}
}

func (d *Driver) finish() {
	if d.finished {
		return
	}
	d.finished = true
	for n := d.state.TakeForcedMisses(); n > 0; n-- {
		d.calc.OnJudge(game.Miss, 0)
	}
	clear(d.holds)
	clear(d.sliders)
	d.logger.Info("play: finished",
		slog.Int64("score", d.calc.Score()),
		slog.Float64("accuracy", d.calc.Accuracy()),
		slog.String("grade", string(d.calc.Grade())),
		slog.Int("max_combo", d.calc.MaxCombo()))
}

func (d *Driver) Pause() {
	d.state.Pause()
}

func (d *Driver) Resume() {
	d.state.Resume()
}

// Reset abandons the session.
func (d *Driver) Reset() {
	d.state.Reset()
	clear(d.holds)
	clear(d.sliders)
	d.finished = false
}

func (d *Driver) Session() *session.State {
	return d.state
}

func (d *Driver) Calculator() *score.Calculator {
	return d.calc
}

func (d *Driver) Judge() *judge.Judge {
	return d.judge
}

// Last is the most recent final judgement.
func (d *Driver) Last() Judgement {
	return d.last
}

// Held reports whether a hold on lane is being held.
func (d *Driver) Held(lane int) bool {
	lanes := d.state.LaneNotes()
	for i, h := range d.holds {
		if lanes[i].Lane == lane && h.Held {
			return true
		}
	}
	return false
}

func (d *Driver) Cursor() game.Point {
	return d.cursor
}

// Result is the game result once the session has finished.
func (d *Driver) Result() (score.GameResult, bool) {
	if !d.finished {
		return score.GameResult{}, false
	}
	return d.calc.Result(d.state.Info(), d.state.Difficulty()), true
}
