package play

import (
	"time"

	"git.lost.host/meutraa/tandem/internal/game"
	"git.lost.host/meutraa/tandem/internal/judge"
	"git.lost.host/meutraa/tandem/internal/session"
)

// Autoplay produces the input of a perfect player.
type Autoplay struct {
	released map[int]bool // Hold notes already let go
	down     bool
}

func NewAutoplay() *Autoplay {
	return &Autoplay{released: map[int]bool{}}
}

// Events returns the input for the frame that will be judged at time at.
func (a *Autoplay) Events(s *session.State, at time.Duration) []Event {
	var events []Event

	begin := s.ActiveLaneRange().Begin
	lanes := s.ActiveLaneNotes()
	// Releases go first so a new hold on the same lane is not let go.
	for i := range lanes {
		n := &lanes[i]
		if n.Judged || n.Head == game.None || at < n.End() {
			continue
		}
		switch n.Kind {
		case game.Hold:
			if !a.released[begin+i] {
				a.released[begin+i] = true
				events = append(events, Event{Kind: KeyUp, Lane: n.Lane})
			}
		case game.Drag:
			events = append(events, Event{Kind: KeyDown, Lane: n.DragTo})
		}
	}
	for i := range lanes {
		n := &lanes[i]
		if !n.Judged && n.Head == game.None && n.Time <= at {
			events = append(events, Event{Kind: KeyDown, Lane: n.Lane})
		}
	}

	following := false
	paths := s.ActivePathNotes()
	for i := range paths {
		n := &paths[i]
		if n.Judged {
			continue
		}
		if n.Head == game.None {
			if n.Time <= at {
				events = append(events, Event{Kind: MouseDown, X: n.Pos.X, Y: n.Pos.Y})
				a.down = true
				if n.Kind == game.Slider {
					following = true
				}
			}
			continue
		}
		// A slider being followed.
		t := 1.0
		if n.Duration > 0 {
			t = float64(at-n.Time) / float64(n.Duration)
		}
		p := judge.SliderPosition(n, t)
		events = append(events, Event{Kind: MouseMove, X: p.X, Y: p.Y})
		following = true
	}
	if a.down && !following {
		a.down = false
		events = append(events, Event{Kind: MouseUp, X: 0.5, Y: 0.5})
	}
	return events
}
