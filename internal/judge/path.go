package judge

import (
	"math"
	"time"

	"git.lost.host/meutraa/tandem/internal/game"
)

// JudgeMouseNote grades a click. A click outside the note's radius returns
// None so the note can still be hit; a Miss by time is final regardless.
func (j *Judge) JudgeMouseNote(n *game.PathNote, hit time.Duration, x, y float64) game.Result {
	if n == nil || n.Judged || n.Head != game.None {
		return game.None
	}
	if j.tooEarly(n.Time, hit) {
		return game.None
	}

	r := j.ResultByTimeDiff(hit - n.Time)
	if r == game.Miss {
		n.HitTime = hit
		n.Finalize(game.Miss)
		return game.Miss
	}
	if distance(n.Pos, game.Point{X: x, Y: y}) > ClickTolerance {
		return game.None
	}

	n.HitTime = hit
	if n.Kind == game.Circle {
		n.Finalize(r)
		return r
	}
	n.Head = r
	return r
}

// CheckMouseMisses is CheckMisses for path notes.
func (j *Judge) CheckMouseMisses(notes []game.PathNote, now time.Duration) int {
	count := 0
	for i := range notes {
		n := &notes[i]
		if n.Judged || n.Head != game.None {
			continue
		}
		if j.expired(n.Time, now) {
			n.Finalize(game.Miss)
			count++
		}
	}
	return count
}

// SliderPosition interpolates the slider at progress t in [0,1] over
// [Pos, Path...] split into len(Path) equal segments.
func SliderPosition(n *game.PathNote, t float64) game.Point {
	if len(n.Path) == 0 {
		return n.Pos
	}
	t = clamp(t, 0, 1)

	segments := len(n.Path)
	scaled := t * float64(segments)
	i := int(math.Floor(scaled))
	if i >= segments {
		i = segments - 1
	}
	local := scaled - float64(i)

	from := n.Pos
	if i > 0 {
		from = n.Path[i-1]
	}
	to := n.Path[i]
	return game.Point{
		X: from.X + (to.X-from.X)*local,
		Y: from.Y + (to.Y-from.Y)*local,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func progress(n *game.PathNote, now time.Duration) float64 {
	if n.Duration <= 0 {
		return 1
	}
	return clamp(float64(now-n.Time)/float64(n.Duration), 0, 1)
}

// UpdateSliderTracking samples the cursor against the slider path. It never
// finalizes the note.
func (j *Judge) UpdateSliderTracking(s *game.SliderState, n *game.PathNote, now time.Duration, x, y float64, down bool) {
	if s == nil || n == nil || !s.HeadJudged || n.Judged {
		return
	}
	if now < n.Time || now > n.Time+n.Duration+SliderGrace {
		return
	}

	expected := SliderPosition(n, progress(n, now))
	s.Samples++
	if down && distance(expected, game.Point{X: x, Y: y}) <= FollowTolerance {
		s.Hits++
	}
}

// sliderTiers maps the minimum follow ratio to a tier.
var sliderTiers = [...]struct {
	ratio  float64
	result game.Result
}{
	{0.95, game.Perfect},
	{0.80, game.Great},
	{0.60, game.Good},
	{0.30, game.Bad},
}

// FinalizeSlider closes a slider once its sampling window has passed. The
// result is the worse of the head and the follow ratio tier.
func (j *Judge) FinalizeSlider(s *game.SliderState, n *game.PathNote, now time.Duration) game.Result {
	if s == nil || n == nil || !s.HeadJudged || n.Judged {
		return game.None
	}
	if now <= n.Time+n.Duration+SliderGrace {
		return game.None
	}

	follow := game.Miss
	if s.Samples == 0 {
		// No frame landed inside the slider, so only the head counts.
		follow = s.HeadResult
	} else {
		ratio := s.Ratio()
		for _, tier := range sliderTiers {
			if ratio >= tier.ratio {
				follow = tier.result
				break
			}
		}
	}

	r := game.Worse(s.HeadResult, follow)
	n.Finalize(r)
	return r
}
