// Package judge grades hits against notes.
package judge

import (
	"math"
	"time"

	"git.lost.host/meutraa/tandem/internal/game"
)

const (
	// MaxOffset bounds the player's judge offset tweak.
	MaxOffset = 5 * time.Millisecond

	// ClickTolerance is the radius around a path note that accepts a click.
	ClickTolerance = 0.06
	// FollowTolerance is the radius around a slider's expected position
	// that counts as following it.
	FollowTolerance = 0.08
	// SliderGrace extends slider sampling past its end.
	SliderGrace = 50 * time.Millisecond
)

// Windows are the absolute time differences for each tier, in increasing
// order.
type Windows struct {
	Perfect, Great, Good, Bad, Miss time.Duration
}

func DefaultWindows() Windows {
	return Windows{
		Perfect: 25 * time.Millisecond,
		Great:   50 * time.Millisecond,
		Good:    80 * time.Millisecond,
		Bad:     120 * time.Millisecond,
		Miss:    150 * time.Millisecond,
	}
}

// Shift moves every window by the same amount.
func (w Windows) Shift(d time.Duration) Windows {
	return Windows{
		Perfect: w.Perfect + d,
		Great:   w.Great + d,
		Good:    w.Good + d,
		Bad:     w.Bad + d,
		Miss:    w.Miss + d,
	}
}

type Option func(*Judge)

func WithWindows(w Windows) Option {
	return func(j *Judge) {
		j.base = w
	}
}

func WithOffset(ms int) Option {
	return func(j *Judge) {
		j.offsetMs = ms
	}
}

// Judge classifies hits. It keeps no state besides its windows.
type Judge struct {
	base     Windows
	offsetMs int
	windows  Windows
}

func New(opts ...Option) *Judge {
	j := &Judge{base: DefaultWindows()}
	for _, opt := range opts {
		opt(j)
	}
	j.Initialize(j.offsetMs)
	return j
}

// Initialize applies the judge offset, clamped to ±MaxOffset.
func (j *Judge) Initialize(offsetMs int) {
	offset := time.Duration(offsetMs) * time.Millisecond
	if offset > MaxOffset {
		offset = MaxOffset
	} else if offset < -MaxOffset {
		offset = -MaxOffset
	}
	j.offsetMs = int(offset / time.Millisecond)
	j.windows = j.base.Shift(offset)
}

func (j *Judge) Windows() Windows {
	return j.windows
}

func (j *Judge) Offset() int {
	return j.offsetMs
}

func abs(x time.Duration) time.Duration {
	if x < 0 {
		return -x
	}
	return x
}

// ResultByTimeDiff returns the first tier whose window contains |d|.
func (j *Judge) ResultByTimeDiff(d time.Duration) game.Result {
	d = abs(d)
	switch {
	case d <= j.windows.Perfect:
		return game.Perfect
	case d <= j.windows.Great:
		return game.Great
	case d <= j.windows.Good:
		return game.Good
	case d <= j.windows.Bad:
		return game.Bad
	}
	return game.Miss
}

// tooEarly reports a hit more than the miss window before target.
func (j *Judge) tooEarly(target, hit time.Duration) bool {
	return target-hit > j.windows.Miss
}

// expired reports a target that receded more than the miss window behind now.
func (j *Judge) expired(target, now time.Duration) bool {
	return now-target > j.windows.Miss
}

// HitError is the signed error in milliseconds, positive when early.
func HitError(noteTime, hitTime time.Duration) float64 {
	return float64(noteTime-hitTime) / float64(time.Millisecond)
}

func distance(a, b game.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
