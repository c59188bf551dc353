package game

import "time"

type LaneKind uint8

const (
	Tap LaneKind = iota
	Hold
	Drag
)

func (k LaneKind) String() string {
	switch k {
	case Tap:
		return "tap"
	case Hold:
		return "hold"
	case Drag:
		return "drag"
	}
	return "unknown"
}

// LaneNote is a keyboard note falling down one of the four lanes.
type LaneNote struct {
	Time     time.Duration // The time the note should be hit
	Lane     int           // The chart column, 0-3
	Kind     LaneKind
	Duration time.Duration // Hold/Drag length, 0 for taps
	DragTo   int           // Destination lane, Drag only

	// This is state
	Judged  bool
	Result  Result
	Head    Result        // Head judgement of a Hold/Drag still being evaluated
	HitTime time.Duration // When the head was hit
}

// End is the time the note stops being relevant.
func (n *LaneNote) End() time.Duration {
	if n.Duration > 0 {
		return n.Time + n.Duration
	}
	return n.Time
}

func (n *LaneNote) Reset() {
	n.Judged = false
	n.Result = None
	n.Head = None
	n.HitTime = 0
}

// Finalize marks the note judged. A judged note is never judged again.
func (n *LaneNote) Finalize(r Result) {
	n.Judged = true
	n.Result = r
}

type PathKind uint8

const (
	Circle PathKind = iota
	Slider
)

func (k PathKind) String() string {
	switch k {
	case Circle:
		return "circle"
	case Slider:
		return "slider"
	}
	return "unknown"
}

// Point is a normalized playfield position, both axes in [0,1].
type Point struct {
	X, Y float64
}

// PathNote is a mouse note placed on the playfield.
type PathNote struct {
	Time     time.Duration
	Pos      Point
	Kind     PathKind
	Duration time.Duration // Slider length
	Path     []Point       // Slider waypoints after Pos

	Judged  bool
	Result  Result
	Head    Result
	HitTime time.Duration
}

func (n *PathNote) End() time.Duration {
	if n.Duration > 0 {
		return n.Time + n.Duration
	}
	return n.Time
}

func (n *PathNote) Reset() {
	n.Judged = false
	n.Result = None
	n.Head = None
	n.HitTime = 0
}

func (n *PathNote) Finalize(r Result) {
	n.Judged = true
	n.Result = r
}

// LaneSpan and PathSpan describe notes to Advance.
func LaneSpan(n *LaneNote) (time.Duration, time.Duration, bool) {
	return n.Time, n.End(), n.Judged
}

func PathSpan(n *PathNote) (time.Duration, time.Duration, bool) {
	return n.Time, n.End(), n.Judged
}
