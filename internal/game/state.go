package game

import "time"

type Phase uint8

const (
	Idle Phase = iota
	Countdown
	Playing
	Paused
	Finished
)

var phaseNames = [...]string{"idle", "countdown", "playing", "paused", "finished"}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "unknown"
}

// NotReleased is the ReleaseTime of a hold that is still held.
const NotReleased time.Duration = -1

// HoldState follows one Hold note from its head judgement until it is
// finalized.
type HoldState struct {
	Index       int
	Held        bool
	HeadJudged  bool
	HeadResult  Result
	ReleaseTime time.Duration
	Finalized   bool
}

func NewHoldState(index int, head Result) *HoldState {
	return &HoldState{
		Index:       index,
		Held:        true,
		HeadJudged:  true,
		HeadResult:  head,
		ReleaseTime: NotReleased,
	}
}

// Release records the first time the key was let go.
func (s *HoldState) Release(t time.Duration) {
	if !s.Held {
		return
	}
	s.Held = false
	s.ReleaseTime = t
}

// SliderState accumulates path samples for one Slider note.
type SliderState struct {
	Index      int
	HeadJudged bool
	HeadResult Result
	Samples    int
	Hits       int
}

func NewSliderState(index int, head Result) *SliderState {
	return &SliderState{Index: index, HeadJudged: true, HeadResult: head}
}

// Ratio is the share of samples taken on the path.
func (s *SliderState) Ratio() float64 {
	if s.Samples == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Samples)
}
