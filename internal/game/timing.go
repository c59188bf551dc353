package game

import "time"

type TimingPoint struct {
	Time  time.Duration
	BPM   float64
	Meter int // Beats per measure
}

type SVPoint struct {
	Time   time.Duration
	Speed  float64
	Easing string
}
