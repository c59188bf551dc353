package chart

import (
	"errors"
	"fmt"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"git.lost.host/meutraa/tandem/internal/game"
)

var ErrUnsorted = errors.New("chart: notes are not sorted by time")

// Validate checks the invariants the session relies on: every array sorted
// by time.
func Validate(d *game.Data) error {
	if d == nil {
		return errors.New("chart: no data")
	}
	checks := []struct {
		name   string
		sorted bool
	}{
		{"timing points", sort.SliceIsSorted(d.TimingPoints, func(i, j int) bool { return d.TimingPoints[i].Time < d.TimingPoints[j].Time })},
		{"sv points", sort.SliceIsSorted(d.SVPoints, func(i, j int) bool { return d.SVPoints[i].Time < d.SVPoints[j].Time })},
		{"lane notes", sort.SliceIsSorted(d.LaneNotes, func(i, j int) bool { return d.LaneNotes[i].Time < d.LaneNotes[j].Time })},
		{"path notes", sort.SliceIsSorted(d.PathNotes, func(i, j int) bool { return d.PathNotes[i].Time < d.PathNotes[j].Time })},
	}
	for _, c := range checks {
		if !c.sorted {
			return fmt.Errorf("%w: %s", ErrUnsorted, c.name)
		}
	}
	return nil
}

func (f *File) Validate() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.Offset, validation.Min(-10000), validation.Max(10000)),
		validation.Field(&f.Difficulties, validation.Required),
	)
}

func (d DifficultyFile) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Name, validation.Required),
		validation.Field(&d.Level, validation.Min(0)),
		validation.Field(&d.Timing),
		validation.Field(&d.SV),
		validation.Field(&d.Lanes),
		validation.Field(&d.Paths),
	)
}

func (t TimingPointFile) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.BPM, validation.Required, validation.Min(0.0)),
		validation.Field(&t.Meter, validation.Min(0)),
	)
}

func (s SVPointFile) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Speed, validation.Required, validation.Min(0.0)),
	)
}

func (n LaneNoteFile) Validate() error {
	long := n.Kind == "hold" || n.Kind == "drag"
	return validation.ValidateStruct(&n,
		validation.Field(&n.Lane, validation.Min(0), validation.Max(3)),
		validation.Field(&n.Kind, validation.In("", "tap", "hold", "drag")),
		validation.Field(&n.Duration, validation.Min(0), validation.When(long, validation.Required)),
		validation.Field(&n.To, validation.Min(0), validation.Max(3)),
	)
}

func (p PointFile) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.X, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&p.Y, validation.Min(0.0), validation.Max(1.0)),
	)
}

func (n PathNoteFile) Validate() error {
	return validation.ValidateStruct(&n,
		validation.Field(&n.X, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&n.Y, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&n.Kind, validation.In("", "circle", "slider")),
		validation.Field(&n.Duration, validation.Min(0), validation.When(n.Kind == "slider", validation.Required)),
		validation.Field(&n.Path),
	)
}
