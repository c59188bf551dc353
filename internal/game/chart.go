package game

import "time"

// Data is the note and timing data of one difficulty. Every slice is
// sorted by time ascending.
type Data struct {
	TimingPoints []TimingPoint
	SVPoints     []SVPoint
	LaneNotes    []LaneNote
	PathNotes    []PathNote
}

// NoteCount is the number of judgeable notes.
func (d *Data) NoteCount() int {
	return len(d.LaneNotes) + len(d.PathNotes)
}

// LastEnd returns the latest end time over all notes.
func (d *Data) LastEnd() time.Duration {
	var last time.Duration
	for i := range d.LaneNotes {
		if e := d.LaneNotes[i].End(); e > last {
			last = e
		}
	}
	for i := range d.PathNotes {
		if e := d.PathNotes[i].End(); e > last {
			last = e
		}
	}
	return last
}

// Window is the active note range [Begin, End) over a time sorted slice.
// Both indices only move forward until Reset.
type Window struct {
	Begin, End int
}

func (w *Window) Reset() {
	w.Begin, w.End = 0, 0
}

// Advance slides the window for the current time. Notes are retired from
// the front only once judged and older than after; unjudged notes are kept
// so they can still be force missed.
func Advance[N any](w *Window, notes []N, now, before, after time.Duration, span func(*N) (start, end time.Duration, judged bool)) {
	for w.End < len(notes) {
		start, _, _ := span(&notes[w.End])
		if start > now+before {
			break
		}
		w.End++
	}
	for w.Begin < w.End {
		_, end, judged := span(&notes[w.Begin])
		if !judged || end >= now-after {
			break
		}
		w.Begin++
	}
}
