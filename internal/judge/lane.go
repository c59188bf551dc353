package judge

import (
	"time"

	"git.lost.host/meutraa/tandem/internal/game"
)

// JudgeKeyboardNote grades a key press against a lane note. Taps are
// finalized; Hold and Drag notes only get their head judged, even a Miss
// head. None is returned for judged notes and hits that are too early.
func (j *Judge) JudgeKeyboardNote(n *game.LaneNote, hit time.Duration) game.Result {
	if n == nil || n.Judged || n.Head != game.None {
		return game.None
	}
	if j.tooEarly(n.Time, hit) {
		return game.None
	}

	r := j.ResultByTimeDiff(hit - n.Time)
	n.HitTime = hit
	if n.Kind == game.Tap {
		n.Finalize(r)
		return r
	}
	n.Head = r
	return r
}

// UpdateHoldTick advances a hold. A release earlier than the miss window
// before the end is a Miss; otherwise the hold ends with its head result
// once the good window past the end has elapsed.
func (j *Judge) UpdateHoldTick(s *game.HoldState, n *game.LaneNote, now time.Duration) game.Result {
	if s == nil || n == nil || !s.HeadJudged || s.Finalized || n.Judged {
		return game.None
	}

	end := n.Time + n.Duration
	if !s.Held && s.ReleaseTime < end-j.windows.Miss {
		s.Finalized = true
		n.Finalize(game.Miss)
		return game.Miss
	}
	if now > end+j.windows.Good {
		s.Finalized = true
		n.Finalize(s.HeadResult)
		return s.HeadResult
	}
	return game.None
}

// JudgeDragEnd grades the arrival of a drag on its destination lane.
func (j *Judge) JudgeDragEnd(n *game.LaneNote, hit time.Duration, lane int) game.Result {
	if n == nil || n.Kind != game.Drag || n.Judged || lane != n.DragTo {
		return game.None
	}
	end := n.Time + n.Duration
	if j.tooEarly(end, hit) {
		return game.None
	}
	r := j.ResultByTimeDiff(hit - end)
	n.Finalize(r)
	return r
}

// CheckMisses force misses unjudged notes whose time is past the miss
// window. Notes with a judged head are left to their continuation.
func (j *Judge) CheckMisses(notes []game.LaneNote, now time.Duration) int {
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

// CheckDragExpiry misses drags whose end passed without reaching the
// destination lane.
func (j *Judge) CheckDragExpiry(notes []game.LaneNote, now time.Duration) int {
	count := 0
	for i := range notes {
		n := &notes[i]
		if n.Judged || n.Kind != game.Drag || n.Head == game.None {
			continue
		}
		if j.expired(n.Time+n.Duration, now) {
			n.Finalize(game.Miss)
			count++
		}
	}
	return count
}
