package judge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.lost.host/meutraa/tandem/internal/game"
)

func TestJudgeKeyboardTap(t *testing.T) {
	j := New()
	n := &game.LaneNote{Time: 1000 * ms, Kind: game.Tap}

	assert.Equal(t, game.None, j.JudgeKeyboardNote(n, 849*ms), "too early")
	assert.False(t, n.Judged)

	require.Equal(t, game.Great, j.JudgeKeyboardNote(n, 1040*ms))
	assert.True(t, n.Judged)
	assert.Equal(t, game.Great, n.Result)
	assert.Equal(t, 1040*ms, n.HitTime)
}

func TestJudgeKeyboardEarliestAccepted(t *testing.T) {
	j := New()
	n := &game.LaneNote{Time: 1000 * ms}
	assert.Equal(t, game.Miss, j.JudgeKeyboardNote(n, 850*ms))
	assert.True(t, n.Judged)
}

func TestJudgeKeyboardIdempotent(t *testing.T) {
	j := New()
	n := &game.LaneNote{Time: 1000 * ms}
	require.Equal(t, game.Perfect, j.JudgeKeyboardNote(n, 1000*ms))

	for _, hit := range []time.Duration{900 * ms, 1000 * ms, 1100 * ms, 5000 * ms} {
		assert.Equal(t, game.None, j.JudgeKeyboardNote(n, hit))
		assert.Equal(t, game.Perfect, n.Result)
	}
}

func TestJudgeKeyboardHoldHeadOnly(t *testing.T) {
	j := New()
	n := &game.LaneNote{Time: 1000 * ms, Kind: game.Hold, Duration: 500 * ms}

	require.Equal(t, game.Perfect, j.JudgeKeyboardNote(n, 1010*ms))
	assert.False(t, n.Judged)
	assert.Equal(t, game.Perfect, n.Head)
	assert.Equal(t, game.None, j.JudgeKeyboardNote(n, 1020*ms), "head judged once")
}

func TestJudgeKeyboardHoldHeadMissContinues(t *testing.T) {
	j := New()
	n := &game.LaneNote{Time: 1000 * ms, Kind: game.Hold, Duration: 500 * ms}
	require.Equal(t, game.Miss, j.JudgeKeyboardNote(n, 1140*ms))
	assert.False(t, n.Judged)
	assert.Equal(t, game.Miss, n.Head)
	assert.Equal(t, 0, j.CheckMisses([]game.LaneNote{*n}, 2000*ms))

	s := game.NewHoldState(0, n.Head)
	assert.Equal(t, game.None, j.UpdateHoldTick(s, n, 1500*ms))
	assert.Equal(t, game.Miss, j.UpdateHoldTick(s, n, 1581*ms))
	assert.True(t, n.Judged)
	assert.Equal(t, game.Miss, n.Result)
}

func TestJudgeKeyboardDragHeadMissContinues(t *testing.T) {
	j := New()
	n := &game.LaneNote{Time: 1000 * ms, Kind: game.Drag, Duration: 300 * ms, DragTo: 2}
	require.Equal(t, game.Miss, j.JudgeKeyboardNote(n, 1120*ms))
	assert.False(t, n.Judged)

	assert.Equal(t, game.Perfect, j.JudgeDragEnd(n, 1300*ms, 2))
	assert.True(t, n.Judged)
}

func TestUpdateHoldTickGracefulRelease(t *testing.T) {
	j := New()
	n := &game.LaneNote{Time: 1000 * ms, Kind: game.Hold, Duration: 500 * ms}
	require.Equal(t, game.Perfect, j.JudgeKeyboardNote(n, 1000*ms))
	s := game.NewHoldState(0, n.Head)

	s.Release(1400 * ms)
	assert.Equal(t, game.None, j.UpdateHoldTick(s, n, 1400*ms))
	assert.Equal(t, game.None, j.UpdateHoldTick(s, n, 1580*ms))
	assert.False(t, s.Finalized)

	assert.Equal(t, game.Perfect, j.UpdateHoldTick(s, n, 1650*ms))
	assert.True(t, s.Finalized)
	assert.True(t, n.Judged)
	assert.Equal(t, game.Perfect, n.Result)
}

func TestUpdateHoldTickEarlyRelease(t *testing.T) {
	j := New()
	n := &game.LaneNote{Time: 1000 * ms, Kind: game.Hold, Duration: 500 * ms}
	require.Equal(t, game.Perfect, j.JudgeKeyboardNote(n, 1000*ms))
	s := game.NewHoldState(0, n.Head)

	assert.Equal(t, game.None, j.UpdateHoldTick(s, n, 1299*ms))
	s.Release(1300 * ms)
	assert.Equal(t, game.Miss, j.UpdateHoldTick(s, n, 1300*ms))
	assert.True(t, n.Judged)
	assert.Equal(t, game.Miss, n.Result)

	assert.Equal(t, game.None, j.UpdateHoldTick(s, n, 1700*ms), "finalized once")
}

func TestUpdateHoldTickHeldThroughEnd(t *testing.T) {
	j := New()
	n := &game.LaneNote{Time: 1000 * ms, Kind: game.Hold, Duration: 500 * ms}
	require.Equal(t, game.Good, j.JudgeKeyboardNote(n, 940*ms))
	s := game.NewHoldState(0, n.Head)

	assert.Equal(t, game.Good, j.UpdateHoldTick(s, n, 1581*ms))
}

func TestUpdateHoldTickHeadUnjudged(t *testing.T) {
	j := New()
	n := &game.LaneNote{Time: 1000 * ms, Kind: game.Hold, Duration: 500 * ms}
	s := &game.HoldState{ReleaseTime: game.NotReleased}
	assert.Equal(t, game.None, j.UpdateHoldTick(s, n, 3000*ms))
	assert.False(t, n.Judged)
}

func TestJudgeDragEnd(t *testing.T) {
	j := New()
	n := &game.LaneNote{Time: 1000 * ms, Kind: game.Drag, Duration: 300 * ms, Lane: 0, DragTo: 2}
	require.Equal(t, game.Perfect, j.JudgeKeyboardNote(n, 1000*ms))
	require.False(t, n.Judged)

	assert.Equal(t, game.None, j.JudgeDragEnd(n, 1300*ms, 1), "wrong lane")
	assert.Equal(t, game.None, j.JudgeDragEnd(n, 1100*ms, 2), "too early")
	assert.Equal(t, game.Good, j.JudgeDragEnd(n, 1360*ms, 2))
	assert.True(t, n.Judged)
	assert.Equal(t, game.None, j.JudgeDragEnd(n, 1300*ms, 2))

	tap := &game.LaneNote{Time: 1000 * ms, Kind: game.Tap}
	assert.Equal(t, game.None, j.JudgeDragEnd(tap, 1000*ms, 0))
}

func TestCheckMisses(t *testing.T) {
	j := New()
	notes := []game.LaneNote{
		{Time: 100 * ms},
		{Time: 200 * ms, Judged: true, Result: game.Perfect},
		{Time: 300 * ms, Kind: game.Hold, Duration: 1000 * ms, Head: game.Great},
		{Time: 349 * ms},
		{Time: 400 * ms},
	}
	assert.Equal(t, 2, j.CheckMisses(notes, 500*ms))
	assert.Equal(t, game.Miss, notes[0].Result)
	assert.Equal(t, game.Perfect, notes[1].Result)
	assert.False(t, notes[2].Judged)
	assert.True(t, notes[3].Judged)
	assert.False(t, notes[4].Judged)
	assert.Equal(t, 0, j.CheckMisses(notes, 500*ms))
}

func TestCheckDragExpiry(t *testing.T) {
	j := New()
	notes := []game.LaneNote{
		{Time: 0, Kind: game.Drag, Duration: 200 * ms, Head: game.Perfect},
		{Time: 0, Kind: game.Drag, Duration: 200 * ms},
		{Time: 0, Kind: game.Hold, Duration: 200 * ms, Head: game.Perfect},
	}
	assert.Equal(t, 0, j.CheckDragExpiry(notes, 350*ms))
	assert.Equal(t, 1, j.CheckDragExpiry(notes, 351*ms))
	assert.Equal(t, game.Miss, notes[0].Result)
	assert.False(t, notes[1].Judged)
	assert.False(t, notes[2].Judged)
}
