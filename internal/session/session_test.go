package session

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.lost.host/meutraa/tandem/internal/game"
)

const ms = time.Millisecond

type fakeLoader struct {
	data *game.Data
	err  error
}

func (l *fakeLoader) Load(info *game.Info, difficulty int) (*game.Data, error) {
	return l.data, l.err
}

type fakeAudio struct {
	playErr  error
	position float64
	duration float64
	playing  bool
	paused   bool
	played   string
	stopped  int
}

func (a *fakeAudio) PlayMusic(path string) error {
	if a.playErr != nil {
		return a.playErr
	}
	a.played = path
	a.playing = true
	return nil
}

func (a *fakeAudio) PauseMusic() {
	a.playing, a.paused = false, true
}

func (a *fakeAudio) ResumeMusic() {
	a.playing, a.paused = true, false
}

func (a *fakeAudio) StopMusic() {
	a.playing, a.paused = false, false
	a.stopped++
}

func (a *fakeAudio) SetMusicPosition(s float64) {
	a.position = s
}

func (a *fakeAudio) MusicPosition() float64 {
	return a.position
}

func (a *fakeAudio) MusicDuration() float64 {
	return a.duration
}

func (a *fakeAudio) IsPlaying() bool {
	return a.playing
}

func (a *fakeAudio) IsPaused() bool {
	return a.paused
}

func testInfo(music string) *game.Info {
	return &game.Info{
		ID:           "test",
		Title:        "Test",
		MusicPath:    music,
		Difficulties: []game.Difficulty{{Name: "Normal", Level: 5}},
	}
}

func taps(times ...int) []game.LaneNote {
	notes := make([]game.LaneNote, len(times))
	for i, t := range times {
		notes[i] = game.LaneNote{Time: time.Duration(t) * ms, Lane: i % 4}
	}
	return notes
}

// started returns a session that finished its countdown.
func started(t *testing.T, data *game.Data, audio Audio, music string) *State {
	t.Helper()
	s := New(&fakeLoader{data: data}, audio, Config{}, nil)
	require.True(t, s.Start(testInfo(music), 0))
	s.Update(CountdownDuration)
	require.True(t, s.IsPlaying())
	return s
}

func TestStartRejectsInvalidDifficulty(t *testing.T) {
	s := New(&fakeLoader{data: &game.Data{}}, nil, Config{}, nil)
	assert.False(t, s.Start(testInfo(""), 1))
	assert.False(t, s.Start(testInfo(""), -1))
	assert.False(t, s.Start(nil, 0))
	assert.Equal(t, game.Idle, s.Phase())
}

func TestStartRejectsUnloadableChart(t *testing.T) {
	s := New(&fakeLoader{err: errors.New("broken")}, nil, Config{}, nil)
	assert.False(t, s.Start(testInfo(""), 0))
	assert.Equal(t, game.Idle, s.Phase())
}

func TestStartResetsRuntimeFields(t *testing.T) {
	data := &game.Data{LaneNotes: taps(1000)}
	data.LaneNotes[0].Finalize(game.Perfect)
	s := New(&fakeLoader{data: data}, nil, Config{}, nil)
	require.True(t, s.Start(testInfo(""), 0))
	assert.False(t, s.LaneNotes()[0].Judged)
	assert.Equal(t, game.None, s.LaneNotes()[0].Result)
}

func TestCountdown(t *testing.T) {
	audio := &fakeAudio{}
	s := New(&fakeLoader{data: &game.Data{LaneNotes: taps(5000)}}, audio, Config{}, nil)
	require.True(t, s.Start(testInfo("song.ogg"), 0))
	assert.True(t, s.IsInCountdown())
	assert.Equal(t, 3, s.CountdownNumber())

	s.Update(1500 * ms)
	assert.Equal(t, 2, s.CountdownNumber())
	s.Update(1000 * ms)
	assert.Equal(t, 1, s.CountdownNumber())
	assert.Equal(t, "", audio.played)

	s.Update(600 * ms)
	assert.True(t, s.IsPlaying())
	assert.Equal(t, "song.ogg", audio.played)
	assert.Equal(t, time.Duration(0), s.Now())
	assert.True(t, s.MusicStarted())
}

func TestFrameTimeWithoutMusic(t *testing.T) {
	s := started(t, &game.Data{LaneNotes: taps(5000)}, nil, "")
	s.Update(16 * ms)
	s.Update(16 * ms)
	assert.Equal(t, 32*ms, s.Now())
	assert.False(t, s.MusicStarted())
}

func TestMissingMusicDegrades(t *testing.T) {
	audio := &fakeAudio{playErr: errors.New("no such file")}
	s := started(t, &game.Data{LaneNotes: taps(5000)}, audio, "missing.mp3")
	assert.False(t, s.MusicStarted())
	s.Update(100 * ms)
	assert.Equal(t, 100*ms, s.Now())
	assert.True(t, s.IsPlaying())
}

func TestAudioClockWithOffsets(t *testing.T) {
	audio := &fakeAudio{}
	info := testInfo("song.ogg")
	info.Offset = 100 * ms
	s := New(&fakeLoader{data: &game.Data{LaneNotes: taps(5000)}}, audio, Config{GlobalOffset: 20}, nil)
	require.True(t, s.Start(info, 0))
	s.Update(CountdownDuration)

	audio.position = 1.0
	s.Update(16 * ms)
	assert.Equal(t, 880*ms, s.Now())

	audio.position = 1.5
	s.Update(16 * ms)
	assert.Equal(t, 1380*ms, s.Now())

	// A position that jitters backwards never rewinds the clock.
	audio.position = 1.49
	s.Update(16 * ms)
	assert.Equal(t, 1380*ms, s.Now())
}

func TestPauseFreezesTime(t *testing.T) {
	audio := &fakeAudio{}
	s := started(t, &game.Data{LaneNotes: taps(5000)}, audio, "song.ogg")
	audio.position = 1
	s.Update(16 * ms)

	s.Pause()
	assert.True(t, s.IsPaused())
	assert.True(t, audio.paused)
	audio.position = 2
	s.Update(time.Second)
	assert.Equal(t, time.Second, s.Now())

	s.Resume()
	assert.True(t, s.IsPlaying())
	s.Update(16 * ms)
	assert.Equal(t, 2*time.Second, s.Now())
}

func TestEndOfTrackForcesMisses(t *testing.T) {
	audio := &fakeAudio{}
	data := &game.Data{LaneNotes: taps(500, 1000, 1500, 2000, 2500)}
	s := started(t, data, audio, "song.ogg")

	audio.position = 1
	s.Update(16 * ms)
	data.LaneNotes[0].Finalize(game.Perfect)
	data.LaneNotes[1].Finalize(game.Great)

	audio.playing = false
	s.Update(16 * ms)

	assert.True(t, s.IsFinished())
	assert.Equal(t, 1000*ms, s.Now(), "frozen at the last playing position")
	for i, n := range s.LaneNotes() {
		assert.True(t, n.Judged, "note %d", i)
	}
	assert.Equal(t, game.Perfect, data.LaneNotes[0].Result)
	assert.Equal(t, game.Miss, data.LaneNotes[4].Result)
	assert.Equal(t, 3, s.TakeForcedMisses())
	assert.Equal(t, 0, s.TakeForcedMisses())

	s.Update(time.Second)
	assert.True(t, s.IsFinished())
	assert.Equal(t, 1.0, s.Progress())
}

func TestPlaysUntilMusicEnds(t *testing.T) {
	audio := &fakeAudio{duration: 30}
	data := &game.Data{LaneNotes: taps(500)}
	s := started(t, data, audio, "song.ogg")

	data.LaneNotes[0].Finalize(game.Perfect)
	audio.position = 10
	s.Update(16 * ms)
	assert.True(t, s.IsPlaying(), "notes exhausted but music still playing")
	assert.InDelta(t, 10.0/30.0, s.Progress(), 1e-9)

	audio.playing = false
	s.Update(16 * ms)
	assert.True(t, s.IsFinished())
	assert.Equal(t, 0, s.TakeForcedMisses())
}

func TestFinishWithoutMusicAfterLastNote(t *testing.T) {
	s := started(t, &game.Data{LaneNotes: taps(1000)}, nil, "")
	s.Update(1500 * ms)
	assert.True(t, s.IsPlaying())
	s.Update(1 * ms)
	assert.True(t, s.IsFinished())
	assert.Equal(t, 1, s.TakeForcedMisses())
}

func TestFinishWithoutMusicAfterLastHoldEnd(t *testing.T) {
	s := started(t, &game.Data{LaneNotes: []game.LaneNote{
		{Time: 1000 * ms, Kind: game.Hold, Duration: 800 * ms},
		{Time: 1200 * ms},
	}}, nil, "")
	s.Update(1800*ms + ActiveAfter)
	assert.True(t, s.IsPlaying())
	s.Update(1 * ms)
	assert.True(t, s.IsFinished())
	assert.Equal(t, 2, s.TakeForcedMisses())
}

func TestReset(t *testing.T) {
	audio := &fakeAudio{}
	s := started(t, &game.Data{LaneNotes: taps(500)}, audio, "song.ogg")
	s.Update(16 * ms)
	s.Reset()
	assert.Equal(t, game.Idle, s.Phase())
	assert.Equal(t, 1, audio.stopped)
	assert.Equal(t, time.Duration(0), s.Now())
	assert.Empty(t, s.ActiveLaneNotes())
	assert.Equal(t, 0.0, s.Progress())
}

func TestSVAndBPM(t *testing.T) {
	data := &game.Data{
		TimingPoints: []game.TimingPoint{{Time: 0, BPM: 150}, {Time: 1000 * ms, BPM: 180}, {Time: 4000 * ms, BPM: 90}},
		SVPoints:     []game.SVPoint{{Time: 500 * ms, Speed: 0.5}, {Time: 2000 * ms, Speed: 2}},
	}
	s := New(&fakeLoader{data: data}, nil, Config{}, nil)
	assert.Equal(t, DefaultBPM, s.BPM(0))
	assert.Equal(t, DefaultSVSpeed, s.SVSpeed(0))
	require.True(t, s.Start(testInfo(""), 0))

	assert.Equal(t, 150.0, s.BPM(0))
	assert.Equal(t, 150.0, s.BPM(999*ms))
	assert.Equal(t, 180.0, s.BPM(1000*ms))
	assert.Equal(t, 90.0, s.BPM(time.Hour))

	assert.Equal(t, 0.5, s.SVSpeed(0))
	assert.Equal(t, 0.5, s.SVSpeed(1999*ms))
	assert.Equal(t, 2.0, s.SVSpeed(2000*ms))
}

func TestActiveWindowSoundness(t *testing.T) {
	var notes []game.LaneNote
	for i := 0; i < 400; i++ {
		n := game.LaneNote{Time: time.Duration(i*37) * ms, Lane: i % 4}
		if i%9 == 0 {
			n.Kind = game.Hold
			n.Duration = 800 * ms
		}
		notes = append(notes, n)
	}
	paths := []game.PathNote{
		{Time: 1000 * ms},
		{Time: 3000 * ms, Kind: game.Slider, Duration: 2000 * ms},
		{Time: 9000 * ms},
	}
	data := &game.Data{LaneNotes: notes, PathNotes: paths}
	s := started(t, data, nil, "")

	prev := s.ActiveLaneRange()
	for frame := 0; frame < 1200; frame++ {
		s.Update(13 * ms)
		now := s.Now()
		// Hit every third note when due, let the rest run into the miss sweep.
		for i := range data.LaneNotes {
			n := &data.LaneNotes[i]
			if n.Judged {
				continue
			}
			if i%3 == 0 && n.Time <= now {
				n.Finalize(game.Perfect)
			} else if now-n.Time > 150*ms {
				n.Finalize(game.Miss)
			}
		}

		w := s.ActiveLaneRange()
		require.GreaterOrEqual(t, w.Begin, prev.Begin)
		require.GreaterOrEqual(t, w.End, prev.End)
		prev = w

		for i, n := range data.LaneNotes {
			inside := i >= w.Begin && i < w.End
			if !n.Judged && n.Time >= now-ActiveAfter && n.Time <= now+ActiveBefore {
				require.True(t, inside, "frame %d: unjudged note %d missing", frame, i)
			}
			if i < w.Begin {
				require.True(t, n.Judged, "frame %d: retired note %d unjudged", frame, i)
				require.Less(t, n.End(), now-ActiveAfter, "frame %d: retired note %d still recent", frame, i)
			}
		}
		if s.IsFinished() {
			break
		}
	}
}

func TestActiveWindowRetiresJudgedNotes(t *testing.T) {
	data := &game.Data{LaneNotes: taps(100, 200, 300, 5000)}
	s := started(t, data, nil, "")

	s.Update(1 * ms)
	assert.Len(t, s.ActiveLaneNotes(), 3)

	s.Update(1000 * ms)
	assert.Len(t, s.ActiveLaneNotes(), 3, "unjudged notes stay for the miss sweep")

	data.LaneNotes[0].Finalize(game.Miss)
	data.LaneNotes[1].Finalize(game.Perfect)
	s.Update(1 * ms)
	w := s.ActiveLaneRange()
	assert.Equal(t, 2, w.Begin)
	assert.Equal(t, 3, w.End)

	s.Update(2000 * ms)
	assert.Equal(t, 4, s.ActiveLaneRange().End)
}
