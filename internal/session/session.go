// Package session owns one play session: its notes, its clock and the
// active note windows.
package session

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"git.lost.host/meutraa/tandem/internal/game"
)

const (
	CountdownDuration = 3 * time.Second

	// ActiveBefore and ActiveAfter bound the active window around now.
	ActiveBefore = 2000 * time.Millisecond
	ActiveAfter  = 500 * time.Millisecond

	DefaultSVSpeed = 1.0
	DefaultBPM     = 120.0
)

// Loader provides the note data of a chart difficulty.
type Loader interface {
	Load(info *game.Info, difficulty int) (*game.Data, error)
}

// Audio is the music playback the session follows. Positions and
// durations are in seconds.
type Audio interface {
	PlayMusic(path string) error
	PauseMusic()
	ResumeMusic()
	StopMusic()
	SetMusicPosition(seconds float64)
	MusicPosition() float64
	MusicDuration() float64
	IsPlaying() bool
	IsPaused() bool
}

// Config holds the player's offsets in milliseconds.
type Config struct {
	GlobalOffset int
	JudgeOffset  int
}

type State struct {
	loader Loader
	audio  Audio
	config Config
	logger *slog.Logger

	phase      game.Phase
	info       *game.Info
	difficulty int
	data       *game.Data
	lastEnd    time.Duration

	now       time.Duration
	countdown time.Duration

	audioStarted bool
	audioSynced  bool
	audioTime    time.Duration // Last time derived from the audio position

	lane, path game.Window

	forcedMisses int
}

// New creates an idle session. audio may be nil, in which case the session
// always runs on accumulated frame time.
func New(loader Loader, audio Audio, config Config, logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.Default()
	}
	return &State{
		loader: loader,
		audio:  audio,
		config: config,
		logger: logger,
	}
}

// Start loads a difficulty and enters the countdown. It returns false when
// the difficulty does not exist or its data cannot be loaded.
func (s *State) Start(info *game.Info, difficulty int) bool {
	if info == nil || difficulty < 0 || difficulty >= len(info.Difficulties) {
		s.logger.Warn("session: invalid difficulty", slog.Int("difficulty", difficulty))
		return false
	}
	if s.loader == nil {
		return false
	}
	data, err := s.loader.Load(info, difficulty)
	if err != nil || data == nil {
		s.logger.Warn("session: unable to load chart",
			slog.String("chart", info.ID),
			slog.String("difficulty", info.Difficulties[difficulty].Name),
			slog.Any("error", err))
		return false
	}

	s.stopAudio()
	for i := range data.LaneNotes {
		data.LaneNotes[i].Reset()
	}
	for i := range data.PathNotes {
		data.PathNotes[i].Reset()
	}

	s.info = info
	s.difficulty = difficulty
	s.data = data
	s.lastEnd = data.LastEnd()
	s.now = 0
	s.audioTime = 0
	s.forcedMisses = 0
	s.lane.Reset()
	s.path.Reset()
	s.countdown = CountdownDuration
	s.phase = game.Countdown

	s.logger.Info("session: started",
		slog.String("chart", info.ID),
		slog.String("difficulty", info.Difficulties[difficulty].Name),
		slog.Int("lane_notes", len(data.LaneNotes)),
		slog.Int("path_notes", len(data.PathNotes)))
	return true
}

// Update advances the session by one frame.
func (s *State) Update(dt time.Duration) {
	switch s.phase {
	case game.Countdown:
		s.countdown -= dt
		if s.countdown > 0 {
			return
		}
		s.countdown = 0
		s.startAudio()
		s.now = 0
		s.phase = game.Playing
		s.logger.Debug("session: playing", slog.Bool("music", s.audioStarted))
	case game.Playing:
		s.advanceClock(dt)
		s.updateWindows()
		s.detectEnd()
	}
}

func (s *State) startAudio() {
	s.audioStarted = false
	s.audioSynced = false
	if s.audio == nil || s.info.MusicPath == "" {
		return
	}
	if err := s.audio.PlayMusic(s.info.MusicPath); err != nil {
		s.logger.Warn("session: no music, using frame time",
			slog.String("path", s.info.MusicPath),
			slog.Any("error", err))
		return
	}
	s.audioStarted = true
}

func (s *State) stopAudio() {
	if s.audioStarted {
		s.audio.StopMusic()
	}
	s.audioStarted = false
}

func (s *State) offset() time.Duration {
	return s.info.Offset + time.Duration(s.config.GlobalOffset)*time.Millisecond
}

func (s *State) advanceClock(dt time.Duration) {
	if !s.audioStarted {
		s.now += dt
		return
	}
	if s.audio.IsPlaying() {
		s.audioTime = secondsToDuration(s.audio.MusicPosition()) - s.offset()
		if !s.audioSynced {
			s.audioSynced = true
			s.now = s.audioTime
			return
		}
	} else if s.audio.IsPaused() {
		return
	}
	// Stopped without a pause means the track ended; hold the last position.
	if s.audioTime > s.now {
		s.now = s.audioTime
	}
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(math.Round(seconds * float64(time.Second)))
}

func (s *State) updateWindows() {
	game.Advance(&s.lane, s.data.LaneNotes, s.now, ActiveBefore, ActiveAfter, game.LaneSpan)
	game.Advance(&s.path, s.data.PathNotes, s.now, ActiveBefore, ActiveAfter, game.PathSpan)
}

// musicEnded reports that playback is over. Without music the track is
// considered over once every note has left the active window.
func (s *State) musicEnded() bool {
	if s.audioStarted {
		return !s.audio.IsPlaying() && !s.audio.IsPaused()
	}
	// No player to stop, so end on the frame clock at the point the last
	// note end would retire from the active window.
	return s.now > s.lastEnd+ActiveAfter
}

func (s *State) detectEnd() {
	if !s.musicEnded() {
		return
	}
	count := 0
	for i := range s.data.LaneNotes {
		if n := &s.data.LaneNotes[i]; !n.Judged {
			n.Finalize(game.Miss)
			count++
		}
	}
	for i := range s.data.PathNotes {
		if n := &s.data.PathNotes[i]; !n.Judged {
			n.Finalize(game.Miss)
			count++
		}
	}
	s.forcedMisses += count
	s.phase = game.Finished
	s.logger.Info("session: finished", slog.Int("forced_misses", count))
}

// TakeForcedMisses returns the notes force missed when the session ended,
// once.
func (s *State) TakeForcedMisses() int {
	n := s.forcedMisses
	s.forcedMisses = 0
	return n
}

func (s *State) Pause() {
	if s.phase != game.Playing {
		return
	}
	if s.audioStarted {
		s.audio.PauseMusic()
	}
	s.phase = game.Paused
}

func (s *State) Resume() {
	if s.phase != game.Paused {
		return
	}
	if s.audioStarted {
		s.audio.ResumeMusic()
	}
	s.phase = game.Playing
}

// Reset stops playback and returns to Idle, dropping the loaded chart.
func (s *State) Reset() {
	s.stopAudio()
	s.phase = game.Idle
	s.info = nil
	s.data = nil
	s.difficulty = 0
	s.now = 0
	s.audioTime = 0
	s.countdown = 0
	s.forcedMisses = 0
	s.lastEnd = 0
	s.lane.Reset()
	s.path.Reset()
}

func (s *State) Phase() game.Phase {
	return s.phase
}

func (s *State) IsPlaying() bool {
	return s.phase == game.Playing
}

func (s *State) IsPaused() bool {
	return s.phase == game.Paused
}

func (s *State) IsFinished() bool {
	return s.phase == game.Finished
}

func (s *State) IsInCountdown() bool {
	return s.phase == game.Countdown
}

func (s *State) Now() time.Duration {
	return s.now
}

func (s *State) Config() Config {
	return s.config
}

func (s *State) Info() *game.Info {
	return s.info
}

func (s *State) DifficultyIndex() int {
	return s.difficulty
}

func (s *State) MusicStarted() bool {
	return s.audioStarted
}

// Difficulty returns the running difficulty, or the zero value when idle.
func (s *State) Difficulty() game.Difficulty {
	if s.info == nil || s.difficulty >= len(s.info.Difficulties) {
		return game.Difficulty{}
	}
	return s.info.Difficulties[s.difficulty]
}

// CountdownNumber is the whole seconds left in the countdown, rounded up.
func (s *State) CountdownNumber() int {
	if s.phase != game.Countdown {
		return 0
	}
	return int((s.countdown + time.Second - 1) / time.Second)
}

// Progress is the played fraction of the track in [0,1].
func (s *State) Progress() float64 {
	if s.data == nil {
		return 0
	}
	if s.phase == game.Finished {
		return 1
	}
	length := s.lastEnd
	if s.audioStarted {
		if d := secondsToDuration(s.audio.MusicDuration()); d > 0 {
			length = d - s.offset()
		}
	}
	if length <= 0 {
		return 0
	}
	p := float64(s.now) / float64(length)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// LaneNotes returns every lane note of the session. The slice is owned by
// the session; callers may only mutate the judgement fields through the
// judge.
func (s *State) LaneNotes() []game.LaneNote {
	if s.data == nil {
		return nil
	}
	return s.data.LaneNotes
}

func (s *State) PathNotes() []game.PathNote {
	if s.data == nil {
		return nil
	}
	return s.data.PathNotes
}

func (s *State) NoteCount() int {
	if s.data == nil {
		return 0
	}
	return s.data.NoteCount()
}

// ActiveLaneNotes is the lane window. Index i of the result is note
// ActiveLaneRange().Begin+i.
func (s *State) ActiveLaneNotes() []game.LaneNote {
	if s.data == nil {
		return nil
	}
	return s.data.LaneNotes[s.lane.Begin:s.lane.End]
}

func (s *State) ActivePathNotes() []game.PathNote {
	if s.data == nil {
		return nil
	}
	return s.data.PathNotes[s.path.Begin:s.path.End]
}

func (s *State) ActiveLaneRange() game.Window {
	return s.lane
}

func (s *State) ActivePathRange() game.Window {
	return s.path
}

// SVSpeed returns the scroll velocity in effect at t.
func (s *State) SVSpeed(t time.Duration) float64 {
	if s.data == nil || len(s.data.SVPoints) == 0 {
		return DefaultSVSpeed
	}
	points := s.data.SVPoints
	i := sort.Search(len(points), func(i int) bool { return points[i].Time > t }) - 1
	if i < 0 {
		i = 0
	}
	return points[i].Speed
}

// BPM returns the tempo in effect at t.
func (s *State) BPM(t time.Duration) float64 {
	if s.data == nil || len(s.data.TimingPoints) == 0 {
		return DefaultBPM
	}
	points := s.data.TimingPoints
	i := sort.Search(len(points), func(i int) bool { return points[i].Time > t }) - 1
	if i < 0 {
		i = 0
	}
	return points[i].BPM
}
