// Package audio plays the chart music and reports its position.
package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
)

var ErrUnsupported = errors.New("audio: unsupported format")

// Player plays one track at a time through the speaker. It implements
// session.Audio.
type Player struct {
	mu         sync.Mutex
	sampleRate beep.SampleRate // Rate the speaker was initialized with

	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	playing  bool
	done     bool // Set by the speaker when the track ran out
}

func NewPlayer() *Player {
	return &Player{}
}

func decode(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}
	var s beep.StreamSeekCloser
	var format beep.Format
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		s, format, err = mp3.Decode(f)
	case ".ogg":
		s, format, err = vorbis.Decode(f)
	case ".wav":
		s, format, err = wav.Decode(f)
	default:
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupported, path)
	}
	if err != nil {
		f.Close()
		return nil, beep.Format{}, err
	}
	return s, format, nil
}

// PlayMusic decodes path and starts playing it from the beginning.
func (p *Player) PlayMusic(path string) error {
	s, format, err := decode(path)
	if err != nil {
		return fmt.Errorf("audio: open %s: %w", path, err)
	}
	p.StopMusic()

	p.mu.Lock()
	if p.sampleRate == 0 {
		if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/60)); err != nil {
			p.mu.Unlock()
			s.Close()
			return fmt.Errorf("audio: init speaker: %w", err)
		}
		p.sampleRate = format.SampleRate
	}
	var out beep.Streamer = s
	if format.SampleRate != p.sampleRate {
		out = beep.Resample(4, format.SampleRate, p.sampleRate, s)
	}
	p.streamer = s
	p.format = format
	p.done = false
	p.playing = true
	p.ctrl = &beep.Ctrl{Streamer: beep.Seq(out, beep.Callback(func() {
		p.done = true
	}))}
	ctrl := p.ctrl
	p.mu.Unlock()

	speaker.Play(ctrl)
	return nil
}

func (p *Player) setPaused(paused bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = paused
	speaker.Unlock()
}

func (p *Player) PauseMusic() {
	p.setPaused(true)
}

func (p *Player) ResumeMusic() {
	p.setPaused(false)
}

// StopMusic stops and releases the current track.
func (p *Player) StopMusic() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.streamer == nil {
		return
	}
	speaker.Lock()
	p.ctrl.Streamer = nil
	speaker.Unlock()
	p.streamer.Close()
	p.streamer = nil
	p.ctrl = nil
	p.playing = false
	p.done = false
}

func (p *Player) SetMusicPosition(seconds float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.streamer == nil {
		return
	}
	n := p.format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	if n < 0 {
		n = 0
	}
	if l := p.streamer.Len(); n > l {
		n = l
	}
	speaker.Lock()
	_ = p.streamer.Seek(n)
	speaker.Unlock()
}

// MusicPosition is the played time of the track in seconds.
func (p *Player) MusicPosition() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.streamer == nil {
		return 0
	}
	speaker.Lock()
	pos := p.streamer.Position()
	speaker.Unlock()
	return p.format.SampleRate.D(pos).Seconds()
}

func (p *Player) MusicDuration() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.streamer == nil {
		return 0
	}
	return p.format.SampleRate.D(p.streamer.Len()).Seconds()
}

func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing {
		return false
	}
	speaker.Lock()
	defer speaker.Unlock()
	return !p.done && !p.ctrl.Paused
}

func (p *Player) IsPaused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing {
		return false
	}
	speaker.Lock()
	defer speaker.Unlock()
	return !p.done && p.ctrl.Paused
}
