package chart

import (
	"fmt"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"git.lost.host/meutraa/tandem/internal/game"
)

// File is the YAML chart format. Times and durations are milliseconds.
type File struct {
	ID           string           `yaml:"id"`
	Title        string           `yaml:"title"`
	Artist       string           `yaml:"artist"`
	Music        string           `yaml:"music"`
	Offset       int              `yaml:"offset"`
	Difficulties []DifficultyFile `yaml:"difficulties"`
}

type DifficultyFile struct {
	Name   string            `yaml:"name"`
	Level  int               `yaml:"level"`
	Timing []TimingPointFile `yaml:"timing"`
	SV     []SVPointFile     `yaml:"sv"`
	Lanes  []LaneNoteFile    `yaml:"lanes"`
	Paths  []PathNoteFile    `yaml:"paths"`
}

type TimingPointFile struct {
	Time  int     `yaml:"time"`
	BPM   float64 `yaml:"bpm"`
	Meter int     `yaml:"meter"`
}

type SVPointFile struct {
	Time   int     `yaml:"time"`
	Speed  float64 `yaml:"speed"`
	Easing string  `yaml:"easing"`
}

type LaneNoteFile struct {
	Time     int    `yaml:"time"`
	Lane     int    `yaml:"lane"`
	Kind     string `yaml:"kind"`
	Duration int    `yaml:"duration"`
	To       int    `yaml:"to"`
}

type PointFile struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type PathNoteFile struct {
	Time     int         `yaml:"time"`
	X        float64     `yaml:"x"`
	Y        float64     `yaml:"y"`
	Kind     string      `yaml:"kind"`
	Duration int         `yaml:"duration"`
	Path     []PointFile `yaml:"path"`
}

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}

func (l *Loader) readYAML(path string) (*File, []byte, error) {
	raw, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, nil, fmt.Errorf("chart: read %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, nil, fmt.Errorf("chart: parse %s: %w", path, err)
	}
	if err := f.Validate(); err != nil {
		return nil, nil, fmt.Errorf("chart: %s: %w", path, err)
	}
	return &f, raw, nil
}

func (l *Loader) yamlInfo(path string) (*game.Info, error) {
	f, raw, err := l.readYAML(path)
	if err != nil {
		return nil, err
	}
	id := f.ID
	if id == "" {
		id = hashChart(raw)
	}
	info := &game.Info{
		ID:        id,
		Title:     f.Title,
		Artist:    f.Artist,
		MusicPath: resolve(path, f.Music),
		Offset:    ms(f.Offset),
	}
	for _, d := range f.Difficulties {
		info.Difficulties = append(info.Difficulties, game.Difficulty{
			Name:   d.Name,
			Level:  d.Level,
			Source: path,
		})
	}
	return info, nil
}

func (l *Loader) loadYAML(path, name string) (*game.Data, error) {
	f, _, err := l.readYAML(path)
	if err != nil {
		return nil, err
	}
	for _, d := range f.Difficulties {
		if d.Name == name {
			return d.data(), nil
		}
	}
	return nil, fmt.Errorf("%w: %s in %s", ErrNoDifficulty, name, path)
}

var (
	laneKinds = map[string]game.LaneKind{"": game.Tap, "tap": game.Tap, "hold": game.Hold, "drag": game.Drag}
	pathKinds = map[string]game.PathKind{"": game.Circle, "circle": game.Circle, "slider": game.Slider}
)

func (d *DifficultyFile) data() *game.Data {
	data := &game.Data{
		TimingPoints: make([]game.TimingPoint, 0, len(d.Timing)),
		SVPoints:     make([]game.SVPoint, 0, len(d.SV)),
		LaneNotes:    make([]game.LaneNote, 0, len(d.Lanes)),
		PathNotes:    make([]game.PathNote, 0, len(d.Paths)),
	}
	for _, t := range d.Timing {
		meter := t.Meter
		if meter == 0 {
			meter = 4
		}
		data.TimingPoints = append(data.TimingPoints, game.TimingPoint{Time: ms(t.Time), BPM: t.BPM, Meter: meter})
	}
	for _, sv := range d.SV {
		data.SVPoints = append(data.SVPoints, game.SVPoint{Time: ms(sv.Time), Speed: sv.Speed, Easing: sv.Easing})
	}
	for _, n := range d.Lanes {
		note := game.LaneNote{Time: ms(n.Time), Lane: n.Lane, Kind: laneKinds[n.Kind]}
		if note.Kind != game.Tap {
			note.Duration = ms(n.Duration)
		}
		if note.Kind == game.Drag {
			note.DragTo = n.To
		}
		data.LaneNotes = append(data.LaneNotes, note)
	}
	for _, n := range d.Paths {
		note := game.PathNote{Time: ms(n.Time), Pos: game.Point{X: n.X, Y: n.Y}, Kind: pathKinds[n.Kind]}
		if note.Kind == game.Slider {
			note.Duration = ms(n.Duration)
			for _, p := range n.Path {
				note.Path = append(note.Path, game.Point{X: p.X, Y: p.Y})
			}
		}
		data.PathNotes = append(data.PathNotes, note)
	}
	return data
}
