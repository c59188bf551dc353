package chart

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"

	"git.lost.host/meutraa/tandem/internal/game"
)

// StepMania charts provide lane taps and holds. Only dance-single, the
// four lane layout, is read.
const smChartType = "dance-single"

type smBPM struct {
	StartingBeat float64
	Value        float64
}

type smDifficulty struct {
	Name    string
	Level   int
	Section string
}

type smFile struct {
	Title, Artist, Music string
	Offset               float64 // Seconds of audio before beat 0, negated
	BPMs                 []smBPM
	Difficulties         []smDifficulty
}

func parseSM(data []byte) (*smFile, error) {
	str := strings.ReplaceAll(string(data), "\r", "")
	sections := strings.Split(str, "#NOTES:")
	meta := sections[0]

	f := &smFile{}
	for _, section := range sections[1:] {
		lines := strings.SplitN(section, "\n", 7)
		if len(lines) < 7 {
			continue
		}
		chartType := strings.TrimSuffix(strings.TrimSpace(lines[1]), ":")
		if chartType != smChartType {
			continue
		}
		level, _ := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(lines[4]), ":"))
		f.Difficulties = append(f.Difficulties, smDifficulty{
			Name:    strings.TrimSuffix(strings.TrimSpace(lines[3]), ":"),
			Level:   level,
			Section: lines[6],
		})
	}

	for _, mdl := range strings.Split(meta, "\n#") {
		mdl = strings.TrimPrefix(strings.TrimSpace(mdl), "#")
		key, value, ok := strings.Cut(mdl, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), ";"))
		switch key {
		case "TITLE":
			f.Title = value
		case "ARTIST":
			f.Artist = value
		case "MUSIC":
			f.Music = value
		case "OFFSET":
			offs, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, fmt.Errorf("chart: offset: %w", err)
			}
			f.Offset = -offs
		case "BPMS":
			value = strings.ReplaceAll(value, "\n", "")
			for _, bpm := range strings.Split(value, ",") {
				as := strings.Split(strings.TrimSpace(bpm), "=")
				if len(as) != 2 {
					return nil, fmt.Errorf("chart: bpm %q", bpm)
				}
				sb, err := strconv.ParseFloat(as[0], 64)
				if err != nil {
					return nil, fmt.Errorf("chart: bpm beat: %w", err)
				}
				v, err := strconv.ParseFloat(as[1], 64)
				if err != nil {
					return nil, fmt.Errorf("chart: bpm value: %w", err)
				}
				f.BPMs = append(f.BPMs, smBPM{StartingBeat: sb, Value: v})
			}
		}
	}
	if len(f.BPMs) == 0 {
		return nil, fmt.Errorf("chart: no bpms")
	}
	return f, nil
}

func (f *smFile) secondsPerNote(currentBeat, beatsPerNote float64) float64 {
	sel := f.BPMs[0].Value
	for _, bpm := range f.BPMs {
		if currentBeat >= bpm.StartingBeat {
			sel = bpm.Value
		} else {
			break
		}
	}
	return beatsPerNote * 60.0 / sel
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// timingPoints converts the beat indexed bpm changes to times.
func (f *smFile) timingPoints() []game.TimingPoint {
	points := make([]game.TimingPoint, 0, len(f.BPMs))
	elapsed := 0.0
	for i, bpm := range f.BPMs {
		if i > 0 {
			prev := f.BPMs[i-1]
			elapsed += (bpm.StartingBeat - prev.StartingBeat) * 60.0 / prev.Value
		}
		points = append(points, game.TimingPoint{Time: seconds(elapsed), BPM: bpm.Value, Meter: 4})
	}
	return points
}

// 0 – No note
// 1 – Normal note
// 2 – Hold head
// 3 – Hold/Roll tail
// 4 – Roll head
// M – Mine, skipped

func (f *smFile) notes(section string) []game.LaneNote {
	notes := []game.LaneNote{}
	elapsed := 0.0
	currentBeat := 0.0

	for _, block := range strings.Split(section, "\n,") {
		lines := []string{}
		for _, l := range strings.Split(block, "\n") {
			if strings.HasPrefix(l, " ") || strings.HasPrefix(l, "//") || strings.Contains(l, "-") {
				continue
			}
			l = strings.TrimSpace(l)
			if len(l) > 3 {
				lines = append(lines, l)
			}
		}
		if len(lines) == 0 {
			continue
		}

		// Beat count is 4 per block
		beatsPerNote := 4.0 / float64(len(lines))
		for _, line := range lines {
			t := seconds(elapsed)
			for i, c := range []byte(line) {
				if i > 3 {
					break
				}
				switch c {
				case '1':
					notes = append(notes, game.LaneNote{Time: t, Lane: i, Kind: game.Tap})
				case '2', '4':
					notes = append(notes, game.LaneNote{Time: t, Lane: i, Kind: game.Hold})
				case '3':
					// Release of the last hold head in this column
					for j := len(notes) - 1; j >= 0; j-- {
						if notes[j].Lane == i && notes[j].Kind == game.Hold {
							notes[j].Duration = t - notes[j].Time
							break
						}
					}
				}
			}
			elapsed += f.secondsPerNote(currentBeat, beatsPerNote)
			currentBeat += beatsPerNote
		}
	}

	// A head without a tail plays as a tap.
	for i := range notes {
		if notes[i].Kind == game.Hold && notes[i].Duration <= 0 {
			notes[i].Kind = game.Tap
			notes[i].Duration = 0
		}
	}
	return notes
}

func (l *Loader) readSM(path string) (*smFile, []byte, error) {
	raw, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, nil, fmt.Errorf("chart: read %s: %w", path, err)
	}
	f, err := parseSM(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("chart: %s: %w", path, err)
	}
	return f, raw, nil
}

func (l *Loader) smInfo(path string) (*game.Info, error) {
	f, raw, err := l.readSM(path)
	if err != nil {
		return nil, err
	}
	info := &game.Info{
		ID:        hashChart(raw),
		Title:     f.Title,
		Artist:    f.Artist,
		MusicPath: resolve(path, f.Music),
		Offset:    seconds(f.Offset),
	}
	for _, d := range f.Difficulties {
		info.Difficulties = append(info.Difficulties, game.Difficulty{Name: d.Name, Level: d.Level, Source: path})
	}
	return info, nil
}

func (l *Loader) loadSM(path, name string) (*game.Data, error) {
	f, _, err := l.readSM(path)
	if err != nil {
		return nil, err
	}
	for _, d := range f.Difficulties {
		if d.Name == name {
			return &game.Data{
				TimingPoints: f.timingPoints(),
				LaneNotes:    f.notes(d.Section),
			}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s in %s", ErrNoDifficulty, name, path)
}
