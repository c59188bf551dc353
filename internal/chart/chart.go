// Package chart finds and loads charts for the session.
package chart

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"git.lost.host/meutraa/tandem/internal/game"
)

var (
	ErrUnknownFormat = errors.New("chart: unknown format")
	ErrNoDifficulty  = errors.New("chart: no such difficulty")
	ErrNoCharts      = errors.New("chart: no charts found")
)

// Loader reads charts from a filesystem. It implements session.Loader.
type Loader struct {
	fs afero.Fs
}

func NewLoader(fs afero.Fs) *Loader {
	return &Loader{fs: fs}
}

// Load reads the note data of one difficulty and validates it.
func (l *Loader) Load(info *game.Info, difficulty int) (*game.Data, error) {
	if info == nil || difficulty < 0 || difficulty >= len(info.Difficulties) {
		return nil, ErrNoDifficulty
	}
	d := info.Difficulties[difficulty]

	var data *game.Data
	var err error
	switch format(d.Source) {
	case formatYAML:
		data, err = l.loadYAML(d.Source, d.Name)
	case formatSM:
		data, err = l.loadSM(d.Source, d.Name)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, d.Source)
	}
	if err != nil {
		return nil, err
	}
	if err := Validate(data); err != nil {
		return nil, fmt.Errorf("chart: %s %s: %w", info.ID, d.Name, err)
	}
	return data, nil
}

// ReadInfo reads the metadata of a chart file.
func (l *Loader) ReadInfo(path string) (*game.Info, error) {
	switch format(path) {
	case formatYAML:
		return l.yamlInfo(path)
	case formatSM:
		return l.smInfo(path)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// Scan walks dir and returns the metadata of every chart in it. A chart
// without its own music file uses an audio file found next to it.
func (l *Loader) Scan(dir string) ([]*game.Info, error) {
	var charts []string
	music := map[string]string{}

	err := afero.Walk(l.fs, dir, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(p)) {
		case ".ogg", ".mp3", ".wav":
			music[filepath.Dir(p)] = p
		case ".sm", ".yaml", ".yml":
			charts = append(charts, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("chart: unable to walk song directory: %w", err)
	}

	infos := []*game.Info{}
	for _, p := range charts {
		info, err := l.ReadInfo(p)
		if err != nil {
			return nil, err
		}
		if len(info.Difficulties) == 0 {
			continue
		}
		if info.MusicPath == "" {
			info.MusicPath = music[filepath.Dir(p)]
		}
		infos = append(infos, info)
	}
	if len(infos) == 0 {
		return nil, ErrNoCharts
	}
	return infos, nil
}

type chartFormat int

const (
	formatUnknown chartFormat = iota
	formatYAML
	formatSM
)

func format(path string) chartFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	case ".sm":
		return formatSM
	}
	return formatUnknown
}

func hashChart(data []byte) string {
	sum := sha256.Sum256(data)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// resolve makes a chart relative path relative to the working directory.
func resolve(chartPath, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(chartPath), p)
}
