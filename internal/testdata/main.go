// Package testdata provides an in-memory demo chart for tests.
package testdata

import (
	"github.com/spf13/afero"

	"git.lost.host/meutraa/tandem/internal/chart"
	"git.lost.host/meutraa/tandem/internal/game"
)

const Path = "demo/chart.yaml"

// NoteCount is the number of notes in the Normal difficulty.
const NoteCount = 12

// GetChart returns a loader over a memory filesystem holding the demo chart,
// and the chart's info.
func GetChart() (*chart.Loader, *game.Info, error) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, Path, []byte(data), 0o644); err != nil {
		return nil, nil, err
	}
	loader := chart.NewLoader(fs)
	info, err := loader.ReadInfo(Path)
	if err != nil {
		return nil, nil, err
	}
	return loader, info, nil
}

const data = `
id: demo
title: Demo
artist: Tandem
offset: 0
difficulties:
  - name: Normal
    level: 4
    timing:
      - {time: 0, bpm: 120, meter: 4}
      - {time: 4000, bpm: 180}
    sv:
      - {time: 0, speed: 1}
      - {time: 3000, speed: 2, easing: linear}
    lanes:
      - {time: 1000, lane: 0}
      - {time: 1250, lane: 1}
      - {time: 1500, lane: 2, kind: hold, duration: 500}
      - {time: 1500, lane: 3}
      - {time: 2250, lane: 0, kind: drag, duration: 250, to: 1}
      - {time: 2750, lane: 3}
      - {time: 3000, lane: 2}
      - {time: 4500, lane: 1, kind: hold, duration: 300}
    paths:
      - {time: 3250, x: 0.25, y: 0.25}
      - {time: 3500, x: 0.75, y: 0.25}
      - time: 3750
        x: 0.75
        y: 0.75
        kind: slider
        duration: 400
        path:
          - {x: 0.25, y: 0.75}
      - {time: 5000, x: 0.5, y: 0.5}
  - name: Easy
    level: 1
    lanes:
      - {time: 1000, lane: 0}
      - {time: 2000, lane: 3}
`
