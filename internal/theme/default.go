package theme

import (
	"fmt"

	"git.lost.host/meutraa/tandem/internal/game"
)

// Color is a 24 bit terminal colour.
type Color struct {
	R, G, B uint8
}

// Escape is the foreground escape sequence for c.
func (c Color) Escape() string {
	return fmt.Sprintf("\033[38;2;%v;%v;%vm", c.R, c.G, c.B)
}

type DefaultTheme struct {
}

func paint(c Color, s string) string {
	return c.Escape() + s + "\033[0m"
}

func (t *DefaultTheme) RenderLaneNote(kind game.LaneKind, lane int) string {
	return paint(laneColor(lane), kindSyms[kind])
}

func (t *DefaultTheme) RenderHoldBody(lane int) string {
	return paint(laneColor(lane), holdSym)
}

func (t *DefaultTheme) RenderPathNote(kind game.PathKind) string {
	if kind == game.Slider {
		return paint(pathColor, sliderSym)
	}
	return paint(pathColor, circleSym)
}

func (t *DefaultTheme) RenderSliderTrail() string {
	return paint(trailColor, trailSym)
}

func (t *DefaultTheme) RenderHitField(lane int, held bool) string {
	if held {
		return paint(laneColor(lane), heldSym)
	}
	return barSym
}

// RenderResult is the right aligned, coloured tier name.
func (t *DefaultTheme) RenderResult(r game.Result) string {
	return paint(t.ResultColor(r), fmt.Sprintf("%8v", r))
}

func (t *DefaultTheme) ResultColor(r game.Result) Color {
	col, ok := resultColors[r]
	if !ok {
		return white
	}
	return col
}

const (
	holdSym   = "┃"
	heldSym   = "═"
	barSym    = "-"
	circleSym = "◯"
	sliderSym = "◎"
	trailSym  = "·"
)

var (
	white      = Color{255, 255, 255}
	pathColor  = Color{236, 195, 0}
	trailColor = Color{106, 106, 106}

	kindSyms = map[game.LaneKind]string{
		game.Tap:  "⬤",
		game.Hold: "▣",
		game.Drag: "◆",
	}
	laneColors = [...]Color{
		{236, 30, 0},   // red
		{0, 118, 236},  // blue
		{0, 118, 236},  // blue
		{236, 30, 0},   // red
	}
	resultColors = map[game.Result]Color{
		game.Perfect: {173, 236, 236}, // light blue
		game.Great:   {0, 236, 128},   // green
		game.Good:    {236, 195, 0},   // yellow
		game.Bad:     {236, 128, 0},   // orange
		game.Miss:    {236, 30, 0},    // red
	}
)

func laneColor(lane int) Color {
	if lane < 0 || lane >= len(laneColors) {
		return white
	}
	return laneColors[lane]
}
