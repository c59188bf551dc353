package theme

import "git.lost.host/meutraa/tandem/internal/game"

type Theme interface {
	RenderLaneNote(kind game.LaneKind, lane int) string
	RenderHoldBody(lane int) string
	RenderPathNote(kind game.PathKind) string
	RenderSliderTrail() string
	RenderHitField(lane int, held bool) string
	RenderResult(r game.Result) string
	ResultColor(r game.Result) Color
}
