package render

import (
	"context"
	"time"

	"git.lost.host/meutraa/tandem/internal/theme"
)

type Renderer interface {
	Init() error
	Deinit() error
	AddDecoration(col, row int, content string, frames int)
	RenderLoop(ctx context.Context, period time.Duration, render func(dt time.Duration) bool) error
	Clear()
	Fill(row, column int, message string)
	FillColor(row, column int, color theme.Color, message string)
}
