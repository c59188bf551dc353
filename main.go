package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eiannone/keyboard"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"git.lost.host/meutraa/tandem/internal/audio"
	"git.lost.host/meutraa/tandem/internal/chart"
	"git.lost.host/meutraa/tandem/internal/config"
	"git.lost.host/meutraa/tandem/internal/judge"
	"git.lost.host/meutraa/tandem/internal/play"
	"git.lost.host/meutraa/tandem/internal/render"
	"git.lost.host/meutraa/tandem/internal/score"
	"git.lost.host/meutraa/tandem/internal/session"
	"git.lost.host/meutraa/tandem/internal/theme"
)

var (
	errQuit     = errors.New("quit")
	errFinished = errors.New("finished")
)

// The cursor moves this far per arrow key press.
const cursorStep = 0.05

func main() {
	if err := run(); nil != err {
		log.Fatalln(err)
	}
}

func run() error {
	cfg, err := config.Parse(os.Args[1:])
	if nil != err {
		return err
	}

	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if nil != err {
		return fmt.Errorf("unable to open log file: %w", err)
	}
	defer logFile.Close()
	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: cfg.LogLevel}))

	loader := chart.NewLoader(afero.NewOsFs())
	charts, err := loader.Scan(cfg.Directory)
	if nil != err {
		return err
	}
	if cfg.Chart >= len(charts) {
		for i, c := range charts {
			fmt.Printf("%2v) %v - %v\n", i, c.Artist, c.Title)
		}
		return fmt.Errorf("no chart %v in %v", cfg.Chart, cfg.Directory)
	}
	info := charts[cfg.Chart]

	store, err := score.Open(cfg.Database)
	if nil != err {
		return err
	}
	defer store.Close()

	state := session.New(loader, audio.NewPlayer(), session.Config{
		GlobalOffset: cfg.Offset,
		JudgeOffset:  cfg.JudgeOffset,
	}, logger)
	driver := play.New(state, judge.New(judge.WithOffset(cfg.JudgeOffset)), logger)
	if !driver.Start(info, cfg.Difficulty) {
		for i, d := range info.Difficulties {
			fmt.Printf("%2v) %3v  %v\n", i, d.Level, d.Name)
		}
		return fmt.Errorf("unable to start difficulty %v of %v", cfg.Difficulty, info.Title)
	}
	defer state.Reset()

	columns, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if nil != err {
		return fmt.Errorf("unable to get terminal size: %w", err)
	}

	keyChannel, err := keyboard.GetKeys(128)
	if nil != err {
		return fmt.Errorf("unable to open keyboard: %w", err)
	}
	defer func() {
		if err := keyboard.Close(); nil != err {
			logger.Warn("unable to close keyboard", slog.Any("error", err))
		}
	}()

	r := render.New(os.Stdout, int(os.Stdout.Fd()))
	if err := r.Init(); nil != err {
		return err
	}
	screen := render.NewScreen(r, &theme.DefaultTheme{}, rows, columns, cfg.ScrollSpeed)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	events := make(chan play.Event, 128)
	pause := make(chan struct{}, 1)

	g.Go(func() error {
		return pumpKeys(ctx, cfg, keyChannel, events, pause)
	})
	g.Go(func() error {
		var auto *play.Autoplay
		if cfg.Autoplay {
			auto = play.NewAutoplay()
		}
		err := r.RenderLoop(ctx, cfg.FramePeriod, func(dt time.Duration) bool {
			select {
			case <-pause:
				if state.IsPaused() {
					driver.Resume()
				} else {
					driver.Pause()
				}
			default:
			}

			var input []play.Event
			for len(events) > 0 {
				input = append(input, <-events)
			}
			if auto != nil {
				input = append(input, auto.Events(state, state.Now()+dt)...)
			}

			driver.Frame(dt, input)
			screen.Draw(driver)
			return !state.IsFinished()
		})
		if nil != err {
			return err
		}
		return errFinished
	})

	err = g.Wait()
	if err := r.Deinit(); nil != err {
		logger.Warn("unable to restore terminal", slog.Any("error", err))
	}
	switch {
	case errors.Is(err, errQuit), errors.Is(err, context.Canceled):
		return nil
	case !errors.Is(err, errFinished):
		return err
	}

	result, ok := driver.Result()
	if !ok {
		return nil
	}
	if cfg.Autoplay {
		return render.Summary(os.Stdout, result, nil)
	}

	var best *score.GameResult
	prev, err := store.Best(context.Background(), result.ChartID, result.DifficultyName)
	switch {
	case nil == err:
		best = &prev
	case !errors.Is(err, score.ErrNotFound):
		logger.Warn("unable to read best score", slog.Any("error", err))
	}
	if _, err := store.Save(context.Background(), result); nil != err {
		logger.Error("unable to save score", slog.Any("error", err))
	}
	return render.Summary(os.Stdout, result, best)
}

// pumpKeys turns key presses into play events until ctx is done or the
// player quits. The terminal reports no key releases, so holds count as
// held until they end.
func pumpKeys(ctx context.Context, cfg *config.Config, keys <-chan keyboard.KeyEvent, events chan<- play.Event, pause chan<- struct{}) error {
	cursor := play.Event{Kind: play.MouseMove, X: 0.5, Y: 0.5}
	down := false

	send := func(e play.Event) {
		select {
		case events <- e:
		default:
		}
	}
	move := func(dx, dy float64) {
		cursor.X = min(max(cursor.X+dx, 0), 1)
		cursor.Y = min(max(cursor.Y+dy, 0), 1)
		send(cursor)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case key, ok := <-keys:
			if !ok {
				return errQuit
			}
			if nil != key.Err {
				return key.Err
			}
			switch key.Key {
			case keyboard.KeyEsc, keyboard.KeyCtrlC:
				return errQuit
			case keyboard.KeyEnter:
				select {
				case pause <- struct{}{}:
				default:
				}
			case keyboard.KeyArrowUp:
				move(0, -cursorStep)
			case keyboard.KeyArrowDown:
				move(0, cursorStep)
			case keyboard.KeyArrowLeft:
				move(-cursorStep, 0)
			case keyboard.KeyArrowRight:
				move(cursorStep, 0)
			case keyboard.KeySpace:
				// Space toggles the button so sliders can be followed.
				kind := play.MouseDown
				if down {
					kind = play.MouseUp
				}
				down = !down
				send(play.Event{Kind: kind, X: cursor.X, Y: cursor.Y})
			default:
				if lane := cfg.KeyLane(key.Rune); lane >= 0 {
					send(play.Event{Kind: play.KeyDown, Lane: lane})
				}
			}
		}
	}
}
