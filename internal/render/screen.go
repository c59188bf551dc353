package render

import (
	"fmt"
	"math"
	"strings"
	"time"

	"git.lost.host/meutraa/tandem/internal/game"
	"git.lost.host/meutraa/tandem/internal/judge"
	"git.lost.host/meutraa/tandem/internal/play"
	"git.lost.host/meutraa/tandem/internal/theme"
)

const (
	columnSpacing  = 3
	barOffset      = 3 // Rows between the hit bar and the bottom
	sideWidth      = 28
	feedbackFrames = 60

	// Path notes appear this long before their time.
	approach = 1000 * time.Millisecond
)

// Screen draws a play session: the four lanes, the path playfield and the
// statistics panel.
type Screen struct {
	r     Renderer
	th    theme.Theme
	speed float64 // Rows per second at SV 1

	rows, cols int
	hitRow     int
	laneCols   [4]int
	sideCol    int

	// Path playfield, inclusive bounds
	top, left, bottom, right int

	lastJudged time.Duration
}

func NewScreen(r Renderer, th theme.Theme, rows, cols int, scrollSpeed float64) *Screen {
	s := &Screen{r: r, th: th, speed: scrollSpeed, lastJudged: -1}
	s.Resize(rows, cols)
	return s
}

// Resize recomputes the layout for a terminal of rows by cols.
func (s *Screen) Resize(rows, cols int) {
	s.rows, s.cols = rows, cols
	s.hitRow = rows - barOffset
	if s.hitRow < 2 {
		s.hitRow = 2
	}

	s.sideCol = 2
	mc := s.sideCol + sideWidth + columnSpacing*4
	for i := range s.laneCols {
		s.laneCols[i] = mc + (2*i-3)*columnSpacing
	}

	s.top = 3
	s.bottom = s.hitRow
	s.left = s.laneCols[3] + columnSpacing*3
	s.right = cols - 2
	if s.right <= s.left {
		s.right = s.left + 1
	}
}

// Draw renders one frame of the driver's session.
func (s *Screen) Draw(d *play.Driver) {
	st := d.Session()
	s.r.Clear()

	s.drawProgress(st.Progress())
	s.drawStats(d)

	if st.IsInCountdown() {
		s.r.Fill(s.rows/2, s.laneCols[1]+columnSpacing, fmt.Sprintf("%d", st.CountdownNumber()))
	}
	if st.IsPaused() {
		s.r.Fill(s.rows/2, s.laneCols[0], "PAUSED")
	}

	now := st.Now()
	for lane := range s.laneCols {
		s.r.Fill(s.hitRow, s.laneCols[lane], s.th.RenderHitField(lane, d.Held(lane)))
	}
	s.drawLaneNotes(d, now)
	s.drawPlayfield(d, now)
	s.drawFeedback(d)
}

// rowOf returns the row of a note at time t, with rows above the hit bar
// for future notes.
func (s *Screen) rowOf(t, now time.Duration, sv float64) int {
	distance := (t - now).Seconds() * s.speed * sv
	return s.hitRow - int(math.Round(distance))
}

func (s *Screen) inField(row int) bool {
	return row > 1 && row < s.hitRow
}

func (s *Screen) drawLaneNotes(d *play.Driver, now time.Duration) {
	st := d.Session()
	sv := st.SVSpeed(now)
	for _, n := range st.ActiveLaneNotes() {
		if n.Judged || n.Lane < 0 || n.Lane >= len(s.laneCols) {
			continue
		}
		col := s.laneCols[n.Lane]
		head := s.rowOf(n.Time, now, sv)
		if n.Head != game.None && head > s.hitRow {
			// A hit hold stays on the bar until its end.
			head = s.hitRow
		}

		if n.Kind != game.Tap {
			end := s.rowOf(n.End(), now, sv)
			for row := end + 1; row < head; row++ {
				if s.inField(row) {
					s.r.Fill(row, col, s.th.RenderHoldBody(n.Lane))
				}
			}
			if n.Kind == game.Drag && s.inField(end) {
				s.r.Fill(end, s.laneCols[clampLane(n.DragTo)], s.th.RenderLaneNote(game.Drag, n.DragTo))
			}
		}
		if s.inField(head) {
			s.r.Fill(head, col, s.th.RenderLaneNote(n.Kind, n.Lane))
		}
	}
}

func clampLane(lane int) int {
	if lane < 0 {
		return 0
	}
	if lane > 3 {
		return 3
	}
	return lane
}

// cell maps a normalized point to the playfield.
func (s *Screen) cell(p game.Point) (row, col int) {
	row = s.top + int(math.Round(p.Y*float64(s.bottom-s.top)))
	col = s.left + int(math.Round(p.X*float64(s.right-s.left)))
	return row, col
}

func (s *Screen) drawPlayfield(d *play.Driver, now time.Duration) {
	for _, row := range []int{s.top - 1, s.bottom + 1} {
		s.r.Fill(row, s.left, strings.Repeat("─", s.right-s.left+1))
	}

	notes := d.Session().ActivePathNotes()
	for i := range notes {
		n := &notes[i]
		if n.Judged || n.Time-now > approach {
			continue
		}
		if n.Kind == game.Slider {
			for step := 1; step < 8; step++ {
				row, col := s.cell(judge.SliderPosition(n, float64(step)/8))
				s.r.Fill(row, col, s.th.RenderSliderTrail())
			}
			if n.Head != game.None {
				t := 1.0
				if n.Duration > 0 {
					t = float64(now-n.Time) / float64(n.Duration)
				}
				row, col := s.cell(judge.SliderPosition(n, t))
				s.r.Fill(row, col, s.th.RenderPathNote(game.Slider))
				continue
			}
		}
		row, col := s.cell(n.Pos)
		s.r.Fill(row, col, s.th.RenderPathNote(n.Kind))
	}

	row, col := s.cell(d.Cursor())
	s.r.Fill(row, col, "+")
}

func (s *Screen) drawFeedback(d *play.Driver) {
	last := d.Last()
	if last.Result == game.None || last.Time == s.lastJudged {
		return
	}
	s.lastJudged = last.Time
	col := s.laneCols[0]
	if last.Lane >= 0 {
		col = s.laneCols[clampLane(last.Lane)] - 3
	}
	s.r.AddDecoration(col, s.hitRow+1, s.th.RenderResult(last.Result), feedbackFrames)
}

func (s *Screen) drawProgress(progress float64) {
	width := int(float64(s.cols-2) * progress)
	if width > 0 {
		s.r.Fill(1, 1, strings.Repeat("━", width))
	}
}

func (s *Screen) drawStats(d *play.Driver) {
	st := d.Session()
	c := d.Calculator()
	mean, stdev := Stats(c.HitErrors())
	w := st.ActiveLaneRange()
	p := st.ActivePathRange()

	lines := []string{
		fmt.Sprintf("      Score:  %7d", c.Score()),
		fmt.Sprintf("      Combo:  %7d", c.Combo()),
		fmt.Sprintf("  Max Combo:  %7d", c.MaxCombo()),
		fmt.Sprintf("   Accuracy:  %7.2f%%", c.Accuracy()),
		fmt.Sprintf("       Mean:  %7.2f ms", mean),
		fmt.Sprintf("      Stdev:  %7.2f ms", stdev),
		fmt.Sprintf("        BPM:  %7.1f", st.BPM(st.Now())),
		fmt.Sprintf("      Lanes:  [%v - %v]", w.Begin, w.End),
		fmt.Sprintf("      Paths:  [%v - %v]", p.Begin, p.End),
	}
	for i, line := range lines {
		s.r.Fill(3+i, s.sideCol, line)
	}
	for i, r := range game.Tiers {
		s.r.Fill(4+len(lines)+i, s.sideCol, fmt.Sprintf("%v:  %7v", s.th.RenderResult(r), c.Count(r)))
	}
}

// Stats returns the mean and sample standard deviation of hit errors.
func Stats(errors []float64) (mean, stdev float64) {
	if len(errors) == 0 {
		return 0, 0
	}
	for _, e := range errors {
		mean += e
	}
	mean /= float64(len(errors))
	if len(errors) < 2 {
		return mean, 0
	}
	for _, e := range errors {
		xi := e - mean
		stdev += xi * xi
	}
	stdev /= float64(len(errors) - 1)
	return mean, math.Sqrt(stdev)
}
