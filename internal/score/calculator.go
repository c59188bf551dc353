package score

import (
	"time"

	"git.lost.host/meutraa/tandem/internal/game"
)

const (
	MaxScore = 1000000

	// Combo bonus in thousandths per combo step, and its cap.
	comboStep     = 1
	comboBonusCap = 100
)

// weight is the score ratio and accuracy weight of a tier, in percent.
var weight = map[game.Result]int64{
	game.Perfect: 100,
	game.Great:   70,
	game.Good:    40,
	game.Bad:     10,
	game.Miss:    0,
}

// Calculator turns a stream of judgements into score, combo and accuracy.
type Calculator struct {
	baseScore float64

	score    int64
	combo    int
	maxCombo int
	counts   map[game.Result]int
	judged   int
	weights  int64 // Sum of accuracy weights in percent

	hitErrors []float64

	now func() time.Time
}

func NewCalculator() *Calculator {
	c := &Calculator{now: time.Now}
	c.Initialize(0)
	return c
}

// Initialize prepares for a chart of total notes.
func (c *Calculator) Initialize(total int) {
	c.baseScore = 0
	if total > 0 {
		c.baseScore = float64(MaxScore) / float64(total)
	}
	c.score = 0
	c.combo = 0
	c.maxCombo = 0
	c.counts = make(map[game.Result]int, len(game.Tiers))
	c.judged = 0
	c.weights = 0
	c.hitErrors = nil
	if c.now == nil {
		c.now = time.Now
	}
}

// OnJudge records one final judgement. None is ignored.
func (c *Calculator) OnJudge(r game.Result, hitError float64) {
	w, ok := weight[r]
	if !ok {
		return
	}

	c.counts[r]++
	c.judged++
	c.weights += w

	if r == game.Bad || r == game.Miss {
		c.combo = 0
	} else {
		c.combo++
		if c.combo > c.maxCombo {
			c.maxCombo = c.combo
		}
	}

	bonus := int64(c.combo * comboStep)
	if bonus > comboBonusCap {
		bonus = comboBonusCap
	}
	// baseScore * ratio * (1 + bonus), kept in integers where possible.
	c.score += int64(c.baseScore * float64(w*(1000+bonus)) / 100000)

	if r != game.Miss {
		c.hitErrors = append(c.hitErrors, hitError)
	}
}

func (c *Calculator) Score() int64 {
	return c.score
}

func (c *Calculator) Combo() int {
	return c.combo
}

func (c *Calculator) MaxCombo() int {
	return c.maxCombo
}

func (c *Calculator) Count(r game.Result) int {
	return c.counts[r]
}

func (c *Calculator) Judged() int {
	return c.judged
}

// HitErrors returns the signed errors of every non-miss judgement in order.
func (c *Calculator) HitErrors() []float64 {
	return c.hitErrors
}

// Accuracy is the mean accuracy weight in percent, 100 before any judgement.
func (c *Calculator) Accuracy() float64 {
	if c.judged == 0 {
		return 100
	}
	return float64(c.weights) / float64(c.judged)
}

func (c *Calculator) IsFullCombo() bool {
	return c.counts[game.Bad] == 0 && c.counts[game.Miss] == 0
}

func (c *Calculator) IsAllPerfect() bool {
	return c.IsFullCombo() && c.counts[game.Great] == 0 && c.counts[game.Good] == 0
}

func (c *Calculator) Grade() Grade {
	acc := c.Accuracy()
	switch {
	case acc >= 99 && c.counts[game.Good] == 0 && c.IsFullCombo():
		return SS
	case acc >= 95:
		return S
	case acc >= 90:
		return A
	case acc >= 80:
		return B
	case acc >= 70:
		return C
	}
	return D
}

// Result snapshots the session for the score history.
func (c *Calculator) Result(info *game.Info, difficulty game.Difficulty) GameResult {
	r := GameResult{
		DifficultyName:  difficulty.Name,
		DifficultyLevel: difficulty.Level,
		Score:           c.score,
		Accuracy:        c.Accuracy(),
		MaxCombo:        c.maxCombo,
		Grade:           c.Grade(),
		Perfect:         c.counts[game.Perfect],
		Great:           c.counts[game.Great],
		Good:            c.counts[game.Good],
		Bad:             c.counts[game.Bad],
		Miss:            c.counts[game.Miss],
		FullCombo:       c.IsFullCombo(),
		AllPerfect:      c.IsAllPerfect(),
		Timestamp:       c.now().Unix(),
		HitErrors:       append([]float64(nil), c.hitErrors...),
	}
	if info != nil {
		r.ChartID = info.ID
		r.ChartTitle = info.Title
	}
	return r
}
