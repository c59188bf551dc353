package render

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"git.lost.host/meutraa/tandem/internal/score"
)

// Summary prints a finished game and, if there is one, the best earlier
// result of the same chart and difficulty.
func Summary(w io.Writer, r score.GameResult, best *score.GameResult) error {
	mean, stdev := Stats(r.HitErrors)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "%v [%v %v]\t\n", r.ChartTitle, r.DifficultyName, r.DifficultyLevel)
	fmt.Fprintf(tw, "Grade\t%v\t\n", r.Grade)
	fmt.Fprintf(tw, "Score\t%d\t\n", r.Score)
	fmt.Fprintf(tw, "Accuracy\t%.2f%%\t\n", r.Accuracy)
	fmt.Fprintf(tw, "Max Combo\t%d\t\n", r.MaxCombo)
	fmt.Fprintf(tw, "Perfect / Great / Good / Bad / Miss\t%d / %d / %d / %d / %d\t\n",
		r.Perfect, r.Great, r.Good, r.Bad, r.Miss)
	fmt.Fprintf(tw, "Mean / Stdev\t%.2f / %.2f ms\t\n", mean, stdev)
	switch {
	case r.AllPerfect:
		fmt.Fprintf(tw, "\tAll Perfect\t\n")
	case r.FullCombo:
		fmt.Fprintf(tw, "\tFull Combo\t\n")
	}
	if best != nil {
		when := time.Unix(best.Timestamp, 0).Format(time.DateTime)
		fmt.Fprintf(tw, "Best\t%d (%v, %v)\t\n", best.Score, best.Grade, when)
	}
	return tw.Flush()
}
