package score

type Grade string

const (
	SS Grade = "SS"
	S  Grade = "S"
	A  Grade = "A"
	B  Grade = "B"
	C  Grade = "C"
	D  Grade = "D"
)

// GameResult is one finished play. It is the row format of the score
// history.
type GameResult struct {
	ChartID         string    `json:"chart_id"`
	ChartTitle      string    `json:"chart_title"`
	DifficultyName  string    `json:"difficulty_name"`
	DifficultyLevel int       `json:"difficulty_level"`
	Score           int64     `json:"score"`
	Accuracy        float64   `json:"accuracy"`
	MaxCombo        int       `json:"max_combo"`
	Grade           Grade     `json:"grade"`
	Perfect         int       `json:"perfect"`
	Great           int       `json:"great"`
	Good            int       `json:"good"`
	Bad             int       `json:"bad"`
	Miss            int       `json:"miss"`
	FullCombo       bool      `json:"full_combo"`
	AllPerfect      bool      `json:"all_perfect"`
	Timestamp       int64     `json:"timestamp"` // Unix seconds
	HitErrors       []float64 `json:"hit_errors"` // Milliseconds, positive is early
}
