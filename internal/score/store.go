package score

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"
)

var ErrNotFound = errors.New("score: not found")

// Store keeps the score history.
type Store interface {
	Save(ctx context.Context, r GameResult) (string, error)
	History(ctx context.Context, chartID, difficulty string) ([]GameResult, error)
	Best(ctx context.Context, chartID, difficulty string) (GameResult, error)
	Close() error
}

var _ Store = (*SQLiteStore)(nil)

const schema = `
create table if not exists scores
  (
	  id               text not null primary key,
	  chart_id         text not null,
	  chart_title      text not null,
	  difficulty_name  text not null,
	  difficulty_level integer not null,
	  score            integer not null,
	  accuracy         real not null,
	  max_combo        integer not null,
	  grade            text not null,
	  perfect          integer not null,
	  great            integer not null,
	  good             integer not null,
	  bad              integer not null,
	  miss             integer not null,
	  full_combo       integer not null,
	  all_perfect      integer not null,
	  timestamp        integer not null,
	  hit_errors       blob
  );
create index if not exists idx_scores_chart on scores(chart_id, difficulty_name);
`

const columns = `chart_id, chart_title, difficulty_name, difficulty_level, score, accuracy,
	max_combo, grade, perfect, great, good, bad, miss, full_combo, all_perfect, timestamp, hit_errors`

type SQLiteStore struct {
	db *sql.DB
}

// Open opens or creates the score database at path.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("score: open db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("score: apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func newID(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), ulid.Monotonic(rand.Reader, 0)).String()
}

// Save inserts a result and returns its id.
func (s *SQLiteStore) Save(ctx context.Context, r GameResult) (string, error) {
	errs, err := json.Marshal(r.HitErrors)
	if err != nil {
		return "", fmt.Errorf("score: marshal hit errors: %w", err)
	}
	id := newID(time.Unix(r.Timestamp, 0))
	_, err = s.db.ExecContext(ctx,
		`insert into scores(id, `+columns+`) values(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, r.ChartID, r.ChartTitle, r.DifficultyName, r.DifficultyLevel, r.Score, r.Accuracy,
		r.MaxCombo, string(r.Grade), r.Perfect, r.Great, r.Good, r.Bad, r.Miss,
		r.FullCombo, r.AllPerfect, r.Timestamp, errs,
	)
	if err != nil {
		return "", fmt.Errorf("score: insert: %w", err)
	}
	return id, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(row scanner) (GameResult, error) {
	var r GameResult
	var grade string
	var errs []byte
	if err := row.Scan(
		&r.ChartID, &r.ChartTitle, &r.DifficultyName, &r.DifficultyLevel, &r.Score, &r.Accuracy,
		&r.MaxCombo, &grade, &r.Perfect, &r.Great, &r.Good, &r.Bad, &r.Miss,
		&r.FullCombo, &r.AllPerfect, &r.Timestamp, &errs,
	); err != nil {
		return r, err
	}
	r.Grade = Grade(grade)
	if len(errs) > 0 {
		if err := json.Unmarshal(errs, &r.HitErrors); err != nil {
			return r, fmt.Errorf("score: unmarshal hit errors: %w", err)
		}
	}
	return r, nil
}

// History lists the results of a chart difficulty, oldest first.
func (s *SQLiteStore) History(ctx context.Context, chartID, difficulty string) ([]GameResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+columns+` from scores where chart_id = ? and difficulty_name = ? order by timestamp, id`,
		chartID, difficulty)
	if err != nil {
		return nil, fmt.Errorf("score: query history: %w", err)
	}
	defer rows.Close()

	results := []GameResult{}
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("score: scan history: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Best returns the highest scoring result of a chart difficulty.
func (s *SQLiteStore) Best(ctx context.Context, chartID, difficulty string) (GameResult, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+columns+` from scores where chart_id = ? and difficulty_name = ?
		order by score desc, timestamp limit 1`,
		chartID, difficulty)
	r, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return r, ErrNotFound
	}
	if err != nil {
		return r, fmt.Errorf("score: query best: %w", err)
	}
	return r, nil
}
