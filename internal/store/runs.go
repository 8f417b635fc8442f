package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xtding233/diamond-sim/internal/game"
)

// Run is one invocation of the simulator over a single game or a season.
type Run struct {
	ID         string     `json:"id"`
	Kind       string     `json:"kind"` // "game" or "season"
	Season     int        `json:"season"`
	Seed       uint64     `json:"seed"`
	Trials     int        `json:"trials"`
	Games      int        `json:"games"`
	Failed     int        `json:"failed"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// GameRecord is one trial of one game. Err is set when the trial aborted.
type GameRecord struct {
	RunID     string          `json:"run_id"`
	GameID    string          `json:"game_id"`
	Trial     int             `json:"trial"`
	Day       int             `json:"day"`
	HomeTeam  string          `json:"home_team"`
	AwayTeam  string          `json:"away_team"`
	HomeScore decimal.Decimal `json:"home_score"`
	AwayScore decimal.Decimal `json:"away_score"`
	Innings   int             `json:"innings"`
	Err       string          `json:"error,omitempty"`
}

// CreateRun inserts a run at its start.
func (s *Store) CreateRun(ctx context.Context, r Run) error {
	if r.ID == "" {
		return fmt.Errorf("run id is required")
	}
	_, err := s.db.ExecContext(ctx, s.q(
		`INSERT INTO runs (id, kind, season, seed, trials, started_at) VALUES (?, ?, ?, ?, ?, ?)`),
		r.ID, r.Kind, r.Season, int64(r.Seed), r.Trials, formatTime(r.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun records the totals of a completed run.
func (s *Store) FinishRun(ctx context.Context, id string, games, failed int, at time.Time) error {
	res, err := s.db.ExecContext(ctx, s.q(
		`UPDATE runs SET games = ?, failed = ?, finished_at = ? WHERE id = ?`),
		games, failed, formatTime(at), id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetRun loads a run by id.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	var (
		r        Run
		seed     int64
		started  string
		finished sql.NullString
	)
	err := s.db.QueryRowContext(ctx, s.q(
		`SELECT id, kind, season, seed, trials, games, failed, started_at, finished_at FROM runs WHERE id = ?`), id,
	).Scan(&r.ID, &r.Kind, &r.Season, &seed, &r.Trials, &r.Games, &r.Failed, &started, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	r.Seed = uint64(seed)
	if r.StartedAt, err = parseTime(started); err != nil {
		return Run{}, fmt.Errorf("parse started_at: %w", err)
	}
	if finished.Valid {
		t, err := parseTime(finished.String)
		if err != nil {
			return Run{}, fmt.Errorf("parse finished_at: %w", err)
		}
		r.FinishedAt = &t
	}
	return r, nil
}

// SaveResults upserts trial results in one transaction.
func (s *Store) SaveResults(ctx context.Context, recs []GameRecord) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.q(
		`INSERT INTO game_results (run_id, game_id, trial, day, home_team, away_team, home_score, away_score, innings, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(run_id, game_id, trial) DO UPDATE SET
		   home_score = excluded.home_score,
		   away_score = excluded.away_score,
		   innings = excluded.innings,
		   error = excluded.error`))
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range recs {
		if _, err := stmt.ExecContext(ctx, r.RunID, r.GameID, r.Trial, r.Day, r.HomeTeam, r.AwayTeam,
			r.HomeScore.String(), r.AwayScore.String(), r.Innings, r.Err); err != nil {
			return fmt.Errorf("insert result %s/%d: %w", r.GameID, r.Trial, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Results lists a run's results ordered by day, game and trial.
func (s *Store) Results(ctx context.Context, runID string) ([]GameRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.q(
		`SELECT run_id, game_id, trial, day, home_team, away_team, home_score, away_score, innings, error
		 FROM game_results WHERE run_id = ? ORDER BY day, game_id, trial`), runID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []GameRecord
	for rows.Next() {
		var (
			r          GameRecord
			home, away string
		)
		if err := rows.Scan(&r.RunID, &r.GameID, &r.Trial, &r.Day, &r.HomeTeam, &r.AwayTeam,
			&home, &away, &r.Innings, &r.Err); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		if r.HomeScore, err = decimal.NewFromString(home); err != nil {
			return nil, fmt.Errorf("parse home score: %w", err)
		}
		if r.AwayScore, err = decimal.NewFromString(away); err != nil {
			return nil, fmt.Errorf("parse away score: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SaveSnapshot stores the latest snapshot of a game, replacing any earlier one.
func (s *Store) SaveSnapshot(ctx context.Context, runID string, snap game.Snapshot) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx, s.q(
		`INSERT INTO snapshots (game_id, run_id, body, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(game_id) DO UPDATE SET run_id = excluded.run_id, body = excluded.body, updated_at = excluded.updated_at`),
		snap.GameID, runID, string(body), formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the stored snapshot of gameID.
func (s *Store) LoadSnapshot(ctx context.Context, gameID string) (game.Snapshot, error) {
	var body string
	err := s.db.QueryRowContext(ctx, s.q(`SELECT body FROM snapshots WHERE game_id = ?`), gameID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Snapshot{}, fmt.Errorf("snapshot %s: %w", gameID, ErrNotFound)
	}
	if err != nil {
		return game.Snapshot{}, fmt.Errorf("get snapshot: %w", err)
	}
	var snap game.Snapshot
	if err := json.Unmarshal([]byte(body), &snap); err != nil {
		return game.Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return snap, nil
}
