// Package store persists simulation runs, per-trial results and resumable
// game snapshots in SQLite or PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	kind         TEXT NOT NULL,
	season       INTEGER NOT NULL,
	seed         BIGINT NOT NULL,
	trials       INTEGER NOT NULL,
	games        INTEGER NOT NULL DEFAULT 0,
	failed       INTEGER NOT NULL DEFAULT 0,
	started_at   TEXT NOT NULL,
	finished_at  TEXT
);

CREATE TABLE IF NOT EXISTS game_results (
	run_id      TEXT NOT NULL,
	game_id     TEXT NOT NULL,
	trial       INTEGER NOT NULL,
	day         INTEGER NOT NULL,
	home_team   TEXT NOT NULL,
	away_team   TEXT NOT NULL,
	home_score  TEXT NOT NULL,
	away_score  TEXT NOT NULL,
	innings     INTEGER NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, game_id, trial)
);

CREATE TABLE IF NOT EXISTS snapshots (
	game_id     TEXT PRIMARY KEY,
	run_id      TEXT NOT NULL,
	body        TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);
`

// Store wraps a database handle. Queries are written with ? placeholders
// and rebound for PostgreSQL.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to dsn with driver and applies the schema.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("storage dsn is required")
	}
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", driver, err)
	}
	if driver == DriverSQLite {
		// one connection keeps :memory: databases shared and writes serialized
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s db: %w", driver, err)
	}

	s := &Store{db: db, driver: driver}
	if driver == DriverSQLite {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("pragma: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) q(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	return rebind(query)
}

// rebind rewrites ? placeholders as $1, $2, ...
func rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseTime(s string) (time.Time, error) { return time.Parse(time.RFC3339Nano, s) }
