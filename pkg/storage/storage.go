// Package storage keeps a local SQLite database with the cached
// compatibility datasets and a history of past scans.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNoDataset is returned when a dataset has never been cached.
var ErrNoDataset = errors.New("dataset not cached")

type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS datasets (
  source     TEXT PRIMARY KEY,
  url        TEXT NOT NULL,
  body       BLOB NOT NULL,
  fetched_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS scan_runs (
  id            INTEGER PRIMARY KEY,
  ran_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  origin        TEXT NOT NULL,
  feature_count INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_time ON scan_runs(ran_at);
CREATE TABLE IF NOT EXISTS scan_matches (
  id          INTEGER PRIMARY KEY,
  run_id      INTEGER NOT NULL REFERENCES scan_runs(id),
  feature_key TEXT NOT NULL,
  title       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_matches_run ON scan_matches(run_id);
    `); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// PutDataset stores one raw dataset body, replacing any previous copy for
// the same source name.
func (d *DB) PutDataset(ctx context.Context, source, url string, body []byte) error {
	_, err := d.sql.ExecContext(ctx, `INSERT INTO datasets(source, url, body, fetched_at) VALUES(?,?,?,CURRENT_TIMESTAMP)
ON CONFLICT(source) DO UPDATE SET url = excluded.url, body = excluded.body, fetched_at = CURRENT_TIMESTAMP`, source, url, body)
	return err
}

// GetDataset returns the cached body for a source and when it was fetched.
func (d *DB) GetDataset(ctx context.Context, source string) ([]byte, time.Time, error) {
	var body []byte
	var fetchedAtStr string
	err := d.sql.QueryRowContext(ctx, "SELECT body, fetched_at FROM datasets WHERE source = ?", source).Scan(&body, &fetchedAtStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, ErrNoDataset
	}
	if err != nil {
		return nil, time.Time{}, err
	}
	return body, parseSQLiteTime(fetchedAtStr), nil
}

// Match is one feature found during a recorded scan.
type Match struct {
	FeatureKey string
	Title      string
}

// ScanRun is one entry of the scan history.
type ScanRun struct {
	ID           int64
	RanAt        time.Time
	Origin       string
	FeatureCount int
	Matches      []Match
}

// RecordScan appends one scan to the history. Origin is a short label of
// what was scanned, a file name or a URL.
func (d *DB) RecordScan(ctx context.Context, origin string, matches []Match) (int64, error) {
	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `INSERT INTO scan_runs(origin, feature_count) VALUES(?,?)`, origin, len(matches))
	if err != nil {
		return 0, err
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for _, m := range matches {
		if _, err = tx.ExecContext(ctx, `INSERT INTO scan_matches(run_id, feature_key, title) VALUES(?,?,?)`, runID, m.FeatureKey, m.Title); err != nil {
			return 0, err
		}
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return runID, nil
}

// ListScans returns the most recent N scans, newest first, with their
// matches attached.
func (d *DB) ListScans(ctx context.Context, limit int) ([]ScanRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.sql.QueryContext(ctx, "SELECT id, ran_at, origin, feature_count FROM scan_runs ORDER BY ran_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []ScanRun
	for rows.Next() {
		var r ScanRun
		var ranAtStr string
		if err := rows.Scan(&r.ID, &ranAtStr, &r.Origin, &r.FeatureCount); err != nil {
			return nil, err
		}
		r.RanAt = parseSQLiteTime(ranAtStr)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range runs {
		matches, err := d.scanMatches(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Matches = matches
	}
	return runs, nil
}

func (d *DB) scanMatches(ctx context.Context, runID int64) ([]Match, error) {
	rows, err := d.sql.QueryContext(ctx, "SELECT feature_key, title FROM scan_matches WHERE run_id = ? ORDER BY id", runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.FeatureKey, &m.Title); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// Parse SQLite CURRENT_TIMESTAMP format, falling back to RFC3339.
func parseSQLiteTime(s string) time.Time {
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}
