// Package history records completed CLI runs in a local SQLite database so
// past checks, exports, and training runs can be reviewed.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const schemaVersion = 1

// Run is one recorded invocation.
type Run struct {
	ID       string
	Command  string
	Detail   string
	Outcome  string
	Duration time.Duration
	Created  time.Time
}

// Outcomes recorded for a run.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// Store wraps the SQLite connection. SQLite handles its own locking; WAL
// mode lets readers proceed while a writer is active, so no application
// level locks are needed.
type Store struct {
	conn *sql.DB
}

// Open creates or opens the run database inside dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "history.db")
	conn, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.init(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initialize database: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	_, _ = s.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE);")
	return s.conn.Close()
}

func (s *Store) init() error {
	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		command TEXT NOT NULL,
		detail TEXT NOT NULL DEFAULT '',
		outcome TEXT NOT NULL,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);

	CREATE TABLE IF NOT EXISTS meta (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		schema_version INTEGER NOT NULL DEFAULT %d
	);

	INSERT OR IGNORE INTO meta (id) VALUES (1);
	`, schemaVersion)

	_, err := s.conn.Exec(schema)
	return err
}

// Record stores a completed run and returns its id.
func (s *Store) Record(command, detail, outcome string, duration time.Duration) (string, error) {
	id := uuid.New().String()
	_, err := s.conn.Exec(
		`INSERT INTO runs (id, command, detail, outcome, duration_ms) VALUES (?, ?, ?, ?, ?)`,
		id, command, detail, outcome, duration.Milliseconds())
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	return id, nil
}

// List returns the most recent runs, newest first, up to limit. A limit of
// zero or less returns everything.
func (s *Store) List(limit int) ([]Run, error) {
	query := `SELECT id, command, detail, outcome, duration_ms, created_at
		FROM runs ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var ms int64
		if err := rows.Scan(&r.ID, &r.Command, &r.Detail, &r.Outcome, &ms, &r.Created); err != nil {
			return nil, err
		}
		r.Duration = time.Duration(ms) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
