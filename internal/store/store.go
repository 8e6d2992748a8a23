// Package store keeps a local history of workflow runs in SQLite, one row per
// morning or evening invocation.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Run kinds.
const (
	KindMorning = "morning"
	KindEvening = "evening"
	KindCheck   = "check"
)

// Run outcomes. NoOutput and Timeout are reported outcomes, not failures:
// the next scheduled invocation simply tries again.
const (
	OutcomeSynced      = "synced"
	OutcomeNoOutput    = "no_output"
	OutcomeTimeout     = "timeout"
	OutcomeVaultFailed = "vault_failed"
	OutcomeSkipped     = "skipped"
)

// Store wraps SQLite access for the run history.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
        id TEXT PRIMARY KEY,
        kind TEXT NOT NULL,
        call_id TEXT,
        outcome TEXT NOT NULL,
        goals_json TEXT,
        completion_rate INTEGER,
        reflection TEXT,
        created_at TIMESTAMP
    );`)
	return err
}

// Run is one recorded workflow invocation.
type Run struct {
	ID             string    `json:"id"`
	Kind           string    `json:"kind"`
	CallID         string    `json:"call_id"`
	Outcome        string    `json:"outcome"`
	Goals          []string  `json:"goals"`
	CompletionRate int       `json:"completion_rate"`
	Reflection     string    `json:"reflection"`
	CreatedAt      time.Time `json:"created_at"`
}

// RecordRun inserts a run, assigning an id and timestamp when absent.
func (s *Store) RecordRun(ctx context.Context, r *Run) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	goalsJSON, _ := json.Marshal(r.Goals)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs(id, kind, call_id, outcome, goals_json, completion_rate, reflection, created_at) VALUES(?,?,?,?,?,?,?,?)`,
		r.ID, r.Kind, r.CallID, r.Outcome, string(goalsJSON), r.CompletionRate, r.Reflection, r.CreatedAt)
	return err
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, call_id, outcome, goals_json, completion_rate, reflection, created_at
         FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var goalsJSON string
		if err := rows.Scan(&r.ID, &r.Kind, &r.CallID, &r.Outcome, &goalsJSON, &r.CompletionRate, &r.Reflection, &r.CreatedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(goalsJSON), &r.Goals)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
