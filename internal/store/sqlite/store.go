// Package sqlite persists the setup run history under the state directory.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

// RunRecord is one bootstrap invocation.
type RunRecord struct {
	RunID         string `json:"runId"`
	Status        string `json:"status"`
	PythonVersion string `json:"pythonVersion,omitempty"`
	Warnings      int    `json:"warnings"`
	StartedAt     string `json:"startedAt"`
	EndedAt       string `json:"endedAt,omitempty"`
	LastError     string `json:"lastError,omitempty"`
}

func Open(stateDir string) (*Store, error) {
	if stateDir == "" {
		stateDir = ".studio"
	}
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, err
	}
	dbPath := filepath.Join(stateDir, "state.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema() error {
	stmt := `CREATE TABLE IF NOT EXISTS setup_runs (
		run_id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		python_version TEXT,
		warnings INTEGER NOT NULL DEFAULT 0,
		started_at TEXT NOT NULL,
		ended_at TEXT,
		last_error TEXT
	);`
	_, err := s.db.Exec(stmt)
	return err
}

func (s *Store) InsertRun(r RunRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO setup_runs (run_id, status, python_version, warnings, started_at, ended_at, last_error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Status, nullableString(r.PythonVersion), r.Warnings,
		r.StartedAt, nullableString(r.EndedAt), nullableString(r.LastError),
	)
	return err
}

func (s *Store) CompleteRun(runID, status, pythonVersion string, warnings int, lastError string) error {
	_, err := s.db.Exec(
		`UPDATE setup_runs SET status = ?, python_version = ?, warnings = ?, ended_at = ?, last_error = ? WHERE run_id = ?`,
		status, nullableString(pythonVersion), warnings,
		time.Now().UTC().Format(time.RFC3339Nano), nullableString(lastError), runID,
	)
	return err
}

func (s *Store) GetRun(runID string) (RunRecord, error) {
	row := s.db.QueryRow(
		`SELECT run_id, status, COALESCE(python_version,''), warnings, started_at, COALESCE(ended_at,''), COALESCE(last_error,'')
		 FROM setup_runs WHERE run_id = ?`, runID)
	var r RunRecord
	if err := row.Scan(&r.RunID, &r.Status, &r.PythonVersion, &r.Warnings, &r.StartedAt, &r.EndedAt, &r.LastError); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, fmt.Errorf("run not found: %s", runID)
		}
		return RunRecord{}, err
	}
	return r, nil
}

func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(
		`SELECT run_id, status, COALESCE(python_version,''), warnings, started_at, COALESCE(ended_at,''), COALESCE(last_error,'')
		 FROM setup_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]RunRecord, 0)
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.RunID, &r.Status, &r.PythonVersion, &r.Warnings, &r.StartedAt, &r.EndedAt, &r.LastError); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func nullableString(v string) any {
	if v == "" {
		return nil
	}
	return v
}
