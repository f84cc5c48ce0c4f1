// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

package state

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	_ "modernc.org/sqlite"

	"github.com/kahmi-build/kahmi/internal/model"
)

const tasksNamespace = "tasks"

// SqliteTracker persists task fingerprints across invocations in an
// embedded SQLite database. It must not be shared between processes: a
// worker gets a detached task snapshot instead of a reference to the
// tracker (see SPEC_FULL.md's shared-resource policy).
type SqliteTracker struct {
	db     *sql.DB
	logger hclog.Logger
}

var _ Tracker = (*SqliteTracker)(nil)

// DefaultStatePath returns the conventional location for a root
// project's persisted build state.
func DefaultStatePath(rootProjectDirectory string) string {
	return filepath.Join(rootProjectDirectory, ".build", ".kahmi", "build_state.db")
}

// OpenSqliteTracker opens (creating if necessary) the SQLite database at
// path, along with its directory tree and namespace table, discarding
// its log output.
func OpenSqliteTracker(path string) (*SqliteTracker, error) {
	return OpenSqliteTrackerWithLogger(path, hclog.NewNullLogger())
}

// OpenSqliteTrackerWithLogger is OpenSqliteTracker, logging the database
// path on open and fingerprint comparisons to logger, normally a
// logger.Named("state") sub-logger of the process-wide logger. Writes
// of fingerprints are not logged.
func OpenSqliteTrackerWithLogger(path string, logger hclog.Logger) (*SqliteTracker, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS ` + tasksNamespace + ` (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize state schema: %w", err)
	}
	logger.Debug("opened build state database", "path", path)
	return &SqliteTracker{db: db, logger: logger}, nil
}

// Close releases the underlying database handle.
func (s *SqliteTracker) Close() error {
	return s.db.Close()
}

func (s *SqliteTracker) load(key string) (value string, ok bool, err error) {
	row := s.db.QueryRow(`SELECT value FROM `+tasksNamespace+` WHERE key = ?`, key)
	err = row.Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *SqliteTracker) store(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO `+tasksNamespace+` (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// TaskInputsChanged compares inputs' fingerprint against the value
// stored under task.Path(). An empty stored value is the force-rerun
// sentinel left behind by a prior failed execution.
func (s *SqliteTracker) TaskInputsChanged(task *model.Task, inputs model.TaskInputs) (bool, error) {
	stored, ok, err := s.load(task.Path())
	if err != nil {
		return false, fmt.Errorf("read state for %s: %w", task.Path(), err)
	}
	if !ok || stored == "" {
		return true, nil
	}
	sum, err := inputs.Fingerprint()
	if err != nil {
		return false, err
	}
	changed := stored != sum
	s.logger.Trace("compared task fingerprint", "task", task.Path(), "changed", changed)
	return changed, nil
}

// TaskFinished records inputs' fingerprint for task, or the force-rerun
// sentinel if task failed.
func (s *SqliteTracker) TaskFinished(task *model.Task, inputs model.TaskInputs) error {
	if task.Err != nil {
		return s.store(task.Path(), "")
	}
	sum, err := inputs.Fingerprint()
	if err != nil {
		return err
	}
	return s.store(task.Path(), sum)
}
