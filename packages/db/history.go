// Package db persists run history in a local SQLite database.
//
// History is opt-in through the history.db configuration key. It records
// one row per run plus one row per scenario outcome, so regressions can be
// traced across runs with the history command.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/chainspec/chainspec/packages/core/runner"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	environment TEXT NOT NULL,
	suite       TEXT NOT NULL,
	started_at  TEXT NOT NULL,
	total       INTEGER NOT NULL,
	passed      INTEGER NOT NULL,
	failed      INTEGER NOT NULL,
	skipped     INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS scenario_results (
	run_id      TEXT NOT NULL REFERENCES runs(run_id),
	name        TEXT NOT NULL,
	position    INTEGER NOT NULL,
	status      TEXT NOT NULL,
	skip_reason TEXT,
	error       TEXT,
	duration_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scenario_results_run ON scenario_results(run_id);
`

// History is a handle on the run-history database.
type History struct {
	db *sql.DB
}

// Open opens (and if needed initializes) a history database at path.
func Open(path string) (*History, error) {
	database, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := database.PingContext(ctx); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	if _, err := database.ExecContext(ctx, schema); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	return &History{db: database}, nil
}

func (h *History) Close() error {
	if h.db != nil {
		return h.db.Close()
	}
	return nil
}

// RecordRun stores one run's outcome.
func (h *History) RecordRun(runID string, result *runner.RunResult) error {
	tx, err := h.db.Begin()
	if err != nil {
		return fmt.Errorf("starting history transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(
		`INSERT INTO runs (run_id, environment, suite, started_at, total, passed, failed, skipped, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, result.Environment, result.Suite, time.Now().UTC().Format(time.RFC3339),
		len(result.Results), result.Passed, result.Failed, result.Skipped,
		result.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}

	for i, r := range result.Results {
		var errMsg string
		if r.Err != nil {
			errMsg = r.Err.Error()
		}
		_, err = tx.Exec(
			`INSERT INTO scenario_results (run_id, name, position, status, skip_reason, error, duration_ms)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, r.Name, i, string(r.Status), r.SkipReason, errMsg, r.Duration.Milliseconds(),
		)
		if err != nil {
			return fmt.Errorf("recording scenario result: %w", err)
		}
	}

	return tx.Commit()
}

// RunRecord is one row of the runs table.
type RunRecord struct {
	RunID       string
	Environment string
	Suite       string
	StartedAt   string
	Total       int
	Passed      int
	Failed      int
	Skipped     int
	DurationMs  int64
}

// RecentRuns returns the newest runs first, at most limit of them.
func (h *History) RecentRuns(limit int) ([]*RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := h.db.Query(
		`SELECT run_id, environment, suite, started_at, total, passed, failed, skipped, duration_ms
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var records []*RunRecord
	for rows.Next() {
		r := &RunRecord{}
		if err := rows.Scan(&r.RunID, &r.Environment, &r.Suite, &r.StartedAt,
			&r.Total, &r.Passed, &r.Failed, &r.Skipped, &r.DurationMs); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

// ScenarioRecord is one row of the scenario_results table.
type ScenarioRecord struct {
	Name       string
	Status     string
	SkipReason string
	Error      string
	DurationMs int64
}

// ScenarioResults returns the scenario outcomes of one run in execution
// order.
func (h *History) ScenarioResults(runID string) ([]*ScenarioRecord, error) {
	rows, err := h.db.Query(
		`SELECT name, status, skip_reason, error, duration_ms
		 FROM scenario_results WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying scenario results: %w", err)
	}
	defer rows.Close()

	var records []*ScenarioRecord
	for rows.Next() {
		r := &ScenarioRecord{}
		if err := rows.Scan(&r.Name, &r.Status, &r.SkipReason, &r.Error, &r.DurationMs); err != nil {
			return nil, fmt.Errorf("scanning scenario row: %w", err)
		}
		records = append(records, r)
	}

	return records, rows.Err()
}
