// Package tracking persists the last known status of every before/after pair
// so a re-run can skip pairs that were already found identical.
package tracking

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"tablediff/internal/pipeline"
)

// identicalStatuses are the terminal statuses that mean a pair can be
// skipped on a subsequent run.
var identicalStatuses = map[pipeline.Status]struct{}{
	pipeline.StatusChecksumMatch:  {},
	pipeline.StatusToleranceMatch: {},
	pipeline.StatusIdentical:      {},
	pipeline.StatusFuzzyIdentical: {},
}

// Tracker is a keyed store of the last comparison outcome per (before,
// after) pair, backed by MySQL.
type Tracker struct {
	db *sql.DB
}

// Open establishes a connection to dsn, pings it, and ensures the tracking
// table exists. The caller must call Close when done.
func Open(ctx context.Context, dsn string) (*Tracker, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open tracking database connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping tracking database: %w; additionally failed to close connection: %w", err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping tracking database: %w", err)
	}

	t := &Tracker{db: db}
	if err := t.createTable(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return t, nil
}

// Close closes the underlying database connection.
func (t *Tracker) Close() error {
	if t.db != nil {
		return t.db.Close()
	}
	return nil
}

func (t *Tracker) createTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS comparison_log (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	file_before VARCHAR(1024) NOT NULL,
	file_after VARCHAR(1024) NOT NULL,
	status VARCHAR(64) NOT NULL,
	comparison_timestamp DATETIME NOT NULL,
	report_path VARCHAR(1024),
	UNIQUE KEY pair_unique (file_before(255), file_after(255))
)`
	if _, err := t.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create comparison_log table: %w", err)
	}
	return nil
}

// LogComparison upserts the latest status for a (fileBefore, fileAfter)
// pair, overwriting any previous record.
func (t *Tracker) LogComparison(ctx context.Context, fileBefore, fileAfter string, status pipeline.Status, reportPath string, at time.Time) error {
	const stmt = `
INSERT INTO comparison_log (file_before, file_after, status, comparison_timestamp, report_path)
VALUES (?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
	status = VALUES(status),
	comparison_timestamp = VALUES(comparison_timestamp),
	report_path = VALUES(report_path)`

	var reportArg any
	if reportPath != "" {
		reportArg = reportPath
	}
	_, err := t.db.ExecContext(ctx, stmt, fileBefore, fileAfter, string(status), at.UTC(), reportArg)
	if err != nil {
		return fmt.Errorf("failed to log comparison for %s/%s: %w", fileBefore, fileAfter, err)
	}
	return nil
}

// LastStatus returns the most recently logged status for a pair, or ok=false
// if no row exists for it.
func (t *Tracker) LastStatus(ctx context.Context, fileBefore, fileAfter string) (status pipeline.Status, ok bool, err error) {
	const q = `SELECT status FROM comparison_log WHERE file_before = ? AND file_after = ?`
	var s string
	err = t.db.QueryRowContext(ctx, q, fileBefore, fileAfter).Scan(&s)
	switch {
	case err == sql.ErrNoRows:
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("failed to look up last status for %s/%s: %w", fileBefore, fileAfter, err)
	default:
		return pipeline.Status(s), true, nil
	}
}

// HasBeenProcessed reports whether a pair's last logged status indicates it
// can be skipped on a subsequent run.
func (t *Tracker) HasBeenProcessed(ctx context.Context, fileBefore, fileAfter string) (bool, error) {
	status, ok, err := t.LastStatus(ctx, fileBefore, fileAfter)
	if err != nil || !ok {
		return false, err
	}
	_, identical := identicalStatuses[status]
	return identical, nil
}
