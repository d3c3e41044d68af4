/*
Package sqlite provides the SQLite-backed ledger store the engine
reconciles against.

PURPOSE:
  The parsing engine is pure; this package is its persistence collaborator.
  It holds the employee roster per boutique (in stable order - the
  resolver's tie-break depends on it), the persisted ledger lines
  (date, employee, amount), period lock flags, and an audit trail of
  import runs.

KEY TABLES:
  employees:      Roster per boutique; position column preserves order
  ledger_lines:   One row per (boutique, date, employee) minor-unit amount
  ledger_periods: Lock flag per (boutique, period)
  import_runs:    One row per parse/apply attempt (uuid-keyed)

LOCK RE-CHECK:
  The apply gate reads the lock outside any transaction; ApplyRecords
  re-checks it inside the same transaction that writes, closing the race
  the gate cannot.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite WAL mode, the same
  arrangement the rest of the codebase assumes.

USAGE:
  st, err := sqlite.New("./sales.db")   // ":memory:" for tests
  defer st.Close()
  ledger, err := st.LedgerMap(ctx, "riyadh-01", "2026-03")

SEE ALSO:
  - recon: Consumes LedgerMap output
  - sheet: Produces the DailyRecords ApplyRecords persists
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/sales-recon/recon"
	"github.com/warp/sales-recon/sheet"
)

// ErrPeriodLocked is returned by ApplyRecords when the in-transaction lock
// re-check fails.
var ErrPeriodLocked = fmt.Errorf("period is locked")

// Store implements the persistence collaborators using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		boutique_id  TEXT NOT NULL,
		id           TEXT NOT NULL,
		display_name TEXT NOT NULL,
		position     INTEGER NOT NULL,
		PRIMARY KEY (boutique_id, id)
	);

	CREATE TABLE IF NOT EXISTS ledger_lines (
		boutique_id TEXT NOT NULL,
		period      TEXT NOT NULL,
		date_key    TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		amount      INTEGER NOT NULL,
		run_id      TEXT,
		updated_at  TEXT NOT NULL,
		PRIMARY KEY (boutique_id, date_key, employee_id)
	);

	CREATE INDEX IF NOT EXISTS idx_ledger_lines_period
		ON ledger_lines(boutique_id, period);

	CREATE TABLE IF NOT EXISTS ledger_periods (
		boutique_id TEXT NOT NULL,
		period      TEXT NOT NULL,
		locked      INTEGER NOT NULL DEFAULT 0,
		updated_at  TEXT NOT NULL,
		PRIMARY KEY (boutique_id, period)
	);

	CREATE TABLE IF NOT EXISTS import_runs (
		id              TEXT PRIMARY KEY,
		boutique_id     TEXT NOT NULL,
		period          TEXT NOT NULL,
		source          TEXT NOT NULL,
		record_count    INTEGER NOT NULL,
		blocking_errors INTEGER NOT NULL,
		applied         INTEGER NOT NULL,
		created_at      TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_import_runs_scope
		ON import_runs(boutique_id, period, created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ROSTER
// =============================================================================

// ReplaceRoster swaps the full roster for one boutique. Position encodes the
// caller's order so Roster can return a stable snapshot.
func (s *Store) ReplaceRoster(ctx context.Context, boutiqueID string, roster []sheet.EmployeeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM employees WHERE boutique_id = ?`, boutiqueID); err != nil {
		return err
	}
	for i, emp := range roster {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO employees (boutique_id, id, display_name, position) VALUES (?, ?, ?, ?)`,
			boutiqueID, emp.ID, emp.DisplayName, i)
		if err != nil {
			return fmt.Errorf("insert employee %s: %w", emp.ID, err)
		}
	}
	return tx.Commit()
}

// Roster returns the boutique's employees in the order they were stored.
func (s *Store) Roster(ctx context.Context, boutiqueID string) ([]sheet.EmployeeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, display_name FROM employees WHERE boutique_id = ? ORDER BY position`,
		boutiqueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roster []sheet.EmployeeRecord
	for rows.Next() {
		var emp sheet.EmployeeRecord
		if err := rows.Scan(&emp.ID, &emp.DisplayName); err != nil {
			return nil, err
		}
		roster = append(roster, emp)
	}
	return roster, rows.Err()
}

// =============================================================================
// LEDGER
// =============================================================================

// LedgerMap loads the persisted lines for one boutique and period as a
// reconciliation map.
func (s *Store) LedgerMap(ctx context.Context, boutiqueID, period string) (map[recon.Key]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT date_key, employee_id, amount FROM ledger_lines WHERE boutique_id = ? AND period = ?`,
		boutiqueID, period)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	m := make(map[recon.Key]int64)
	for rows.Next() {
		var k recon.Key
		var amount int64
		if err := rows.Scan(&k.DateKey, &k.EmployeeID, &amount); err != nil {
			return nil, err
		}
		m[k] = amount
	}
	return m, rows.Err()
}

// LedgerLines returns the persisted records for one boutique and period in
// deterministic (date, employee) order.
func (s *Store) LedgerLines(ctx context.Context, boutiqueID, period string) ([]sheet.DailyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT date_key, employee_id, amount FROM ledger_lines
		 WHERE boutique_id = ? AND period = ?
		 ORDER BY date_key, employee_id`,
		boutiqueID, period)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []sheet.DailyRecord
	for rows.Next() {
		var rec sheet.DailyRecord
		if err := rows.Scan(&rec.DateKey, &rec.EmployeeID, &rec.AmountMinorUnits); err != nil {
			return nil, err
		}
		lines = append(lines, rec)
	}
	return lines, rows.Err()
}

// ApplyRecords replaces the ledger lines of one (boutique, period) with the
// parsed records, atomically, after re-checking the period lock inside the
// transaction. Returns the import run ID.
func (s *Store) ApplyRecords(ctx context.Context, boutiqueID, period, source string, records []sheet.DailyRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var locked int
	err = tx.QueryRowContext(ctx,
		`SELECT locked FROM ledger_periods WHERE boutique_id = ? AND period = ?`,
		boutiqueID, period).Scan(&locked)
	if err != nil && err != sql.ErrNoRows {
		return "", err
	}
	if locked != 0 {
		return "", ErrPeriodLocked
	}

	now := time.Now().UTC().Format(time.RFC3339)
	runID := uuid.NewString()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM ledger_lines WHERE boutique_id = ? AND period = ?`,
		boutiqueID, period); err != nil {
		return "", err
	}
	for _, rec := range records {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO ledger_lines (boutique_id, period, date_key, employee_id, amount, run_id, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (boutique_id, date_key, employee_id)
			 DO UPDATE SET amount = excluded.amount, run_id = excluded.run_id, updated_at = excluded.updated_at`,
			boutiqueID, period, rec.DateKey, rec.EmployeeID, rec.AmountMinorUnits, runID, now)
		if err != nil {
			return "", fmt.Errorf("insert ledger line %s/%s: %w", rec.DateKey, rec.EmployeeID, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO import_runs (id, boutique_id, period, source, record_count, blocking_errors, applied, created_at)
		 VALUES (?, ?, ?, ?, ?, 0, 1, ?)`,
		runID, boutiqueID, period, source, len(records), now); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return runID, nil
}

// =============================================================================
// PERIOD LOCKS
// =============================================================================

// IsLocked reports the lock flag for one (boutique, period). Missing rows
// mean unlocked.
func (s *Store) IsLocked(ctx context.Context, boutiqueID, period string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var locked int
	err := s.db.QueryRowContext(ctx,
		`SELECT locked FROM ledger_periods WHERE boutique_id = ? AND period = ?`,
		boutiqueID, period).Scan(&locked)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return locked != 0, nil
}

// SetLocked sets or clears the lock flag for one (boutique, period).
func (s *Store) SetLocked(ctx context.Context, boutiqueID, period string, locked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	flag := 0
	if locked {
		flag = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ledger_periods (boutique_id, period, locked, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (boutique_id, period)
		 DO UPDATE SET locked = excluded.locked, updated_at = excluded.updated_at`,
		boutiqueID, period, flag, time.Now().UTC().Format(time.RFC3339))
	return err
}

// =============================================================================
// IMPORT RUNS
// =============================================================================

// ImportRun is one recorded parse/apply attempt.
type ImportRun struct {
	ID             string `json:"id"`
	BoutiqueID     string `json:"boutique_id"`
	Period         string `json:"period"`
	Source         string `json:"source"`
	RecordCount    int    `json:"record_count"`
	BlockingErrors int    `json:"blocking_errors"`
	Applied        bool   `json:"applied"`
	CreatedAt      string `json:"created_at"`
}

// RecordRejectedRun logs a parse attempt the gate refused, so operators can
// audit what was uploaded even when nothing was written.
func (s *Store) RecordRejectedRun(ctx context.Context, boutiqueID, period, source string, recordCount, blockingErrors int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runID := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO import_runs (id, boutique_id, period, source, record_count, blocking_errors, applied, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, 0, ?)`,
		runID, boutiqueID, period, source, recordCount, blockingErrors,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", err
	}
	return runID, nil
}

// ImportRuns lists runs for one boutique and period, newest first.
func (s *Store) ImportRuns(ctx context.Context, boutiqueID, period string) ([]ImportRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, boutique_id, period, source, record_count, blocking_errors, applied, created_at
		 FROM import_runs WHERE boutique_id = ? AND period = ?
		 ORDER BY created_at DESC, id`,
		boutiqueID, period)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []ImportRun
	for rows.Next() {
		var r ImportRun
		var applied int
		if err := rows.Scan(&r.ID, &r.BoutiqueID, &r.Period, &r.Source, &r.RecordCount,
			&r.BlockingErrors, &applied, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Applied = applied != 0
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
