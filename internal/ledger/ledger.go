// Package ledger remembers, per report date, whether the report has been
// handed to the delivery channel. It guards against double posts when the
// job is re-run on the same day. Only delivery status is kept; the
// generated text is never stored.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrAlreadyDelivered is returned by Begin when the date already has a
// delivery that is finished or still in flight.
var ErrAlreadyDelivered = errors.New("report already delivered for this date")

// Status of a date's delivery.
type Status string

const (
	StatusSending   Status = "sending"
	StatusDelivered Status = "delivered"
	StatusFailed    Status = "failed"
)

// Record is one row of the ledger.
type Record struct {
	Date      string    `json:"date"`
	Status    Status    `json:"status"`
	RunID     string    `json:"run_id"`
	Deliverer string    `json:"deliverer"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Ledger is backed by SQLite.
type Ledger struct {
	db *sql.DB
}

// Open opens or creates the ledger database at path.
func Open(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	l := &Ledger{db: db}
	if err := l.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return l, nil
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) migrate() error {
	_, err := l.db.Exec(`
	CREATE TABLE IF NOT EXISTS deliveries (
		report_date TEXT PRIMARY KEY,
		status      TEXT NOT NULL,
		run_id      TEXT NOT NULL,
		deliverer   TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	);
	`)
	return err
}

// Get returns the record for date, if any.
func (l *Ledger) Get(ctx context.Context, date string) (Record, bool, error) {
	r, err := scanRecord(l.db.QueryRowContext(ctx,
		`SELECT report_date, status, run_id, deliverer, updated_at FROM deliveries WHERE report_date = ?`,
		date,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("get %s: %w", date, err)
	}
	return r, true, nil
}

// Begin marks date as sending for runID. A previous failed delivery may be
// retried; a delivered or still-sending one may not unless force is set,
// since a half-finished post cannot be told apart from a complete one.
func (l *Ledger) Begin(ctx context.Context, date, runID, deliverer string, force bool) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s: %w", date, err)
	}
	defer tx.Rollback()

	var status Status
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM deliveries WHERE report_date = ?`, date,
	).Scan(&status)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("begin %s: %w", date, err)
	case status != StatusFailed && !force:
		return fmt.Errorf("%s is %s: %w", date, status, ErrAlreadyDelivered)
	}

	if err := upsert(ctx, tx, date, StatusSending, runID, deliverer); err != nil {
		return err
	}
	return tx.Commit()
}

// Finish records the final status of runID's delivery.
func (l *Ledger) Finish(ctx context.Context, date, runID string, status Status) error {
	res, err := l.db.ExecContext(ctx,
		`UPDATE deliveries SET status = ?, updated_at = ? WHERE report_date = ? AND run_id = ?`,
		string(status), now(), date, runID,
	)
	if err != nil {
		return fmt.Errorf("finish %s: %w", date, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish %s: no delivery started by run %s", date, runID)
	}
	return nil
}

// Recent returns up to limit records, newest date first.
func (l *Ledger) Recent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT report_date, status, run_id, deliverer, updated_at FROM deliveries
		 ORDER BY report_date DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsert(ctx context.Context, db execer, date string, status Status, runID, deliverer string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO deliveries (report_date, status, run_id, deliverer, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (report_date) DO UPDATE
		 SET status = excluded.status, run_id = excluded.run_id,
		     deliverer = excluded.deliverer, updated_at = excluded.updated_at`,
		date, string(status), runID, deliverer, now(),
	)
	if err != nil {
		return fmt.Errorf("set %s: %w", date, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (Record, error) {
	var r Record
	var status, updated string
	if err := s.Scan(&r.Date, &status, &r.RunID, &r.Deliverer, &updated); err != nil {
		return Record{}, err
	}
	r.Status = Status(status)
	r.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return r, nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
