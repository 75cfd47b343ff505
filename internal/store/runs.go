package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jacklau/termmeter/internal/meter"
)

// defaultListLimit bounds ListRuns when no positive limit is given.
const defaultListLimit = 20

// Run is one recorded meter run.
type Run struct {
	ID        int64
	Title     string
	Total     int
	Progress  int
	Elapsed   time.Duration
	Completed bool
	CreatedAt time.Time
}

// Percent returns the share of the run that was completed.
func (r Run) Percent() float64 {
	if r.Total <= 0 {
		return 0
	}
	return 100 * float64(r.Progress) / float64(r.Total)
}

// RecordRun inserts a run summary and returns the stored record.
func (d *DB) RecordRun(s meter.Summary) (*Run, error) {
	result, err := d.db.Exec(
		`INSERT INTO runs (title, total, progress, elapsed_ms, completed, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		s.Title, s.Total, s.Progress, s.Elapsed.Milliseconds(), s.Completed,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("recording run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting run id: %w", err)
	}

	return d.GetRun(id)
}

// GetRun retrieves a run by its ID.
func (d *DB) GetRun(id int64) (*Run, error) {
	row := d.db.QueryRow(
		`SELECT id, title, total, progress, elapsed_ms, completed, created_at FROM runs WHERE id = ?`,
		id,
	)
	return scanRun(row)
}

// ListRuns returns up to limit runs, newest first.
func (d *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := d.db.Query(
		`SELECT id, title, total, progress, elapsed_ms, completed, created_at FROM runs ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var r Run
	var elapsedMS int64
	var createdAt string

	err := row.Scan(&r.ID, &r.Title, &r.Total, &r.Progress, &elapsedMS, &r.Completed, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	r.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	r.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at of run %d: %w", r.ID, err)
	}

	return &r, nil
}
