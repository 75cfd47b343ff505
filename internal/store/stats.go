package store

import (
	"fmt"
	"time"
)

// Stats holds aggregate statistics over all recorded runs.
type Stats struct {
	RunCount       int
	CompletedCount int
	TotalUnits     int64
	TotalElapsed   time.Duration
}

// UnitsPerSecond returns the average throughput across all runs.
func (s Stats) UnitsPerSecond() float64 {
	secs := s.TotalElapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(s.TotalUnits) / secs
}

// GetStats returns aggregate statistics for all runs.
func (d *DB) GetStats() (*Stats, error) {
	var stats Stats
	var elapsedMS int64

	err := d.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(completed), 0), COALESCE(SUM(progress), 0), COALESCE(SUM(elapsed_ms), 0) FROM runs`,
	).Scan(&stats.RunCount, &stats.CompletedCount, &stats.TotalUnits, &elapsedMS)
	if err != nil {
		return nil, fmt.Errorf("aggregating runs: %w", err)
	}

	stats.TotalElapsed = time.Duration(elapsedMS) * time.Millisecond
	return &stats, nil
}
