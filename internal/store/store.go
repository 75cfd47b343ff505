package store

import "github.com/jacklau/termmeter/internal/meter"

// Store defines the run history operations used by the CLI.
// It is satisfied by *DB and can be replaced with a mock for testing.
type Store interface {
	// RecordRun inserts the summary of a finished or abandoned meter run.
	RecordRun(s meter.Summary) (*Run, error)

	// ListRuns returns the most recent runs, newest first.
	ListRuns(limit int) ([]Run, error)

	// GetStats returns aggregate statistics over all recorded runs.
	GetStats() (*Stats, error)
}

// Compile-time check that *DB satisfies the Store interface.
var _ Store = (*DB)(nil)
