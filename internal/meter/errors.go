package meter

import "errors"

var (
	// ErrInvalidConfiguration is returned by New when total or width is not positive.
	ErrInvalidConfiguration = errors.New("invalid meter configuration")

	// ErrOutOfRangeProgress is returned by Update for values outside [0, total].
	ErrOutOfRangeProgress = errors.New("progress value out of range")
)
