package meter

import "time"

// Clock supplies the current time. It can be replaced with a fake in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock (with Go's monotonic reading attached).
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }
