package meter

import (
	"fmt"
	"math"
	"time"
)

// ETA is the estimated time remaining broken into display units.
// Minutes and Hours are cumulative floors of Seconds, not remainders.
type ETA struct {
	Seconds float64
	Minutes int
	Hours   int
}

func newETA(remaining time.Duration) ETA {
	secs := remaining.Seconds()
	mins := int(math.Floor(secs / 60))
	return ETA{
		Seconds: secs,
		Minutes: mins,
		Hours:   mins / 60,
	}
}

// String formats the estimate as HH:MM:SS.
func (e ETA) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", e.Hours, e.Minutes%60, int(math.Floor(e.Seconds))%60)
}

// Benchmark summarises the ratio of work done alongside elapsed and remaining time.
type Benchmark struct {
	Progress  string
	Elapsed   time.Duration
	Remaining time.Duration
}

// String formats the benchmark as shown after the bar.
func (b Benchmark) String() string {
	return fmt.Sprintf("Task : %s, ET : %.2fs, RT : %.2fs",
		b.Progress, b.Elapsed.Seconds(), b.Remaining.Seconds())
}

// Summary describes the state of a meter run, typically once it has ended.
type Summary struct {
	Title     string
	Total     int
	Progress  int
	Elapsed   time.Duration
	Completed bool
}

// remaining extrapolates the time left from the average rate so far.
func remaining(total, progress int, elapsed time.Duration) time.Duration {
	if progress <= 0 {
		return 0
	}
	r := float64(total-progress) * float64(elapsed) / float64(progress)
	if r >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	if r < 0 {
		return 0
	}
	return time.Duration(r)
}
