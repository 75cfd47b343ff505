// Package meter renders a single-line terminal progress meter with
// percentage, ETA and benchmark information.
//
// A Meter is owned by one goroutine; it does no locking of its own.
//
//	m, err := meter.New("Processing", 50, meter.WithBenchmark(true))
//	if err != nil {
//	    return err
//	}
//	m.Start()
//	for i := 1; i <= 50; i++ {
//	    work()
//	    if err := m.Update(i); err != nil {
//	        return err
//	    }
//	}
package meter

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	"github.com/jacklau/termmeter/internal/style"
)

const defaultWidth = 50

// pauseState is either running (zero since) or paused since a point in time.
type pauseState struct {
	paused bool
	since  time.Time
}

// Meter tracks progress of a single task and redraws one output line per update.
type Meter struct {
	title         string
	total         int
	width         int
	showETA       bool
	showBenchmark bool

	out    io.Writer
	clock  Clock
	styler style.Styler
	theme  Theme
	logger *slog.Logger

	progress  int
	started   bool
	startTime time.Time
	pause     pauseState
}

// Option configures a Meter.
type Option func(*Meter)

// WithWidth sets the number of bar cells.
func WithWidth(n int) Option {
	return func(m *Meter) { m.width = n }
}

// WithETA toggles the ETA suffix.
func WithETA(on bool) Option {
	return func(m *Meter) { m.showETA = on }
}

// WithBenchmark toggles the benchmark suffix.
func WithBenchmark(on bool) Option {
	return func(m *Meter) { m.showBenchmark = on }
}

// WithOutput sets the writer the meter draws to.
func WithOutput(w io.Writer) Option {
	return func(m *Meter) { m.out = w }
}

// WithClock replaces the time source.
func WithClock(c Clock) Option {
	return func(m *Meter) { m.clock = c }
}

// WithStyler sets how text is decorated.
func WithStyler(s style.Styler) Option {
	return func(m *Meter) { m.styler = s }
}

// WithTheme sets glyphs and styles.
func WithTheme(t Theme) Option {
	return func(m *Meter) { m.theme = t }
}

// WithLogger sets the logger used for lifecycle debug events.
func WithLogger(l *slog.Logger) Option {
	return func(m *Meter) { m.logger = l }
}

// New creates a Meter for a task of total units.
func New(title string, total int, opts ...Option) (*Meter, error) {
	m := &Meter{
		title:   title,
		total:   total,
		width:   defaultWidth,
		showETA: true,
		out:     os.Stdout,
		clock:   SystemClock{},
		styler:  style.Styler{Enabled: true},
		theme:   DefaultTheme(),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.total <= 0 {
		return nil, fmt.Errorf("%w: total must be > 0, got %d", ErrInvalidConfiguration, m.total)
	}
	if m.width <= 0 {
		return nil, fmt.Errorf("%w: width must be > 0, got %d", ErrInvalidConfiguration, m.width)
	}
	if m.out == nil {
		m.out = os.Stdout
	}
	if m.clock == nil {
		m.clock = SystemClock{}
	}
	if m.logger == nil {
		m.logger = slog.New(slog.DiscardHandler)
	}
	return m, nil
}

// Title returns the display label.
func (m *Meter) Title() string { return m.title }

// Total returns the number of units in the task.
func (m *Meter) Total() int { return m.total }

// Width returns the number of bar cells.
func (m *Meter) Width() int { return m.width }

// Start records the current time as the start of the task.
func (m *Meter) Start() {
	m.startTime = m.clock.Now()
	m.started = true
	m.pause = pauseState{}
	m.logger.Debug("meter started", "title", m.title, "total", m.total)
}

// Update stores progress and redraws the meter line. Values outside
// [0, total] are rejected with ErrOutOfRangeProgress and leave the meter
// unchanged. A newline follows the line once progress reaches total.
func (m *Meter) Update(progress int) error {
	if progress < 0 || progress > m.total {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrOutOfRangeProgress, progress, m.total)
	}
	if !m.started {
		m.logger.Debug("update before start, elapsed time treated as zero", "title", m.title)
	}
	m.progress = progress

	line := m.render(m.clock.Now())
	if _, err := io.WriteString(m.out, line); err != nil {
		return fmt.Errorf("writing meter line: %w", err)
	}
	return nil
}

// Pause marks the start of an interval excluded from elapsed time.
// Pausing again before Resume moves the pause point to now.
func (m *Meter) Pause() {
	m.pause = pauseState{paused: true, since: m.clock.Now()}
	m.logger.Debug("meter paused", "title", m.title, "progress", m.progress)
}

// Resume shifts the start time forward by the paused duration.
// It does nothing when the meter is not paused.
func (m *Meter) Resume() {
	if !m.pause.paused {
		return
	}
	d := m.clock.Now().Sub(m.pause.since)
	if m.started {
		m.startTime = m.startTime.Add(d)
	}
	m.pause = pauseState{}
	m.logger.Debug("meter resumed", "title", m.title, "paused_for", d)
}

// IsPaused reports whether Pause has been called without a matching Resume.
func (m *Meter) IsPaused() bool { return m.pause.paused }

// Progress returns the last accepted progress value.
func (m *Meter) Progress() int { return m.progress }

// Reset sets progress back to zero and clears the start time.
// Start must be called again before timing is meaningful.
func (m *Meter) Reset() {
	m.progress = 0
	m.started = false
	m.startTime = time.Time{}
	m.pause = pauseState{}
	m.logger.Debug("meter reset", "title", m.title)
}

// IsComplete reports whether progress has reached total.
func (m *Meter) IsComplete() bool { return m.progress == m.total }

// Elapsed returns the time since Start, excluding paused intervals.
// It is zero before Start.
func (m *Meter) Elapsed() time.Duration {
	return m.elapsedAt(m.clock.Now())
}

// Remaining estimates the time left by linear extrapolation.
// It is zero before Start or while progress is zero.
func (m *Meter) Remaining() time.Duration {
	return m.remainingAt(m.clock.Now())
}

// ETA returns the remaining time split into display units.
func (m *Meter) ETA() ETA {
	return newETA(m.remainingAt(m.clock.Now()))
}

// Benchmark returns the progress ratio with elapsed and remaining time.
func (m *Meter) Benchmark() Benchmark {
	return m.benchmarkAt(m.clock.Now())
}

// Summary returns a snapshot of the run for reporting.
func (m *Meter) Summary() Summary {
	return Summary{
		Title:     m.title,
		Total:     m.total,
		Progress:  m.progress,
		Elapsed:   m.Elapsed(),
		Completed: m.IsComplete(),
	}
}

func (m *Meter) elapsedAt(now time.Time) time.Duration {
	if !m.started {
		return 0
	}
	// While paused, time stops at the pause point.
	if m.pause.paused && m.pause.since.Before(now) {
		now = m.pause.since
	}
	d := now.Sub(m.startTime)
	if d < 0 {
		return 0
	}
	return d
}

func (m *Meter) remainingAt(now time.Time) time.Duration {
	if !m.started {
		return 0
	}
	return remaining(m.total, m.progress, m.elapsedAt(now))
}

func (m *Meter) benchmarkAt(now time.Time) Benchmark {
	return Benchmark{
		Progress:  fmt.Sprintf("%d/%d", m.progress, m.total),
		Elapsed:   m.elapsedAt(now),
		Remaining: m.remainingAt(now),
	}
}

// render builds the full redraw line for the current progress at now.
func (m *Meter) render(now time.Time) string {
	percent := 100 * float64(m.progress) / float64(m.total)
	filled := int(math.Floor(float64(m.width) * float64(m.progress) / float64(m.total)))
	if filled < 0 {
		filled = 0
	}
	if filled > m.width {
		filled = m.width
	}

	var b strings.Builder
	b.WriteString("\r")
	b.WriteString(m.styler.Decorate(m.theme.TitleStyle, m.title))
	b.WriteString(" [")
	b.WriteString(m.styler.Decorate(m.theme.FilledStyle, strings.Repeat(m.theme.Filled, filled)))
	b.WriteString(m.styler.Decorate(m.theme.EmptyStyle, strings.Repeat(m.theme.Empty, m.width-filled)))
	fmt.Fprintf(&b, "] %.2f%%", percent)

	if m.showETA {
		eta := newETA(m.remainingAt(now))
		b.WriteString(" | ETA : ")
		b.WriteString(m.styler.Decorate(m.theme.ETAStyle, eta.String()))
	}
	if m.showBenchmark {
		b.WriteString(" | ")
		b.WriteString(m.benchmarkAt(now).String())
	}
	if m.progress == m.total {
		b.WriteString("\n")
	}
	return b.String()
}
