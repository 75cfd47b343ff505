package meter

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/jacklau/termmeter/internal/style"
)

// fakeClock is a manually advanced Clock.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// newTestMeter builds a meter writing undecorated text to a buffer.
func newTestMeter(t *testing.T, total int, opts ...Option) (*Meter, *bytes.Buffer, *fakeClock) {
	t.Helper()
	var buf bytes.Buffer
	clock := newFakeClock()
	base := []Option{WithOutput(&buf), WithClock(clock), WithStyler(style.Styler{})}
	m, err := New("Test", total, append(base, opts...)...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return m, &buf, clock
}

func TestNewDefaults(t *testing.T) {
	m, err := New("Loading", 16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Width() != 50 {
		t.Errorf("expected default width 50, got %d", m.Width())
	}
	if !m.showETA {
		t.Error("expected ETA enabled by default")
	}
	if m.showBenchmark {
		t.Error("expected benchmark disabled by default")
	}
	if m.Progress() != 0 {
		t.Errorf("expected initial progress 0, got %d", m.Progress())
	}
	if m.Title() != "Loading" || m.Total() != 16 {
		t.Errorf("unexpected title/total: %q/%d", m.Title(), m.Total())
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		total   int
		width   int
		wantErr bool
	}{
		{"valid", 10, 10, false},
		{"width one", 1, 1, false},
		{"large", 1_000_000, 200, false},
		{"zero total", 0, 10, true},
		{"negative total", -5, 10, true},
		{"zero width", 10, 0, true},
		{"negative width", 10, -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New("x", tt.total, WithWidth(tt.width))
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfiguration) {
					t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
				}
				if m != nil {
					t.Error("expected nil meter on error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestUpdateAcceptsFullRange(t *testing.T) {
	m, _, _ := newTestMeter(t, 7)
	m.Start()
	for p := 0; p <= 7; p++ {
		if err := m.Update(p); err != nil {
			t.Fatalf("Update(%d) failed: %v", p, err)
		}
		if m.Progress() != p {
			t.Errorf("after Update(%d), Progress() = %d", p, m.Progress())
		}
	}
}

func TestUpdateOutOfRange(t *testing.T) {
	m, buf, _ := newTestMeter(t, 10)
	m.Start()
	if err := m.Update(4); err != nil {
		t.Fatalf("Update(4) failed: %v", err)
	}
	written := buf.Len()

	for _, p := range []int{-1, 11, 1000} {
		err := m.Update(p)
		if !errors.Is(err, ErrOutOfRangeProgress) {
			t.Errorf("Update(%d): expected ErrOutOfRangeProgress, got %v", p, err)
		}
		if m.Progress() != 4 {
			t.Errorf("Update(%d) changed progress to %d", p, m.Progress())
		}
	}
	if buf.Len() != written {
		t.Error("rejected update should not write output")
	}
}

func TestUpdateRendersHalfBar(t *testing.T) {
	m, buf, _ := newTestMeter(t, 10, WithWidth(10), WithETA(false))
	m.Start()
	if err := m.Update(5); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	want := "\rTest [━━━━━━━━━━] 50.00%"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestUpdateColouredCells(t *testing.T) {
	var buf bytes.Buffer
	m, err := New("Test", 10,
		WithWidth(10),
		WithETA(false),
		WithOutput(&buf),
		WithClock(newFakeClock()),
		WithStyler(style.Styler{Enabled: true}),
		WithTheme(Theme{
			Filled:      "#",
			Empty:       "-",
			FilledStyle: []style.Token{style.Green},
			EmptyStyle:  []style.Token{style.White},
		}),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	m.Start()
	if err := m.Update(5); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "\033[32m#####\033[0m") {
		t.Errorf("expected 5 green filled cells, got %q", out)
	}
	if !strings.Contains(out, "\033[37m-----\033[0m") {
		t.Errorf("expected 5 white empty cells, got %q", out)
	}
	if !strings.Contains(out, "50.00%") {
		t.Errorf("expected 50.00%%, got %q", out)
	}
}

func TestBarFillFloors(t *testing.T) {
	tests := []struct {
		total, width, progress int
		wantFilled             int
	}{
		{3, 10, 1, 3},
		{3, 10, 2, 6},
		{7, 4, 6, 3},
		{100, 50, 99, 49},
		{100, 50, 100, 50},
	}

	for _, tt := range tests {
		m, buf, _ := newTestMeter(t, tt.total, WithWidth(tt.width), WithETA(false),
			WithTheme(Theme{Filled: "#", Empty: "-"}))
		m.Start()
		if err := m.Update(tt.progress); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		out := buf.String()
		if got := strings.Count(out, "#"); got != tt.wantFilled {
			t.Errorf("total=%d width=%d progress=%d: filled = %d, want %d",
				tt.total, tt.width, tt.progress, got, tt.wantFilled)
		}
		if got := strings.Count(out, "-"); got != tt.width-tt.wantFilled {
			t.Errorf("total=%d width=%d progress=%d: empty = %d, want %d",
				tt.total, tt.width, tt.progress, got, tt.width-tt.wantFilled)
		}
	}
}

func TestBarFillLargeTotal(t *testing.T) {
	const total = 1 << 58
	m, buf, _ := newTestMeter(t, total, WithWidth(50), WithETA(false),
		WithTheme(Theme{Filled: "#", Empty: "-"}))
	m.Start()

	for _, tt := range []struct {
		progress, wantFilled int
	}{
		{0, 0},
		{total / 2, 25},
		{total, 50},
	} {
		buf.Reset()
		if err := m.Update(tt.progress); err != nil {
			t.Fatalf("Update(%d) failed: %v", tt.progress, err)
		}
		if got := strings.Count(buf.String(), "#"); got != tt.wantFilled {
			t.Errorf("progress=%d: filled = %d, want %d", tt.progress, got, tt.wantFilled)
		}
		if got := strings.Count(buf.String(), "-"); got != 50-tt.wantFilled {
			t.Errorf("progress=%d: empty = %d, want %d", tt.progress, got, 50-tt.wantFilled)
		}
	}
}

func TestCompletionNewline(t *testing.T) {
	m, buf, _ := newTestMeter(t, 3)
	m.Start()

	for p := 1; p < 3; p++ {
		if err := m.Update(p); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if m.IsComplete() {
			t.Errorf("IsComplete() true at progress %d", p)
		}
	}
	if strings.Contains(buf.String(), "\n") {
		t.Error("no newline expected before completion")
	}

	if err := m.Update(3); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !m.IsComplete() {
		t.Error("IsComplete() should be true at total")
	}
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Errorf("expected trailing newline, got %q", buf.String())
	}
	if strings.Count(buf.String(), "\r") != 3 {
		t.Errorf("expected one carriage return per update, got %q", buf.String())
	}
}

func TestElapsedBeforeStart(t *testing.T) {
	m, buf, clock := newTestMeter(t, 10)
	clock.Advance(5 * time.Second)

	if m.Elapsed() != 0 {
		t.Errorf("Elapsed() before Start = %v, want 0", m.Elapsed())
	}
	if err := m.Update(5); err != nil {
		t.Fatalf("Update before Start should fall back to zero elapsed: %v", err)
	}
	if m.Remaining() != 0 {
		t.Errorf("Remaining() before Start = %v, want 0", m.Remaining())
	}
	if !strings.Contains(buf.String(), "ETA : 00:00:00") {
		t.Errorf("expected zero ETA before Start, got %q", buf.String())
	}
}

func TestElapsedExcludesPause(t *testing.T) {
	for _, d := range []time.Duration{0, time.Second, 42 * time.Second, 3 * time.Hour} {
		m, _, clock := newTestMeter(t, 10)
		m.Start()
		clock.Advance(time.Second)
		m.Pause()
		clock.Advance(d)
		m.Resume()
		clock.Advance(2 * time.Second)

		if got := m.Elapsed(); got != 3*time.Second {
			t.Errorf("pause of %v: Elapsed() = %v, want 3s", d, got)
		}
	}
}

func TestElapsedFrozenWhilePaused(t *testing.T) {
	m, _, clock := newTestMeter(t, 10)
	m.Start()
	clock.Advance(2 * time.Second)
	m.Pause()
	clock.Advance(10 * time.Second)

	if !m.IsPaused() {
		t.Error("expected meter to be paused")
	}
	if got := m.Elapsed(); got != 2*time.Second {
		t.Errorf("Elapsed() while paused = %v, want 2s", got)
	}
}

func TestDoublePauseHonorsLatest(t *testing.T) {
	m, _, clock := newTestMeter(t, 10)
	m.Start()
	clock.Advance(time.Second)
	m.Pause()
	clock.Advance(2 * time.Second)
	m.Pause()
	clock.Advance(4 * time.Second)
	m.Resume()

	// Only the interval after the second pause is excluded.
	if got := m.Elapsed(); got != 3*time.Second {
		t.Errorf("Elapsed() = %v, want 3s", got)
	}
}

func TestResumeWithoutPauseIsNoop(t *testing.T) {
	m, _, clock := newTestMeter(t, 10)
	m.Start()
	clock.Advance(4 * time.Second)
	before := *m

	m.Resume()
	m.Resume()

	if m.startTime != before.startTime || m.pause != before.pause || m.progress != before.progress {
		t.Error("Resume without Pause should not change state")
	}
	if got := m.Elapsed(); got != 4*time.Second {
		t.Errorf("Elapsed() = %v, want 4s", got)
	}
}

func TestRemainingTime(t *testing.T) {
	m, _, clock := newTestMeter(t, 100)
	m.Start()
	if err := m.Update(0); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	clock.Advance(10 * time.Second)
	if m.Remaining() != 0 {
		t.Errorf("Remaining() at progress 0 = %v, want 0", m.Remaining())
	}

	if err := m.Update(25); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	// 75 units left at 0.4s per unit.
	if got := m.Remaining(); got != 30*time.Second {
		t.Errorf("Remaining() = %v, want 30s", got)
	}

	if err := m.Update(100); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if m.Remaining() != 0 {
		t.Errorf("Remaining() at completion = %v, want 0", m.Remaining())
	}
}

func TestRemainingSaturates(t *testing.T) {
	m, buf, clock := newTestMeter(t, 10_000_000_000, WithBenchmark(true))
	m.Start()
	clock.Advance(2 * time.Second)
	if err := m.Update(1); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if got := m.Remaining(); got != time.Duration(math.MaxInt64) {
		t.Errorf("Remaining() = %v, want max duration", got)
	}
	eta := m.ETA()
	if eta.Seconds < 0 || eta.Minutes < 0 || eta.Hours < 0 {
		t.Errorf("ETA() has negative fields: %+v", eta)
	}
	out := buf.String()
	if strings.Contains(out, ":-") || strings.Contains(out, "RT : -") {
		t.Errorf("negative time rendered: %q", out)
	}
}

func TestRemainingNeverNegative(t *testing.T) {
	tests := []struct {
		total, progress int
		elapsed         time.Duration
	}{
		{10, 1, time.Second},
		{10, 10, time.Hour},
		{1 << 62, 1, time.Duration(math.MaxInt64)},
		{10_000_000_000, 3, 24 * time.Hour},
	}

	for _, tt := range tests {
		if got := remaining(tt.total, tt.progress, tt.elapsed); got < 0 {
			t.Errorf("remaining(%d, %d, %v) = %v, want >= 0", tt.total, tt.progress, tt.elapsed, got)
		}
	}
}

func TestETAMatchesRemaining(t *testing.T) {
	m, _, clock := newTestMeter(t, 37)
	m.Start()
	for p := 1; p <= 37; p += 4 {
		clock.Advance(1234 * time.Millisecond)
		if err := m.Update(p); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		eta := m.ETA()
		if eta.Seconds != m.Remaining().Seconds() {
			t.Errorf("progress %d: ETA seconds %v != Remaining %v", p, eta.Seconds, m.Remaining().Seconds())
		}
		if b := m.Benchmark(); b.Remaining.Seconds() != eta.Seconds {
			t.Errorf("progress %d: benchmark remaining %v != ETA %v", p, b.Remaining.Seconds(), eta.Seconds)
		}
	}
}

func TestETAFormatting(t *testing.T) {
	tests := []struct {
		remaining time.Duration
		want      string
		minutes   int
		hours     int
	}{
		{0, "00:00:00", 0, 0},
		{59*time.Second + 900*time.Millisecond, "00:00:59", 0, 0},
		{61 * time.Second, "00:01:01", 1, 0},
		{3723 * time.Second, "01:02:03", 62, 1},
		{25*time.Hour + 5*time.Second, "25:00:05", 1500, 25},
	}

	for _, tt := range tests {
		eta := newETA(tt.remaining)
		if got := eta.String(); got != tt.want {
			t.Errorf("newETA(%v).String() = %q, want %q", tt.remaining, got, tt.want)
		}
		if eta.Minutes != tt.minutes || eta.Hours != tt.hours {
			t.Errorf("newETA(%v) minutes/hours = %d/%d, want %d/%d",
				tt.remaining, eta.Minutes, eta.Hours, tt.minutes, tt.hours)
		}
		if math.Abs(eta.Seconds-tt.remaining.Seconds()) > 1e-9 {
			t.Errorf("newETA(%v).Seconds = %v", tt.remaining, eta.Seconds)
		}
	}
}

func TestBenchmarkSuffix(t *testing.T) {
	m, buf, clock := newTestMeter(t, 50, WithBenchmark(true), WithETA(false))
	m.Start()
	clock.Advance(5 * time.Second)
	if err := m.Update(10); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	want := " | Task : 10/50, ET : 5.00s, RT : 20.00s"
	if !strings.HasSuffix(buf.String(), want) {
		t.Errorf("output %q should end with %q", buf.String(), want)
	}
}

func TestETASuffix(t *testing.T) {
	m, buf, clock := newTestMeter(t, 4)
	m.Start()
	clock.Advance(90 * time.Minute)
	if err := m.Update(1); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if !strings.HasSuffix(buf.String(), " | ETA : 04:30:00") {
		t.Errorf("unexpected ETA suffix in %q", buf.String())
	}
}

func TestPauseExcludedFromETA(t *testing.T) {
	m, buf, clock := newTestMeter(t, 4, WithBenchmark(true))
	m.Start()
	clock.Advance(10 * time.Second)
	m.Pause()
	clock.Advance(time.Hour)
	m.Resume()
	if err := m.Update(2); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if !strings.Contains(buf.String(), "ETA : 00:00:10") {
		t.Errorf("paused hour leaked into ETA: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "ET : 10.00s, RT : 10.00s") {
		t.Errorf("paused hour leaked into benchmark: %q", buf.String())
	}
}

func TestReset(t *testing.T) {
	m, _, clock := newTestMeter(t, 5)
	m.Start()
	clock.Advance(3 * time.Second)
	if err := m.Update(5); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	m.Pause()

	m.Reset()

	if m.Progress() != 0 {
		t.Errorf("Progress() after Reset = %d, want 0", m.Progress())
	}
	if m.IsComplete() {
		t.Error("IsComplete() should be false after Reset")
	}
	if m.Elapsed() != 0 {
		t.Errorf("Elapsed() after Reset = %v, want 0", m.Elapsed())
	}
	if m.IsPaused() {
		t.Error("Reset should clear pause state")
	}

	m.Start()
	clock.Advance(time.Second)
	if m.Elapsed() != time.Second {
		t.Errorf("Elapsed() after restart = %v, want 1s", m.Elapsed())
	}
}

func TestSummary(t *testing.T) {
	m, _, clock := newTestMeter(t, 8)
	m.Start()
	clock.Advance(4 * time.Second)
	if err := m.Update(8); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	s := m.Summary()
	if s.Title != "Test" || s.Total != 8 || s.Progress != 8 {
		t.Errorf("unexpected summary: %+v", s)
	}
	if !s.Completed {
		t.Error("expected completed summary")
	}
	if s.Elapsed != 4*time.Second {
		t.Errorf("summary elapsed = %v, want 4s", s.Elapsed)
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("sink closed") }

func TestUpdateWriteError(t *testing.T) {
	m, err := New("x", 2, WithOutput(failingWriter{}), WithClock(newFakeClock()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	m.Start()
	if err := m.Update(1); err == nil {
		t.Error("expected write error")
	}
	if m.Progress() != 1 {
		t.Errorf("progress should be stored before the write, got %d", m.Progress())
	}
}
