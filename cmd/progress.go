package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/jacklau/termmeter/internal/meter"
)

// meterFlags are per-command overrides on top of the configured meter defaults.
type meterFlags struct {
	title     string
	width     int
	noETA     bool
	benchmark bool
}

func addMeterFlags(cmd *cobra.Command, f *meterFlags, defaultTitle string) {
	cmd.Flags().StringVar(&f.title, "title", defaultTitle, "label shown before the bar")
	cmd.Flags().IntVar(&f.width, "width", 0, "number of bar cells (default from config)")
	cmd.Flags().BoolVar(&f.noETA, "no-eta", false, "hide the estimated time remaining")
	cmd.Flags().BoolVar(&f.benchmark, "benchmark", false, "show progress ratio, elapsed and remaining time")
}

// newMeter builds a meter writing to out, combining config defaults with flags.
func newMeter(c *components, total int, out io.Writer, f meterFlags) (*meter.Meter, error) {
	mc := c.Config.Meter

	width := mc.Width
	if f.width != 0 {
		width = f.width
	}

	theme := meter.DefaultTheme()
	theme.Filled = mc.Filled
	theme.Empty = mc.Empty

	return meter.New(f.title, total,
		meter.WithWidth(width),
		meter.WithETA(mc.ShowETA() && !f.noETA),
		meter.WithBenchmark(mc.Benchmark || f.benchmark),
		meter.WithOutput(out),
		meter.WithStyler(c.Styler),
		meter.WithTheme(theme),
		meter.WithLogger(c.Logger.With("component", "meter")),
	)
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// abortRun finishes the partial meter line, records the run as incomplete
// and returns cause wrapped with the point at which the run stopped.
func abortRun(c *components, m *meter.Meter, out io.Writer, cause error) error {
	fmt.Fprintln(out) // newline after progress
	c.recordRun(m.Summary())
	return fmt.Errorf("%s stopped at %d/%d: %w", m.Title(), m.Progress(), m.Total(), cause)
}
