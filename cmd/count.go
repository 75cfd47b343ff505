package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

const maxLineSize = 1024 * 1024

var (
	countMeter meterFlags
	countTotal int
)

var countCmd = &cobra.Command{
	Use:   "count --total N",
	Short: "Advance the meter once per line read from stdin",
	Long: `Count reads standard input line by line and advances the meter by one
unit per line, so any command that prints one line per finished item
can drive it:

  find . -name '*.go' -exec gofmt -l {} + | termmeter count --total 120

Lines beyond --total are read but not counted.`,
	Args: cobra.NoArgs,
	RunE: runCount,
}

func init() {
	addMeterFlags(countCmd, &countMeter, "Counting")
	countCmd.Flags().IntVar(&countTotal, "total", 0, "number of lines expected (required)")
	_ = countCmd.MarkFlagRequired("total")
	rootCmd.AddCommand(countCmd)
}

func runCount(cmd *cobra.Command, args []string) error {
	logger := setupLogger()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	out := cmd.OutOrStdout()
	c, err := initComponents(cfg, logger, out)
	if err != nil {
		return fmt.Errorf("initializing components: %w", err)
	}
	defer c.Close()

	m, err := newMeter(c, countTotal, out, countMeter)
	if err != nil {
		return fmt.Errorf("creating meter: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m.Start()
	if err := m.Update(0); err != nil {
		return fmt.Errorf("updating meter: %w", err)
	}

	lines, err := countLines(ctx, cmd.InOrStdin(), func(n int) error {
		if n > m.Total() {
			return nil
		}
		return m.Update(n)
	})
	if err != nil {
		return abortRun(c, m, out, err)
	}

	if !m.IsComplete() {
		fmt.Fprintln(out) // newline after progress
		logger.Warn("input ended before total was reached", "lines", lines, "total", m.Total())
	} else if lines > m.Total() {
		logger.Debug("lines beyond total ignored", "lines", lines, "total", m.Total())
	}

	c.recordRun(m.Summary())
	return nil
}

// countLines calls fn with the running line count after each line of r and
// returns the final count. It returns ctx.Err() as soon as ctx is done, even
// while a read is blocked; the reading goroutine then exits with the process.
func countLines(ctx context.Context, r io.Reader, fn func(n int) error) (int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan struct{})
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			select {
			case lines <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
	}()

	n := 0
	for {
		select {
		case <-ctx.Done():
			return n, ctx.Err()
		case _, ok := <-lines:
			if !ok {
				select {
				case err := <-errc:
					if err != nil {
						return n, fmt.Errorf("reading input: %w", err)
					}
					return n, nil
				default:
					return n, ctx.Err()
				}
			}
			n++
			if err := fn(n); err != nil {
				return n, err
			}
		}
	}
}
