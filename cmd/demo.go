package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var (
	demoMeter    meterFlags
	demoTotal    int
	demoInterval time.Duration
	demoPauseAt  int
	demoPauseFor time.Duration
	demoBanner   bool
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a simulated task to show the meter",
	Long: `Demo advances a meter one unit per interval. When --pause-at is set the
meter is paused at that unit for --pause-for; the paused time is left out
of the elapsed time and the ETA.

Defaults come from the demo section of the config file.`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

func init() {
	addMeterFlags(demoCmd, &demoMeter, "Processing")
	demoCmd.Flags().IntVar(&demoTotal, "total", 0, "number of units to simulate (default from config)")
	demoCmd.Flags().DurationVar(&demoInterval, "interval", 0, "time spent per unit (default from config)")
	demoCmd.Flags().IntVar(&demoPauseAt, "pause-at", 0, "unit at which to pause (0 disables, default from config)")
	demoCmd.Flags().DurationVar(&demoPauseFor, "pause-for", 0, "how long to stay paused (default from config)")
	demoCmd.Flags().BoolVar(&demoBanner, "banner", false, "print the termmeter banner when done")
	rootCmd.AddCommand(demoCmd)
}

// demoPlan is the resolved simulation schedule.
type demoPlan struct {
	total    int
	interval time.Duration
	pauseAt  int
	pauseFor time.Duration
}

// resolveDemoPlan merges config defaults with explicitly set flags.
func resolveDemoPlan(cmd *cobra.Command, c *components) (demoPlan, error) {
	dc := c.Config.Demo
	interval, err := dc.Interval()
	if err != nil {
		return demoPlan{}, fmt.Errorf("parsing demo interval: %w", err)
	}
	pauseFor, err := dc.PauseFor()
	if err != nil {
		return demoPlan{}, fmt.Errorf("parsing demo pause_for: %w", err)
	}

	p := demoPlan{
		total:    dc.Total,
		interval: interval,
		pauseAt:  dc.PauseAt,
		pauseFor: pauseFor,
	}
	if cmd.Flags().Changed("total") {
		p.total = demoTotal
	}
	if cmd.Flags().Changed("interval") {
		p.interval = demoInterval
	}
	if cmd.Flags().Changed("pause-at") {
		p.pauseAt = demoPauseAt
	}
	if cmd.Flags().Changed("pause-for") {
		p.pauseFor = demoPauseFor
	}

	if p.pauseAt < 0 || p.pauseAt > p.total {
		return demoPlan{}, fmt.Errorf("--pause-at must be between 0 and %d, got %d", p.total, p.pauseAt)
	}
	return p, nil
}

func runDemo(cmd *cobra.Command, args []string) error {
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

	plan, err := resolveDemoPlan(cmd, c)
	if err != nil {
		return err
	}

	m, err := newMeter(c, plan.total, out, demoMeter)
	if err != nil {
		return fmt.Errorf("creating meter: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Debug("demo starting", "total", plan.total, "interval", plan.interval,
		"pause_at", plan.pauseAt, "pause_for", plan.pauseFor)

	m.Start()
	for i := 1; i <= plan.total; i++ {
		if i == plan.pauseAt {
			m.Pause()
			if err := sleepCtx(ctx, plan.pauseFor); err != nil {
				return abortRun(c, m, out, err)
			}
			m.Resume()
		}
		if err := sleepCtx(ctx, plan.interval); err != nil {
			return abortRun(c, m, out, err)
		}
		if err := m.Update(i); err != nil {
			return fmt.Errorf("updating meter: %w", err)
		}
	}

	c.recordRun(m.Summary())

	if demoBanner {
		printBanner(out, c.Styler)
	}
	return nil
}
