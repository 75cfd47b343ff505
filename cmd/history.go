package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently recorded meter runs",
	Long: `Display the most recent runs recorded by demo and count, with their
progress, elapsed time and completion state, followed by totals across
all runs and the database size.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of runs to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	logger := setupLogger()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	out := cmd.OutOrStdout()
	if cfg.Store.Disabled {
		fmt.Fprintln(out, "Run history is disabled (store.disabled: true).")
		return nil
	}

	c, err := initComponents(cfg, logger, out)
	if err != nil {
		return fmt.Errorf("initializing components: %w", err)
	}
	defer c.Close()

	runs, err := c.Store.ListRuns(historyLimit)
	if err != nil {
		return fmt.Errorf("querying runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		fmt.Fprintln(out, "Run 'termmeter demo' or pipe lines into 'termmeter count --total N' to get started.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPROGRESS\tELAPSED\tSTATUS\tWHEN")
	fmt.Fprintln(w, "--\t-----\t--------\t-------\t------\t----")

	for _, r := range runs {
		status := "incomplete"
		if r.Completed {
			status = "complete"
		}
		fmt.Fprintf(w, "%d\t%s\t%d/%d (%.1f%%)\t%s\t%s\t%s\n",
			r.ID, r.Title, r.Progress, r.Total, r.Percent(),
			formatDuration(r.Elapsed), status, formatTimeAgo(r.CreatedAt))
	}
	w.Flush()

	stats, err := c.Store.GetStats()
	if err != nil {
		return fmt.Errorf("querying stats: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Runs: %d (%d complete), %d units in %s, %.2f units/s\n",
		stats.RunCount, stats.CompletedCount, stats.TotalUnits,
		formatDuration(stats.TotalElapsed), stats.UnitsPerSecond())

	dbSize, err := dbFileSize(cfg.Store.Path)
	if err != nil {
		fmt.Fprintf(out, "Database: %s (size unknown)\n", cfg.Store.Path)
	} else {
		fmt.Fprintf(out, "Database: %s (%s)\n", cfg.Store.Path, humanize.IBytes(uint64(dbSize)))
	}

	return nil
}

// formatTimeAgo formats a time as a human-readable relative string.
func formatTimeAgo(t time.Time) string {
	d := time.Since(t)

	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case d < 24*time.Hour:
		hours := int(d.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}

// formatDuration formats a duration as seconds below a minute and as
// minutes/hours above it.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm %ds", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
}

// dbFileSize returns the size in bytes of the database file.
func dbFileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
