package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jacklau/termmeter/internal/config"
	"github.com/jacklau/termmeter/internal/meter"
	"github.com/jacklau/termmeter/internal/store"
	"github.com/jacklau/termmeter/internal/style"
)

var (
	cfgFile   string
	verbose   bool
	colorFlag string
)

var rootCmd = &cobra.Command{
	Use:   "termmeter",
	Short: "Text-based progress meter for terminal tasks",
	Long: `Termmeter draws a live-updating progress bar with percentage, ETA and
benchmark statistics. It can count lines from stdin, run a simulated
task, and keep a local history of finished runs.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", fmt.Sprintf("config file (default %s)", defaultConfigPath()))
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "", "color output: auto, always or never (overrides config)")
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".termmeter/config.yaml"
	}
	return home + "/.termmeter/config.yaml"
}

func setupLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

// loadConfig reads the config file. A missing default config is not an
// error, but an explicitly requested one must exist.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}
	return config.LoadOrDefault(defaultConfigPath())
}

// components holds initialized components for use by subcommands.
type components struct {
	Config *config.Config
	Store  store.Store
	Styler style.Styler
	Logger *slog.Logger

	db *store.DB
}

// initComponents creates all components from config. Meter output goes to out,
// which decides whether colour is enabled in auto mode.
func initComponents(cfg *config.Config, logger *slog.Logger, out io.Writer) (*components, error) {
	c := &components{
		Config: cfg,
		Logger: logger,
	}

	mode, err := cfg.Meter.ColorMode()
	if err != nil {
		return nil, err
	}
	if colorFlag != "" {
		mode, err = style.ParseMode(colorFlag)
		if err != nil {
			return nil, err
		}
	}
	c.Styler = style.New(out, mode)

	if !cfg.Store.Disabled {
		db, err := store.Open(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("opening store: %w", err)
		}
		c.db = db
		c.Store = db
	}

	return c, nil
}

// Close releases the store, if one was opened.
func (c *components) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// recordRun stores a run summary. Failures are logged, never fatal.
func (c *components) recordRun(s meter.Summary) {
	if c.Store == nil {
		return
	}
	run, err := c.Store.RecordRun(s)
	if err != nil {
		c.Logger.Warn("failed to record run", "title", s.Title, "error", err)
		return
	}
	c.Logger.Debug("run recorded", "id", run.ID, "title", run.Title, "completed", run.Completed)
}
