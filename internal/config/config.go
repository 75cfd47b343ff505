package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jacklau/termmeter/internal/style"
)

// Config is the top-level configuration.
type Config struct {
	Meter MeterConfig `yaml:"meter"`
	Demo  DemoConfig  `yaml:"demo"`
	Store StoreConfig `yaml:"store"`
}

// MeterConfig holds defaults applied to every meter the CLI creates.
type MeterConfig struct {
	Width     int    `yaml:"width"`
	ETA       *bool  `yaml:"eta"`
	Benchmark bool   `yaml:"benchmark"`
	Color     string `yaml:"color"`
	Filled    string `yaml:"filled"`
	Empty     string `yaml:"empty"`
}

// DemoConfig drives the simulated task of the demo command.
type DemoConfig struct {
	Total       int    `yaml:"total"`
	IntervalRaw string `yaml:"interval"`
	PauseAt     int    `yaml:"pause_at"`
	PauseForRaw string `yaml:"pause_for"`
}

// StoreConfig holds run history settings.
type StoreConfig struct {
	Path     string `yaml:"path"`
	Disabled bool   `yaml:"disabled"`
}

// ShowETA reports whether the ETA suffix is enabled. It defaults to true.
func (m MeterConfig) ShowETA() bool {
	return m.ETA == nil || *m.ETA
}

// ColorMode returns the parsed colour mode.
func (m MeterConfig) ColorMode() (style.Mode, error) {
	return style.ParseMode(m.Color)
}

// Interval returns the parsed per-unit sleep of the demo.
func (d DemoConfig) Interval() (time.Duration, error) {
	if d.IntervalRaw == "" {
		return 100 * time.Millisecond, nil
	}
	return time.ParseDuration(d.IntervalRaw)
}

// PauseFor returns the parsed pause duration of the demo.
func (d DemoConfig) PauseFor() (time.Duration, error) {
	if d.PauseForRaw == "" {
		return 450 * time.Millisecond, nil
	}
	return time.ParseDuration(d.PauseForRaw)
}

// envVarPattern matches ${VAR} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} placeholders with environment variable values.
// Returns an error if any referenced variable is not set.
func expandEnvVars(data []byte) ([]byte, error) {
	var missing []string

	result := envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		varName := envVarPattern.FindSubmatch(match)[1]
		val, ok := os.LookupEnv(string(varName))
		if !ok {
			missing = append(missing, string(varName))
			return match
		}
		return []byte(val)
	})

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return result, nil
}

// expandTilde replaces a leading "~" with the user's home directory.
func expandTilde(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	cfg.Store.Path = expandTilde(cfg.Store.Path)
	return &cfg
}

// Load reads and parses a config file from the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// LoadOrDefault behaves like Load but returns Default when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Parse parses config from raw YAML bytes, expanding env vars and validating.
func Parse(data []byte) (*Config, error) {
	expanded, err := expandEnvVars(data)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(&cfg)
	cfg.Store.Path = expandTilde(cfg.Store.Path)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Meter.Width == 0 {
		cfg.Meter.Width = 50
	}
	if cfg.Meter.Color == "" {
		cfg.Meter.Color = string(style.ModeAuto)
	}
	if cfg.Meter.Filled == "" {
		cfg.Meter.Filled = "━"
	}
	if cfg.Meter.Empty == "" {
		cfg.Meter.Empty = "━"
	}
	if cfg.Demo.Total == 0 {
		cfg.Demo.Total = 50
	}
	if cfg.Demo.IntervalRaw == "" {
		cfg.Demo.IntervalRaw = "100ms"
	}
	if cfg.Demo.PauseForRaw == "" {
		cfg.Demo.PauseForRaw = "450ms"
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "~/.termmeter/runs.db"
	}
}

func validate(cfg *Config) error {
	if cfg.Meter.Width < 0 {
		return fmt.Errorf("meter.width must be positive, got %d", cfg.Meter.Width)
	}
	if _, err := cfg.Meter.ColorMode(); err != nil {
		return fmt.Errorf("meter.color: %w", err)
	}

	if cfg.Demo.Total < 0 {
		return fmt.Errorf("demo.total must be positive, got %d", cfg.Demo.Total)
	}
	if cfg.Demo.PauseAt < 0 || cfg.Demo.PauseAt > cfg.Demo.Total {
		return fmt.Errorf("demo.pause_at must be between 0 and %d, got %d", cfg.Demo.Total, cfg.Demo.PauseAt)
	}

	// Validate durations parse correctly
	if _, err := time.ParseDuration(cfg.Demo.IntervalRaw); err != nil {
		return fmt.Errorf("invalid demo.interval %q: %w", cfg.Demo.IntervalRaw, err)
	}
	if _, err := time.ParseDuration(cfg.Demo.PauseForRaw); err != nil {
		return fmt.Errorf("invalid demo.pause_for %q: %w", cfg.Demo.PauseForRaw, err)
	}

	return nil
}
