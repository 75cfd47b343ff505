package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jacklau/termmeter/internal/config"
	"github.com/jacklau/termmeter/internal/style"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactive setup for termmeter configuration",
	Long:  `Creates a default configuration file with guided prompts.`,
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

// initAnswers holds the values gathered by the init prompts.
type initAnswers struct {
	Width     int
	Color     string
	Benchmark bool
	StorePath string
}

func runInit(cmd *cobra.Command, args []string) error {
	reader := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	ask := func(prompt string) string {
		fmt.Fprint(out, prompt)
		answer, _ := reader.ReadString('\n')
		return strings.TrimSpace(answer)
	}

	fmt.Fprintln(out, "Welcome to termmeter setup!")
	fmt.Fprintln(out, "This will create a configuration file for you.")
	fmt.Fprintln(out)

	configPath := cfgFile
	if configPath == "" {
		configPath = defaultConfigPath()
	}

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		fmt.Fprintf(out, "Config file already exists at %s\n", configPath)
		answer := strings.ToLower(ask("Overwrite? [y/N]: "))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	answers := initAnswers{Width: 50, Color: string(style.ModeAuto), StorePath: "~/.termmeter/runs.db"}

	if v := ask("Bar width [50]: "); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid width %q: must be a positive integer", v)
		}
		answers.Width = n
	}

	if v := ask("Color output (auto/always/never) [auto]: "); v != "" {
		mode, err := style.ParseMode(v)
		if err != nil {
			return err
		}
		answers.Color = string(mode)
	}

	v := strings.ToLower(ask("Show benchmark info by default? [y/N]: "))
	answers.Benchmark = v == "y" || v == "yes"

	if v := ask("Run history database [~/.termmeter/runs.db]: "); v != "" {
		answers.StorePath = v
	}

	content := buildConfigYAML(answers)

	// The generated file must load cleanly.
	if _, err := config.Parse([]byte(content)); err != nil {
		return fmt.Errorf("generated config is invalid: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Fprintf(out, "\nConfig written to %s\n", configPath)
	fmt.Fprintln(out, "Edit the file to change glyphs and demo settings.")
	return nil
}

func buildConfigYAML(a initAnswers) string {
	var b strings.Builder

	b.WriteString("# termmeter configuration\n")
	b.WriteString("# Values of the form ${VAR} are read from the environment.\n\n")

	b.WriteString("meter:\n")
	b.WriteString(fmt.Sprintf("  width: %d\n", a.Width))
	b.WriteString("  eta: true\n")
	b.WriteString(fmt.Sprintf("  benchmark: %t\n", a.Benchmark))
	b.WriteString(fmt.Sprintf("  color: %s\n", a.Color))
	b.WriteString("  filled: \"━\"\n")
	b.WriteString("  empty: \"━\"\n")
	b.WriteString("\n")

	b.WriteString("demo:\n")
	b.WriteString("  total: 50\n")
	b.WriteString("  interval: 100ms\n")
	b.WriteString("  pause_at: 25\n")
	b.WriteString("  pause_for: 450ms\n")
	b.WriteString("\n")

	b.WriteString("store:\n")
	b.WriteString(fmt.Sprintf("  path: %s\n", a.StorePath))
	b.WriteString("  # disabled: true\n")

	return b.String()
}
