package cli

import (
	"encoding/json"
	"fmt"

	"github.com/vburojevic/logscope/internal/config"
)

// ConfigCmd shows or manages configuration
type ConfigCmd struct {
	Show     ConfigShowCmd     `cmd:"" default:"withargs" help:"Show current configuration"`
	Path     ConfigPathCmd     `cmd:"" help:"Show configuration file path"`
	Generate ConfigGenerateCmd `cmd:"" help:"Generate sample configuration file"`
}

// ConfigShowCmd shows current configuration
type ConfigShowCmd struct{}

// Run executes the config show command
func (c *ConfigShowCmd) Run(globals *Globals) error {
	cfg := globals.Config
	if cfg == nil {
		cfg = config.Default()
	}

	if globals.Format == "ndjson" {
		output := map[string]interface{}{
			"type":               "config",
			"format":             cfg.Format,
			"base_url":           cfg.BaseURL,
			"timeout":            cfg.Timeout,
			"quiet":              cfg.Quiet,
			"verbose":            cfg.Verbose,
			"defaults":           cfg.Defaults,
			"config_file":        globals.ConfigFile,
			"effective_base_url": globals.BaseURL,
		}
		encoder := json.NewEncoder(globals.Stdout)
		return encoder.Encode(output)
	}

	// Text output
	fmt.Fprintln(globals.Stdout, "Current Configuration:")
	fmt.Fprintln(globals.Stdout, "")
	fmt.Fprintf(globals.Stdout, "  format:   %s\n", cfg.Format)
	fmt.Fprintf(globals.Stdout, "  base_url: %s\n", cfg.BaseURL)
	fmt.Fprintf(globals.Stdout, "  timeout:  %s\n", cfg.Timeout)
	fmt.Fprintf(globals.Stdout, "  quiet:    %v\n", cfg.Quiet)
	fmt.Fprintf(globals.Stdout, "  verbose:  %v\n", cfg.Verbose)
	fmt.Fprintln(globals.Stdout, "")
	fmt.Fprintln(globals.Stdout, "Defaults:")
	fmt.Fprintf(globals.Stdout, "  recent_limit:     %d\n", cfg.Defaults.RecentLimit)
	fmt.Fprintf(globals.Stdout, "  report_severity:  %s\n", cfg.Defaults.ReportSeverity)
	fmt.Fprintf(globals.Stdout, "  parsed_limit:     %d\n", cfg.Defaults.ParsedLimit)
	fmt.Fprintf(globals.Stdout, "  monitor_listen:   %s\n", cfg.Defaults.MonitorListen)
	fmt.Fprintf(globals.Stdout, "  monitor_interval: %s\n", cfg.Defaults.MonitorInterval)

	if globals.BaseURL != "" && globals.BaseURL != cfg.BaseURL {
		fmt.Fprintln(globals.Stdout, "")
		fmt.Fprintf(globals.Stdout, "Effective base URL: %s\n", globals.BaseURL)
	}

	path := globals.ConfigFile
	if path == "" {
		path = config.ConfigFile()
	}
	if path != "" {
		fmt.Fprintln(globals.Stdout, "")
		fmt.Fprintf(globals.Stdout, "Loaded from: %s\n", path)
	}

	return nil
}

// ConfigPathCmd shows config file path
type ConfigPathCmd struct{}

// Run executes the config path command
func (c *ConfigPathCmd) Run(globals *Globals) error {
	path := config.ConfigFile()

	if globals.Format == "ndjson" {
		output := map[string]interface{}{
			"type": "config_path",
			"path": path,
		}
		encoder := json.NewEncoder(globals.Stdout)
		return encoder.Encode(output)
	}

	if path == "" {
		fmt.Fprintln(globals.Stdout, "No configuration file found")
		fmt.Fprintln(globals.Stdout, "")
		fmt.Fprintln(globals.Stdout, "Create one at:")
		fmt.Fprintln(globals.Stdout, "  ./.logscope.yaml")
		fmt.Fprintln(globals.Stdout, "  ~/.logscope.yaml")
		fmt.Fprintln(globals.Stdout, "  ~/.config/logscope/config.yaml")
	} else {
		fmt.Fprintf(globals.Stdout, "Config file: %s\n", path)
	}

	return nil
}

// ConfigGenerateCmd generates a sample configuration file
type ConfigGenerateCmd struct{}

// Run executes the config generate command
func (c *ConfigGenerateCmd) Run(globals *Globals) error {
	sampleConfig := `# logscope configuration file
# Place this file at ./.logscope.yaml, ~/.logscope.yaml, or ~/.config/logscope/config.yaml

# Output format: "auto" (ndjson when piped, text on a terminal), "ndjson" or "text"
format: auto

# Log-analysis backend origin (LOGSCOPE_BASE_URL and --base-url override this)
base_url: http://localhost:8000

# Per-request timeout
timeout: 30s

# Suppress warnings and informational output
quiet: false

# Enable verbose/debug output
verbose: false

# Default values for commands
defaults:
  # Anomalies shown in the dashboard's recent list
  recent_limit: 8

  # Reports severity selector: all, low, medium, high, critical
  report_severity: all

  # Rows requested by "logscope logs parsed"
  parsed_limit: 100

  # Address and scrape interval for "logscope monitor"
  monitor_listen: ":9464"
  monitor_interval: 30s
`

	fmt.Fprint(globals.Stdout, sampleConfig)
	return nil
}
