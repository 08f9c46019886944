package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/vburojevic/logscope/internal/cli"
	"github.com/vburojevic/logscope/internal/config"
	"go.uber.org/zap"
)

const quickStart = `logscope - terminal client for the log-analysis backend

START HERE:
  logscope ping                         Check the backend at $LOGSCOPE_BASE_URL
  logscope ui                           Interactive dashboard

Other useful commands:
  logscope dashboard                    One-shot overview
  logscope anomalies --analyze          Severity summary and recurring patterns
  logscope reports -s critical          Report cards for one severity
  logscope upload app.log               Upload, detect, then show metrics
  logscope doctor                       Check config and every endpoint
`

func main() {
	// Show quick start if no args provided
	if len(os.Args) == 1 {
		fmt.Print(quickStart)
		return
	}

	// Load configuration from files/environment (plus provenance metadata).
	cfg, meta, err := config.LoadWithMeta()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		cfg = config.Default()
		meta = nil
	}

	// kong rejects an enum default outside the allowed set
	switch cfg.Format {
	case "auto", "ndjson", "text":
	default:
		fmt.Fprintf(os.Stderr, "Warning: ignoring config format %q\n", cfg.Format)
		cfg.Format = "auto"
	}

	var c cli.CLI

	// Apply config defaults before parsing
	// These will be overridden by CLI flags if specified
	vars := kong.Vars{
		"config_format":   cfg.Format,
		"config_base_url": cfg.BaseURL,
		"config_timeout":  config.Duration(cfg.Timeout, 30*time.Second).String(),
	}

	ctx := kong.Parse(&c,
		kong.Name("logscope"),
		kong.Description("logscope: anomalies, metrics and uploads for the log-analysis backend\n\nSTART HERE: logscope ping, then logscope ui"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		vars,
	)

	// Create globals with config fallbacks
	globals := cli.NewGlobalsWithConfig(&c, cfg)
	if meta != nil {
		globals.ConfigFile = meta.ConfigFile
		globals.Logger.Debug("configuration loaded",
			zap.String("file", meta.ConfigFile),
			zap.String("dotenv", meta.DotEnvFile),
			zap.Strings("env", meta.EnvKeys))
	}
	err = ctx.Run(globals)
	_ = globals.Logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
