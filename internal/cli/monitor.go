package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vburojevic/logscope/internal/config"
	"github.com/vburojevic/logscope/internal/exporter"
	"github.com/vburojevic/logscope/internal/logging"
)

// MonitorCmd scrapes the backend on an interval and serves Prometheus gauges
type MonitorCmd struct {
	Listen   string        `help:"Address to serve /metrics and /healthz on (default from config, :9464)"`
	Interval time.Duration `help:"Scrape interval (default from config, 30s)"`
}

// Run executes the monitor command
func (c *MonitorCmd) Run(globals *Globals) error {
	listen, interval := c.Listen, c.Interval
	if globals.Config != nil {
		if listen == "" {
			listen = globals.Config.Defaults.MonitorListen
		}
		if interval <= 0 {
			interval = config.Duration(globals.Config.Defaults.MonitorInterval, exporter.DefaultInterval)
		}
	}

	// monitor output is collected by log shippers, so it logs JSON
	logger := logging.NewJSON(globals.Stderr, globals.Verbose)
	defer logger.Sync()

	scraper := *globals
	scraper.Logger = logger
	mon, err := exporter.New(scraper.Client(), exporter.Config{
		Listen:   listen,
		Interval: interval,
		Logger:   logger,
	})
	if err != nil {
		return outputErrorCommon(globals, CodeMonitorFailed, err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mon.Run(ctx); err != nil {
		return outputErrorCommon(globals, CodeMonitorFailed, err.Error(), "Is another process already listening on "+listen+"?")
	}
	return nil
}
