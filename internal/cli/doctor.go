package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/vburojevic/logscope/internal/api"
	"github.com/vburojevic/logscope/internal/config"
	"github.com/vburojevic/logscope/internal/output"
	"golang.org/x/sync/errgroup"
)

// DoctorCmd checks configuration and calls every read endpoint of the backend
type DoctorCmd struct{}

// checkResult represents a single diagnostic check
type checkResult struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok", "warning", "error"
	Message string `json:"message,omitempty"`
	Details string `json:"details,omitempty"`
}

// doctorReport is the complete diagnostic report
type doctorReport struct {
	Type          string        `json:"type"`
	SchemaVersion int           `json:"schemaVersion"`
	Timestamp     string        `json:"timestamp"`
	BaseURL       string        `json:"base_url"`
	Checks        []checkResult `json:"checks"`
	AllPassed     bool          `json:"all_passed"`
	ErrorCount    int           `json:"error_count"`
	WarnCount     int           `json:"warn_count"`
}

// endpointCall is one read-only endpoint doctor exercises
type endpointCall struct {
	name string
	path string
	call func(ctx context.Context, c *api.Client) error
}

var endpointCalls = []endpointCall{
	{"Anomalies", api.PathAnomalies, func(ctx context.Context, c *api.Client) error { _, err := c.ListAnomalies(ctx); return err }},
	{"Metrics summary", api.PathMetricsSummary, func(ctx context.Context, c *api.Client) error { _, err := c.MetricsSummary(ctx); return err }},
	{"Daily metrics", api.PathDailyMetrics, func(ctx context.Context, c *api.Client) error { _, err := c.DailyMetrics(ctx); return err }},
	{"Top errors", api.PathTopErrors, func(ctx context.Context, c *api.Client) error { _, err := c.TopErrors(ctx); return err }},
	{"Top anomaly types", api.PathTopAnomalyTypes, func(ctx context.Context, c *api.Client) error { _, err := c.TopAnomalyTypes(ctx); return err }},
	{"Slowest endpoints", api.PathSlowestEndpoints, func(ctx context.Context, c *api.Client) error { _, err := c.SlowestEndpoints(ctx); return err }},
	{"Downtime", api.PathDowntimeIndicators, func(ctx context.Context, c *api.Client) error { _, err := c.DowntimeIndicators(ctx); return err }},
	{"Root cause", api.PathRootCause, func(ctx context.Context, c *api.Client) error { _, err := c.RootCause(ctx); return err }},
}

// Run executes the doctor command
func (c *DoctorCmd) Run(globals *Globals) error {
	ctx, cancel := globals.requestContext()
	defer cancel()

	checks := []checkResult{c.checkConfig(globals), c.checkBaseURL(globals.BaseURL)}

	client := globals.Client()
	reach := c.checkBackend(ctx, client)
	checks = append(checks, reach)
	if reach.Status == "ok" {
		checks = append(checks, c.checkEndpoints(ctx, client)...)
	}

	errorCount := 0
	warnCount := 0
	for _, check := range checks {
		if check.Status == "error" {
			errorCount++
		} else if check.Status == "warning" {
			warnCount++
		}
	}

	report := doctorReport{
		Type:          "doctor",
		SchemaVersion: output.SchemaVersion,
		Timestamp:     time.Now().Format(time.RFC3339),
		BaseURL:       globals.BaseURL,
		Checks:        checks,
		AllPassed:     errorCount == 0,
		ErrorCount:    errorCount,
		WarnCount:     warnCount,
	}

	if globals.Format == "ndjson" {
		encoder := json.NewEncoder(globals.Stdout)
		return encoder.Encode(report)
	}

	// Text output
	fmt.Fprintln(globals.Stdout, "logscope Doctor")
	fmt.Fprintln(globals.Stdout, "===============")
	fmt.Fprintln(globals.Stdout)

	for _, check := range checks {
		var icon string
		switch check.Status {
		case "ok":
			icon = "✓"
		case "warning":
			icon = "⚠"
		case "error":
			icon = "✗"
		}

		fmt.Fprintf(globals.Stdout, "%s %s\n", icon, check.Name)
		if check.Message != "" {
			fmt.Fprintf(globals.Stdout, "  %s\n", check.Message)
		}
		if check.Details != "" {
			fmt.Fprintf(globals.Stdout, "  %s\n", check.Details)
		}
	}

	fmt.Fprintln(globals.Stdout)
	if errorCount == 0 && warnCount == 0 {
		fmt.Fprintln(globals.Stdout, "All checks passed!")
	} else {
		fmt.Fprintf(globals.Stdout, "Errors: %d, Warnings: %d\n", errorCount, warnCount)
	}

	return nil
}

func (c *DoctorCmd) checkConfig(globals *Globals) checkResult {
	configPath := globals.ConfigFile
	if configPath == "" {
		configPath = config.ConfigFile()
	}
	if configPath == "" {
		return checkResult{
			Name:    "Config",
			Status:  "ok",
			Message: "Using defaults (no config file)",
			Details: "Create with: logscope config generate > ~/.logscope.yaml",
		}
	}

	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return checkResult{
			Name:    "Config",
			Status:  "error",
			Message: "Config file has errors",
			Details: err.Error(),
		}
	}

	absPath, _ := filepath.Abs(configPath)
	return checkResult{
		Name:    "Config",
		Status:  "ok",
		Message: fmt.Sprintf("Loaded from: %s", absPath),
		Details: fmt.Sprintf("Format: %s, Timeout: %s", cfg.Format, cfg.Timeout),
	}
}

func (c *DoctorCmd) checkBaseURL(baseURL string) checkResult {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return checkResult{
			Name:    "Base URL",
			Status:  "error",
			Message: fmt.Sprintf("%q is not an http(s) origin", baseURL),
			Details: "Set base_url in the config, LOGSCOPE_BASE_URL, or --base-url",
		}
	}
	if u.Path != "" && u.Path != "/" {
		return checkResult{
			Name:    "Base URL",
			Status:  "warning",
			Message: baseURL,
			Details: "Endpoint paths are appended to " + u.Path,
		}
	}
	return checkResult{Name: "Base URL", Status: "ok", Message: baseURL}
}

func (c *DoctorCmd) checkBackend(ctx context.Context, client *api.Client) checkResult {
	start := time.Now()
	msg, err := client.Ping(ctx)
	if err != nil {
		return checkResult{
			Name:    "Backend",
			Status:  "error",
			Message: "Backend unreachable",
			Details: err.Error(),
		}
	}
	return checkResult{
		Name:    "Backend",
		Status:  "ok",
		Message: msg,
		Details: fmt.Sprintf("Responded in %d ms", time.Since(start).Milliseconds()),
	}
}

// checkEndpoints calls the read endpoints concurrently; results keep table order
func (c *DoctorCmd) checkEndpoints(ctx context.Context, client *api.Client) []checkResult {
	results := make([]checkResult, len(endpointCalls))
	var g errgroup.Group
	for i, p := range endpointCalls {
		g.Go(func() error {
			res := checkResult{Name: p.name + " (" + p.path + ")", Status: "ok"}
			if err := p.call(ctx, client); err != nil {
				res.Status = "warning"
				res.Message = err.Error()
				if api.IsNetworkError(err) {
					res.Status = "error"
				}
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return results
}
