package cli

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/vburojevic/logscope/internal/api"
	"github.com/vburojevic/logscope/internal/binder"
	"github.com/vburojevic/logscope/internal/config"
	"github.com/vburojevic/logscope/internal/logging"
	"github.com/vburojevic/logscope/internal/metrics"
	"github.com/vburojevic/logscope/internal/output"
	"go.uber.org/zap"
)

// CLI is the root command structure for logscope
type CLI struct {
	// Global flags
	Format  string        `short:"f" default:"${config_format}" enum:"auto,ndjson,text" help:"Output format (auto picks ndjson when stdout is not a terminal)"`
	BaseURL string        `name:"base-url" default:"${config_base_url}" env:"LOGSCOPE_BASE_URL" help:"Backend origin"`
	Timeout time.Duration `default:"${config_timeout}" help:"Per-request timeout"`
	Quiet   bool          `short:"q" help:"Suppress warnings and informational output"`
	Verbose bool          `short:"v" help:"Show debug output (requests, binder transitions)"`
	Version VersionCmd    `cmd:"" help:"Show version information"`

	// Commands
	Ping       PingCmd       `cmd:"" help:"Check that the backend is reachable"`
	Anomalies  AnomaliesCmd  `cmd:"" help:"List detected anomalies"`
	Reports    ReportsCmd    `cmd:"" help:"Show anomaly reports filtered by severity"`
	Metrics    MetricsCmd    `cmd:"" help:"Show backend metrics"`
	Detect     DetectCmd     `cmd:"" help:"Trigger backend detection runs"`
	Upload     UploadCmd     `cmd:"" help:"Upload a log file and run detection"`
	Rca        RcaCmd        `cmd:"" name:"rca" help:"Show root-cause analysis"`
	Logs       LogsCmd       `cmd:"" help:"Inspect parsed log lines"`
	Dashboard  DashboardCmd  `cmd:"" help:"Print a one-shot dashboard overview"`
	UI         UICmd         `cmd:"" help:"Interactive TUI dashboard"`
	Monitor    MonitorCmd    `cmd:"" help:"Serve backend metrics for Prometheus"`
	Doctor     DoctorCmd     `cmd:"" help:"Check configuration and backend endpoints"`
	Config     ConfigCmd     `cmd:"" help:"Show or manage configuration"`
	Completion CompletionCmd `cmd:"" help:"Generate shell completions"`
}

// Globals holds shared state for all commands
type Globals struct {
	Format     string
	Quiet      bool
	Verbose    bool
	BaseURL    string
	Timeout    time.Duration
	Stdout     io.Writer
	Stderr     io.Writer
	Config     *config.Config
	ConfigFile string
	Logger     *zap.Logger

	// HTTPClient overrides the transport, mostly for tests
	HTTPClient *http.Client
}

// NewGlobals creates a new Globals instance from CLI flags
func NewGlobals(cli *CLI) *Globals {
	return NewGlobalsWithConfig(cli, config.Default())
}

// NewGlobalsWithConfig creates a new Globals instance with config fallbacks
func NewGlobalsWithConfig(cli *CLI, cfg *config.Config) *Globals {
	if cfg == nil {
		cfg = config.Default()
	}
	g := &Globals{
		Format:  resolveFormat(cli.Format, os.Stdout),
		Quiet:   cli.Quiet || cfg.Quiet,
		Verbose: cli.Verbose || cfg.Verbose,
		BaseURL: cli.BaseURL,
		Timeout: cli.Timeout,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Config:  cfg,
	}
	if g.BaseURL == "" {
		g.BaseURL = cfg.BaseURL
	}
	if g.Timeout <= 0 {
		g.Timeout = config.Duration(cfg.Timeout, 30*time.Second)
	}
	output.ConfigureFor(os.Stdout)
	g.Logger = logging.New(g.Stderr, g.Verbose)
	return g
}

// resolveFormat turns "auto" into ndjson for pipes and text for terminals
func resolveFormat(format string, f *os.File) string {
	if format != "auto" && format != "" {
		return format
	}
	if f != nil && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return "text"
	}
	return "ndjson"
}

// Client builds a backend client from the resolved settings
func (g *Globals) Client() *api.Client {
	opts := []api.Option{
		api.WithLogger(g.logger()),
		api.WithObserver(metrics.ClientObserver{}),
	}
	if g.HTTPClient != nil {
		opts = append(opts, api.WithHTTPClient(g.HTTPClient))
	}
	return api.NewClient(g.BaseURL, g.Timeout, opts...)
}

func (g *Globals) logger() *zap.Logger {
	return logging.OrNop(g.Logger)
}

// requestContext returns a context bounded by twice the request timeout, enough for
// commands that issue a couple of requests in parallel
func (g *Globals) requestContext() (context.Context, context.CancelFunc) {
	if g.Timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), 2*g.Timeout)
}

// VersionCmd shows version information
type VersionCmd struct{}

// Run executes the version command
func (v *VersionCmd) Run(globals *Globals) error {
	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteMetadata(Version, Commit, BuildDate)
	}
	_, err := io.WriteString(globals.Stdout, "logscope version "+Version+" ("+Commit+")\n")
	return err
}

// Version information (set at build time)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = ""
)

func (g *Globals) binderOptions() []binder.Option {
	return []binder.Option{binder.WithLogger(g.logger())}
}
