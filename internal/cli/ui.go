package cli

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vburojevic/logscope/internal/binder"
	"github.com/vburojevic/logscope/internal/logging"
	"github.com/vburojevic/logscope/internal/tui"
	"go.uber.org/zap"
)

// UICmd launches the interactive dashboard
type UICmd struct {
	Severity string `short:"s" help:"Initial reports severity selector (default from config)"`
	LogFile  string `name:"log-file" help:"Write debug logs here while the UI owns the terminal (default with --verbose: $TMPDIR/logscope-ui.log)"`
}

// Run executes the UI command
func (c *UICmd) Run(globals *Globals) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	logger, closeLog, err := c.logger(globals)
	if err != nil {
		return outputErrorCommon(globals, CodeUIFailed, err.Error())
	}
	defer closeLog()

	severity := c.Severity
	if severity == "" && globals.Config != nil {
		severity = globals.Config.Defaults.ReportSeverity
	}

	ui := *globals
	ui.Logger = logger
	model := tui.New(ctx, ui.Client(), tui.Config{
		BaseURL:        globals.BaseURL,
		ReportSeverity: severity,
		Binder:         []binder.Option{binder.WithLogger(logger)},
		Logger:         logger,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	interrupted := ctx.Err() != nil
	cancel()
	model.Close()
	model.Wait()
	if err != nil && !interrupted {
		return outputErrorCommon(globals, CodeUIFailed, err.Error())
	}
	return nil
}

// logger keeps zap off the terminal the UI draws on
func (c *UICmd) logger(globals *Globals) (*zap.Logger, func(), error) {
	path := c.LogFile
	if path == "" && globals.Verbose {
		path = filepath.Join(os.TempDir(), "logscope-ui.log")
	}
	if path == "" {
		return zap.NewNop(), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	l := logging.New(f, true)
	return l, func() {
		_ = l.Sync()
		_ = f.Close()
	}, nil
}
