package cli

import (
	"context"

	"github.com/vburojevic/logscope/internal/domain"
	"github.com/vburojevic/logscope/internal/output"
)

// LogsCmd groups log inspection commands
type LogsCmd struct {
	Parsed LogsParsedCmd `cmd:"" default:"withargs" help:"Show parsed log lines"`
}

// LogsParsedCmd prints lines from /logs/parsed
type LogsParsedCmd struct {
	Limit int `short:"n" help:"Rows to request (default from config)"`
}

// Run executes the logs parsed command
func (c *LogsParsedCmd) Run(globals *Globals) error {
	limit := c.Limit
	if limit <= 0 && globals.Config != nil {
		limit = globals.Config.Defaults.ParsedLimit
	}
	if limit <= 0 {
		limit = 100
	}

	client := globals.Client()
	list, err := load(globals, "parsed logs", func(ctx context.Context) ([]domain.ParsedLog, error) {
		return client.ParsedLogs(ctx, limit)
	})
	if err != nil {
		return err
	}
	if globals.Format == "ndjson" {
		return output.NewEmitter(globals.Stdout).ParsedLogs(list)
	}
	return output.RenderParsedLogs(globals.Stdout, list)
}
