package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/vburojevic/logscope/internal/domain"
	"github.com/vburojevic/logscope/internal/output"
	"github.com/vburojevic/logscope/internal/upload"
	"github.com/vburojevic/logscope/internal/view"
)

// UploadCmd uploads a log file and runs the detection sequence
type UploadCmd struct {
	File      string `arg:"" help:"Log file to upload"`
	NoMetrics bool   `name:"no-metrics" help:"Skip printing the metrics view after a successful upload"`
}

// Run executes the upload command
func (c *UploadCmd) Run(globals *Globals) error {
	if c.File == "" {
		return nil
	}
	info, err := os.Stat(c.File)
	if err != nil {
		return outputErrorCommon(globals, CodeFileNotFound, err.Error(), "Pass the path of a readable log file")
	}
	if info.IsDir() {
		return outputErrorCommon(globals, CodeFileNotFound, c.File+" is a directory", "Pass the path of a log file, not a directory")
	}
	file := domain.UploadedFile{Path: c.File, Name: filepath.Base(c.File), Size: info.Size()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var emitter *output.Emitter
	if globals.Format == "ndjson" {
		emitter = output.NewEmitter(globals.Stdout)
	}

	client := globals.Client()
	var notice string
	navigated := false
	orch := &upload.Orchestrator{
		Backend:   client,
		Notifier:  upload.NotifierFunc(func(msg string) { notice = msg }),
		Navigator: upload.NavigatorFunc(func(v upload.View) { navigated = v == upload.ViewMetrics }),
		Progress: func(step upload.Step) {
			if emitter != nil {
				emitter.Writer().WriteProgress(step.String())
				return
			}
			emitInfo(globals, "%s...", step)
		},
		Logger: globals.logger(),
	}

	res, err := orch.Submit(ctx, file)
	if err != nil {
		if notice == "" {
			notice = err.Error()
		}
		return outputErrorCommon(globals, CodeUploadFailed, notice, hintForUpload(err, globals.BaseURL))
	}

	if emitter != nil {
		if err := emitter.Writer().WriteUpload(&output.UploadOutput{
			File:             file.Name,
			Status:           res.Ack.Status,
			Saved:            res.Ack.Saved,
			Detected:         res.Detection.Count(),
			SecurityDetected: res.Security.Count(),
			Skipped:          res.Skipped,
		}); err != nil {
			return err
		}
	} else {
		output.NewTextWriter(globals.Stdout).WriteSuccess(fmt.Sprintf(
			"Uploaded %s: %d lines saved, %d anomalies, %d security findings",
			file.Name, res.Ack.Saved, res.Detection.Count(), res.Security.Count()))
	}

	if !navigated || c.NoMetrics {
		return nil
	}
	return showMetricsView(ctx, globals, emitter)
}

// showMetricsView renders the Metrics view the sequence navigated to
func showMetricsView(ctx context.Context, globals *Globals, emitter *output.Emitter) error {
	m := view.NewMetrics(globals.Client(), globals.binderOptions()...)
	defer m.Close()

	err := m.RefreshAll(ctx)
	summary := m.Summary.Snapshot()
	if !summary.HasData {
		if err == nil {
			err = errors.New("metrics summary unavailable")
		}
		return failAPI(globals, err)
	}
	if err != nil {
		emitWarning(globals, emitter, "metrics view incomplete: "+err.Error())
	}

	if emitter != nil {
		if err := emitter.Summary(summary.Data); err != nil {
			return err
		}
		return emitter.TopErrors(m.TopErrors.Snapshot().Data)
	}

	if err := output.RenderKeyValues(globals.Stdout, "Metrics", view.KPIs(summary.Data)); err != nil {
		return err
	}
	if err := output.RenderSeverityBreakdown(globals.Stdout, m.Breakdown()); err != nil {
		return err
	}
	if top := m.TopErrors.Snapshot(); top.HasData {
		if err := output.RenderTopErrors(globals.Stdout, top.Data); err != nil {
			return err
		}
	}
	if daily := m.Daily.Snapshot(); daily.HasData {
		return output.RenderTrend(globals.Stdout, daily.Data)
	}
	return nil
}
