package cli

import (
	"fmt"

	"github.com/vburojevic/logscope/internal/output"
	"github.com/vburojevic/logscope/internal/view"
)

// DashboardCmd prints the dashboard view once
type DashboardCmd struct{}

// Run executes the dashboard command
func (c *DashboardCmd) Run(globals *Globals) error {
	ctx, cancel := globals.requestContext()
	defer cancel()

	d := view.NewDashboard(globals.Client(), globals.binderOptions()...)
	defer d.Close()

	// every panel renders whatever loaded; a failure only empties its own slice
	refreshErr := d.RefreshAll(ctx)

	if globals.Format == "ndjson" {
		return c.emit(globals, d, refreshErr)
	}

	fmt.Fprintln(globals.Stdout, d.Connectivity())
	if snap := d.Summary.Snapshot(); snap.HasData {
		if err := output.RenderKeyValues(globals.Stdout, "Overview", view.KPIs(snap.Data)); err != nil {
			return err
		}
	} else if snap.Message != "" {
		emitWarning(globals, nil, snap.Message)
	}
	if snap := d.Daily.Snapshot(); snap.HasData {
		if err := output.RenderHeader(globals.Stdout, "Error trend"); err != nil {
			return err
		}
		if err := output.RenderTrend(globals.Stdout, snap.Data); err != nil {
			return err
		}
	} else if snap.Message != "" {
		emitWarning(globals, nil, snap.Message)
	}
	if snap := d.Anomalies.Snapshot(); snap.HasData {
		if err := output.RenderHeader(globals.Stdout, "Recent anomalies"); err != nil {
			return err
		}
		if err := output.RenderAnomalies(globals.Stdout, d.Recent()); err != nil {
			return err
		}
	} else if snap.Message != "" {
		emitWarning(globals, nil, snap.Message)
	}

	if refreshErr != nil && !anyLoaded(d) {
		return failAPI(globals, refreshErr)
	}
	return nil
}

func (c *DashboardCmd) emit(globals *Globals, d *view.Dashboard, refreshErr error) error {
	emitter := output.NewEmitter(globals.Stdout)
	ping := d.Ping.Snapshot()
	emitter.Writer().WritePing(globals.BaseURL, ping.HasData, d.Connectivity(), 0)
	if snap := d.Summary.Snapshot(); snap.HasData {
		emitter.Summary(snap.Data)
	}
	if snap := d.Daily.Snapshot(); snap.HasData {
		emitter.Daily(snap.Data)
	}
	if snap := d.Anomalies.Snapshot(); snap.HasData {
		emitter.Anomalies(d.Recent())
	}
	if refreshErr != nil && !anyLoaded(d) {
		return failAPI(globals, refreshErr)
	}
	if refreshErr != nil {
		emitWarning(globals, emitter, refreshErr.Error())
	}
	return nil
}

func anyLoaded(d *view.Dashboard) bool {
	return d.Summary.Snapshot().HasData || d.Daily.Snapshot().HasData || d.Anomalies.Snapshot().HasData
}
