package cli

import (
	"github.com/vburojevic/logscope/internal/output"
	"github.com/vburojevic/logscope/internal/view"
)

// MetricsCmd groups the metrics endpoints
type MetricsCmd struct {
	Summary      MetricsSummaryCmd      `cmd:"" default:"withargs" help:"KPI summary with severity breakdown"`
	Daily        MetricsDailyCmd        `cmd:"" help:"Daily error trend"`
	TopErrors    MetricsTopErrorsCmd    `cmd:"" name:"top-errors" help:"Endpoints ranked by errors"`
	TopAnomalies MetricsTopAnomaliesCmd `cmd:"" name:"top-anomalies" help:"Anomaly types ranked by frequency"`
	Slowest      MetricsSlowestCmd      `cmd:"" help:"Slowest endpoints"`
	Downtime     MetricsDowntimeCmd     `cmd:"" help:"Downtime indicators"`
}

// MetricsSummaryCmd prints the KPI snapshot
type MetricsSummaryCmd struct{}

// Run executes the metrics summary command
func (c *MetricsSummaryCmd) Run(globals *Globals) error {
	client := globals.Client()
	s, err := load(globals, "metrics summary", client.MetricsSummary)
	if err != nil {
		return err
	}

	if globals.Format == "ndjson" {
		// warnings are embedded in the summary record
		return output.NewNDJSONWriter(globals.Stdout).WriteMetricsSummary(s)
	}

	for _, w := range s.Validate() {
		emitWarning(globals, nil, w)
	}
	if err := output.RenderKeyValues(globals.Stdout, "Metrics summary", view.KPIs(s)); err != nil {
		return err
	}
	return output.RenderSeverityBreakdown(globals.Stdout, view.SeverityBreakdown(s))
}

// MetricsDailyCmd prints the daily error trend
type MetricsDailyCmd struct{}

// Run executes the metrics daily command
func (c *MetricsDailyCmd) Run(globals *Globals) error {
	client := globals.Client()
	points, err := load(globals, "daily metrics", client.DailyMetrics)
	if err != nil {
		return err
	}
	if globals.Format == "ndjson" {
		return output.NewEmitter(globals.Stdout).Daily(points)
	}
	return output.RenderTrend(globals.Stdout, points)
}

// MetricsTopErrorsCmd prints endpoints ranked by errors
type MetricsTopErrorsCmd struct{}

// Run executes the metrics top-errors command
func (c *MetricsTopErrorsCmd) Run(globals *Globals) error {
	client := globals.Client()
	list, err := load(globals, "top errors", client.TopErrors)
	if err != nil {
		return err
	}
	if globals.Format == "ndjson" {
		return output.NewEmitter(globals.Stdout).TopErrors(list)
	}
	return output.RenderTopErrors(globals.Stdout, list)
}

// MetricsTopAnomaliesCmd prints anomaly types ranked by frequency
type MetricsTopAnomaliesCmd struct{}

// Run executes the metrics top-anomalies command
func (c *MetricsTopAnomaliesCmd) Run(globals *Globals) error {
	client := globals.Client()
	list, err := load(globals, "top anomaly types", client.TopAnomalyTypes)
	if err != nil {
		return err
	}
	if globals.Format == "ndjson" {
		return output.NewEmitter(globals.Stdout).AnomalyTypes(list)
	}
	return output.RenderAnomalyTypes(globals.Stdout, list)
}

// MetricsSlowestCmd prints endpoint latencies
type MetricsSlowestCmd struct{}

// Run executes the metrics slowest command
func (c *MetricsSlowestCmd) Run(globals *Globals) error {
	client := globals.Client()
	list, err := load(globals, "slowest endpoints", client.SlowestEndpoints)
	if err != nil {
		return err
	}
	if globals.Format == "ndjson" {
		return output.NewEmitter(globals.Stdout).SlowEndpoints(list)
	}
	return output.RenderSlowEndpoints(globals.Stdout, list)
}

// MetricsDowntimeCmd prints downtime indicators
type MetricsDowntimeCmd struct{}

// Run executes the metrics downtime command
func (c *MetricsDowntimeCmd) Run(globals *Globals) error {
	client := globals.Client()
	list, err := load(globals, "downtime indicators", client.DowntimeIndicators)
	if err != nil {
		return err
	}
	if globals.Format == "ndjson" {
		return output.NewEmitter(globals.Stdout).Downtime(list)
	}
	return output.RenderDowntime(globals.Stdout, list)
}
