package cli

import (
	"fmt"

	"github.com/vburojevic/logscope/internal/domain"
	"github.com/vburojevic/logscope/internal/filter"
	"github.com/vburojevic/logscope/internal/output"
	"github.com/vburojevic/logscope/internal/view"
)

// ReportsCmd shows anomaly report cards narrowed by severity
type ReportsCmd struct {
	Severity string   `short:"s" help:"Severity selector: all, low, medium, high, critical (default from config)"`
	Where    []string `short:"w" help:"Additional field filter (repeatable)"`
	Width    int      `default:"80" help:"Card width in text mode"`
}

// Run executes the reports command
func (c *ReportsCmd) Run(globals *Globals) error {
	selection := c.Severity
	if selection == "" && globals.Config != nil {
		selection = globals.Config.Defaults.ReportSeverity
	}
	if selection != "" && selection != filter.SeverityAll && !domain.ParseSeverity(selection).Known() {
		return outputErrorCommon(globals, CodeInvalidFlag, "unknown severity "+selection, "Use all, low, medium, high or critical")
	}

	var query filter.Filter
	if len(c.Where) > 0 {
		wf, err := filter.NewWhereFilter(c.Where)
		if err != nil {
			return outputErrorCommon(globals, CodeInvalidFilter, err.Error(), hintForFilter(err))
		}
		query = wf
	}

	ctx, cancel := globals.requestContext()
	defer cancel()

	v := view.NewReports(globals.Client(), selection, query, globals.binderOptions()...)
	defer v.Close()
	if err := v.RefreshAll(ctx); err != nil {
		return failAPI(globals, err)
	}
	list := v.Filtered()

	if globals.Format == "ndjson" {
		return output.NewEmitter(globals.Stdout).Anomalies(list)
	}

	fmt.Fprintf(globals.Stdout, "Severity: %s  %s\n\n", output.SeverityBadge(v.Selection()),
		output.RenderSeverityCounts(view.SeverityBreakdownFromAnomalies(list)))
	if len(list) == 0 {
		fmt.Fprintln(globals.Stdout, output.Paint(output.Styles.Muted, "No anomalies match."))
		return nil
	}
	for _, a := range list {
		fmt.Fprintln(globals.Stdout, output.SeverityCard(a, max(c.Width, 20)))
	}
	return nil
}
