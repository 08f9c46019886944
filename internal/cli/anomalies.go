package cli

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/vburojevic/logscope/internal/domain"
	"github.com/vburojevic/logscope/internal/filter"
	"github.com/vburojevic/logscope/internal/output"
	"github.com/vburojevic/logscope/internal/view"
	"go.uber.org/zap"
)

// AnomaliesCmd lists detected anomalies
type AnomaliesCmd struct {
	Pattern     string   `short:"p" help:"Regex the anomaly message must match"`
	Exclude     []string `short:"x" help:"Regex to drop matching messages (repeatable)"`
	Where       []string `short:"w" help:"Field filter, e.g. 'severity>=high AND type~security' (repeatable)"`
	Type        []string `short:"t" help:"Only these anomaly types (trailing * matches a prefix)"`
	ExcludeType []string `help:"Drop these anomaly types"`
	MinSeverity string   `name:"min-severity" help:"Minimum severity (low, medium, high, critical)"`
	Limit       int      `short:"n" help:"Show at most N anomalies (0 = all)"`
	Analyze     bool     `help:"Summarize severities and recurring message patterns instead of listing"`
	Remember    bool     `help:"With --analyze, mark patterns seen in earlier runs as known"`
	PatternFile string   `name:"pattern-file" help:"Pattern store path (default ~/.logscope/patterns.json)"`
}

// Run executes the anomalies command
func (c *AnomaliesCmd) Run(globals *Globals) error {
	pipeline, err := buildFilters(c.Pattern, c.Exclude, c.Where)
	if err != nil {
		return outputErrorCommon(globals, CodeInvalidFilter, err.Error(), hintForFilter(err))
	}
	if c.Limit < 0 {
		return outputErrorCommon(globals, CodeInvalidFlag, "--limit must be >= 0")
	}
	if c.MinSeverity != "" && !domain.ParseSeverity(c.MinSeverity).Known() {
		return outputErrorCommon(globals, CodeInvalidFlag, "unknown severity "+c.MinSeverity, "Use low, medium, high or critical")
	}
	if c.Remember && !c.Analyze {
		return outputErrorCommon(globals, CodeInvalidFlag, "--remember requires --analyze")
	}

	ctx, cancel := globals.requestContext()
	defer cancel()

	v := view.NewAnomalies(globals.Client(), globals.binderOptions()...)
	defer v.Close()
	if err := v.RefreshAll(ctx); err != nil {
		return failAPI(globals, err)
	}

	f := filter.NewChain(listFilter(pipeline, c.Type, c.ExcludeType))
	if c.MinSeverity != "" {
		f.Add(filter.NewSeverityFilter(domain.ParseSeverity(c.MinSeverity)))
	}
	list := filter.Apply(v.List.Snapshot().Data, f)
	if c.Limit > 0 && len(list) > c.Limit {
		list = list[:c.Limit]
	}

	if c.Analyze {
		return c.analyze(globals, list)
	}

	if globals.Format == "ndjson" {
		return output.NewEmitter(globals.Stdout).Anomalies(list)
	}
	return output.RenderAnomalies(globals.Stdout, list)
}

func (c *AnomaliesCmd) analyze(globals *Globals, list []domain.Anomaly) error {
	analyzer := output.NewAnalyzer()
	summary := analyzer.Summarize(list)
	patterns := analyzer.DetectPatterns(list)

	if c.Remember {
		path := c.PatternFile
		if path == "" {
			path = output.DefaultPatternFile()
		}
		store, err := output.OpenPatternStore(path, clock.New())
		if err != nil {
			return outputErrorCommon(globals, CodePatternStore, err.Error(), "Delete or fix "+path+" to start a fresh pattern history")
		}
		fresh := store.Record(patterns)
		if err := store.Save(); err != nil {
			return outputErrorCommon(globals, CodePatternStore, err.Error())
		}
		globals.logger().Debug("pattern store updated", zap.String("path", path), zap.Int("new", fresh), zap.Int("known", store.Len()))
	}

	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteAnalysis(output.NewAnalysisOutput(summary, patterns, time.Now().UTC()))
	}
	return output.RenderAnalysis(globals.Stdout, summary, patterns)
}
