package cli

import (
	"context"
	"fmt"

	"github.com/vburojevic/logscope/internal/domain"
	"github.com/vburojevic/logscope/internal/output"
)

// DetectCmd groups the detection triggers
type DetectCmd struct {
	Detection  DetectRunCmd        `cmd:"" name:"run" default:"withargs" help:"Run anomaly detection over ingested logs"`
	Security   DetectSecurityCmd   `cmd:"" help:"Run security detection"`
	ErrorSpike DetectErrorSpikeCmd `cmd:"" name:"error-spike" help:"Run error-spike detection"`
}

// DetectRunCmd triggers POST /anomalies/run
type DetectRunCmd struct{}

// Run executes the detect run command
func (c *DetectRunCmd) Run(globals *Globals) error {
	return runDetection(globals, "anomaly", globals.Client().RunDetection)
}

// DetectSecurityCmd triggers POST /anomalies/security
type DetectSecurityCmd struct{}

// Run executes the detect security command
func (c *DetectSecurityCmd) Run(globals *Globals) error {
	return runDetection(globals, "security", globals.Client().RunSecurityDetection)
}

// DetectErrorSpikeCmd triggers POST /anomalies/error-spike
type DetectErrorSpikeCmd struct{}

// Run executes the detect error-spike command
func (c *DetectErrorSpikeCmd) Run(globals *Globals) error {
	return runDetection(globals, "error_spike", globals.Client().RunErrorSpikeDetection)
}

func runDetection(globals *Globals, kind string, trigger func(context.Context) (domain.DetectionResult, error)) error {
	ctx, cancel := globals.requestContext()
	defer cancel()

	res, err := trigger(ctx)
	if err != nil {
		return failAPI(globals, err)
	}
	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteDetection(kind, res)
	}
	status := res.Status
	if status == "" {
		status = "done"
	}
	_, err = fmt.Fprintf(globals.Stdout, "%s detection %s: %d detected\n", kind, status, res.Count())
	return err
}
