package cli

import (
	"fmt"
	"time"

	"github.com/vburojevic/logscope/internal/output"
)

// PingCmd checks backend reachability
type PingCmd struct{}

// Run executes the ping command
func (c *PingCmd) Run(globals *Globals) error {
	ctx, cancel := globals.requestContext()
	defer cancel()

	start := time.Now()
	msg, err := globals.Client().Ping(ctx)
	latency := time.Since(start)

	if globals.Format == "ndjson" {
		if err != nil {
			output.NewNDJSONWriter(globals.Stdout).WritePing(globals.BaseURL, false, err.Error(), latency)
			return failAPI(globals, err)
		}
		return output.NewNDJSONWriter(globals.Stdout).WritePing(globals.BaseURL, true, msg, latency)
	}

	if err != nil {
		return failAPI(globals, err)
	}
	fmt.Fprintf(globals.Stdout, "%s %s (%s, %d ms)\n",
		output.Paint(output.Styles.Success, "Connected"), globals.BaseURL, msg, latency.Milliseconds())
	return nil
}
