package cli

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vburojevic/logscope/internal/output"
)

// RcaCmd prints the backend's root-cause analysis
type RcaCmd struct{}

// Run executes the rca command
func (c *RcaCmd) Run(globals *Globals) error {
	client := globals.Client()
	rc, err := load(globals, "root cause analysis", client.RootCause)
	if err != nil {
		return err
	}

	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteRootCause(rc)
	}

	if rc.Status != "" {
		fmt.Fprintf(globals.Stdout, "Status: %s\n", rc.Status)
	}
	if len(rc.Analysis) == 0 || string(rc.Analysis) == "null" {
		fmt.Fprintln(globals.Stdout, output.Paint(output.Styles.Muted, "No analysis available."))
		return nil
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, rc.Analysis, "", "  "); err != nil {
		_, err = globals.Stdout.Write(append(rc.Analysis, '\n'))
		return err
	}
	pretty.WriteByte('\n')
	_, err = pretty.WriteTo(globals.Stdout)
	return err
}
