package cli

import (
	"fmt"

	"github.com/vburojevic/logscope/internal/output"
)

// emitWarning respects format/quiet.
func emitWarning(globals *Globals, emitter *output.Emitter, msg string) {
	if globals.Quiet {
		return
	}
	if globals.Format == "ndjson" && emitter != nil {
		emitter.Warning(msg)
		return
	}
	output.NewTextWriter(globals.Stderr).WriteWarning(msg)
}

// emitInfo prints progress lines in text mode only; NDJSON consumers get
// dedicated records instead.
func emitInfo(globals *Globals, format string, args ...any) {
	if globals.Quiet || globals.Format == "ndjson" {
		return
	}
	output.NewTextWriter(globals.Stderr).WriteInfo(fmt.Sprintf(format, args...))
}
