package cli

import (
	"errors"
	"fmt"

	"github.com/vburojevic/logscope/internal/api"
	"github.com/vburojevic/logscope/internal/output"
)

// Error codes emitted in NDJSON error records and text error lines
const (
	CodeBackendUnreachable = "BACKEND_UNREACHABLE"
	CodeBackendError       = "BACKEND_ERROR"
	CodeUnexpectedResponse = "UNEXPECTED_RESPONSE"
	CodeInvalidFilter      = "INVALID_FILTER"
	CodeInvalidFlag        = "INVALID_FLAG"
	CodeFileNotFound       = "FILE_NOT_FOUND"
	CodeUploadFailed       = "UPLOAD_FAILED"
	CodePatternStore       = "PATTERN_STORE_ERROR"
	CodeMonitorFailed      = "MONITOR_FAILED"
	CodeUIFailed           = "UI_FAILED"
)

// outputErrorCommon normalizes error emission across commands, respecting
// ndjson vs text formats so agents always get machine-readable failures.
func outputErrorCommon(globals *Globals, code, message string, hint ...string) error {
	if globals != nil && globals.Format == "ndjson" {
		output.NewNDJSONWriter(globals.Stdout).WriteError(code, message, hint...)
	} else if globals != nil {
		fmt.Fprintf(globals.Stderr, "Error [%s]: %s\n", code, message)
		if len(hint) > 0 && hint[0] != "" {
			fmt.Fprintf(globals.Stderr, "Hint: %s\n", hint[0])
		}
	}
	return &CLIError{Code: code, Message: message, Hint: firstHint(hint)}
}

// failAPI classifies a backend error and emits it
func failAPI(globals *Globals, err error) error {
	code := CodeBackendError
	var shape *api.ShapeError
	switch {
	case api.IsNetworkError(err):
		code = CodeBackendUnreachable
	case errors.As(err, &shape):
		code = CodeUnexpectedResponse
	}
	return outputErrorCommon(globals, code, err.Error(), hintForAPI(err, globals.BaseURL))
}

func firstHint(hint []string) string {
	if len(hint) == 0 {
		return ""
	}
	return hint[0]
}
