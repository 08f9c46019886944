package cli

import (
	"errors"
	"net/url"
	"strings"

	"github.com/vburojevic/logscope/internal/api"
	"github.com/vburojevic/logscope/internal/filter"
	"github.com/vburojevic/logscope/internal/upload"
)

func hintForAPI(err error, baseURL string) string {
	if err == nil {
		return ""
	}

	if api.IsNetworkError(err) {
		u, perr := url.Parse(baseURL)
		if perr != nil || u.Scheme == "" || u.Host == "" {
			return "The base URL looks malformed; pass --base-url http://host:port or set LOGSCOPE_BASE_URL"
		}
		return "Is the backend running at " + baseURL + "? Try `logscope ping` or `logscope doctor`"
	}

	var shape *api.ShapeError
	if errors.As(err, &shape) {
		return "The backend answered with an unexpected payload; check that --base-url points at the log-analysis API"
	}

	switch status := api.StatusCode(err); {
	case status == 404:
		return "Endpoint not found; the backend may be an older version. Run `logscope doctor` to see which endpoints respond"
	case status >= 500:
		return "The backend failed while handling the request; check its logs"
	}
	return ""
}

func hintForUpload(err error, baseURL string) string {
	var stepErr *upload.StepError
	if errors.As(err, &stepErr) {
		if h := hintForAPI(stepErr.Err, baseURL); h != "" {
			return h
		}
		return "Fix the problem and run the upload again; the sequence restarts from the upload step"
	}
	if errors.Is(err, upload.ErrBusy) {
		return "Wait for the running upload to finish"
	}
	return ""
}

func hintForFilter(err error) string {
	if err == nil {
		return ""
	}
	if strings.Contains(err.Error(), "unknown where field") {
		return "Fields: " + strings.Join(filter.WhereFields(), ", ")
	}
	return "If the filter contains spaces/parentheses, quote it. Example: --where '(severity>=high OR type=security) AND message~timeout' (regex literal: message~/timeout|refused/i)"
}
