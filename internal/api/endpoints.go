package api

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/vburojevic/logscope/internal/domain"
)

// Backend routes
const (
	PathRoot               = "/"
	PathAnomalies          = "/anomalies/"
	PathRunDetection       = "/anomalies/run"
	PathSecurityDetection  = "/anomalies/security"
	PathErrorSpike         = "/anomalies/error-spike"
	PathMetricsSummary     = "/metrics/summary"
	PathDailyMetrics       = "/metrics/daily"
	PathTopErrors          = "/metrics/top-errors"
	PathTopAnomalyTypes    = "/metrics/top-anomalies"
	PathSlowestEndpoints   = "/metrics/slowest"
	PathDowntimeIndicators = "/metrics/downtime"
	PathUpload             = "/logs/upload"
	PathParsedLogs         = "/logs/parsed"
	PathRootCause          = "/rca/"
)

// UploadField is the multipart field the backend reads the log file from
const UploadField = "file"

// Ping checks the backend is reachable and returns its greeting, if any
func (c *Client) Ping(ctx context.Context) (string, error) {
	body, err := c.get(ctx, PathRoot, nil)
	if err != nil {
		return "", err
	}
	if msg := gjson.GetBytes(body, "message"); msg.Type == gjson.String {
		return msg.String(), nil
	}
	return "ok", nil
}

// ListAnomalies returns every detected anomaly. A non-array body yields an
// empty list.
func (c *Client) ListAnomalies(ctx context.Context) ([]domain.Anomaly, error) {
	body, err := c.get(ctx, PathAnomalies, nil)
	if err != nil {
		return nil, err
	}
	return decodeAnomalies(body), nil
}

// MetricsSummary returns the KPI snapshot
func (c *Client) MetricsSummary(ctx context.Context) (domain.MetricsSummary, error) {
	body, err := c.get(ctx, PathMetricsSummary, nil)
	if err != nil {
		return domain.MetricsSummary{}, err
	}
	return decodeSummary(PathMetricsSummary, body)
}

// DailyMetrics returns the per-day error series in backend order
func (c *Client) DailyMetrics(ctx context.Context) ([]domain.DailyMetricPoint, error) {
	body, err := c.get(ctx, PathDailyMetrics, nil)
	if err != nil {
		return nil, err
	}
	return decodeDaily(body), nil
}

// TopErrors returns endpoints ranked by error count
func (c *Client) TopErrors(ctx context.Context) ([]domain.TopErrorEntry, error) {
	body, err := c.get(ctx, PathTopErrors, nil)
	if err != nil {
		return nil, err
	}
	return decodeTopErrors(body), nil
}

// TopAnomalyTypes returns anomaly types ranked by frequency
func (c *Client) TopAnomalyTypes(ctx context.Context) ([]domain.AnomalyTypeCount, error) {
	body, err := c.get(ctx, PathTopAnomalyTypes, nil)
	if err != nil {
		return nil, err
	}
	return decodeEach[domain.AnomalyTypeCount](body), nil
}

// SlowestEndpoints returns endpoints ranked by average latency
func (c *Client) SlowestEndpoints(ctx context.Context) ([]domain.SlowEndpoint, error) {
	body, err := c.get(ctx, PathSlowestEndpoints, nil)
	if err != nil {
		return nil, err
	}
	return decodeEach[domain.SlowEndpoint](body), nil
}

// DowntimeIndicators returns endpoints showing a consistent failure pattern
func (c *Client) DowntimeIndicators(ctx context.Context) ([]domain.DowntimeIndicator, error) {
	body, err := c.get(ctx, PathDowntimeIndicators, nil)
	if err != nil {
		return nil, err
	}
	return decodeEach[domain.DowntimeIndicator](body), nil
}

// ParsedLogs returns up to limit parsed log lines. limit <= 0 uses the
// backend default.
func (c *Client) ParsedLogs(ctx context.Context, limit int) ([]domain.ParsedLog, error) {
	var q url.Values
	if limit > 0 {
		q = url.Values{"limit": []string{strconv.Itoa(limit)}}
	}
	body, err := c.get(ctx, PathParsedLogs, q)
	if err != nil {
		return nil, err
	}
	return decodeEach[domain.ParsedLog](body), nil
}

// RootCause fetches the backend's root-cause analysis
func (c *Client) RootCause(ctx context.Context) (domain.RootCause, error) {
	body, err := c.get(ctx, PathRootCause, nil)
	if err != nil {
		return domain.RootCause{}, err
	}
	if !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsObject() {
		return domain.RootCause{}, &ShapeError{Path: PathRootCause, Want: "object"}
	}
	rc := domain.RootCause{Status: gjson.GetBytes(body, "status").String()}
	if analysis := gjson.GetBytes(body, "analysis"); analysis.Exists() {
		rc.Analysis = []byte(analysis.Raw)
	}
	return rc, nil
}

// RunDetection triggers general anomaly detection
func (c *Client) RunDetection(ctx context.Context) (domain.DetectionResult, error) {
	return c.trigger(ctx, PathRunDetection)
}

// RunSecurityDetection triggers security-focused detection
func (c *Client) RunSecurityDetection(ctx context.Context) (domain.DetectionResult, error) {
	return c.trigger(ctx, PathSecurityDetection)
}

// RunErrorSpikeDetection triggers error-spike detection
func (c *Client) RunErrorSpikeDetection(ctx context.Context) (domain.DetectionResult, error) {
	return c.trigger(ctx, PathErrorSpike)
}

func (c *Client) trigger(ctx context.Context, p string) (domain.DetectionResult, error) {
	body, err := c.post(ctx, p)
	if err != nil {
		return domain.DetectionResult{}, err
	}
	return decodeAck[domain.DetectionResult](body), nil
}

// UploadLog streams the file at f.Path to the backend as multipart/form-data
func (c *Client) UploadLog(ctx context.Context, f domain.UploadedFile) (domain.UploadAck, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return domain.UploadAck{}, fmt.Errorf("open %s: %w", f.Path, err)
	}
	defer file.Close()

	name := f.Name
	if name == "" {
		name = filepath.Base(f.Path)
	}
	return c.UploadReader(ctx, name, file)
}

// UploadReader streams r under the given file name. The body is produced
// through a pipe so large files are never buffered in memory.
func (c *Client) UploadReader(ctx context.Context, name string, r io.Reader) (domain.UploadAck, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile(UploadField, name)
		if err == nil {
			_, err = io.Copy(part, r)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	body, err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        PathUpload,
		body:        pr,
		contentType: mw.FormDataContentType(),
	})
	// unblock the writer if the request ended before draining the pipe
	pr.Close()
	if err != nil {
		return domain.UploadAck{}, err
	}
	return decodeAck[domain.UploadAck](body), nil
}
