package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/vburojevic/logscope/internal/domain"
)

// NDJSONWriter writes backend records as NDJSON
type NDJSONWriter struct {
	w       io.Writer
	encoder *json.Encoder
}

// NewNDJSONWriter creates a new NDJSON writer
func NewNDJSONWriter(w io.Writer) *NDJSONWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false) // keep messages unescaped and avoid extra allocations
	return &NDJSONWriter{
		w:       w,
		encoder: enc,
	}
}

// Header carries the fields every NDJSON record starts with
type Header struct {
	Type          string `json:"type"`
	SchemaVersion int    `json:"schemaVersion"`
}

func header(typ string) Header {
	return Header{Type: typ, SchemaVersion: SchemaVersion}
}

// AnomalyOutput is one anomaly record. The anomaly type is renamed so it
// does not collide with the record type.
type AnomalyOutput struct {
	Header
	ID          int             `json:"id"`
	Timestamp   string          `json:"timestamp"`
	AnomalyType string          `json:"anomaly_type"`
	Severity    domain.Severity `json:"severity"`
	Tier        string          `json:"tier"`
	Score       *float64        `json:"score,omitempty"`
	Message     *string         `json:"message,omitempty"`
	LogID       *int            `json:"log_id,omitempty"`
}

// SummaryOutput is the KPI snapshot record
type SummaryOutput struct {
	Header
	domain.MetricsSummary
	Breakdown []domain.SeverityCount `json:"breakdown"`
	Warnings  []string               `json:"warnings,omitempty"`
}

// DailyOutput is one point of the daily error series
type DailyOutput struct {
	Header
	domain.DailyMetricPoint
}

// TopErrorOutput is one ranked endpoint
type TopErrorOutput struct {
	Header
	domain.TopErrorEntry
}

// AnomalyTypeOutput is one ranked anomaly type
type AnomalyTypeOutput struct {
	Header
	AnomalyType string  `json:"anomaly_type"`
	Count       int     `json:"count"`
	Percent     float64 `json:"percent"`
}

// SlowEndpointOutput is one endpoint latency record
type SlowEndpointOutput struct {
	Header
	domain.SlowEndpoint
}

// DowntimeOutput is one downtime indicator
type DowntimeOutput struct {
	Header
	domain.DowntimeIndicator
}

// ParsedLogOutput is one parsed log line
type ParsedLogOutput struct {
	Header
	domain.ParsedLog
}

// DetectionOutput acknowledges a detection trigger
type DetectionOutput struct {
	Header
	Kind     string `json:"kind"`
	Status   string `json:"status,omitempty"`
	Detected int    `json:"detected"`
}

// UploadOutput reports a finished upload sequence
type UploadOutput struct {
	Header
	File             string `json:"file"`
	Status           string `json:"status,omitempty"`
	Saved            int    `json:"saved"`
	Detected         int    `json:"detected"`
	SecurityDetected int    `json:"security_detected"`
	Skipped          bool   `json:"skipped,omitempty"`
}

// RootCauseOutput wraps the backend's free-form analysis
type RootCauseOutput struct {
	Header
	Status   string          `json:"status,omitempty"`
	Analysis json.RawMessage `json:"analysis,omitempty"`
}

// PingOutput reports backend reachability
type PingOutput struct {
	Header
	BaseURL   string `json:"base_url"`
	Reachable bool   `json:"reachable"`
	Message   string `json:"message,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

// ProgressOutput reports an upload step starting
type ProgressOutput struct {
	Header
	Step string `json:"step"`
}

// InfoOutput represents an informational message
type InfoOutput struct {
	Header
	Message string `json:"message"`
	BaseURL string `json:"base_url,omitempty"`
}

// WarningOutput represents a warning message
type WarningOutput struct {
	Header
	Message string `json:"message"`
}

// MetadataOutput describes the tool build
type MetadataOutput struct {
	Header
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date,omitempty"`
}

// WriteAnomaly outputs a single anomaly
func (w *NDJSONWriter) WriteAnomaly(a domain.Anomaly) error {
	return w.encoder.Encode(&AnomalyOutput{
		Header:      header("anomaly"),
		ID:          a.ID,
		Timestamp:   a.Timestamp,
		AnomalyType: a.Type,
		Severity:    a.Severity,
		Tier:        domain.ClassifySeverity(string(a.Severity)).String(),
		Score:       a.Score,
		Message:     a.Message,
		LogID:       a.LogID,
	})
}

// WriteMetricsSummary outputs the KPI snapshot with its fixed-order breakdown
func (w *NDJSONWriter) WriteMetricsSummary(s domain.MetricsSummary) error {
	return w.encoder.Encode(&SummaryOutput{
		Header:         header("metrics_summary"),
		MetricsSummary: s,
		Breakdown:      s.Severity.Breakdown(),
		Warnings:       s.Validate(),
	})
}

// WriteDaily outputs one daily point
func (w *NDJSONWriter) WriteDaily(p domain.DailyMetricPoint) error {
	return w.encoder.Encode(&DailyOutput{Header: header("daily_metric"), DailyMetricPoint: p})
}

// WriteTopError outputs one ranked endpoint
func (w *NDJSONWriter) WriteTopError(e domain.TopErrorEntry) error {
	return w.encoder.Encode(&TopErrorOutput{Header: header("top_error"), TopErrorEntry: e})
}

// WriteAnomalyType outputs one ranked anomaly type
func (w *NDJSONWriter) WriteAnomalyType(t domain.AnomalyTypeCount) error {
	return w.encoder.Encode(&AnomalyTypeOutput{
		Header:      header("anomaly_type"),
		AnomalyType: t.Type,
		Count:       t.Count,
		Percent:     t.Percent,
	})
}

// WriteSlowEndpoint outputs one latency record
func (w *NDJSONWriter) WriteSlowEndpoint(s domain.SlowEndpoint) error {
	return w.encoder.Encode(&SlowEndpointOutput{Header: header("slow_endpoint"), SlowEndpoint: s})
}

// WriteDowntime outputs one downtime indicator
func (w *NDJSONWriter) WriteDowntime(d domain.DowntimeIndicator) error {
	return w.encoder.Encode(&DowntimeOutput{Header: header("downtime_indicator"), DowntimeIndicator: d})
}

// WriteParsedLog outputs one parsed log line
func (w *NDJSONWriter) WriteParsedLog(l domain.ParsedLog) error {
	return w.encoder.Encode(&ParsedLogOutput{Header: header("parsed_log"), ParsedLog: l})
}

// WriteDetection outputs a detection acknowledgement
func (w *NDJSONWriter) WriteDetection(kind string, r domain.DetectionResult) error {
	return w.encoder.Encode(&DetectionOutput{
		Header:   header("detection"),
		Kind:     kind,
		Status:   r.Status,
		Detected: r.Count(),
	})
}

// WriteUpload outputs the result of an upload sequence
func (w *NDJSONWriter) WriteUpload(u *UploadOutput) error {
	u.Header = header("upload")
	return w.encoder.Encode(u)
}

// WriteProgress outputs an upload step marker
func (w *NDJSONWriter) WriteProgress(step string) error {
	return w.encoder.Encode(&ProgressOutput{Header: header("upload_progress"), Step: step})
}

// WriteRootCause outputs the root-cause analysis
func (w *NDJSONWriter) WriteRootCause(rc domain.RootCause) error {
	return w.encoder.Encode(&RootCauseOutput{
		Header:   header("root_cause"),
		Status:   rc.Status,
		Analysis: rc.Analysis,
	})
}

// WritePing outputs a reachability record
func (w *NDJSONWriter) WritePing(baseURL string, reachable bool, message string, latency time.Duration) error {
	return w.encoder.Encode(&PingOutput{
		Header:    header("ping"),
		BaseURL:   baseURL,
		Reachable: reachable,
		Message:   message,
		LatencyMS: latency.Milliseconds(),
	})
}

// WriteAnalysis outputs an anomaly summary with detected patterns
func (w *NDJSONWriter) WriteAnalysis(a *AnalysisOutput) error {
	a.SchemaVersion = SchemaVersion
	if a.Summary != nil {
		a.Summary.SchemaVersion = SchemaVersion
	}
	return w.encoder.Encode(a)
}

// WriteError outputs an error
func (w *NDJSONWriter) WriteError(code, message string, hint ...string) error {
	err := domain.NewErrorOutput(code, message)
	if len(hint) > 0 {
		err.Hint = hint[0]
	}
	err.SchemaVersion = SchemaVersion
	return w.encoder.Encode(err)
}

// WriteRaw outputs raw JSON data
func (w *NDJSONWriter) WriteRaw(v any) error {
	return w.encoder.Encode(v)
}

// WriteInfo outputs an informational message
func (w *NDJSONWriter) WriteInfo(message, baseURL string) error {
	return w.encoder.Encode(&InfoOutput{
		Header:  header("info"),
		Message: message,
		BaseURL: baseURL,
	})
}

// WriteWarning outputs a warning message
func (w *NDJSONWriter) WriteWarning(message string) error {
	return w.encoder.Encode(&WarningOutput{
		Header:  header("warning"),
		Message: message,
	})
}

// WriteMetadata outputs build metadata
func (w *NDJSONWriter) WriteMetadata(version, commit, buildDate string) error {
	return w.encoder.Encode(&MetadataOutput{
		Header:    header("metadata"),
		Version:   version,
		Commit:    commit,
		BuildDate: buildDate,
	})
}

// TextWriter writes status lines as styled text
type TextWriter struct {
	w io.Writer
}

// NewTextWriter creates a new text writer
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: w}
}

// WriteError outputs a styled error
func (w *TextWriter) WriteError(code, message string) error {
	errorLabel := Paint(Styles.Danger, "Error")
	codeStr := Paint(Styles.Warning, "["+code+"]")
	line := errorLabel + " " + codeStr + ": " + message + "\n"
	_, err := io.WriteString(w.w, line)
	return err
}

// WriteWarning outputs a styled warning
func (w *TextWriter) WriteWarning(message string) error {
	_, err := io.WriteString(w.w, Paint(Styles.Warning, "Warning")+": "+message+"\n")
	return err
}

// WriteInfo outputs an informational line
func (w *TextWriter) WriteInfo(message string) error {
	_, err := io.WriteString(w.w, Paint(Styles.Label, message)+"\n")
	return err
}

// WriteSuccess outputs a success line
func (w *TextWriter) WriteSuccess(message string) error {
	_, err := io.WriteString(w.w, Paint(Styles.Success, message)+"\n")
	return err
}
