package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vburojevic/logscope/internal/domain"
)

func decodeAll(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()

	dec := json.NewDecoder(bytes.NewReader(buf.Bytes()))
	var out []map[string]interface{}
	for {
		var m map[string]interface{}
		err := dec.Decode(&m)
		if err == nil {
			out = append(out, m)
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
	}
	return out
}

func getByType(t *testing.T, items []map[string]interface{}, typ string) map[string]interface{} {
	t.Helper()
	for _, m := range items {
		if m["type"] == typ {
			return m
		}
	}
	require.FailNowf(t, "missing NDJSON type", "type=%s", typ)
	return nil
}

func TestNDJSONWriterContract_AllTypesHaveSchemaVersion(t *testing.T) {
	now := time.Date(2025, 12, 11, 10, 0, 0, 0, time.UTC)
	msg := "spike"
	pct := 12.5
	rt := 120.0

	buf := &bytes.Buffer{}
	w := NewNDJSONWriter(buf)

	require.NoError(t, w.WriteAnomaly(domain.Anomaly{ID: 1, Type: "error_spike", Severity: "critical", Message: &msg}))
	require.NoError(t, w.WriteMetricsSummary(domain.MetricsSummary{TotalLogs: 10, ErrorCount: 1, ErrorRate: 0.1}))
	require.NoError(t, w.WriteDaily(domain.DailyMetricPoint{Index: 0, Label: domain.DayLabel(0), ErrorCount: 4}))
	require.NoError(t, w.WriteTopError(domain.TopErrorEntry{Endpoint: "/api/login", ErrorCount: 9, ErrorPercent: &pct}))
	require.NoError(t, w.WriteAnomalyType(domain.AnomalyTypeCount{Type: "latency", Count: 3, Percent: 30}))
	require.NoError(t, w.WriteSlowEndpoint(domain.SlowEndpoint{Endpoint: "/api/search", Avg: 800, P95: 1500, Count: 20}))
	require.NoError(t, w.WriteDowntime(domain.DowntimeIndicator{Endpoint: "/api/pay", Issues: 8, TotalHits: 10, Severity: "high", DowntimeScore: 0.8, Message: "mostly 5xx"}))
	require.NoError(t, w.WriteParsedLog(domain.ParsedLog{ID: 3, Level: "ERROR", Message: "boom", Endpoint: "/api/pay", ResponseTime: &rt}))
	require.NoError(t, w.WriteDetection("anomaly", domain.DetectionResult{Status: "ok", Detected: 2}))
	require.NoError(t, w.WriteUpload(&UploadOutput{File: "app.log", Saved: 100, Detected: 2}))
	require.NoError(t, w.WriteProgress("upload"))
	require.NoError(t, w.WriteRootCause(domain.RootCause{Status: "ok", Analysis: json.RawMessage(`{"top":"db"}`)}))
	require.NoError(t, w.WritePing("http://localhost:8000", true, "ok", time.Millisecond))
	require.NoError(t, w.WriteError("E_CODE", "something went wrong"))
	require.NoError(t, w.WriteInfo("info", "http://localhost:8000"))
	require.NoError(t, w.WriteWarning("warn"))
	require.NoError(t, w.WriteMetadata("0.0.0", "deadbeef", "2025-12-11"))

	a := NewAnalyzer()
	list := []domain.Anomaly{{Severity: "low", Message: &msg}, {Severity: "low", Message: &msg}}
	require.NoError(t, w.WriteAnalysis(NewAnalysisOutput(a.Summarize(list), a.DetectPatterns(list), now)))

	items := decodeAll(t, buf)
	require.Len(t, items, 18)

	for _, it := range items {
		require.Contains(t, it, "type")
		require.Contains(t, it, "schemaVersion")
		require.EqualValues(t, SchemaVersion, it["schemaVersion"])
	}

	anomalyRecord := getByType(t, items, "anomaly")
	require.Equal(t, "error_spike", anomalyRecord["anomaly_type"])

	typeRecord := getByType(t, items, "anomaly_type")
	require.Equal(t, "latency", typeRecord["anomaly_type"])

	rca := getByType(t, items, "root_cause")
	require.Equal(t, map[string]interface{}{"top": "db"}, rca["analysis"])

	analysis := getByType(t, items, "analysis")
	require.Contains(t, analysis, "timestamp")
	summary, ok := analysis["summary"].(map[string]interface{})
	require.True(t, ok)
	require.EqualValues(t, SchemaVersion, summary["schemaVersion"])
}
