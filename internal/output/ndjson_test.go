package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vburojevic/logscope/internal/domain"
)

func TestNDJSONWriter_WriteAnomaly(t *testing.T) {
	t.Run("writes anomaly with record type and tier", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewNDJSONWriter(&buf)

		score := 0.87
		msg := "p95 latency above threshold"
		logID := 42
		require.NoError(t, w.WriteAnomaly(domain.Anomaly{
			ID:        7,
			Timestamp: "2025-03-01T12:00:00",
			Type:      "latency",
			Severity:  "High",
			Score:     &score,
			Message:   &msg,
			LogID:     &logID,
		}))

		var out AnomalyOutput
		require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

		assert.Equal(t, "anomaly", out.Type)
		assert.Equal(t, SchemaVersion, out.SchemaVersion)
		assert.Equal(t, 7, out.ID)
		assert.Equal(t, "latency", out.AnomalyType)
		assert.Equal(t, "elevated", out.Tier)
		require.NotNil(t, out.Score)
		assert.InDelta(t, 0.87, *out.Score, 1e-9)
		require.NotNil(t, out.LogID)
		assert.Equal(t, 42, *out.LogID)
	})

	t.Run("omits absent optional fields", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewNDJSONWriter(&buf)

		require.NoError(t, w.WriteAnomaly(domain.Anomaly{ID: 1, Type: "x", Severity: "weird"}))

		out := buf.String()
		assert.NotContains(t, out, `"score"`)
		assert.NotContains(t, out, `"message"`)
		assert.NotContains(t, out, `"log_id"`)
		assert.Contains(t, out, `"tier":"neutral"`)
	})
}

func TestNDJSONWriter_WriteMetricsSummary(t *testing.T) {
	var buf bytes.Buffer
	w := NewNDJSONWriter(&buf)

	require.NoError(t, w.WriteMetricsSummary(domain.MetricsSummary{
		TotalLogs:       100,
		ErrorCount:      50,
		ErrorRate:       0.1,
		AvgResponseTime: 210,
		Severity:        domain.SeverityCounts{Low: 2, Medium: 3, High: 1},
	}))

	var out SummaryOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	assert.Equal(t, "metrics_summary", out.Type)
	assert.Equal(t, 100, out.TotalLogs)
	require.Len(t, out.Breakdown, 4)
	assert.Equal(t, "Low", out.Breakdown[0].Label)
	assert.Equal(t, 2, out.Breakdown[0].Count)
	assert.Equal(t, "Critical", out.Breakdown[3].Label)
	assert.Equal(t, 0, out.Breakdown[3].Count)
	assert.NotEmpty(t, out.Warnings, "error_rate drift is reported")
}

func TestNDJSONWriter_WriteAnomalyType(t *testing.T) {
	var buf bytes.Buffer
	w := NewNDJSONWriter(&buf)

	require.NoError(t, w.WriteAnomalyType(domain.AnomalyTypeCount{Type: "security", Count: 4, Percent: 40}))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	assert.Equal(t, "anomaly_type", raw["type"])
	assert.Equal(t, "security", raw["anomaly_type"])
	assert.EqualValues(t, 4, raw["count"])
}

func TestNDJSONWriter_WriteDetection(t *testing.T) {
	var buf bytes.Buffer
	w := NewNDJSONWriter(&buf)

	require.NoError(t, w.WriteDetection("security", domain.DetectionResult{Status: "ok", TotalDetected: 3}))

	var out DetectionOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "detection", out.Type)
	assert.Equal(t, "security", out.Kind)
	assert.Equal(t, 3, out.Detected)
}

func TestNDJSONWriter_WritePing(t *testing.T) {
	var buf bytes.Buffer
	w := NewNDJSONWriter(&buf)

	require.NoError(t, w.WritePing("http://localhost:8000", true, "Log analysis API", 12*time.Millisecond))

	var out PingOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.True(t, out.Reachable)
	assert.Equal(t, int64(12), out.LatencyMS)
	assert.Equal(t, "http://localhost:8000", out.BaseURL)
}

func TestNDJSONWriter_WriteInfo(t *testing.T) {
	var buf bytes.Buffer
	w := NewNDJSONWriter(&buf)

	require.NoError(t, w.WriteInfo("Test message", "http://api"))

	var out InfoOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	assert.Equal(t, "info", out.Type)
	assert.Equal(t, SchemaVersion, out.SchemaVersion)
	assert.Equal(t, "Test message", out.Message)
	assert.Equal(t, "http://api", out.BaseURL)
}

func TestNDJSONWriter_WriteError(t *testing.T) {
	t.Run("without hint", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewNDJSONWriter(&buf)

		require.NoError(t, w.WriteError("BACKEND_UNREACHABLE", "dial tcp: refused"))

		var out domain.ErrorOutput
		require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

		assert.Equal(t, "error", out.Type)
		assert.Equal(t, SchemaVersion, out.SchemaVersion)
		assert.Equal(t, "BACKEND_UNREACHABLE", out.Code)
		assert.NotContains(t, buf.String(), `"hint"`)
	})

	t.Run("with hint", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewNDJSONWriter(&buf)

		require.NoError(t, w.WriteError("BACKEND_UNREACHABLE", "refused", "Start the backend"))

		var out domain.ErrorOutput
		require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
		assert.Equal(t, "Start the backend", out.Hint)
	})
}

func TestNDJSONWriter_MultipleRecords(t *testing.T) {
	var buf bytes.Buffer
	e := NewEmitter(&buf)

	require.NoError(t, e.Daily([]domain.DailyMetricPoint{
		{Index: 0, Label: "Day 1", ErrorCount: 3},
		{Index: 1, Label: "Day 2", ErrorCount: 5},
	}))
	require.NoError(t, e.Warning("partial data"))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 3)
	assert.Contains(t, string(lines[1]), `"label":"Day 2"`)
}

func TestNDJSONWriter_EscapeHTMLDisabled(t *testing.T) {
	var buf bytes.Buffer
	w := NewNDJSONWriter(&buf)

	require.NoError(t, w.WriteWarning("status <500> & up"))
	assert.Contains(t, buf.String(), "status <500> & up")
}

func TestTextWriter(t *testing.T) {
	SetPlain(true)
	t.Cleanup(func() { SetPlain(false) })

	var buf bytes.Buffer
	w := NewTextWriter(&buf)

	require.NoError(t, w.WriteError("E_CODE", "broken"))
	require.NoError(t, w.WriteWarning("careful"))
	require.NoError(t, w.WriteSuccess("done"))

	assert.Equal(t, "Error [E_CODE]: broken\nWarning: careful\ndone\n", buf.String())
}
