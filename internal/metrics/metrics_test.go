package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vburojevic/logscope/internal/domain"
)

func TestRegisterIsIdempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))
	require.NoError(t, Register(reg))
}

func TestClientObserver(t *testing.T) {
	before := testutil.ToFloat64(clientRequestsTotal.WithLabelValues("/metrics/summary", "503"))
	ClientObserver{}.ObserveRequest("/metrics/summary", 503, 20*time.Millisecond)
	after := testutil.ToFloat64(clientRequestsTotal.WithLabelValues("/metrics/summary", "503"))
	assert.Equal(t, before+1, after)
}

func TestObserveSummary(t *testing.T) {
	ObserveSummary(domain.MetricsSummary{
		TotalLogs:  200,
		ErrorCount: 10,
		ErrorRate:  0.05,
		Severity:   domain.SeverityCounts{Low: 2, Medium: 3, High: 1},
	})

	assert.Equal(t, 200.0, testutil.ToFloat64(backendTotalLogs))
	assert.Equal(t, 0.05, testutil.ToFloat64(backendErrorRate))
	assert.Equal(t, 3.0, testutil.ToFloat64(backendAnomalies.WithLabelValues("medium")))
	assert.Equal(t, 0.0, testutil.ToFloat64(backendAnomalies.WithLabelValues("critical")))
}

func TestObserveScrape(t *testing.T) {
	ObserveScrape(nil)
	assert.Equal(t, 1.0, testutil.ToFloat64(backendUp))

	ObserveScrape(errors.New("connection refused"))
	assert.Equal(t, 0.0, testutil.ToFloat64(backendUp))
}

func TestObserveAnomalies(t *testing.T) {
	ObserveAnomalies([]domain.Anomaly{
		{Severity: "high"},
		{Severity: "HIGH"},
		{Severity: "low"},
		{Severity: "severe"},
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(backendListedAnomalies.WithLabelValues("high")))
	assert.Equal(t, 1.0, testutil.ToFloat64(backendListedAnomalies.WithLabelValues("low")))
	assert.Equal(t, 0.0, testutil.ToFloat64(backendListedAnomalies.WithLabelValues("critical")))
	assert.Equal(t, 1.0, testutil.ToFloat64(backendListedAnomalies.WithLabelValues("unknown")))
}
