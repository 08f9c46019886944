package exporter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vburojevic/logscope/internal/api"
	"github.com/vburojevic/logscope/internal/domain"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

type fakeSource struct {
	summaryCalls atomic.Int32
	fail         atomic.Bool
}

func (f *fakeSource) MetricsSummary(context.Context) (domain.MetricsSummary, error) {
	f.summaryCalls.Add(1)
	if f.fail.Load() {
		return domain.MetricsSummary{}, &api.Error{Method: "GET", Path: "/metrics/summary", Err: errors.New("connection refused")}
	}
	return domain.MetricsSummary{
		TotalLogs:  200,
		ErrorCount: 10,
		ErrorRate:  0.05,
		Severity:   domain.SeverityCounts{Low: 2, Medium: 3, High: 1},
	}, nil
}

func (f *fakeSource) ListAnomalies(context.Context) ([]domain.Anomaly, error) {
	return []domain.Anomaly{{ID: 1, Severity: "critical"}, {ID: 2, Severity: "low"}}, nil
}

func newMonitor(t *testing.T, src Source, clk clock.Clock) *Monitor {
	t.Helper()
	m, err := New(src, Config{
		Listen:   "127.0.0.1:0",
		Interval: time.Minute,
		Clock:    clk,
		Logger:   zaptest.NewLogger(t),
		Registry: prometheus.NewRegistry(),
	})
	require.NoError(t, err)
	return m
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestMonitor_HealthBeforeFirstScrape(t *testing.T) {
	m := newMonitor(t, &fakeSource{}, clock.NewMock())

	rec := get(t, m.Router(), "/healthz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"starting"`)
}

func TestMonitor_ScrapePublishesGauges(t *testing.T) {
	m := newMonitor(t, &fakeSource{}, clock.NewMock())

	require.NoError(t, m.Scrape(context.Background()))

	rec := get(t, m.Router(), "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "logscope_backend_up 1")
	assert.Contains(t, body, "logscope_backend_total_logs 200")
	assert.Contains(t, body, "logscope_backend_error_rate 0.05")
	assert.Contains(t, body, `logscope_backend_anomalies{severity="medium"} 3`)
	assert.Contains(t, body, `logscope_backend_listed_anomalies{severity="critical"} 1`)

	health := get(t, m.Router(), "/healthz")
	assert.Equal(t, http.StatusOK, health.Code)
}

func TestMonitor_ScrapeFailureKeepsLastGauges(t *testing.T) {
	src := &fakeSource{}
	m := newMonitor(t, src, clock.NewMock())
	require.NoError(t, m.Scrape(context.Background()))

	src.fail.Store(true)
	require.Error(t, m.Scrape(context.Background()))

	body := get(t, m.Router(), "/metrics").Body.String()
	assert.Contains(t, body, "logscope_backend_up 0")
	assert.Contains(t, body, "logscope_backend_total_logs 200")

	rec := get(t, m.Router(), "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var h health
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &h))
	assert.Equal(t, "degraded", h.Status)
	assert.Contains(t, h.Error, "connection refused")
}

func TestMonitor_LoopScrapesOnEveryTick(t *testing.T) {
	src := &fakeSource{}
	clk := clock.NewMock()
	m := newMonitor(t, src, clk)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Loop(ctx)
	}()

	require.Eventually(t, func() bool { return src.summaryCalls.Load() == 1 }, time.Second, 5*time.Millisecond)

	clk.Add(time.Minute)
	require.Eventually(t, func() bool { return src.summaryCalls.Load() == 2 }, time.Second, 5*time.Millisecond)

	clk.Add(time.Minute)
	require.Eventually(t, func() bool { return src.summaryCalls.Load() == 3 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestMonitor_ServeShutsDownOnCancel(t *testing.T) {
	m := newMonitor(t, &fakeSource{}, clock.NewMock())
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- m.Serve(ctx, ln) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	url := "http://" + ln.Addr().String() + "/metrics"
	require.Eventually(t, func() bool {
		resp, err := client.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode == http.StatusOK && len(body) > 0
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("monitor did not stop")
	}
}
