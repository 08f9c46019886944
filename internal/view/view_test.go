package view

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vburojevic/logscope/internal/api"
	"github.com/vburojevic/logscope/internal/binder"
	"github.com/vburojevic/logscope/internal/domain"
	"github.com/vburojevic/logscope/internal/filter"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSource struct {
	pingErr   error
	anomalies []domain.Anomaly
	summary   domain.MetricsSummary
	daily     []domain.DailyMetricPoint
	topErrors []domain.TopErrorEntry
	dailyErr  error
	calls     atomic.Int32
}

func (f *fakeSource) Ping(context.Context) (string, error) {
	f.calls.Add(1)
	return "Log analysis API", f.pingErr
}

func (f *fakeSource) ListAnomalies(context.Context) ([]domain.Anomaly, error) {
	f.calls.Add(1)
	return f.anomalies, nil
}

func (f *fakeSource) MetricsSummary(context.Context) (domain.MetricsSummary, error) {
	f.calls.Add(1)
	return f.summary, nil
}

func (f *fakeSource) DailyMetrics(context.Context) ([]domain.DailyMetricPoint, error) {
	f.calls.Add(1)
	return f.daily, f.dailyErr
}

func (f *fakeSource) TopErrors(context.Context) ([]domain.TopErrorEntry, error) {
	f.calls.Add(1)
	return f.topErrors, nil
}

func anomalies(sevs ...domain.Severity) []domain.Anomaly {
	out := make([]domain.Anomaly, len(sevs))
	for i, s := range sevs {
		out[i] = domain.Anomaly{ID: i + 1, Type: "latency", Severity: s}
	}
	return out
}

func counts(entries []domain.SeverityCount) map[string]int {
	m := make(map[string]int, len(entries))
	for _, e := range entries {
		m[e.Label] = e.Count
	}
	return m
}

func TestSeverityBreakdown_FixedOrderWithZeros(t *testing.T) {
	got := SeverityBreakdown(domain.MetricsSummary{Severity: domain.SeverityCounts{Low: 2, Medium: 3, High: 1, Critical: 0}})

	require.Len(t, got, 4)
	assert.Equal(t, []domain.SeverityCount{
		{Severity: domain.SeverityLow, Label: "Low", Count: 2},
		{Severity: domain.SeverityMedium, Label: "Medium", Count: 3},
		{Severity: domain.SeverityHigh, Label: "High", Count: 1},
		{Severity: domain.SeverityCritical, Label: "Critical", Count: 0},
	}, got)
}

func TestSeverityBreakdownFromAnomalies(t *testing.T) {
	list := anomalies("low", "LOW", "Medium", "medium", "medium", "high", "bogus", "")

	got := SeverityBreakdownFromAnomalies(list)

	require.Len(t, got, 4)
	assert.Equal(t, map[string]int{"Low": 2, "Medium": 3, "High": 1, "Critical": 0}, counts(got))
	assert.Equal(t, "Low", got[0].Label)
	assert.Equal(t, "Critical", got[3].Label)
}

func TestTrendFromDaily(t *testing.T) {
	got := TrendFromDaily([]domain.DailyMetricPoint{{ErrorCount: 4}, {ErrorCount: 0}, {ErrorCount: 9}})

	assert.Equal(t, []TrendPoint{{"Day 1", 4}, {"Day 2", 0}, {"Day 3", 9}}, got)
	assert.Empty(t, TrendFromDaily(nil))
	assert.Equal(t, got, TrendFromDaily([]domain.DailyMetricPoint{{ErrorCount: 4}, {ErrorCount: 0}, {ErrorCount: 9}}))
}

func TestFormatKPIs(t *testing.T) {
	assert.Equal(t, "12.3%", FormatErrorRate(0.1234))
	assert.Equal(t, "0.0%", FormatErrorRate(0))
	assert.Equal(t, "100.0%", FormatErrorRate(1))
	assert.Equal(t, "245 ms", FormatResponseTime(245.4))
	assert.Equal(t, "--", FormatResponseTime(0))

	kpis := KPIs(domain.MetricsSummary{TotalLogs: 200, ErrorCount: 10, ErrorRate: 0.05})
	assert.Equal(t, [][2]string{
		{"Total logs", "200"},
		{"Errors", "10"},
		{"Error rate", "5.0%"},
		{"Avg response", "--"},
	}, kpis)
}

func TestMetrics_EndToEndBreakdown(t *testing.T) {
	src := &fakeSource{summary: domain.MetricsSummary{
		TotalLogs:  100,
		ErrorCount: 5,
		ErrorRate:  0.05,
		Severity:   domain.SeverityCounts{Low: 2, Medium: 3, High: 1},
	}}
	m := NewMetrics(src)
	defer m.Close()

	require.NoError(t, m.RefreshAll(context.Background()))
	first := m.Breakdown()
	assert.Equal(t, map[string]int{"Low": 2, "Medium": 3, "High": 1, "Critical": 0}, counts(first))

	require.NoError(t, m.RefreshAll(context.Background()))
	assert.Equal(t, first, m.Breakdown(), "refresh is idempotent")
	assert.Equal(t, int32(6), src.calls.Load())
}

func TestDashboard_RefreshAllIsolatesFailures(t *testing.T) {
	src := &fakeSource{
		anomalies: anomalies("low", "low", "low", "low", "low", "low", "low", "low", "high", "critical"),
		summary:   domain.MetricsSummary{TotalLogs: 3},
		dailyErr:  &api.Error{Method: "GET", Path: "/metrics/daily", Status: 500, Message: "database locked"},
	}
	d := NewDashboard(src)
	defer d.Close()

	err := d.RefreshAll(context.Background())
	require.Error(t, err)

	assert.Equal(t, binder.Failed, d.Daily.Snapshot().State)
	assert.Equal(t, "database locked", d.Daily.Snapshot().Message)
	assert.Equal(t, binder.Loaded, d.Summary.Snapshot().State)
	assert.Equal(t, binder.Loaded, d.Anomalies.Snapshot().State)
	assert.Equal(t, "Connected: Log analysis API", d.Connectivity())
	assert.Len(t, d.Recent(), RecentLimit)
	assert.Equal(t, 1, d.Recent()[0].ID)
}

func TestDashboard_Connectivity(t *testing.T) {
	src := &fakeSource{pingErr: errors.New("dial tcp: connection refused")}
	d := NewDashboard(src)
	defer d.Close()

	assert.Equal(t, "Not checked", d.Connectivity())

	d.Refresh(context.Background())
	d.Wait()

	assert.Equal(t, "Offline: failed to load backend status", d.Connectivity())
}

func TestReports_Filtering(t *testing.T) {
	src := &fakeSource{anomalies: anomalies("low", "medium", "HIGH", "critical", "high")}
	where, err := filter.NewWhereFilter([]string{"id>=3"})
	require.NoError(t, err)

	r := NewReports(src, "high", nil)
	defer r.Close()
	require.NoError(t, r.RefreshAll(context.Background()))

	got := r.Filtered()
	require.Len(t, got, 2)
	assert.Equal(t, 3, got[0].ID)
	assert.Equal(t, 5, got[1].ID)

	r.SetSelection("nonsense")
	assert.Equal(t, filter.SeverityAll, r.Selection())
	assert.Len(t, r.Filtered(), 5)

	assert.Equal(t, "low", r.CycleSelection())
	assert.Len(t, r.Filtered(), 1)

	q := NewReports(src, "all", where)
	defer q.Close()
	require.NoError(t, q.RefreshAll(context.Background()))
	assert.Len(t, q.Filtered(), 3)
}

func TestMetrics_SubscribeReportsEveryBinder(t *testing.T) {
	src := &fakeSource{dailyErr: &api.Error{Method: "GET", Path: "/metrics/daily", Status: 503, Message: "aggregator offline"}}
	m := NewMetrics(src)

	var (
		mu       sync.Mutex
		terminal = map[string]Change{}
		seen     int
	)
	unsubscribe := m.Subscribe(func(c Change) {
		mu.Lock()
		defer mu.Unlock()
		seen++
		if c.State == binder.Loaded || c.State == binder.Failed {
			terminal[c.Resource] = c
		}
	})

	require.Error(t, m.RefreshAll(context.Background()))
	unsubscribe()
	require.Error(t, m.RefreshAll(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 6, seen)
	require.Len(t, terminal, 3)
	assert.Equal(t, binder.Loaded, terminal["metrics summary"].State)
	assert.Equal(t, binder.Loaded, terminal["top errors"].State)
	assert.Equal(t, binder.Failed, terminal["daily metrics"].State)
	assert.Equal(t, "aggregator offline", terminal["daily metrics"].Message)
}
