package view

import (
	"github.com/vburojevic/logscope/internal/binder"
	"github.com/vburojevic/logscope/internal/domain"
)

// RecentLimit is how many anomalies the dashboard lists
const RecentLimit = 8

// Dashboard is the landing view
type Dashboard struct {
	group

	Ping      *binder.Binder[string]
	Summary   *binder.Binder[domain.MetricsSummary]
	Daily     *binder.Binder[[]domain.DailyMetricPoint]
	Anomalies *binder.Binder[[]domain.Anomaly]
}

// NewDashboard binds the dashboard resources
func NewDashboard(src Source, opts ...binder.Option) *Dashboard {
	d := &Dashboard{
		Ping:      binder.New("backend status", src.Ping, opts...),
		Summary:   binder.New("metrics summary", src.MetricsSummary, opts...),
		Daily:     binder.New("daily metrics", src.DailyMetrics, opts...),
		Anomalies: binder.New("anomalies", src.ListAnomalies, opts...),
	}
	d.group = group{bind(d.Ping), bind(d.Summary), bind(d.Daily), bind(d.Anomalies)}
	return d
}

// Connectivity describes the backend status line
func (d *Dashboard) Connectivity() string {
	snap := d.Ping.Snapshot()
	switch snap.State {
	case binder.Loaded:
		if snap.Data == "" {
			return "Connected"
		}
		return "Connected: " + snap.Data
	case binder.Failed:
		return "Offline: " + snap.Message
	case binder.Loading:
		return "Checking backend..."
	default:
		return "Not checked"
	}
}

// Recent returns the first RecentLimit anomalies in backend order
func (d *Dashboard) Recent() []domain.Anomaly {
	list := d.Anomalies.Snapshot().Data
	if len(list) > RecentLimit {
		list = list[:RecentLimit]
	}
	return list
}

// Anomalies is the full anomaly list view
type Anomalies struct {
	group

	List *binder.Binder[[]domain.Anomaly]
}

// NewAnomalies binds the anomaly list
func NewAnomalies(src Source, opts ...binder.Option) *Anomalies {
	a := &Anomalies{List: binder.New("anomalies", src.ListAnomalies, opts...)}
	a.group = group{bind(a.List)}
	return a
}

// Metrics is the KPI and ranking view
type Metrics struct {
	group

	Summary   *binder.Binder[domain.MetricsSummary]
	TopErrors *binder.Binder[[]domain.TopErrorEntry]
	Daily     *binder.Binder[[]domain.DailyMetricPoint]
}

// NewMetrics binds the metrics resources
func NewMetrics(src Source, opts ...binder.Option) *Metrics {
	m := &Metrics{
		Summary:   binder.New("metrics summary", src.MetricsSummary, opts...),
		TopErrors: binder.New("top errors", src.TopErrors, opts...),
		Daily:     binder.New("daily metrics", src.DailyMetrics, opts...),
	}
	m.group = group{bind(m.Summary), bind(m.TopErrors), bind(m.Daily)}
	return m
}

// Breakdown returns the severity breakdown of the loaded summary
func (m *Metrics) Breakdown() []domain.SeverityCount {
	return SeverityBreakdown(m.Summary.Snapshot().Data)
}
