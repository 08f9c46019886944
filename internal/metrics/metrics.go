// Package metrics holds the Prometheus collectors for backend requests and
// the monitor's scraped backend gauges.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vburojevic/logscope/internal/domain"
)

const namespace = "logscope"

var (
	clientRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "client_requests_total",
			Help:      "Backend requests issued, partitioned by endpoint and HTTP status (0 = transport failure).",
		},
		[]string{"endpoint", "status"},
	)

	clientRequestSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "client_request_seconds",
			Help:      "Backend request latency in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"endpoint"},
	)

	backendUp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "backend_up",
		Help:      "1 when the last scrape of the backend succeeded.",
	})

	backendTotalLogs = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "backend_total_logs",
		Help:      "Total log entries reported by the backend.",
	})

	backendErrorCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "backend_error_count",
		Help:      "Error log entries reported by the backend.",
	})

	backendErrorRate = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "backend_error_rate",
		Help:      "Fraction of log entries that are errors.",
	})

	backendAvgResponseMillis = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "backend_avg_response_ms",
		Help:      "Average response time in milliseconds.",
	})

	backendAnomalies = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "backend_anomalies",
			Help:      "Anomaly counts by severity from the last scrape.",
		},
		[]string{"severity"},
	)

	backendListedAnomalies = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "backend_listed_anomalies",
			Help:      "Anomalies returned by the anomaly list endpoint, by severity label.",
		},
		[]string{"severity"},
	)

	scrapesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "monitor_scrapes_total",
			Help:      "Monitor scrape attempts, partitioned by outcome.",
		},
		[]string{"outcome"},
	)
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Register attaches the collectors to the supplied registerer
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		clientRequestsTotal,
		clientRequestSeconds,
		backendUp,
		backendTotalLogs,
		backendErrorCount,
		backendErrorRate,
		backendAvgResponseMillis,
		backendAnomalies,
		backendListedAnomalies,
		scrapesTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ClientObserver records backend request outcomes. It satisfies
// api.Observer.
type ClientObserver struct{}

// ObserveRequest records one completed request
func (ClientObserver) ObserveRequest(endpoint string, status int, duration time.Duration) {
	clientRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	if duration < 0 {
		duration = 0
	}
	clientRequestSeconds.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// ObserveSummary publishes a scraped summary to the backend gauges
func ObserveSummary(s domain.MetricsSummary) {
	backendTotalLogs.Set(float64(s.TotalLogs))
	backendErrorCount.Set(float64(s.ErrorCount))
	backendErrorRate.Set(s.ErrorRate)
	backendAvgResponseMillis.Set(s.AvgResponseTime)
	for _, sev := range domain.Severities {
		backendAnomalies.WithLabelValues(string(sev)).Set(float64(s.Severity.Get(sev)))
	}
}

// ObserveAnomalies publishes the severity counts of a scraped anomaly list.
// Labels outside the four known severities are counted as "unknown".
func ObserveAnomalies(list []domain.Anomaly) {
	var counts domain.SeverityCounts
	unknown := 0
	for _, a := range list {
		if !counts.Add(a.Severity) {
			unknown++
		}
	}
	for _, sev := range domain.Severities {
		backendListedAnomalies.WithLabelValues(string(sev)).Set(float64(counts.Get(sev)))
	}
	backendListedAnomalies.WithLabelValues("unknown").Set(float64(unknown))
}

// ObserveScrape records a scrape outcome and flips backend_up accordingly.
// Gauges from the last good scrape are left untouched on failure.
func ObserveScrape(err error) {
	if err != nil {
		scrapesTotal.WithLabelValues(OutcomeError).Inc()
		backendUp.Set(0)
		return
	}
	scrapesTotal.WithLabelValues(OutcomeSuccess).Inc()
	backendUp.Set(1)
}
