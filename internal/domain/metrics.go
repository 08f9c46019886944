package domain

import (
	"fmt"
	"math"
)

// SeverityCounts holds anomaly counts keyed by the four severity labels
type SeverityCounts struct {
	Low      int `json:"low"`
	Medium   int `json:"medium"`
	High     int `json:"high"`
	Critical int `json:"critical"`
}

// Get returns the count for a label; unknown labels count as zero
func (c SeverityCounts) Get(s Severity) int {
	switch ParseSeverity(string(s)) {
	case SeverityLow:
		return c.Low
	case SeverityMedium:
		return c.Medium
	case SeverityHigh:
		return c.High
	case SeverityCritical:
		return c.Critical
	default:
		return 0
	}
}

// Add increments the count for a label. Unknown labels are ignored and
// reported as false.
func (c *SeverityCounts) Add(s Severity) bool {
	switch ParseSeverity(string(s)) {
	case SeverityLow:
		c.Low++
	case SeverityMedium:
		c.Medium++
	case SeverityHigh:
		c.High++
	case SeverityCritical:
		c.Critical++
	default:
		return false
	}
	return true
}

// Total sums all four counts
func (c SeverityCounts) Total() int {
	return c.Low + c.Medium + c.High + c.Critical
}

// SeverityCount is one entry of a severity breakdown
type SeverityCount struct {
	Severity Severity `json:"severity"`
	Label    string   `json:"label"`
	Count    int      `json:"count"`
}

// Breakdown returns exactly four entries in the fixed order Low, Medium,
// High, Critical
func (c SeverityCounts) Breakdown() []SeverityCount {
	out := make([]SeverityCount, 0, len(Severities))
	for _, s := range Severities {
		out = append(out, SeverityCount{Severity: s, Label: s.Title(), Count: c.Get(s)})
	}
	return out
}

// MetricsSummary is the KPI snapshot from /metrics/summary
type MetricsSummary struct {
	TotalLogs         int            `json:"total_logs"`
	ErrorCount        int            `json:"error_count"`
	ErrorRate         float64        `json:"error_rate"`
	AvgResponseTime   float64        `json:"avg_response_time"`
	StdevResponseTime float64        `json:"stdev_response_time,omitempty"`
	Severity          SeverityCounts `json:"severity"`
}

// errorRateTolerance bounds the drift accepted between error_rate and
// error_count/total_logs; the backend rounds the rate to four places.
const errorRateTolerance = 0.01

// Validate checks the summary invariants. A nil result means the snapshot is
// internally consistent.
func (s MetricsSummary) Validate() []string {
	var problems []string
	if s.TotalLogs < 0 {
		problems = append(problems, fmt.Sprintf("total_logs is negative (%d)", s.TotalLogs))
	}
	if s.ErrorCount < 0 {
		problems = append(problems, fmt.Sprintf("error_count is negative (%d)", s.ErrorCount))
	}
	if s.ErrorCount > s.TotalLogs {
		problems = append(problems, fmt.Sprintf("error_count (%d) exceeds total_logs (%d)", s.ErrorCount, s.TotalLogs))
	}
	if s.ErrorRate < 0 || s.ErrorRate > 1 {
		problems = append(problems, fmt.Sprintf("error_rate %.4f outside [0,1]", s.ErrorRate))
	}
	if s.TotalLogs > 0 {
		expected := float64(s.ErrorCount) / float64(s.TotalLogs)
		if math.Abs(expected-s.ErrorRate) > errorRateTolerance {
			problems = append(problems, fmt.Sprintf("error_rate %.4f does not match error_count/total_logs %.4f", s.ErrorRate, expected))
		}
	}
	return problems
}

// DailyMetricPoint is one bucket of /metrics/daily. The backend sends no date,
// so Label is synthesized from the position in the series.
type DailyMetricPoint struct {
	Index      int    `json:"index"`
	Label      string `json:"label"`
	ErrorCount int    `json:"error_count"`
}

// DayLabel returns the display label for the zero-based position i
func DayLabel(i int) string {
	return fmt.Sprintf("Day %d", i+1)
}

// TopErrorEntry is an endpoint ranked by error count
type TopErrorEntry struct {
	Endpoint     string   `json:"endpoint"`
	ErrorCount   int      `json:"error_count"`
	ErrorPercent *float64 `json:"error_percent,omitempty"`
}

// AnomalyTypeCount ranks anomaly types by frequency
type AnomalyTypeCount struct {
	Type    string  `json:"type"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// SlowEndpoint describes latency for one endpoint
type SlowEndpoint struct {
	Endpoint string  `json:"endpoint"`
	Avg      float64 `json:"avg"`
	P95      float64 `json:"p95"`
	Count    int     `json:"count"`
}

// DowntimeIndicator flags an endpoint with a consistent failure pattern
type DowntimeIndicator struct {
	Endpoint      string   `json:"endpoint"`
	Issues        int      `json:"issues"`
	TotalHits     int      `json:"total_hits"`
	Severity      Severity `json:"severity"`
	DowntimeScore float64  `json:"downtime_score"`
	Message       string   `json:"message"`
}
