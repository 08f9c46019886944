package view

import (
	"fmt"
	"math"
	"strconv"

	"github.com/vburojevic/logscope/internal/domain"
)

// SeverityBreakdown returns the summary's four severity counts in the fixed
// order Low, Medium, High, Critical
func SeverityBreakdown(s domain.MetricsSummary) []domain.SeverityCount {
	return s.Severity.Breakdown()
}

// SeverityBreakdownFromAnomalies counts labels case-insensitively into the
// same four entries. Unrecognized labels are not counted.
func SeverityBreakdownFromAnomalies(list []domain.Anomaly) []domain.SeverityCount {
	var counts domain.SeverityCounts
	for _, a := range list {
		counts.Add(a.Severity)
	}
	return counts.Breakdown()
}

// TrendPoint is one labelled bar of the error trend
type TrendPoint struct {
	Label  string
	Errors int
}

// TrendFromDaily labels each point "Day N" by its position in the series
func TrendFromDaily(points []domain.DailyMetricPoint) []TrendPoint {
	out := make([]TrendPoint, len(points))
	for i, p := range points {
		out[i] = TrendPoint{Label: domain.DayLabel(i), Errors: p.ErrorCount}
	}
	return out
}

// FormatErrorRate renders a 0..1 rate as a percentage with one decimal
func FormatErrorRate(rate float64) string {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return "--"
	}
	return fmt.Sprintf("%.1f%%", rate*100)
}

// FormatResponseTime renders milliseconds, or "--" when nothing was measured
func FormatResponseTime(ms float64) string {
	if ms <= 0 || math.IsNaN(ms) || math.IsInf(ms, 0) {
		return "--"
	}
	return fmt.Sprintf("%.0f ms", ms)
}

// KPIs returns the summary cards as label/value pairs
func KPIs(s domain.MetricsSummary) [][2]string {
	return [][2]string{
		{"Total logs", strconv.Itoa(s.TotalLogs)},
		{"Errors", strconv.Itoa(s.ErrorCount)},
		{"Error rate", FormatErrorRate(s.ErrorRate)},
		{"Avg response", FormatResponseTime(s.AvgResponseTime)},
	}
}
