package filter

import (
	"strings"

	"github.com/vburojevic/logscope/internal/domain"
)

// SeverityAll is the report selector that disables severity filtering
const SeverityAll = "all"

// SeverityFilter filters anomalies by minimum severity
type SeverityFilter struct {
	minimum domain.Severity
}

// NewSeverityFilter creates a minimum-severity filter
func NewSeverityFilter(minimum domain.Severity) *SeverityFilter {
	return &SeverityFilter{minimum: minimum}
}

// Match returns true if the anomaly severity is >= the minimum
func (f *SeverityFilter) Match(a *domain.Anomaly) bool {
	return a.Severity.Priority() >= f.minimum.Priority()
}

// ExactSeverityFilter keeps anomalies whose label equals the selection.
// It backs the report view's severity selector.
type ExactSeverityFilter struct {
	want domain.Severity
}

// NewExactSeverityFilter returns nil for "all" or an empty selection
func NewExactSeverityFilter(selection string) *ExactSeverityFilter {
	s := strings.TrimSpace(selection)
	if s == "" || strings.EqualFold(s, SeverityAll) {
		return nil
	}
	return &ExactSeverityFilter{want: domain.ParseSeverity(s)}
}

// Match compares labels case-insensitively
func (f *ExactSeverityFilter) Match(a *domain.Anomaly) bool {
	if f == nil {
		return true
	}
	return domain.ParseSeverity(string(a.Severity)) == f.want
}

// Selection returns the active selector label
func (f *ExactSeverityFilter) Selection() string {
	if f == nil {
		return SeverityAll
	}
	return string(f.want)
}

// NextSelection cycles all → low → medium → high → critical → all
func NextSelection(current string) string {
	cur := domain.ParseSeverity(current)
	if string(cur) == SeverityAll || !cur.Known() {
		return string(domain.Severities[0])
	}
	for i, s := range domain.Severities {
		if s == cur && i+1 < len(domain.Severities) {
			return string(domain.Severities[i+1])
		}
	}
	return SeverityAll
}
