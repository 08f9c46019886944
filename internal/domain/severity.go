package domain

import "strings"

// Severity is the anomaly urgency label reported by the backend
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Severities lists the known labels in display order
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// Priority returns the ordinal rank of a severity (higher = more urgent).
// Unknown labels rank below low.
func (s Severity) Priority() int {
	switch ParseSeverity(string(s)) {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// Known reports whether s is one of the four backend labels
func (s Severity) Known() bool {
	return s.Priority() > 0
}

// Title returns the capitalized display name ("Low", "Critical", ...)
func (s Severity) Title() string {
	v := string(ParseSeverity(string(s)))
	if v == "" {
		return ""
	}
	return strings.ToUpper(v[:1]) + v[1:]
}

// ParseSeverity normalizes a label case-insensitively. Unknown labels are
// returned trimmed and lower-cased so they still compare consistently.
func ParseSeverity(s string) Severity {
	return Severity(strings.ToLower(strings.TrimSpace(s)))
}

// Tier is the presentation class a severity maps onto
type Tier int

const (
	TierNeutral  Tier = 1
	TierCaution  Tier = 2
	TierElevated Tier = 3
	TierCritical Tier = 4
)

func (t Tier) String() string {
	switch t {
	case TierCritical:
		return "critical"
	case TierElevated:
		return "elevated"
	case TierCaution:
		return "caution"
	default:
		return "neutral"
	}
}

// ClassifySeverity maps a label onto a presentation tier. Only critical, high
// and medium escalate; low, empty and unrecognized labels share the neutral tier.
func ClassifySeverity(label string) Tier {
	switch ParseSeverity(label) {
	case SeverityCritical:
		return TierCritical
	case SeverityHigh:
		return TierElevated
	case SeverityMedium:
		return TierCaution
	default:
		return TierNeutral
	}
}
