package output

import (
	"os"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/vburojevic/logscope/internal/domain"
)

// Styles holds all lipgloss styles for text output
var Styles = struct {
	// Severity tiers
	Neutral  lipgloss.Style
	Caution  lipgloss.Style
	Elevated lipgloss.Style
	Critical lipgloss.Style

	// Component styles
	Timestamp lipgloss.Style
	Type      lipgloss.Style
	Endpoint  lipgloss.Style
	Message   lipgloss.Style

	// Summary styles
	Header  lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Danger  lipgloss.Style
	Muted   lipgloss.Style

	// TUI styles
	Title     lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	StatusBar lipgloss.Style
	Selected  lipgloss.Style
	Help      lipgloss.Style
	Card      lipgloss.Style
}{
	Neutral:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),             // Green
	Caution:  lipgloss.NewStyle().Foreground(lipgloss.Color("220")),            // Yellow
	Elevated: lipgloss.NewStyle().Foreground(lipgloss.Color("208")),            // Orange
	Critical: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true), // Red bold

	Timestamp: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	Type:      lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
	Endpoint:  lipgloss.NewStyle().Foreground(lipgloss.Color("142")),
	Message:   lipgloss.NewStyle(),

	Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(lipgloss.Color("239")),
	Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	Value:   lipgloss.NewStyle().Bold(true),
	Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
	Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
	Danger:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("243")),

	Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Padding(0, 1),
	Tab:       lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Padding(0, 1),
	ActiveTab: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Underline(true).Padding(0, 1),
	StatusBar: lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("252")).Padding(0, 1),
	Selected:  lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("39")),
	Help:      lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	Card:      lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderLeft(true).Padding(0, 1),
}

// Report card border colors per tier
var tierColors = map[domain.Tier]string{
	domain.TierCritical: "#DC2626",
	domain.TierElevated: "#F97316",
	domain.TierCaution:  "#EAB308",
	domain.TierNeutral:  "#16A34A",
}

var plain atomic.Bool

// SetPlain disables styling, e.g. when output is piped
func SetPlain(v bool) {
	plain.Store(v)
}

// Plain reports whether styling is disabled
func Plain() bool {
	return plain.Load()
}

// ConfigureFor disables styling when f is not a terminal
func ConfigureFor(f *os.File) {
	if f == nil {
		return
	}
	SetPlain(!isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()))
}

// Paint renders s with style unless styling is disabled
func Paint(style lipgloss.Style, s string) string {
	if Plain() {
		return s
	}
	return style.Render(s)
}

// TierStyle returns the style for a presentation tier
func TierStyle(t domain.Tier) lipgloss.Style {
	switch t {
	case domain.TierCritical:
		return Styles.Critical
	case domain.TierElevated:
		return Styles.Elevated
	case domain.TierCaution:
		return Styles.Caution
	default:
		return Styles.Neutral
	}
}

// SeverityStyle returns the style for a severity label
func SeverityStyle(label string) lipgloss.Style {
	return TierStyle(domain.ClassifySeverity(label))
}

// SeverityBadge renders an upper-cased badge for a label. Empty labels render
// as UNKNOWN with the neutral style.
func SeverityBadge(label string) string {
	text := strings.ToUpper(strings.TrimSpace(label))
	if text == "" {
		text = "UNKNOWN"
	}
	return Paint(SeverityStyle(label), text)
}

// SeverityColor returns the hex border color for a label
func SeverityColor(label string) string {
	return tierColors[domain.ClassifySeverity(label)]
}

// SeverityCard renders a bordered report card for one anomaly
func SeverityCard(a domain.Anomaly, width int) string {
	body := SeverityBadge(string(a.Severity)) + " " + Paint(Styles.Type, a.Type) + "\n" +
		Paint(Styles.Timestamp, a.Timestamp)
	if msg := a.MessageText(); msg != "" {
		body += "\n" + msg
	}
	if Plain() {
		return "| " + strings.ReplaceAll(body, "\n", "\n| ")
	}
	style := Styles.Card.BorderForeground(lipgloss.Color(SeverityColor(string(a.Severity))))
	if width > 0 {
		style = style.Width(width)
	}
	return style.Render(body)
}

// StatusText returns styled status text for an anomaly summary
func StatusText(s *domain.AnomalySummary) string {
	switch {
	case s == nil:
		return Paint(Styles.Muted, "NO DATA")
	case s.HasCritical:
		return Paint(Styles.Danger, "CRITICAL ANOMALIES")
	case s.HasHigh:
		return Paint(Styles.Warning, "HIGH ANOMALIES")
	default:
		return Paint(Styles.Success, "OK")
	}
}
