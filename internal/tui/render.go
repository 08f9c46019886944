package tui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vburojevic/logscope/internal/binder"
	"github.com/vburojevic/logscope/internal/domain"
	"github.com/vburojevic/logscope/internal/output"
	"github.com/vburojevic/logscope/internal/upload"
	"github.com/vburojevic/logscope/internal/view"
)

const trendWidth = 40

func (m *Model) renderContent() string {
	var b strings.Builder
	switch m.active {
	case TabDashboard:
		m.renderDashboard(&b)
	case TabAnomalies:
		m.renderAnomalies(&b)
	case TabMetrics:
		m.renderMetrics(&b)
	case TabReports:
		m.renderReports(&b)
	case TabUpload:
		m.renderUpload(&b)
	}
	return b.String()
}

// section writes one binder's slice of a screen. Data already loaded stays
// visible while a reload runs or after it fails.
func section[T any](w *strings.Builder, title string, bd *binder.Binder[T], render func(io.Writer, T) error) {
	_ = output.RenderHeader(w, title)
	snap := bd.Snapshot()
	switch snap.State {
	case binder.Idle:
		if !snap.HasData {
			w.WriteString(output.Styles.Muted.Render("Not loaded") + "\n")
			return
		}
	case binder.Loading:
		w.WriteString(output.Styles.Muted.Render("Loading "+bd.Label()+"...") + "\n")
	case binder.Failed:
		w.WriteString(output.Styles.Danger.Render(snap.Message) + "\n")
	}
	if snap.HasData {
		_ = render(w, snap.Data)
	}
}

func (m *Model) renderDashboard(w *strings.Builder) {
	w.WriteString(m.dashboard.Connectivity() + "\n")

	section(w, "Overview", m.dashboard.Summary, func(w io.Writer, s domain.MetricsSummary) error {
		return output.RenderKeyValues(w, "", view.KPIs(s))
	})
	section(w, "Error trend", m.dashboard.Daily, func(w io.Writer, points []domain.DailyMetricPoint) error {
		_, err := io.WriteString(w, renderTrend(view.TrendFromDaily(points)))
		return err
	})
	section(w, "Recent anomalies", m.dashboard.Anomalies, func(w io.Writer, _ []domain.Anomaly) error {
		return m.writeCards(w, m.dashboard.Recent())
	})
}

func (m *Model) renderAnomalies(w *strings.Builder) {
	section(w, "Anomalies", m.anomalies.List, func(w io.Writer, list []domain.Anomaly) error {
		matched := make([]domain.Anomaly, 0, len(list))
		for _, a := range list {
			if entryMatches(a, m.searchQuery) {
				matched = append(matched, a)
			}
		}
		rows := output.AnomalyRows(matched)
		if m.searchQuery != "" {
			for _, row := range rows {
				row[len(row)-1] = highlight(row[len(row)-1], m.searchQuery)
			}
		}
		if len(rows) == 0 {
			_, err := io.WriteString(w, output.Styles.Muted.Render("No anomalies.")+"\n")
			return err
		}
		return output.RenderTable(w, []string{"ID", "Time", "Type", "Severity", "Score", "Message"}, rows)
	})
}

func (m *Model) renderMetrics(w *strings.Builder) {
	section(w, "Summary", m.metrics.Summary, func(w io.Writer, s domain.MetricsSummary) error {
		if err := output.RenderKeyValues(w, "", view.KPIs(s)); err != nil {
			return err
		}
		return output.RenderSeverityBreakdown(w, view.SeverityBreakdown(s))
	})
	section(w, "Top error endpoints", m.metrics.TopErrors, output.RenderTopErrors)
	section(w, "Error trend", m.metrics.Daily, func(w io.Writer, points []domain.DailyMetricPoint) error {
		_, err := io.WriteString(w, renderTrend(view.TrendFromDaily(points)))
		return err
	})
}

func (m *Model) renderReports(w *strings.Builder) {
	w.WriteString(output.Styles.Label.Render("Severity: ") + output.SeverityBadge(m.reports.Selection()) +
		output.Styles.Muted.Render("  (s to cycle)") + "\n")
	section(w, "Reports", m.reports.List, func(w io.Writer, _ []domain.Anomaly) error {
		list := m.reports.Filtered()
		matched := list[:0]
		for _, a := range list {
			if entryMatches(a, m.searchQuery) {
				matched = append(matched, a)
			}
		}
		if len(matched) == 0 {
			_, err := io.WriteString(w, output.Styles.Muted.Render("No anomalies match.")+"\n")
			return err
		}
		_, err := io.WriteString(w, output.RenderSeverityCounts(view.SeverityBreakdownFromAnomalies(matched))+"\n")
		if err != nil {
			return err
		}
		return m.writeCards(w, matched)
	})
}

func (m *Model) renderUpload(w *strings.Builder) {
	_ = output.RenderHeader(w, "Upload a log file")
	w.WriteString(m.pathInput.View() + "\n\n")
	w.WriteString(output.Styles.Muted.Render("Runs: "+stepList()) + "\n")
	if m.progress != "" {
		w.WriteString(output.Styles.Warning.Render("Running "+m.progress+"...") + "\n")
	}
	if m.last != nil {
		_ = output.RenderKeyValues(w, "Last upload", [][2]string{
			{"Lines saved", strconv.Itoa(m.last.Ack.Saved)},
			{"Anomalies", strconv.Itoa(m.last.Detection.Count())},
			{"Security findings", strconv.Itoa(m.last.Security.Count())},
		})
	}
}

func stepList() string {
	names := make([]string, len(upload.Steps))
	for i, s := range upload.Steps {
		names[i] = s.String()
	}
	return strings.Join(names, " → ")
}

func (m *Model) writeCards(w io.Writer, list []domain.Anomaly) error {
	if len(list) == 0 {
		_, err := io.WriteString(w, output.Styles.Muted.Render("No anomalies.")+"\n")
		return err
	}
	width := max(m.width-4, 20)
	for _, a := range list {
		if _, err := io.WriteString(w, output.SeverityCard(a, width)+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// renderTrend draws one horizontal bar per day scaled to the busiest day
func renderTrend(points []view.TrendPoint) string {
	if len(points) == 0 {
		return output.Styles.Muted.Render("No daily metrics.") + "\n"
	}
	peak, labelWidth := 0, 0
	for _, p := range points {
		peak = max(peak, p.Errors)
		labelWidth = max(labelWidth, len(p.Label))
	}
	var b strings.Builder
	for _, p := range points {
		bar := 0
		if peak > 0 {
			bar = p.Errors * trendWidth / peak
		}
		fmt.Fprintf(&b, "%-*s %s %d\n", labelWidth, p.Label, output.Styles.Danger.Render(strings.Repeat("█", bar)), p.Errors)
	}
	return b.String()
}
