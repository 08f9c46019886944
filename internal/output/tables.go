package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/vburojevic/logscope/internal/domain"
)

// maxMessageWidth truncates free-text cells so tables stay readable
const maxMessageWidth = 60

// trendBarWidth is the width of the longest bar in a trend chart
const trendBarWidth = 30

// RenderTable writes rows under headers as a bordered table
func RenderTable(w io.Writer, headers []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	hdr := make([]any, len(headers))
	for i, h := range headers {
		hdr[i] = h
	}
	table.Header(hdr...)
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

// RenderHeader writes a section title
func RenderHeader(w io.Writer, title string) error {
	_, err := io.WriteString(w, "\n"+Paint(Styles.Header, title)+"\n")
	return err
}

// RenderKeyValues writes label/value pairs, one per line
func RenderKeyValues(w io.Writer, title string, pairs [][2]string) error {
	if title != "" {
		if err := RenderHeader(w, title); err != nil {
			return err
		}
	}
	width := 0
	for _, p := range pairs {
		width = max(width, len(p[0]))
	}
	var b strings.Builder
	for _, p := range pairs {
		label := p[0] + ":" + strings.Repeat(" ", width-len(p[0])+1)
		b.WriteString(Paint(Styles.Label, label) + Paint(Styles.Value, p[1]) + "\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func renderEmpty(w io.Writer, what string) error {
	_, err := io.WriteString(w, Paint(Styles.Muted, "No "+what+".")+"\n")
	return err
}

// RenderAnomalies writes the anomaly table
func RenderAnomalies(w io.Writer, list []domain.Anomaly) error {
	if len(list) == 0 {
		return renderEmpty(w, "anomalies")
	}
	return RenderTable(w, []string{"ID", "Time", "Type", "Severity", "Score", "Message"}, AnomalyRows(list))
}

// AnomalyRows converts anomalies to table rows
func AnomalyRows(list []domain.Anomaly) [][]string {
	rows := make([][]string, 0, len(list))
	for _, a := range list {
		rows = append(rows, []string{
			strconv.Itoa(a.ID),
			Paint(Styles.Timestamp, a.Timestamp),
			a.Type,
			SeverityBadge(string(a.Severity)),
			formatScore(a.Score),
			Truncate(a.MessageText(), maxMessageWidth),
		})
	}
	return rows
}

// RenderSeverityBreakdown writes the four-row severity table
func RenderSeverityBreakdown(w io.Writer, entries []domain.SeverityCount) error {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{Paint(SeverityStyle(string(e.Severity)), e.Label), strconv.Itoa(e.Count)})
	}
	return RenderTable(w, []string{"Severity", "Count"}, rows)
}

// RenderSeverityCounts renders a breakdown on one line, each label in its
// tier color
func RenderSeverityCounts(entries []domain.SeverityCount) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, Paint(SeverityStyle(string(e.Severity)), e.Label)+" "+strconv.Itoa(e.Count))
	}
	return strings.Join(parts, "  ")
}

// RenderTrend writes the daily error series with proportional bars
func RenderTrend(w io.Writer, points []domain.DailyMetricPoint) error {
	if len(points) == 0 {
		return renderEmpty(w, "daily metrics")
	}
	peak := 0
	for _, p := range points {
		peak = max(peak, p.ErrorCount)
	}
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		bar := ""
		if peak > 0 {
			bar = strings.Repeat("#", p.ErrorCount*trendBarWidth/peak)
		}
		rows = append(rows, []string{p.Label, strconv.Itoa(p.ErrorCount), Paint(Styles.Danger, bar)})
	}
	return RenderTable(w, []string{"Day", "Errors", ""}, rows)
}

// RenderTopErrors writes endpoints ranked by errors
func RenderTopErrors(w io.Writer, list []domain.TopErrorEntry) error {
	if len(list) == 0 {
		return renderEmpty(w, "endpoint errors")
	}
	rows := make([][]string, 0, len(list))
	for _, e := range list {
		pct := "--"
		if e.ErrorPercent != nil {
			pct = fmt.Sprintf("%.1f%%", *e.ErrorPercent)
		}
		rows = append(rows, []string{Paint(Styles.Endpoint, e.Endpoint), strconv.Itoa(e.ErrorCount), pct})
	}
	return RenderTable(w, []string{"Endpoint", "Errors", "Error %"}, rows)
}

// RenderAnomalyTypes writes anomaly types ranked by frequency
func RenderAnomalyTypes(w io.Writer, list []domain.AnomalyTypeCount) error {
	if len(list) == 0 {
		return renderEmpty(w, "anomaly types")
	}
	rows := make([][]string, 0, len(list))
	for _, t := range list {
		rows = append(rows, []string{t.Type, strconv.Itoa(t.Count), fmt.Sprintf("%.1f%%", t.Percent)})
	}
	return RenderTable(w, []string{"Type", "Count", "Share"}, rows)
}

// RenderSlowEndpoints writes endpoint latency statistics
func RenderSlowEndpoints(w io.Writer, list []domain.SlowEndpoint) error {
	if len(list) == 0 {
		return renderEmpty(w, "endpoint latencies")
	}
	rows := make([][]string, 0, len(list))
	for _, s := range list {
		rows = append(rows, []string{
			Paint(Styles.Endpoint, s.Endpoint),
			fmt.Sprintf("%.0f ms", s.Avg),
			fmt.Sprintf("%.0f ms", s.P95),
			strconv.Itoa(s.Count),
		})
	}
	return RenderTable(w, []string{"Endpoint", "Avg", "P95", "Requests"}, rows)
}

// RenderDowntime writes downtime indicators
func RenderDowntime(w io.Writer, list []domain.DowntimeIndicator) error {
	if len(list) == 0 {
		return renderEmpty(w, "downtime indicators")
	}
	rows := make([][]string, 0, len(list))
	for _, d := range list {
		rows = append(rows, []string{
			Paint(Styles.Endpoint, d.Endpoint),
			SeverityBadge(string(d.Severity)),
			fmt.Sprintf("%d/%d", d.Issues, d.TotalHits),
			fmt.Sprintf("%.2f", d.DowntimeScore),
			Truncate(d.Message, maxMessageWidth),
		})
	}
	return RenderTable(w, []string{"Endpoint", "Severity", "Issues", "Score", "Message"}, rows)
}

// RenderParsedLogs writes parsed log lines
func RenderParsedLogs(w io.Writer, list []domain.ParsedLog) error {
	if len(list) == 0 {
		return renderEmpty(w, "parsed logs")
	}
	rows := make([][]string, 0, len(list))
	for _, l := range list {
		rt := "--"
		if l.ResponseTime != nil {
			rt = fmt.Sprintf("%.0f ms", *l.ResponseTime)
		}
		rows = append(rows, []string{
			strconv.Itoa(l.ID),
			Paint(Styles.Timestamp, l.Timestamp),
			l.Level,
			Paint(Styles.Endpoint, l.Endpoint),
			rt,
			Truncate(l.Message, maxMessageWidth),
		})
	}
	return RenderTable(w, []string{"ID", "Time", "Level", "Endpoint", "Response", "Message"}, rows)
}

// Truncate shortens s to n runes, marking the cut with an ellipsis
func Truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

func formatScore(score *float64) string {
	if score == nil {
		return "--"
	}
	return fmt.Sprintf("%.2f", *score)
}
