package output

import (
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/vburojevic/logscope/internal/domain"
)

var (
	uuidPattern = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
	ipPattern   = regexp.MustCompile(`\b\d{1,3}(?:\.\d{1,3}){3}\b`)
	hexPattern  = regexp.MustCompile(`0x[0-9a-fA-F]+`)
	numPattern  = regexp.MustCompile(`\d+`)
)

// topLimit bounds TopMessages and DetectPatterns
const topLimit = 5

// Analyzer summarizes fetched anomalies for agents and the text views
type Analyzer struct{}

// NewAnalyzer creates a new anomaly analyzer
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Summarize aggregates anomalies by severity and type
func (a *Analyzer) Summarize(list []domain.Anomaly) *domain.AnomalySummary {
	summary := domain.NewAnomalySummary()
	summary.SchemaVersion = SchemaVersion

	messages := make(map[string]int)
	for _, item := range list {
		summary.TotalCount++
		if !summary.Severity.Add(item.Severity) {
			summary.UnknownCount++
		}
		if item.Type != "" {
			summary.ByType[item.Type]++
		}
		if score, ok := item.ScoreValue(); ok && score > summary.MaxScore {
			summary.MaxScore = score
		}
		if msg := item.MessageText(); msg != "" {
			messages[a.normalizeMessage(msg)]++
		}
	}

	summary.HasCritical = summary.Severity.Critical > 0
	summary.HasHigh = summary.Severity.High > 0
	summary.TopMessages = a.getTopMessages(messages, topLimit)

	return summary
}

// normalizeMessage removes variable parts to group similar messages
func (a *Analyzer) normalizeMessage(msg string) string {
	msg = uuidPattern.ReplaceAllString(msg, "<uuid>")
	msg = ipPattern.ReplaceAllString(msg, "<ip>")
	msg = hexPattern.ReplaceAllString(msg, "<addr>")
	msg = numPattern.ReplaceAllString(msg, "<n>")

	msg = strings.TrimSpace(msg)
	if len(msg) > 100 {
		msg = msg[:100] + "..."
	}
	return msg
}

// getTopMessages returns the top N messages by frequency
func (a *Analyzer) getTopMessages(counts map[string]int, limit int) []string {
	type kv struct {
		msg   string
		count int
	}

	pairs := make([]kv, 0, len(counts))
	for msg, count := range counts {
		pairs = append(pairs, kv{msg, count})
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].msg < pairs[j].msg
	})

	if len(pairs) > limit {
		pairs = pairs[:limit]
	}

	result := make([]string, len(pairs))
	for i, p := range pairs {
		result[i] = p.msg
	}
	return result
}

// DetectPatterns finds anomaly messages that recur once normalized
func (a *Analyzer) DetectPatterns(list []domain.Anomaly) []PatternMatch {
	type group struct {
		messages []string
		worst    domain.Severity
	}
	groups := make(map[string]*group)

	for _, item := range list {
		msg := item.MessageText()
		if msg == "" {
			continue
		}
		pattern := a.normalizeMessage(msg)
		g, ok := groups[pattern]
		if !ok {
			g = &group{}
			groups[pattern] = g
		}
		g.messages = append(g.messages, msg)
		if item.Severity.Priority() > g.worst.Priority() {
			g.worst = domain.ParseSeverity(string(item.Severity))
		}
	}

	var patterns []PatternMatch
	for pattern, g := range groups {
		if len(g.messages) < 2 {
			continue
		}
		samples := g.messages
		if len(samples) > 3 {
			samples = samples[:3]
		}
		patterns = append(patterns, PatternMatch{
			Pattern:     pattern,
			Count:       len(g.messages),
			MaxSeverity: g.worst,
			Samples:     samples,
		})
	}

	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].Count != patterns[j].Count {
			return patterns[i].Count > patterns[j].Count
		}
		return patterns[i].Pattern < patterns[j].Pattern
	})

	if len(patterns) > topLimit {
		patterns = patterns[:topLimit]
	}
	return patterns
}

// PatternMatch represents a recurring anomaly message
type PatternMatch struct {
	Pattern     string          `json:"pattern"`
	Count       int             `json:"count"`
	MaxSeverity domain.Severity `json:"max_severity,omitempty"`
	Samples     []string        `json:"samples"`

	// Set when a PatternStore has annotated the match
	New       *bool      `json:"new,omitempty"`
	FirstSeen *time.Time `json:"first_seen,omitempty"`
	TotalSeen int        `json:"total_seen,omitempty"`
}

// AnalysisOutput wraps a summary for NDJSON output with timing
type AnalysisOutput struct {
	Type          string                 `json:"type"`
	SchemaVersion int                    `json:"schemaVersion"`
	Timestamp     time.Time              `json:"timestamp"`
	Summary       *domain.AnomalySummary `json:"summary"`
	Patterns      []PatternMatch         `json:"patterns,omitempty"`
}

// NewAnalysisOutput creates an analysis output wrapper
func NewAnalysisOutput(summary *domain.AnomalySummary, patterns []PatternMatch, at time.Time) *AnalysisOutput {
	return &AnalysisOutput{
		Type:          "analysis",
		SchemaVersion: SchemaVersion,
		Timestamp:     at,
		Summary:       summary,
		Patterns:      patterns,
	}
}

// RenderAnalysis writes a text rendering of an analysis
func RenderAnalysis(w io.Writer, summary *domain.AnomalySummary, patterns []PatternMatch) error {
	pairs := [][2]string{
		{"Status", StatusText(summary)},
		{"Anomalies", strconv.Itoa(summary.TotalCount)},
		{"Critical", strconv.Itoa(summary.Severity.Critical)},
		{"High", strconv.Itoa(summary.Severity.High)},
		{"Medium", strconv.Itoa(summary.Severity.Medium)},
		{"Low", strconv.Itoa(summary.Severity.Low)},
	}
	if summary.UnknownCount > 0 {
		pairs = append(pairs, [2]string{"Unlabeled", strconv.Itoa(summary.UnknownCount)})
	}
	if err := RenderKeyValues(w, "Anomaly summary", pairs); err != nil {
		return err
	}
	if len(patterns) == 0 {
		return nil
	}
	if err := RenderHeader(w, "Recurring patterns"); err != nil {
		return err
	}
	rows := make([][]string, 0, len(patterns))
	for _, p := range patterns {
		status := ""
		if p.New != nil {
			status = "known"
			if *p.New {
				status = Paint(Styles.Warning, "NEW")
			}
		}
		rows = append(rows, []string{strconv.Itoa(p.Count), SeverityBadge(string(p.MaxSeverity)), status, Truncate(p.Pattern, maxMessageWidth)})
	}
	return RenderTable(w, []string{"Count", "Worst", "Seen", "Pattern"}, rows)
}
