package filter

import (
	"regexp"
	"testing"

	"github.com/vburojevic/logscope/internal/domain"
)

func BenchmarkWhereFilterMatch(b *testing.B) {
	where, _ := NewWhereFilter([]string{"severity>=high", "message~timeout", "score>=0.5"})
	a := &domain.Anomaly{
		Severity: domain.SeverityCritical,
		Message:  ptr("network timeout occurred"),
		Score:    ptr(0.9),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = where.Match(a)
	}
}

func BenchmarkPipelineMatch(b *testing.B) {
	pat, _ := regexp.Compile("error|timeout")
	ex, _ := regexp.Compile("healthcheck")
	where, _ := NewWhereFilter([]string{"severity>=low"})
	p := NewPipeline(pat, []*regexp.Regexp{ex}, where)
	a := &domain.Anomaly{Severity: domain.SeverityHigh, Message: ptr("timeout error")}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = p.Match(a)
	}
}

func BenchmarkChainFilter(b *testing.B) {
	chain := NewChain(
		NewSeverityFilter(domain.SeverityMedium),
		NewExcludeTypeFilter([]string{"security_*"}),
	)
	a := &domain.Anomaly{Severity: domain.SeverityHigh, Type: "latency"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = chain.Match(a)
	}
}
