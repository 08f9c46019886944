package filter

import (
	"testing"

	"github.com/vburojevic/logscope/internal/domain"
)

func FuzzNewWhereFilter(f *testing.F) {
	f.Add(`severity=high`)
	f.Add(`(severity=critical OR severity=high) AND message~/timeout|refused/i`)
	f.Add(`score>=0.8 && type^security`)
	f.Add(`!message~"healthcheck"`)
	f.Add(`unterminated"`)

	score := 0.91
	msg := "timeout while connecting"
	logID := 12
	a := &domain.Anomaly{
		ID:        3,
		Timestamp: "2024-01-02T10:00:00",
		Type:      "security_bruteforce",
		Severity:  domain.SeverityHigh,
		Score:     &score,
		Message:   &msg,
		LogID:     &logID,
	}

	f.Fuzz(func(t *testing.T, expr string) {
		wf, err := NewWhereFilter([]string{expr})
		if err != nil {
			return
		}
		if wf != nil {
			_ = wf.Match(a)
		}
	})
}
