package filter

import (
	"regexp"

	"github.com/vburojevic/logscope/internal/domain"
)

// Pipeline chains pattern/exclude/where predicates so callers can reuse a single matcher.
type Pipeline struct {
	pattern  *regexp.Regexp
	excludes []*regexp.Regexp
	where    *WhereFilter
}

func NewPipeline(pattern *regexp.Regexp, excludes []*regexp.Regexp, where *WhereFilter) *Pipeline {
	if pattern == nil && len(excludes) == 0 && where == nil {
		return nil
	}
	return &Pipeline{pattern: pattern, excludes: excludes, where: where}
}

// Match returns true when the anomaly passes all predicates.
func (p *Pipeline) Match(a *domain.Anomaly) bool {
	if p == nil || a == nil {
		return true
	}
	msg := a.MessageText()
	if p.pattern != nil && !p.pattern.MatchString(msg) {
		return false
	}
	for _, ex := range p.excludes {
		if ex.MatchString(msg) {
			return false
		}
	}
	if p.where != nil && !p.where.Match(a) {
		return false
	}
	return true
}
