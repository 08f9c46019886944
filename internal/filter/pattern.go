package filter

import (
	"regexp"
	"strings"

	"github.com/vburojevic/logscope/internal/domain"
)

// PatternFilter filters anomalies by message pattern
type PatternFilter struct {
	pattern *regexp.Regexp
}

// NewPatternFilter creates a pattern filter from a pattern string
func NewPatternFilter(pattern string) (*PatternFilter, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &PatternFilter{pattern: re}, nil
}

// NewPatternFilterFromRegexp creates a pattern filter from a compiled regexp
func NewPatternFilterFromRegexp(re *regexp.Regexp) *PatternFilter {
	return &PatternFilter{pattern: re}
}

// Match returns true if the message matches the pattern
func (f *PatternFilter) Match(a *domain.Anomaly) bool {
	if f.pattern == nil {
		return true
	}
	return f.pattern.MatchString(a.MessageText())
}

// ExcludePatternFilter excludes anomalies whose message matches a pattern
type ExcludePatternFilter struct {
	pattern *regexp.Regexp
}

// NewExcludePatternFilter creates an exclusion filter from a pattern string
func NewExcludePatternFilter(pattern string) (*ExcludePatternFilter, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &ExcludePatternFilter{pattern: re}, nil
}

// Match returns true if the message does NOT match the exclusion pattern
func (f *ExcludePatternFilter) Match(a *domain.Anomaly) bool {
	if f.pattern == nil {
		return true
	}
	return !f.pattern.MatchString(a.MessageText())
}

// TypeFilter keeps anomalies whose type is in the list. A trailing * matches
// by prefix ("security_*").
type TypeFilter struct {
	types []string
}

// NewTypeFilter creates a type filter
func NewTypeFilter(types []string) *TypeFilter {
	return &TypeFilter{types: types}
}

// Match returns true if the type is listed
func (f *TypeFilter) Match(a *domain.Anomaly) bool {
	if len(f.types) == 0 {
		return true
	}
	return matchesAny(a.Type, f.types)
}

// ExcludeTypeFilter drops anomalies whose type is in the list
type ExcludeTypeFilter struct {
	types []string
}

// NewExcludeTypeFilter creates a type exclusion filter
func NewExcludeTypeFilter(types []string) *ExcludeTypeFilter {
	return &ExcludeTypeFilter{types: types}
}

// Match returns true if the type is NOT listed
func (f *ExcludeTypeFilter) Match(a *domain.Anomaly) bool {
	if len(f.types) == 0 {
		return true
	}
	return !matchesAny(a.Type, f.types)
}

func matchesAny(value string, patterns []string) bool {
	for _, p := range patterns {
		if prefix, ok := strings.CutSuffix(p, "*"); ok {
			if strings.HasPrefix(value, prefix) {
				return true
			}
		} else if value == p {
			return true
		}
	}
	return false
}
