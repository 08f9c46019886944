package filter

import (
	"github.com/vburojevic/logscope/internal/domain"
)

// Filter determines if an anomaly should be included
type Filter interface {
	// Match returns true if the anomaly passes the filter
	Match(a *domain.Anomaly) bool
}

// Chain combines multiple filters (all must pass)
type Chain struct {
	filters []Filter
}

// NewChain creates a filter chain from multiple filters. Nil filters are
// skipped.
func NewChain(filters ...Filter) *Chain {
	c := &Chain{}
	for _, f := range filters {
		c.Add(f)
	}
	return c
}

// Match returns true only if all filters pass
func (c *Chain) Match(a *domain.Anomaly) bool {
	for _, f := range c.filters {
		if !f.Match(a) {
			return false
		}
	}
	return true
}

// Add appends a filter to the chain
func (c *Chain) Add(f Filter) {
	if isNilFilter(f) {
		return
	}
	c.filters = append(c.filters, f)
}

// Len returns the number of active filters
func (c *Chain) Len() int {
	return len(c.filters)
}

// OrChain combines multiple filters (any must pass)
type OrChain struct {
	filters []Filter
}

// NewOrChain creates an OR filter chain
func NewOrChain(filters ...Filter) *OrChain {
	return &OrChain{filters: filters}
}

// Match returns true if any filter passes
func (c *OrChain) Match(a *domain.Anomaly) bool {
	if len(c.filters) == 0 {
		return true
	}
	for _, f := range c.filters {
		if f.Match(a) {
			return true
		}
	}
	return false
}

// Apply returns the anomalies that pass f, preserving order. The result is
// never nil.
func Apply(list []domain.Anomaly, f Filter) []domain.Anomaly {
	out := make([]domain.Anomaly, 0, len(list))
	for i := range list {
		if f == nil || f.Match(&list[i]) {
			out = append(out, list[i])
		}
	}
	return out
}

// isNilFilter catches typed nil pointers such as a (*WhereFilter)(nil)
// returned for an empty clause list
func isNilFilter(f Filter) bool {
	switch v := f.(type) {
	case nil:
		return true
	case *WhereFilter:
		return v == nil
	case *Pipeline:
		return v == nil
	case *ExactSeverityFilter:
		return v == nil
	}
	return false
}
