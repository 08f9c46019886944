package view

import (
	"sync"

	"github.com/vburojevic/logscope/internal/binder"
	"github.com/vburojevic/logscope/internal/domain"
	"github.com/vburojevic/logscope/internal/filter"
)

// Reports lists anomalies narrowed by a severity selector and an optional
// query filter
type Reports struct {
	group

	List *binder.Binder[[]domain.Anomaly]

	mu        sync.Mutex
	selection string
	query     filter.Filter
}

// NewReports binds the report list. query may be nil.
func NewReports(src Source, selection string, query filter.Filter, opts ...binder.Option) *Reports {
	r := &Reports{
		List:  binder.New("anomaly reports", src.ListAnomalies, opts...),
		query: query,
	}
	r.group = group{bind(r.List)}
	r.SetSelection(selection)
	return r
}

// Selection returns the active severity selector
func (r *Reports) Selection() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selection
}

// SetSelection changes the selector; empty or unknown values select all
func (r *Reports) SetSelection(selection string) {
	sel := filter.NewExactSeverityFilter(selection).Selection()
	if sel != filter.SeverityAll && !domain.Severity(sel).Known() {
		sel = filter.SeverityAll
	}
	r.mu.Lock()
	r.selection = sel
	r.mu.Unlock()
}

// CycleSelection advances the selector and returns the new value
func (r *Reports) CycleSelection() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selection = filter.NextSelection(r.selection)
	return r.selection
}

// Filtered returns the loaded anomalies that pass the selector and query
func (r *Reports) Filtered() []domain.Anomaly {
	r.mu.Lock()
	chain := filter.NewChain(filter.NewExactSeverityFilter(r.selection), r.query)
	r.mu.Unlock()
	return filter.Apply(r.List.Snapshot().Data, chain)
}
