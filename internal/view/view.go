// Package view composes remote resource binders into the screens the CLI
// and TUI render. Every view owns its binders; nothing is shared between
// views.
package view

import (
	"context"

	"github.com/vburojevic/logscope/internal/binder"
	"github.com/vburojevic/logscope/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Source is the part of the backend client the views read from
type Source interface {
	Ping(ctx context.Context) (string, error)
	ListAnomalies(ctx context.Context) ([]domain.Anomaly, error)
	MetricsSummary(ctx context.Context) (domain.MetricsSummary, error)
	DailyMetrics(ctx context.Context) ([]domain.DailyMetricPoint, error)
	TopErrors(ctx context.Context) ([]domain.TopErrorEntry, error)
}

// Change reports a state transition of one binder in a view
type Change struct {
	Resource   string
	State      binder.State
	Generation uint64
	Message    string
}

// slot adapts a typed binder to the untyped operations a view fans out
type slot struct {
	trigger   func(ctx context.Context)
	load      func(ctx context.Context) error
	close     func()
	wait      func()
	subscribe func(fn func(Change)) func()
}

func bind[T any](b *binder.Binder[T]) slot {
	return slot{
		trigger: func(ctx context.Context) { b.Trigger(ctx) },
		load: func(ctx context.Context) error {
			snap := b.Load(ctx)
			if snap.State == binder.Failed {
				return snap.Err
			}
			return nil
		},
		close: b.Close,
		wait:  b.Wait,
		subscribe: func(fn func(Change)) func() {
			return b.Subscribe(func(snap binder.Snapshot[T]) {
				fn(Change{Resource: b.Label(), State: snap.State, Generation: snap.Generation, Message: snap.Message})
			})
		},
	}
}

// group is the set of binders behind one view
type group []slot

// Refresh re-triggers every binder without waiting
func (g group) Refresh(ctx context.Context) {
	for _, s := range g {
		s.trigger(ctx)
	}
}

// RefreshAll loads every binder concurrently and waits for all of them.
// A failing binder does not cancel its siblings; the first failure is
// returned once all have settled.
func (g group) RefreshAll(ctx context.Context) error {
	var eg errgroup.Group
	for _, s := range g {
		eg.Go(func() error { return s.load(ctx) })
	}
	return eg.Wait()
}

// Subscribe forwards every binder transition of the view to fn. The
// returned func removes all of the subscriptions.
func (g group) Subscribe(fn func(Change)) (unsubscribe func()) {
	offs := make([]func(), 0, len(g))
	for _, s := range g {
		offs = append(offs, s.subscribe(fn))
	}
	return func() {
		for _, off := range offs {
			off()
		}
	}
}

// Close discards in-flight results of every binder
func (g group) Close() {
	for _, s := range g {
		s.close()
	}
}

// Wait blocks until background fetches have returned
func (g group) Wait() {
	for _, s := range g {
		s.wait()
	}
}
