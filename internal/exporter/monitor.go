// Package exporter periodically scrapes the backend and serves the result as
// Prometheus gauges.
package exporter

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vburojevic/logscope/internal/binder"
	"github.com/vburojevic/logscope/internal/domain"
	"github.com/vburojevic/logscope/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultListen   = ":9464"
	DefaultInterval = 30 * time.Second

	shutdownTimeout = 5 * time.Second
)

// Source is the part of the backend client the monitor scrapes
type Source interface {
	MetricsSummary(ctx context.Context) (domain.MetricsSummary, error)
	ListAnomalies(ctx context.Context) ([]domain.Anomaly, error)
}

// Config controls the monitor
type Config struct {
	Listen   string
	Interval time.Duration
	Clock    clock.Clock
	Logger   *zap.Logger
	// Registry defaults to a fresh registry with the Go and process collectors
	Registry *prometheus.Registry
}

// Monitor re-triggers its binders on every interval and publishes what they
// load
type Monitor struct {
	summary   *binder.Binder[domain.MetricsSummary]
	anomalies *binder.Binder[[]domain.Anomaly]

	listen   string
	interval time.Duration
	clock    clock.Clock
	log      *zap.Logger
	registry *prometheus.Registry

	mu         sync.RWMutex
	lastScrape time.Time
	lastErr    error
}

// New builds a monitor and registers its collectors
func New(src Source, cfg Config) (*Monitor, error) {
	if cfg.Listen == "" {
		cfg.Listen = DefaultListen
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
		cfg.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	if err := metrics.Register(cfg.Registry); err != nil {
		return nil, err
	}

	opts := []binder.Option{binder.WithClock(cfg.Clock), binder.WithLogger(cfg.Logger)}
	return &Monitor{
		summary:   binder.New("metrics summary", src.MetricsSummary, opts...),
		anomalies: binder.New("anomalies", src.ListAnomalies, opts...),
		listen:    cfg.Listen,
		interval:  cfg.Interval,
		clock:     cfg.Clock,
		log:       cfg.Logger,
		registry:  cfg.Registry,
	}, nil
}

// Scrape loads both resources concurrently and publishes them. A resource
// that fails keeps its previous gauges.
func (m *Monitor) Scrape(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error {
		snap := m.summary.Load(ctx)
		if snap.State == binder.Failed {
			return snap.Err
		}
		if snap.State == binder.Loaded {
			metrics.ObserveSummary(snap.Data)
		}
		return nil
	})
	g.Go(func() error {
		snap := m.anomalies.Load(ctx)
		if snap.State == binder.Failed {
			return snap.Err
		}
		if snap.State == binder.Loaded {
			metrics.ObserveAnomalies(snap.Data)
		}
		return nil
	})
	err := g.Wait()
	metrics.ObserveScrape(err)

	m.mu.Lock()
	m.lastScrape = m.clock.Now()
	m.lastErr = err
	m.mu.Unlock()

	if err != nil {
		m.log.Warn("scrape failed", zap.Error(err))
	} else {
		m.log.Debug("scrape complete")
	}
	return err
}

// Router serves /metrics and /healthz
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc("/healthz", m.handleHealth).Methods(http.MethodGet)
	return r
}

type health struct {
	Status     string    `json:"status"`
	LastScrape time.Time `json:"last_scrape,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// handleHealth reports 200 once the last scrape succeeded, 503 otherwise
func (m *Monitor) handleHealth(w http.ResponseWriter, _ *http.Request) {
	m.mu.RLock()
	last, lastErr := m.lastScrape, m.lastErr
	m.mu.RUnlock()

	body := health{Status: "ok", LastScrape: last}
	status := http.StatusOK
	switch {
	case last.IsZero():
		body.Status = "starting"
		status = http.StatusServiceUnavailable
	case lastErr != nil:
		body.Status = "degraded"
		body.Error = lastErr.Error()
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Loop scrapes immediately and then on every tick until ctx ends
func (m *Monitor) Loop(ctx context.Context) {
	ticker := m.clock.Ticker(m.interval)
	defer ticker.Stop()

	_ = m.Scrape(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = m.Scrape(ctx)
		}
	}
}

// Run serves the router on the configured address and scrapes until ctx ends
func (m *Monitor) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", m.listen)
	if err != nil {
		return err
	}
	return m.Serve(ctx, ln)
}

// Serve is Run on an existing listener
func (m *Monitor) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      m.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m.log.Info("monitor listening", zap.String("address", ln.Addr().String()), zap.Duration("interval", m.interval))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		m.Loop(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()
		return srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	m.summary.Close()
	m.anomalies.Close()
	return err
}
