// Package metrics defines the Prometheus collectors fed from domain events and
// exposes an HTTP handler for scraping.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"channelsdb/internal/domain"
	"channelsdb/internal/eventbus"
)

const namespace = "channelsdb"

// Metrics holds all Prometheus collectors.
type Metrics struct {
	SearchesTotal      *prometheus.CounterVec
	SearchResultsTotal *prometheus.CounterVec
	PagesTotal         *prometheus.CounterVec
	FetchDuration      *prometheus.HistogramVec
	ViewChangesTotal   *prometheus.CounterVec

	registry *prometheus.Registry
}

// CacheStats is implemented by the result cache
type CacheStats interface {
	Stats() (hits, misses int64)
}

// New creates the collectors and registers them on a dedicated registry.
func New() *Metrics {
	m := &Metrics{
		SearchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "searches_total",
				Help:      "Searches issued by mode (faceted, full_text).",
			},
			[]string{"mode"},
		),
		SearchResultsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "search_results_total",
				Help:      "Faceted search outcomes (ok, empty, error, superseded).",
			},
			[]string{"outcome"},
		),
		PagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pages_total",
				Help:      "Page fetches by scope kind and outcome.",
			},
			[]string{"scope", "outcome"},
		),
		FetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fetch_duration_seconds",
				Help:      "Backend fetch latency in seconds.",
				Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"scope"},
		),
		ViewChangesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "view_changes_total",
				Help:      "Committed view state transitions by target kind.",
			},
			[]string{"kind"},
		),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.SearchesTotal,
		m.SearchResultsTotal,
		m.PagesTotal,
		m.FetchDuration,
		m.ViewChangesTotal,
	)

	return m
}

// Registry returns the registry the collectors live in
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveCache exports the hit and miss counts of a result cache
func (m *Metrics) ObserveCache(c CacheStats) {
	m.registry.MustRegister(
		prometheus.NewCounterFunc(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Result cache hits.",
			},
			func() float64 {
				hits, _ := c.Stats()
				return float64(hits)
			},
		),
		prometheus.NewCounterFunc(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Result cache misses.",
			},
			func() float64 {
				_, misses := c.Stats()
				return float64(misses)
			},
		),
	)
}

// Attach subscribes the collectors to the event bus. The returned function
// removes every subscription.
func (m *Metrics) Attach(bus eventbus.EventBus) func() {
	unsubs := []func(){
		bus.Subscribe(domain.EventSearchSubmitted, func(domain.DomainEvent) {
			m.SearchesTotal.WithLabelValues("faceted").Inc()
		}),
		bus.Subscribe(domain.EventFullTextOpened, func(domain.DomainEvent) {
			m.SearchesTotal.WithLabelValues(domain.ScopeFullText.String()).Inc()
		}),
		bus.Subscribe(domain.EventSearchCompleted, func(e domain.DomainEvent) {
			ev := e.(domain.SearchCompletedEvent)
			outcome := "ok"
			if ev.Empty {
				outcome = "empty"
			}
			m.SearchResultsTotal.WithLabelValues(outcome).Inc()
			m.FetchDuration.WithLabelValues("facet").Observe(ev.Took.Seconds())
		}),
		bus.Subscribe(domain.EventSearchFailed, func(domain.DomainEvent) {
			m.SearchResultsTotal.WithLabelValues("error").Inc()
		}),
		bus.Subscribe(domain.EventSearchSuperseded, func(domain.DomainEvent) {
			m.SearchResultsTotal.WithLabelValues("superseded").Inc()
		}),
		bus.Subscribe(domain.EventPageLoaded, func(e domain.DomainEvent) {
			ev := e.(domain.PageLoadedEvent)
			scope := ev.Scope.Kind.String()
			m.PagesTotal.WithLabelValues(scope, "ok").Inc()
			m.FetchDuration.WithLabelValues(scope).Observe(ev.Took.Seconds())
		}),
		bus.Subscribe(domain.EventPageFailed, func(e domain.DomainEvent) {
			ev := e.(domain.PageFailedEvent)
			scope := ev.Scope.Kind.String()
			m.PagesTotal.WithLabelValues(scope, "error").Inc()
			m.FetchDuration.WithLabelValues(scope).Observe(ev.Took.Seconds())
		}),
		bus.Subscribe(domain.EventViewChanged, func(e domain.DomainEvent) {
			m.ViewChangesTotal.WithLabelValues(e.(domain.ViewChangedEvent).Kind).Inc()
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

// Handler returns the Prometheus scrape HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done
func (m *Metrics) Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics endpoint listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
