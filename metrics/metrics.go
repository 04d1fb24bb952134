// Package metrics exposes Prometheus metrics for promotions, backfill sweeps
// and leaderboard mutations.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns the collectors. A nil *Manager is valid and records nothing.
type Manager struct {
	namespace string
	registry  *prometheus.Registry

	promotions         *prometheus.CounterVec
	decisionLatency    prometheus.Histogram
	sweepChannels      *prometheus.CounterVec
	leaderboardUpdates *prometheus.CounterVec
	leaderboardEntries prometheus.Gauge
}

type Option func(*Manager)

func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

func WithRegistry(registry *prometheus.Registry) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

func New(opts ...Option) *Manager {
	m := &Manager{
		namespace: "starlight",
		registry:  prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	auto := promauto.With(m.registry)

	m.promotions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "starboard",
		Name:      "decisions_total",
		Help:      "Promotion decisions by outcome.",
	}, []string{"outcome"})

	m.decisionLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "starboard",
		Name:      "decision_duration_seconds",
		Help:      "Time spent holding the promotion lock.",
		Buckets:   prometheus.DefBuckets,
	})

	m.sweepChannels = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "sweep",
		Name:      "channels_total",
		Help:      "Channels visited by the startup backfill by result.",
	}, []string{"result"})

	m.leaderboardUpdates = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "leaderboard",
		Name:      "updates_total",
		Help:      "Leaderboard mutations by source.",
	}, []string{"source"})

	m.leaderboardEntries = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "leaderboard",
		Name:      "entries",
		Help:      "Authors currently on the leaderboard.",
	})

	return m
}

func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Manager) RecordDecision(outcome string, took time.Duration) {
	if m == nil {
		return
	}

	m.promotions.WithLabelValues(outcome).Inc()
	m.decisionLatency.Observe(took.Seconds())
}

func (m *Manager) RecordSweepChannel(result string) {
	if m == nil {
		return
	}

	m.sweepChannels.WithLabelValues(result).Inc()
}

func (m *Manager) RecordLeaderboardUpdate(source string) {
	if m == nil {
		return
	}

	m.leaderboardUpdates.WithLabelValues(source).Inc()
}

func (m *Manager) SetLeaderboardEntries(n int) {
	if m == nil {
		return
	}

	m.leaderboardEntries.Set(float64(n))
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Manager) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
