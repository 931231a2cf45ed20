// Package metrics exposes tracker activity in the Prometheus format.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SoarinFerret/DayTracker/internal/tracker"
)

// Metrics holds the daemon's collectors. It implements tracker.Observer.
type Metrics struct {
	registry *prometheus.Registry

	TrackedSeconds *prometheus.CounterVec
	SessionActive  prometheus.Gauge
	ArchivedDays   prometheus.Counter
	Signals        *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		TrackedSeconds: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "daytracker_tracked_seconds_total",
				Help: "Seconds credited to each category",
			},
			[]string{"category"},
		),
		SessionActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "daytracker_session_active",
				Help: "1 while a stopwatch or countdown is running",
			},
		),
		ArchivedDays: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "daytracker_archived_days_total",
				Help: "Days moved into history",
			},
		),
		Signals: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "daytracker_signals_total",
				Help: "Notification and alert attempts",
			},
			[]string{"kind", "outcome"}, // notification/alert, delivered/unavailable/started/failed
		),
	}
}

func (m *Metrics) Credited(category string, seconds int64) {
	m.TrackedSeconds.WithLabelValues(category).Add(float64(seconds))
}

func (m *Metrics) SessionChanged(active bool) {
	if active {
		m.SessionActive.Set(1)
		return
	}
	m.SessionActive.Set(0)
}

func (m *Metrics) DayArchived(tracker.DayData) {
	m.ArchivedDays.Inc()
}

// RecordSignal counts a notification or alert attempt.
func (m *Metrics) RecordSignal(kind, outcome string) {
	m.Signals.WithLabelValues(kind, outcome).Inc()
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown", "error", err)
		}
	}()

	logger.Info("metrics listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
