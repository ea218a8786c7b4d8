// Package telemetry exposes screener counters over a Prometheus
// /metrics endpoint. The screener is the only writer.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Telemetry owns the metric registry. A nil *Telemetry is a valid no-op
// receiver, so components never need to guard their increments.
type Telemetry struct {
	registry *prometheus.Registry

	pairsAnalyzed prometheus.Counter
	analysisFails prometheus.Counter
	signals       *prometheus.CounterVec
	notifications prometheus.Counter
	cycleSeconds  prometheus.Histogram

	srv *http.Server
	log zerolog.Logger
}

// New builds the registry and registers every metric.
func New(log zerolog.Logger) *Telemetry {
	t := &Telemetry{
		registry: prometheus.NewRegistry(),
		pairsAnalyzed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pairsentinel_pairs_analyzed_total",
			Help: "Pairs analyzed across all cycles",
		}),
		analysisFails: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pairsentinel_analysis_errors_total",
			Help: "Per-pair analysis failures (skipped, not fatal)",
		}),
		signals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pairsentinel_signals_generated_total",
			Help: "Actionable signals by type",
		}, []string{"type"}),
		notifications: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pairsentinel_notifications_sent_total",
			Help: "Notifications delivered",
		}),
		cycleSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pairsentinel_analysis_cycle_seconds",
			Help:    "Wall time of one full analysis cycle",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		log: log,
	}
	t.registry.MustRegister(t.pairsAnalyzed, t.analysisFails, t.signals, t.notifications, t.cycleSeconds)
	return t
}

// PairAnalyzed counts one completed pair analysis.
func (t *Telemetry) PairAnalyzed() {
	if t != nil {
		t.pairsAnalyzed.Inc()
	}
}

// AnalysisFailed counts one skipped pair.
func (t *Telemetry) AnalysisFailed() {
	if t != nil {
		t.analysisFails.Inc()
	}
}

// SignalGenerated counts one actionable signal by its type tag.
func (t *Telemetry) SignalGenerated(signalType string) {
	if t != nil {
		t.signals.WithLabelValues(signalType).Inc()
	}
}

// NotificationSent counts one delivered notification.
func (t *Telemetry) NotificationSent() {
	if t != nil {
		t.notifications.Inc()
	}
}

// CycleCompleted records the wall time of one analysis cycle.
func (t *Telemetry) CycleCompleted(d time.Duration) {
	if t != nil {
		t.cycleSeconds.Observe(d.Seconds())
	}
}

// Serve starts the /metrics listener on addr in the background.
func (t *Telemetry) Serve(addr string) {
	if t == nil || addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{}))
	t.srv = &http.Server{Addr: addr, Handler: mux}
	go func() {
		t.log.Info().Str("addr", addr).Msg("telemetry listening")
		if err := t.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.log.Warn().Err(err).Msg("telemetry server stopped")
		}
	}()
}

// Shutdown stops the listener if one was started.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil || t.srv == nil {
		return nil
	}
	return t.srv.Shutdown(ctx)
}
