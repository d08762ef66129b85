// Package metrics exposes Prometheus counters for the sync agent. A nil
// *Metrics is valid and records nothing, so components don't need to check
// whether metrics are enabled.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/sidkik/mediasync/pkg/errors"
)

const namespace = "mediasync"

// Outcomes for per-file and per-cycle counters.
const (
	ResultDownloaded = "downloaded"
	ResultFailed     = "failed"
	ResultSkipped    = "skipped"

	ResultCompleted = "completed"
	ResultAborted   = "failed"
)

// Metrics holds the agent's instruments.
type Metrics struct {
	registry *prometheus.Registry

	files          *prometheus.CounterVec
	cycles         *prometheus.CounterVec
	manifestErrors *prometheus.CounterVec
	bytes          prometheus.Counter
	cycleDuration  prometheus.Histogram
}

// New creates the instruments and registers them with a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Manifest entries processed, by outcome.",
		}, []string{"result"}),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Sync cycles run, by outcome.",
		}, []string{"result"}),
		manifestErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "manifest_errors_total",
			Help:      "Manifest retrieval failures, by kind.",
		}, []string{"kind"}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_downloaded_total",
			Help:      "Bytes written to the output folder.",
		}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Duration of sync cycles.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900, 3600},
		}),
	}
	m.registry.MustRegister(m.files, m.cycles, m.manifestErrors, m.bytes, m.cycleDuration)
	return m
}

// Registry returns the registry the instruments are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordFile counts one processed manifest entry.
func (m *Metrics) RecordFile(result string) {
	if m == nil {
		return
	}
	m.files.WithLabelValues(result).Inc()
}

// RecordCycle counts one finished cycle and its duration.
func (m *Metrics) RecordCycle(result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.cycles.WithLabelValues(result).Inc()
	m.cycleDuration.Observe(duration.Seconds())
}

// RecordManifestError counts a failed manifest retrieval.
func (m *Metrics) RecordManifestError(kind string) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "other"
	}
	m.manifestErrors.WithLabelValues(kind).Inc()
}

// AddBytes counts data written by the transfer engine.
func (m *Metrics) AddBytes(n int) {
	if m == nil {
		return
	}
	m.bytes.Add(float64(n))
}

// Serve exposes the metrics over HTTP at `addr` until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("Failed to shut down metrics server")
		}
	}()

	log.WithField("address", addr).Info("Serving metrics")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.WithContext(err, "serve metrics")
	}
	return nil
}
