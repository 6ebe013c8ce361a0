package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	articlesStored *prometheus.CounterVec
	signalsTotal   *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	lastQuote      *prometheus.GaugeVec
	latency        *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		articlesStored: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockometry_articles_stored_total",
				Help: "Total number of articles stored per backend",
			},
			[]string{"backend", "source"},
		),
		signalsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockometry_signals_total",
				Help: "Total number of signals emitted by type",
			},
			[]string{"type"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockometry_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastQuote: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stockometry_last_quote",
				Help: "Last streamed price for a symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockometry_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordArticleStored records an article persisted through a backend.
func (r *Recorder) RecordArticleStored(backend, source string) {
	r.articlesStored.WithLabelValues(backend, source).Inc()
}

// RecordSignal records an emitted signal by type.
func (r *Recorder) RecordSignal(signalType string) {
	r.signalsTotal.WithLabelValues(signalType).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordLastQuote records the most recent price for a symbol.
func (r *Recorder) RecordLastQuote(symbol string, price float64) {
	r.lastQuote.WithLabelValues(symbol).Set(price)
}
