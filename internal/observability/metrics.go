package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// replay engine.
type Metrics struct {
	BatchesEmitted  prometheus.Counter
	RecordsEmitted  prometheus.Counter
	StoreErrors     prometheus.Counter
	PublishErrors   prometheus.Counter
	DroppedBatches  prometheus.Counter
	SessionsStarted prometheus.Counter
	SessionRunning  prometheus.Gauge
	SessionPaused   prometheus.Gauge

	// Replay timing metrics.
	BatchSize     prometheus.Histogram
	QueryDuration prometheus.Histogram
}

// NewMetrics creates and registers all replay metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		BatchesEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fire_replay",
			Name:      "batches_emitted_total",
			Help:      "Total batches pushed onto the replay channel.",
		}),
		RecordsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fire_replay",
			Name:      "records_emitted_total",
			Help:      "Total fire detections pushed onto the replay channel.",
		}),
		StoreErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fire_replay",
			Name:      "store_errors_total",
			Help:      "Total store query failures treated as empty ticks.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fire_replay",
			Name:      "publish_errors_total",
			Help:      "Total failed publishes to the subscriber transport.",
		}),
		DroppedBatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fire_replay",
			Name:      "dropped_batches_total",
			Help:      "Total batches discarded by a drop overflow policy.",
		}),
		SessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fire_replay",
			Name:      "sessions_started_total",
			Help:      "Total playback sessions started.",
		}),
		SessionRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fire_replay",
			Name:      "session_running",
			Help:      "1 while a playback session is active, 0 when idle.",
		}),
		SessionPaused: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fire_replay",
			Name:      "session_paused",
			Help:      "1 while the active session is paused.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fire_replay",
			Name:      "batch_size",
			Help:      "Number of detections per replay batch.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}),
		QueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fire_replay",
			Name:      "query_duration_seconds",
			Help:      "Duration of interval queries against the event store.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}),
	}

	prometheus.MustRegister(
		m.BatchesEmitted,
		m.RecordsEmitted,
		m.StoreErrors,
		m.PublishErrors,
		m.DroppedBatches,
		m.SessionsStarted,
		m.SessionRunning,
		m.SessionPaused,
		m.BatchSize,
		m.QueryDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with unregistered collectors to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		BatchesEmitted:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "fire_replay", Name: "batches_emitted_total"}),
		RecordsEmitted:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "fire_replay", Name: "records_emitted_total"}),
		StoreErrors:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "fire_replay", Name: "store_errors_total"}),
		PublishErrors:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "fire_replay", Name: "publish_errors_total"}),
		DroppedBatches:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "fire_replay", Name: "dropped_batches_total"}),
		SessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "fire_replay", Name: "sessions_started_total"}),
		SessionRunning:  prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "fire_replay", Name: "session_running"}),
		SessionPaused:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "fire_replay", Name: "session_paused"}),
		BatchSize:       prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "fire_replay", Name: "batch_size"}),
		QueryDuration:   prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "fire_replay", Name: "query_duration_seconds"}),
	}
}
