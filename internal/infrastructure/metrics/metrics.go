// Package metrics contains Prometheus metrics of the bot
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics of the bot.
// Every method is safe to call on a nil *Metrics.
type Metrics struct {
	// Update routing metrics
	UpdatesTotal     *prometheus.CounterVec
	GateDenials      *prometheus.CounterVec
	HandlerFailures  *prometheus.CounterVec
	HandlerDurations *prometheus.HistogramVec

	// Media job metrics
	MediaJobsTotal   *prometheus.CounterVec
	MediaJobDuration *prometheus.HistogramVec
	PoolInFlight     prometheus.Gauge
	PoolRejections   prometheus.Counter

	// Broadcast metrics
	BroadcastDeliveries *prometheus.CounterVec
}

var (
	// DefaultMetrics is the default metrics instance
	DefaultMetrics *Metrics
	once           sync.Once
)

// GetDefaultMetrics returns the singleton metrics instance
func GetDefaultMetrics() *Metrics {
	once.Do(func() {
		DefaultMetrics = NewMetrics()
	})
	return DefaultMetrics
}

// NewMetrics creates and registers all metrics on the default registry.
// Use GetDefaultMetrics; a second call panics on duplicate registration.
func NewMetrics() *Metrics {
	return &Metrics{
		UpdatesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bot_media_updates_total",
				Help: "Total number of updates received by kind",
			},
			[]string{"kind"},
		),
		GateDenials: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bot_media_gate_denials_total",
				Help: "Total number of updates stopped by the subscription gate",
			},
			[]string{"kind"},
		),
		HandlerFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bot_media_handler_failures_total",
				Help: "Total number of handler errors and panics",
			},
			[]string{"route", "reason"},
		),
		HandlerDurations: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bot_media_handler_duration_seconds",
				Help:    "Handler execution time",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 180, 300},
			},
			[]string{"route"},
		),
		MediaJobsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bot_media_jobs_total",
				Help: "Total number of media jobs by operation and result",
			},
			[]string{"op", "result"},
		),
		MediaJobDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bot_media_job_duration_seconds",
				Help:    "Media job execution time",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"op"},
		),
		PoolInFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "bot_media_pool_in_flight",
			Help: "Media jobs currently running",
		}),
		PoolRejections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bot_media_pool_rejections_total",
			Help: "Media jobs rejected because the pool stayed full",
		}),
		BroadcastDeliveries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bot_media_broadcast_deliveries_total",
				Help: "Broadcast deliveries by result",
			},
			[]string{"result"},
		),
	}
}

// RecordUpdate counts an incoming update
func (m *Metrics) RecordUpdate(kind string) {
	if m == nil {
		return
	}
	m.UpdatesTotal.WithLabelValues(kind).Inc()
}

// RecordGateDenial counts an update stopped by a gate
func (m *Metrics) RecordGateDenial(kind string) {
	if m == nil {
		return
	}
	m.GateDenials.WithLabelValues(kind).Inc()
}

// RecordHandler records a handler run; reason is "" on success, else "error" or "panic"
func (m *Metrics) RecordHandler(route, reason string, d time.Duration) {
	if m == nil {
		return
	}
	m.HandlerDurations.WithLabelValues(route).Observe(d.Seconds())
	if reason != "" {
		m.HandlerFailures.WithLabelValues(route, reason).Inc()
	}
}

// RecordMediaJob records a finished media job
func (m *Metrics) RecordMediaJob(op, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.MediaJobsTotal.WithLabelValues(op, result).Inc()
	m.MediaJobDuration.WithLabelValues(op).Observe(d.Seconds())
}

// PoolAcquired tracks a job entering the pool
func (m *Metrics) PoolAcquired() {
	if m == nil {
		return
	}
	m.PoolInFlight.Inc()
}

// PoolReleased tracks a job leaving the pool
func (m *Metrics) PoolReleased() {
	if m == nil {
		return
	}
	m.PoolInFlight.Dec()
}

// PoolRejected counts a job refused for lack of capacity
func (m *Metrics) PoolRejected() {
	if m == nil {
		return
	}
	m.PoolRejections.Inc()
}

// RecordBroadcast adds a broadcast outcome
func (m *Metrics) RecordBroadcast(delivered, failed int) {
	if m == nil {
		return
	}
	m.BroadcastDeliveries.WithLabelValues("delivered").Add(float64(delivered))
	m.BroadcastDeliveries.WithLabelValues("failed").Add(float64(failed))
}
