package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// alert pipeline and the streaming fan-out.
type Metrics struct {
	TicksTotal         prometheus.Counter
	LocationsProcessed prometheus.Counter
	LocationsSkipped   *prometheus.CounterVec // labels: reason={fetch,validation,persist,source}
	ReadingsIngested   prometheus.Counter
	AlertsEmitted      prometheus.Counter
	PublishErrors      prometheus.Counter
	SchedulerRunning   prometheus.Gauge

	TickDuration  prometheus.Histogram
	FetchDuration prometheus.Histogram

	// Streaming fan-out metrics.
	SessionsConnected prometheus.Gauge
	SessionWrites     prometheus.Counter
	SessionEvictions  prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.TicksTotal,
		m.LocationsProcessed,
		m.LocationsSkipped,
		m.ReadingsIngested,
		m.AlertsEmitted,
		m.PublishErrors,
		m.SchedulerRunning,
		m.TickDuration,
		m.FetchDuration,
		m.SessionsConnected,
		m.SessionWrites,
		m.SessionEvictions,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_alerts",
			Name:      "ticks_total",
			Help:      "Total scheduler ticks started.",
		}),
		LocationsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_alerts",
			Name:      "locations_processed_total",
			Help:      "Locations fully processed (persisted and published).",
		}),
		LocationsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_alerts",
			Name:      "locations_skipped_total",
			Help:      "Locations skipped within a tick, by reason.",
		}, []string{"reason"}),
		ReadingsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_alerts",
			Name:      "readings_ingested_total",
			Help:      "Valid readings merged into a window.",
		}),
		AlertsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_alerts",
			Name:      "alerts_emitted_total",
			Help:      "Location updates carrying at least one alert message.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_alerts",
			Name:      "publish_errors_total",
			Help:      "Best-effort bus publishes that failed.",
		}),
		SchedulerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_alerts",
			Name:      "scheduler_running",
			Help:      "1 when the scheduler loop is active, 0 when shut down.",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weather_alerts",
			Name:      "tick_duration_seconds",
			Help:      "Duration of a complete tick across all locations.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weather_alerts",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of one upstream weather fetch.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		SessionsConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_alerts",
			Name:      "sessions_connected",
			Help:      "Currently open streaming sessions.",
		}),
		SessionWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_alerts",
			Name:      "session_writes_total",
			Help:      "Payloads delivered to streaming sessions.",
		}),
		SessionEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_alerts",
			Name:      "session_evictions_total",
			Help:      "Sessions removed after a failed write.",
		}),
	}
}
