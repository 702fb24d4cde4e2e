package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "quake_overlay"

// Metrics holds the Prometheus counters, histograms, and gauges for the overlay service.
type Metrics struct {
	RefreshRunning     prometheus.Gauge
	RefreshErrors      *prometheus.CounterVec // labels: overlay={earthquakes,tectonics}
	OverlayFeatures    *prometheus.GaugeVec   // labels: overlay
	OverlayLastSuccess *prometheus.GaugeVec   // labels: overlay; unix seconds
	FeaturesStyled     prometheus.Counter
	EventsPublished    prometheus.Counter

	// Upstream feed metrics.
	FeedRequests *prometheus.CounterVec   // labels: feed, outcome={success,error}
	FeedDuration *prometheus.HistogramVec // labels: feed

	// Tile proxy metrics.
	TileRequests     *prometheus.CounterVec // labels: layer, outcome={success,error}
	TileCache        *prometheus.CounterVec // labels: result={hit,miss}
	TileAPIDuration  prometheus.Histogram
	TileProxyEnabled prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.RefreshRunning,
		m.RefreshErrors,
		m.OverlayFeatures,
		m.OverlayLastSuccess,
		m.FeaturesStyled,
		m.EventsPublished,
		m.FeedRequests,
		m.FeedDuration,
		m.TileRequests,
		m.TileCache,
		m.TileAPIDuration,
		m.TileProxyEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RefreshRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "refresh_running",
			Help:      "1 while the overlay refresh loops are active, 0 when shut down.",
		}),
		RefreshErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_errors_total",
			Help:      "Failed overlay refresh cycles by overlay.",
		}, []string{"overlay"}),
		OverlayFeatures: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "overlay_features",
			Help:      "Number of features in the currently served overlay.",
		}, []string{"overlay"}),
		OverlayLastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "overlay_last_success_timestamp_seconds",
			Help:      "Unix time of the last successful overlay refresh.",
		}, []string{"overlay"}),
		FeaturesStyled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "features_styled_total",
			Help:      "Total earthquake features passed through the styler.",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Total styled earthquakes written to the Kafka topic.",
		}),
		FeedRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_requests_total",
			Help:      "Upstream feed requests by feed and outcome.",
		}, []string{"feed", "outcome"}),
		FeedDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feed_request_duration_seconds",
			Help:      "Upstream feed request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"feed"}),
		TileRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tile_requests_total",
			Help:      "Proxied tile requests by base layer and outcome.",
		}, []string{"layer", "outcome"}),
		TileCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tile_cache_total",
			Help:      "Tile cache lookups by result.",
		}, []string{"result"}),
		TileAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tile_api_duration_seconds",
			Help:      "Mapbox tile request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		TileProxyEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tile_proxy_enabled",
			Help:      "1 when the Mapbox tile proxy is enabled, 0 otherwise.",
		}),
	}
}
