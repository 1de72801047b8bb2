package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "weather_outlook"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Outbound weather provider metrics.
	ProviderRequests *prometheus.CounterVec   // labels: provider={open_meteo,nasa_power}, outcome={success,error}
	ProviderDuration *prometheus.HistogramVec // labels: provider

	// Query engine metrics.
	QueryResults       *prometheus.CounterVec // labels: branch={historical,climatology}, outcome={ok,no_data}
	ClimatologySamples prometheus.Histogram
	RangeSeriesDays    prometheus.Histogram

	// Marker and export metrics.
	MarkerSyncs      prometheus.Counter
	ExportsGenerated *prometheus.CounterVec // labels: format={json,csv}
	ExportsPublished *prometheus.CounterVec // labels: outcome={success,error}

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec   // labels: provider={nominatim,mapbox}, outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec   // labels: result={hit,miss}
	GeocodeAPIDuration *prometheus.HistogramVec // labels: provider
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ProviderRequests,
		m.ProviderDuration,
		m.QueryResults,
		m.ClimatologySamples,
		m.RangeSeriesDays,
		m.MarkerSyncs,
		m.ExportsGenerated,
		m.ExportsPublished,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Weather provider requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Weather provider request duration in seconds, including retries.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}, []string{"provider"}),
		QueryResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_results_total",
			Help:      "Resolved point queries by branch and outcome.",
		}, []string{"branch", "outcome"}),
		ClimatologySamples: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "climatology_samples",
			Help:      "Number of yearly samples behind each climatology summary.",
			Buckets:   []float64{0, 1, 2, 3, 5, 7, 10, 15, 20, 30},
		}),
		RangeSeriesDays: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "range_series_days",
			Help:      "Number of days returned per range series.",
			Buckets:   []float64{0, 1, 7, 14, 31, 92, 183, 366, 731},
		}),
		MarkerSyncs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "marker_syncs_total",
			Help:      "Marker/settings reconciliations written to the settings store.",
		}),
		ExportsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_generated_total",
			Help:      "Export documents generated by format.",
		}, []string{"format"}),
		ExportsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_published_total",
			Help:      "Export documents published to Kafka by outcome.",
		}, []string{"outcome"}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Reverse geocoding requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Reverse geocoding API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"provider"}),
	}
}
