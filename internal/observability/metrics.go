package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "aqi_hexmap"

// Metrics holds the Prometheus counters, histograms, and gauges for the layer service.
type Metrics struct {
	// Dataset loading metrics.
	DatasetLoads prometheus.Counter
	RowsLoaded   prometheus.Gauge
	LoadErrors   prometheus.Counter
	ServiceReady prometheus.Gauge

	// Layer building metrics.
	LayerCache         *prometheus.CounterVec // labels: result={hit,miss}
	LayerBuildDuration prometheus.Histogram
	CellsRendered      prometheus.Histogram
	CellsDropped       prometheus.Counter

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge

	// Kafka export metrics.
	ExportMessages prometheus.Counter
	ExportErrors   prometheus.Counter
	ExportEnabled  prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.DatasetLoads,
		m.RowsLoaded,
		m.LoadErrors,
		m.ServiceReady,
		m.LayerCache,
		m.LayerBuildDuration,
		m.CellsRendered,
		m.CellsDropped,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
		m.ExportMessages,
		m.ExportErrors,
		m.ExportEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		DatasetLoads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_loads_total",
			Help:      "Total reads of the backing CSV file.",
		}),
		RowsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_rows",
			Help:      "Number of rows in the most recently loaded dataset.",
		}),
		LoadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_load_errors_total",
			Help:      "Total failures reading or parsing the dataset.",
		}),
		ServiceReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "service_ready",
			Help:      "1 once the dataset has loaded successfully, 0 otherwise.",
		}),
		LayerCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layer_cache_total",
			Help:      "Per-year hex cell cache lookups by result.",
		}, []string{"result"}),
		LayerBuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layer_build_duration_seconds",
			Help:      "Duration of colouring, flattening, and centring one layer.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}),
		CellsRendered: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layer_cells",
			Help:      "Number of cells per rendered layer.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		CellsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cells_dropped_total",
			Help:      "Cells omitted from layers for lacking geometry.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Reverse geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Reverse geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geocode_enabled",
			Help:      "1 when viewport labelling is enabled, 0 otherwise.",
		}),
		ExportMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_messages_total",
			Help:      "Total hex cell messages written to Kafka.",
		}),
		ExportErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_errors_total",
			Help:      "Total failed Kafka export batches.",
		}),
		ExportEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "export_enabled",
			Help:      "1 when Kafka export is enabled, 0 otherwise.",
		}),
	}
}
