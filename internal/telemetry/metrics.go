package telemetry

import (
	"time"

	"github.com/af-corp/llm-cost-calculator/internal/catalog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the pricing server and the sync job.
type Metrics struct {
	RequestTotal      *prometheus.CounterVec
	RequestDurationMs *prometheus.HistogramVec
	CatalogServed     *prometheus.CounterVec
	CatalogReloads    *prometheus.CounterVec
	EstimatesTotal    *prometheus.CounterVec
	RateLimitHits     *prometheus.CounterVec

	SyncSKUTotal       *prometheus.CounterVec
	SyncRecordsEmitted prometheus.Gauge
	SyncPartialDropped prometheus.Gauge
	SyncDuration       prometheus.Gauge
	SyncLastSuccess    prometheus.Gauge
}

// NewMetrics creates the metrics and registers them with reg. The server
// passes the default registerer; the sync job passes a fresh registry
// that it pushes to a Pushgateway.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "llmcost_request_total",
			Help: "Total number of HTTP requests served.",
		}, []string{"route", "status"}),

		RequestDurationMs: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "llmcost_request_duration_ms",
			Help:    "HTTP request duration in milliseconds.",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 1000},
		}, []string{"route"}),

		CatalogServed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "llmcost_catalog_served_total",
			Help: "Catalog responses by source (file or fallback).",
		}, []string{"source"}),

		CatalogReloads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "llmcost_catalog_reload_total",
			Help: "Catalog file reloads by result.",
		}, []string{"result"}),

		EstimatesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "llmcost_estimate_total",
			Help: "Cost estimates computed, by kind.",
		}, []string{"kind"}),

		RateLimitHits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "llmcost_rate_limit_hits_total",
			Help: "Requests rejected by the per-client rate limit, by route.",
		}, []string{"route"}),

		SyncSKUTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "llmcost_sync_sku_total",
			Help: "Feed SKUs seen by the normalizer, by outcome.",
		}, []string{"outcome"}),

		SyncRecordsEmitted: f.NewGauge(prometheus.GaugeOpts{
			Name: "llmcost_sync_records_emitted",
			Help: "Records in the last published catalog.",
		}),

		SyncPartialDropped: f.NewGauge(prometheus.GaugeOpts{
			Name: "llmcost_sync_partial_dropped",
			Help: "Model/region pairs dropped in the last run for missing an input or output price.",
		}),

		SyncDuration: f.NewGauge(prometheus.GaugeOpts{
			Name: "llmcost_sync_duration_seconds",
			Help: "Duration of the last sync run.",
		}),

		SyncLastSuccess: f.NewGauge(prometheus.GaugeOpts{
			Name: "llmcost_sync_last_success_timestamp_seconds",
			Help: "Unix time of the last successful sync.",
		}),
	}
}

// RecordRequest records metrics for a completed HTTP request.
func (m *Metrics) RecordRequest(route, status string, duration time.Duration) {
	m.RequestTotal.WithLabelValues(route, status).Inc()
	m.RequestDurationMs.WithLabelValues(route).Observe(float64(duration.Microseconds()) / 1000)
}

func (m *Metrics) RecordCatalogServed(source string) {
	m.CatalogServed.WithLabelValues(source).Inc()
}

func (m *Metrics) RecordCatalogReload(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.CatalogReloads.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordEstimate(kind string) {
	m.EstimatesTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordRateLimitHit(route string) {
	m.RateLimitHits.WithLabelValues(route).Inc()
}

// RecordSync records the outcome of one normalization run.
func (m *Metrics) RecordSync(stats catalog.Stats, duration time.Duration) {
	accepted := stats.Scanned
	for reason, n := range stats.Rejected {
		m.SyncSKUTotal.WithLabelValues(reason).Add(float64(n))
		accepted -= n
	}
	if accepted > 0 {
		m.SyncSKUTotal.WithLabelValues("accepted").Add(float64(accepted))
	}
	m.SyncRecordsEmitted.Set(float64(stats.Emitted))
	m.SyncPartialDropped.Set(float64(stats.DroppedPartial))
	m.SyncDuration.Set(duration.Seconds())
}

func (m *Metrics) RecordSyncSuccess(at time.Time) {
	m.SyncLastSuccess.Set(float64(at.Unix()))
}
