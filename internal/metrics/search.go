package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every cardex metric.
const Namespace = "cardex"

// Search and cache Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "search_requests_total",
			Help:      "Total number of index searches",
		},
		[]string{"resource", "status"}, // "ok" / "timeout" / "error"
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "search_duration_seconds",
			Help:      "Index search duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"resource"},
	)

	PayloadCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "payload_cache_total",
			Help:      "Stored payload parse cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	PageCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "page_cache_total",
			Help:      "Shared page cache hits, misses and errors",
		},
		[]string{"result"}, // "hit" / "miss" / "error"
	)

	IndexedDocuments = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "indexed_documents",
			Help:      "Documents in each served index",
		},
		[]string{"resource"},
	)
)

var registerSearch sync.Once

// RegisterSearchMetrics registers search and cache metrics. Must be called once from main.
func RegisterSearchMetrics() {
	registerSearch.Do(func() {
		prometheus.MustRegister(SearchRequestsTotal)
		prometheus.MustRegister(SearchDuration)
		prometheus.MustRegister(PayloadCacheTotal)
		prometheus.MustRegister(PageCacheTotal)
		prometheus.MustRegister(IndexedDocuments)
	})
}
