// Package metrics defines the prometheus instruments for the extraction worker.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	DocumentsProcessed *prometheus.CounterVec
	ExtractionTime     prometheus.Histogram
	StorageErrors      *prometheus.CounterVec
	ResultsPublished   prometheus.Counter
}

// NewMetrics creates new prometheus metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		DocumentsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_processed_total",
			Help:      "The total number of processed documents by kind and confidence",
		}, []string{"kind", "confidence"}),
		ExtractionTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_time_seconds",
			Help:      "Time taken to extract a trip record from a document",
			Buckets:   prometheus.DefBuckets,
		}),
		StorageErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_errors_total",
			Help:      "The total number of storage write failures",
		}, []string{"store"}),
		ResultsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_published_total",
			Help:      "The total number of extraction results published to NATS",
		}),
	}
}
