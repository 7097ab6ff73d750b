// Package metrics defines the Prometheus collectors for ingestion,
// retrieval and translation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Ingestion outcomes.
const (
	OutcomeIndexed  = "indexed"
	OutcomeReplaced = "replaced"
	OutcomeSkipped  = "skipped"
	OutcomeFailed   = "failed"
	OutcomeTimeout  = "timeout"
)

// Ingestion metrics
var (
	// DocumentsIngested counts ingestion calls by outcome.
	DocumentsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "athena_documents_ingested_total",
			Help: "Documents processed by the ingestion pipeline, by outcome.",
		},
		[]string{"outcome"},
	)

	// ChunksAdded counts chunks appended to the vector store.
	ChunksAdded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "athena_chunks_added_total",
			Help: "Chunks appended to the vector store.",
		},
	)

	// ImagesExtracted counts images stored from document pages.
	ImagesExtracted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "athena_images_extracted_total",
			Help: "Images extracted from document pages.",
		},
	)

	// PageFailures counts page image tasks that failed.
	PageFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "athena_page_failures_total",
			Help: "Page image extraction tasks that failed.",
		},
	)

	// IngestDuration observes end-to-end ingestion latency.
	IngestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "athena_ingest_duration_seconds",
			Help:    "Ingestion latency distribution.",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)
)

// Retrieval metrics
var (
	// SearchDuration observes vector search latency.
	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "athena_search_duration_seconds",
			Help:    "Vector search latency distribution.",
			Buckets: prometheus.DefBuckets,
		},
	)

	// ContextChars observes the size of composed contexts.
	ContextChars = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "athena_context_chars",
			Help:    "Characters in composed context windows.",
			Buckets: []float64{0, 250, 500, 1000, 2000, 3500, 5000, 10000},
		},
	)
)

// Translation metrics
var (
	// TranslationCacheHits counts translations served from the cache.
	TranslationCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "athena_translation_cache_hits_total",
			Help: "Translations served from the cache.",
		},
	)

	// TranslationCacheMisses counts translations sent to the backend.
	TranslationCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "athena_translation_cache_misses_total",
			Help: "Translations requested from the backend.",
		},
	)

	// TranslationFailures counts backend failures that fell back to the original text.
	TranslationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "athena_translation_failures_total",
			Help: "Translation backend failures.",
		},
	)
)

// ObserveSince records the seconds elapsed since start on h.
func ObserveSince(h prometheus.Observer, start time.Time) {
	h.Observe(time.Since(start).Seconds())
}

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
