// Package prometheus exposes the pipeline's operational metrics.
package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/curately/ResearchTools-Intelligence/internal/application/toolmining"
	"github.com/curately/ResearchTools-Intelligence/internal/domain/mention"
)

const namespace = "toolminer"

// PipelineMetrics implements toolmining.Metrics over prometheus collectors.
type PipelineMetrics struct {
	registry *prometheus.Registry

	miningDuration    prometheus.Histogram
	mentionsExtracted *prometheus.CounterVec
	dispositions      *prometheus.CounterVec
	cacheLookups      *prometheus.CounterVec
}

// NewPipelineMetrics builds and registers the collectors on a fresh registry.
func NewPipelineMetrics() *PipelineMetrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	m := &PipelineMetrics{
		registry: registry,
		miningDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "mining_duration_seconds",
			Help:      "Wall time to mine one publication.",
			Buckets:   prometheus.DefBuckets,
		}),
		mentionsExtracted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mentions_extracted_total",
			Help:      "Candidate mentions produced per section.",
		}, []string{"section"}),
		dispositions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "Classifier verdicts per category and disposition.",
		}, []string{"category", "disposition"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "result_cache_lookups_total",
			Help:      "Publication result cache lookups by outcome.",
		}, []string{"outcome"}),
	}
	registry.MustRegister(m.miningDuration, m.mentionsExtracted, m.dispositions, m.cacheLookups)
	return m
}

// ObserveMining implements toolmining.Metrics.
func (m *PipelineMetrics) ObserveMining(d time.Duration) {
	m.miningDuration.Observe(d.Seconds())
}

// MentionsExtracted implements toolmining.Metrics.
func (m *PipelineMetrics) MentionsExtracted(section mention.Section, count int) {
	m.mentionsExtracted.WithLabelValues(string(section)).Add(float64(count))
}

// DispositionCounted implements toolmining.Metrics.
func (m *PipelineMetrics) DispositionCounted(category mention.ToolCategory, disposition mention.Disposition) {
	m.dispositions.WithLabelValues(string(category), string(disposition)).Inc()
}

// CacheLookup implements toolmining.Metrics.
func (m *PipelineMetrics) CacheLookup(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.cacheLookups.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the prometheus exposition format.
func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

var _ toolmining.Metrics = (*PipelineMetrics)(nil)
