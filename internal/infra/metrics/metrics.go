// File: internal/infra/metrics/metrics.go
package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	searchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_searches_total",
			Help: "Catalog searches by outcome (ok/empty/error).",
		},
		[]string{"outcome"},
	)

	downloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "downloads_total",
			Help: "Download jobs by quality and status (done/failed).",
		},
		[]string{"quality", "status"},
	)

	stageSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipeline_stage_seconds",
			Help:    "Per-stage pipeline latency distribution in seconds.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"stage"},
	)

	deliveredBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "delivered_bytes_total",
			Help: "Sum of audio bytes uploaded to chats.",
		},
	)

	tagFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tag_fallbacks_total",
			Help: "Deliveries that fell back to the untagged file.",
		},
	)
)

// MustRegister registers collectors with the default registry (idempotent).
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(
			searchesTotal, downloadsTotal, stageSeconds,
			deliveredBytes, tagFallbacks,
		)
	})
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func IncSearch(outcome string) {
	searchesTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncDownload(quality, status string) {
	downloadsTotal.WithLabelValues(norm(quality), norm(status)).Inc()
}

func ObserveStage(stage string, seconds float64) {
	stageSeconds.WithLabelValues(norm(stage)).Observe(seconds)
}

func AddDeliveredBytes(n int64) {
	deliveredBytes.Add(float64(n))
}

func IncTagFallback() {
	tagFallbacks.Inc()
}
