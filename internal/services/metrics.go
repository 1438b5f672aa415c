package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	exportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "uoden_exports_total",
		Help: "Export runs by outcome (sent, fetch_failed, serialize_failed, delivery_failed).",
	}, []string{"status"})

	exportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "uoden_export_duration_seconds",
		Help:    "Wall time of successful export runs.",
		Buckets: prometheus.DefBuckets,
	})
)
