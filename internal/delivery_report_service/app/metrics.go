package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reportEventsProcessedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "delivery_report",
			Name:      "events_processed_total",
			Help:      "Total number of delivery report events processed.",
		},
		[]string{"channel", "outcome"}, // outcome: "status", "seen", "miss", "ignored", "error"
	)

	reportBatchDurationHist = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "delivery_report",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of delivery report batch processing.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"channel"},
	)
)
