package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	inboundEventsProcessedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inbound_processor",
			Name:      "events_processed_total",
			Help:      "Total number of inbound message events processed.",
		},
		[]string{"channel", "status"}, // status: "success", "error_db_save", "error_resolve"
	)

	inboundBatchDurationHist = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "inbound_processor",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of inbound message batch processing.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"channel"},
	)
)
