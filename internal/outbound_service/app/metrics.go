package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sendsProcessedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "outbound",
			Name:      "sends_processed_total",
			Help:      "Total number of outbound send attempts.",
		},
		[]string{"channel", "status"}, // status: "success", "error_validation", "error_provider", "error_db_save"
	)

	providerRequestDurationHist = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "outbound",
			Name:      "provider_request_duration_seconds",
			Help:      "Duration of HTTP requests to the messaging provider.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"channel"},
	)
)
