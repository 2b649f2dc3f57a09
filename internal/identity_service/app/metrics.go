package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	senderResolutionsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "identity",
			Name:      "sender_resolutions_total",
			Help:      "Total number of inbound sender resolutions.",
		},
		[]string{"strategy", "outcome"}, // outcome: "matched", "unmatched", "error"
	)

	backfillRunDurationHist = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "identity",
			Name:      "backfill_run_duration_seconds",
			Help:      "Duration of member backfill runs.",
			Buckets:   prometheus.DefBuckets,
		},
	)
)
