package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const ServiceName = "liveops-backend"

var (
	// CalcDuration observes one precompute pass for one experiment.
	CalcDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "liveops",
		Subsystem: "calcwkr",
		Name:      "calc_duration_seconds",
		Help:      "Duration of one experiment series precompute pass.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"experiment"})

	// CalcFailures counts failed precompute passes.
	CalcFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "liveops",
		Subsystem: "calcwkr",
		Name:      "calc_failures_total",
		Help:      "Total failed experiment series precompute passes.",
	}, []string{"experiment"})

	// EventsIngested counts normalized event records by outcome.
	EventsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "liveops",
		Subsystem: "eventwkr",
		Name:      "events_total",
		Help:      "Total ingested event records by outcome.",
	}, []string{"outcome"})

	// EventFlushDuration observes one batch insert into the event store.
	EventFlushDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "liveops",
		Subsystem: "eventwkr",
		Name:      "flush_duration_seconds",
		Help:      "Duration of one event batch insert.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
	})
)
