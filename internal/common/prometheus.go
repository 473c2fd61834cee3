package common

import "github.com/prometheus/client_golang/prometheus"

const (
	HTTPRequestTotal           = "http_requests_total"
	HTTPRequestDurationSeconds = "http_request_duration_seconds"
	PrizeClaimTotal            = "prize_claims_total"
	PrizeClaimConflictTotal    = "prize_claim_conflicts_total"
	PrizeClaimFailureTotal     = "prize_claim_failures_total"
	SubscriberGauge            = "prize_subscribers"
)

var (
	PromGauges = map[string]*prometheus.GaugeVec{
		SubscriberGauge: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: SubscriberGauge,
			Help: "Number of connected live subscribers",
		}, []string{}),
	}

	PromCounters = map[string]*prometheus.CounterVec{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: HTTPRequestTotal,
			Help: "Count of all HTTP requests",
		}, []string{"method", "status_code"}),
		PrizeClaimTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: PrizeClaimTotal,
			Help: "Count of committed claims by outcome kind",
		}, []string{"kind"}),
		PrizeClaimConflictTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: PrizeClaimConflictTotal,
			Help: "Count of claim attempts rejected by a version conflict",
		}, []string{}),
		PrizeClaimFailureTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: PrizeClaimFailureTotal,
			Help: "Count of claims that failed without committing",
		}, []string{"reason"}),
	}

	PromHistograms = map[string]*prometheus.HistogramVec{
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: HTTPRequestDurationSeconds,
			Help: "Duration of all HTTP requests",
		}, []string{"method", "status_code"}),
	}
)
