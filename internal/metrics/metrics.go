package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortlist_recommendation_requests_total",
			Help: "Recommendation requests by outcome",
		},
		[]string{"outcome"},
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shortlist_recommendation_duration_seconds",
			Help:    "End-to-end recommendation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	CandidatesScored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shortlist_candidates_scored_total",
			Help: "Vehicles run through the scoring orchestrator",
		},
	)

	AgentFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortlist_agent_failures_total",
			Help: "Scoring agent errors that fell back to a neutral score",
		},
		[]string{"agent"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortlist_cache_lookups_total",
			Help: "Score cache lookups by layer and result",
		},
		[]string{"layer", "result"},
	)

	FuelPriceResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortlist_fuel_price_resolutions_total",
			Help: "Fuel price resolutions by winning source",
		},
		[]string{"source"},
	)

	InferenceCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortlist_inference_calls_total",
			Help: "Semantic inference calls by outcome",
		},
		[]string{"outcome"},
	)

	InferenceDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shortlist_inference_duration_seconds",
			Help:    "Semantic inference call latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8},
		},
	)
)
