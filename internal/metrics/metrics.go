package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Estimator Metrics
	EstimatorCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "estimator_calls_total",
			Help: "Total number of price estimator invocations",
		},
		[]string{"outcome"}, // "ok", "error"
	)

	EstimatorDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "estimator_duration_seconds",
			Help:    "Price estimator latency in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	PriceVariation = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "price_variation_percent",
			Help:    "Claimed price deviation from the predicted price in percent",
			Buckets: []float64{-50, -25, -10, -5, 0, 5, 10, 25, 50, 100},
		},
	)

	// Recommendation Metrics
	RecommendationsServed = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendations_per_request",
			Help:    "Number of listings returned per recommendation request",
			Buckets: []float64{0, 1, 2, 3},
		},
	)

	EmptyBHKBuckets = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_empty_bhk_buckets_total",
			Help: "Bedroom buckets skipped because the region had no matching listing",
		},
		[]string{"bhk"},
	)

	// Chat Metrics
	ChatRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_requests_total",
			Help: "Total number of chat completions requested from the LLM provider",
		},
		[]string{"outcome"}, // "ok", "error", "canceled", "circuit_open"
	)

	ChatDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chat_duration_seconds",
			Help:    "LLM chat completion latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Corpus Metrics
	CorpusListings = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "corpus_listings",
			Help: "Number of listings in the loaded property corpus",
		},
	)
)

// RecordAPIRequest records a finished HTTP request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordEstimation records one estimator invocation.
func RecordEstimation(duration time.Duration, err error) {
	EstimatorDuration.Observe(duration.Seconds())
	if err != nil {
		EstimatorCalls.WithLabelValues("error").Inc()
		return
	}
	EstimatorCalls.WithLabelValues("ok").Inc()
}

// RecordEmptyBucket records a skipped bedroom bucket.
func RecordEmptyBucket(bhk int) {
	EmptyBHKBuckets.WithLabelValues(strconv.Itoa(bhk)).Inc()
}

// RecordChat records one chat completion call.
func RecordChat(outcome string, duration time.Duration) {
	ChatRequests.WithLabelValues(outcome).Inc()
	ChatDuration.Observe(duration.Seconds())
}
