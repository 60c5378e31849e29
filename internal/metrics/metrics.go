package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dailyink_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dailyink_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dailyink_http_requests_in_flight",
			Help: "HTTP requests currently being served.",
		},
	)

	TokenDebitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dailyink_token_debits_total",
			Help: "Writing-token debit attempts by mode and outcome.",
		},
		[]string{"mode", "outcome"},
	)

	TokenResetsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dailyink_token_resets_total",
			Help: "Token pool resets by kind.",
		},
		[]string{"kind"},
	)

	GoldenKeysAwardedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dailyink_golden_keys_awarded_total",
			Help: "Total number of golden keys awarded.",
		},
	)

	ProfileUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dailyink_profile_updates_total",
			Help: "Profile history/stat recomputations by mode.",
		},
		[]string{"mode"},
	)

	TopicCacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dailyink_topic_cache_lookups_total",
			Help: "Topic cache lookups by result (hit, miss, error).",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		HTTPRequestsInFlight,
		TokenDebitsTotal,
		TokenResetsTotal,
		GoldenKeysAwardedTotal,
		ProfileUpdatesTotal,
		TopicCacheLookupsTotal,
	)
}
