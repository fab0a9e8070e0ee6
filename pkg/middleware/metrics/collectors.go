package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// responseTime is split by session outcome: verify/refresh round-trips
	// make authenticated requests slower than public ones.
	responseTime = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "response_time",
			Help:    "http response time by session outcome.",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
		[]string{"authenticated"},
	)

	responseSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "response_size_bytes",
			Help:    "http response body size.",
			Buckets: prometheus.ExponentialBuckets(256, 4, 8),
		},
	)

	inFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "http_requests_in_flight", Help: "requests currently being served"},
	)

	totalHttpRequestsByAuth = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "total_http_requests_by_auth", Help: "http requests by session outcome"},
		[]string{"authenticated"},
	)

	totalHttpRequestsToUri = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "total_http_requests_to_uri", Help: "http requests by code, route pattern and method"},
		[]string{"code", "uri", "method"},
	)

	totalHttpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "total_http_requests", Help: "http requests by code, and method"},
		[]string{"code", "method"},
	)
)

func init() {
	prometheus.MustRegister(
		responseTime,
		responseSize,
		inFlight,
		totalHttpRequestsByAuth,
		totalHttpRequestsToUri,
		totalHttpRequests,
	)
}
