package proxy

import "github.com/prometheus/client_golang/prometheus"

var (
	upstreamResponses = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "proxy_upstream_responses_total", Help: "backend responses relayed, by status code"},
		[]string{"code"},
	)

	upstreamErrors = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "proxy_upstream_errors_total", Help: "backend calls that failed before a response"},
	)

	redirectsFollowed = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "proxy_redirects_followed_total", Help: "backend redirects replayed by the gateway"},
	)
)

func init() {
	prometheus.MustRegister(upstreamResponses, upstreamErrors, redirectsFollowed)
}
