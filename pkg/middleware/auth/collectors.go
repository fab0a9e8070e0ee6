package auth

import "github.com/prometheus/client_golang/prometheus"

var (
	verifyTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "session_verify_total", Help: "token verifications by result"},
		[]string{"result"},
	)

	refreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "session_refresh_total", Help: "token refreshes by result"},
		[]string{"result"},
	)

	profileTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "session_profile_lookups_total", Help: "profile lookups by source"},
		[]string{"source"},
	)

	outcomeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "session_outcomes_total", Help: "session middleware outcomes"},
		[]string{"outcome"},
	)

	cacheEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "session_cache_entries", Help: "tokens held by the credential cache"},
	)
)

func init() {
	prometheus.MustRegister(
		verifyTotal,
		refreshTotal,
		profileTotal,
		outcomeTotal,
		cacheEntries,
	)
}
