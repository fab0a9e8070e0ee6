package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewPromHttpHandler serves the default registry, including the session and
// proxy collectors registered by their packages, with scrape errors counted
// rather than failing the whole response.
func NewPromHttpHandler() http.Handler {
	return promhttp.InstrumentMetricHandler(
		prometheus.DefaultRegisterer,
		promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
			ErrorHandling:     promhttp.ContinueOnError,
			EnableOpenMetrics: true,
		}),
	)
}

// ProvideMetrics is the Fx provider for the handler tagged name:"metrics".
func ProvideMetrics() http.Handler { return NewPromHttpHandler() }
