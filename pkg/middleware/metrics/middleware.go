package metrics

import (
	"net/http"
	"strconv"
	"time"

	chimd "github.com/go-chi/chi/v5/middleware"
	"github.com/joeydtaylor/steeze-session/pkg/session"
)

// Collect records the HTTP counters and histograms. Mount it ahead of the
// session middleware; the session outcome arrives through a
// session.Observer, so redirected and failed requests are counted too.
func Collect() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSkipPath(r) {
				next.ServeHTTP(w, r)
				return
			}

			ww := chimd.NewWrapResponseWriter(w, r.ProtoMajor)
			ctx, obs := session.Observe(r.Context())
			start := time.Now()
			inFlight.Inc()

			defer func() {
				inFlight.Dec()
				authed := strconv.FormatBool(obs.State().Authenticated)
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				code := strconv.Itoa(status)
				// normalizePath runs after routing so it can see the matched pattern
				uri := normalizePath(r)

				totalHttpRequestsByAuth.WithLabelValues(authed).Inc()
				totalHttpRequestsToUri.WithLabelValues(code, uri, r.Method).Inc()
				totalHttpRequests.WithLabelValues(code, r.Method).Inc()
				responseTime.WithLabelValues(authed).Observe(time.Since(start).Seconds())
				responseSize.Observe(float64(ww.BytesWritten()))
			}()

			next.ServeHTTP(ww, r.WithContext(ctx))
		})
	}
}
