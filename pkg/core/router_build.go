package core

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimd "github.com/go-chi/chi/v5/middleware"
	manifest "github.com/joeydtaylor/steeze-session/pkg/manifest"
	hmetrics "github.com/joeydtaylor/steeze-session/pkg/middleware/metrics"
	"github.com/joeydtaylor/steeze-session/pkg/middleware/ratelimit"
	"github.com/joeydtaylor/steeze-session/pkg/middleware/requestid"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

const metricsPath = "/metrics"

// BuildRouter mounts the middleware chain and every manifest route.
// Order: request id, recoverer, heartbeat, access log, metrics, CORS,
// session. The session layer observes everything after it, and the log and
// metrics layers see its outcome through a session.Observer.
func BuildRouter(cfg manifest.Config, d BuildDeps) http.Handler {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	hmetrics.SetPathNormalizer(routePattern)

	r := d.Router
	r.Use(requestid.Middleware, chimd.Recoverer, chimd.Heartbeat("/ping"))
	if d.LogMW != nil {
		r.Use(d.LogMW.Middleware())
	}
	r.Use(hmetrics.Collect())
	if origins := cfg.Server.CORSAllowedOrigins; len(origins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type", requestid.Header},
			ExposedHeaders:   []string{requestid.Header},
			AllowCredentials: true,
		}).Handler)
	}
	if d.Auth != nil {
		r.Use(bypass(d.Auth.Middleware(), metricsPath))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	if d.Metrics != nil {
		r.Handle(http.MethodGet, metricsPath, d.Metrics)
	}

	for _, rt := range cfg.Routes {
		var h http.Handler = wrapRoute(cfg, rt, d)
		if rt.Policy.TimeoutMS > 0 {
			t := time.Duration(rt.Policy.TimeoutMS) * time.Millisecond
			h = withTimeout(h, t)
		}
		h = withGuard(h, d.Auth, rt.Guard)
		if rl := rt.Policy.RateLimit; rl != nil {
			h = ratelimit.New(ratelimit.Config{
				RPS:               rl.RPS,
				Burst:             rl.Burst,
				TrustForwardedFor: cfg.Server.TrustForwardedFor,
			}, d.Log).Middleware(h)
		}

		switch strings.ToUpper(rt.Method) {
		case "*":
			r.Any(rt.Path, h)
		case http.MethodGet:
			r.Get(rt.Path, h)
		case http.MethodPost:
			r.Post(rt.Path, h)
		case http.MethodPut:
			r.Put(rt.Path, h)
		case http.MethodDelete:
			r.Delete(rt.Path, h)
		default:
			r.Handle(rt.Method, rt.Path, h)
		}
	}
	return r.Mux()
}

// bypass skips mw for the listed exact paths.
func bypass(mw func(http.Handler) http.Handler, paths ...string) func(http.Handler) http.Handler {
	skip := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		skip[p] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		wrapped := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := skip[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}
			wrapped.ServeHTTP(w, r)
		})
	}
}

// routePattern labels metrics by the matched chi pattern so proxied paths
// collapse onto their route.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
