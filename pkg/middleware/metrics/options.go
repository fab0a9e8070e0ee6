package metrics

import (
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
)

type normalizer func(*http.Request) string

var (
	skipPaths sync.Map // path -> struct{}

	pathNormalizer atomic.Pointer[normalizer]
)

func init() {
	AddMetricsSkipPaths("/metrics", "/ping")
}

// AddMetricsSkipPaths excludes exact paths from collection. "/metrics" and
// the heartbeat are skipped by default.
func AddMetricsSkipPaths(paths ...string) {
	for _, p := range paths {
		if p = strings.TrimSpace(p); p != "" {
			skipPaths.Store(p, struct{}{})
		}
	}
}

// SetPathNormalizer replaces how the uri label is derived. A nil fn restores
// the raw path, which is only safe when paths carry no ids.
func SetPathNormalizer(fn func(*http.Request) string) {
	if fn == nil {
		pathNormalizer.Store(nil)
		return
	}
	n := normalizer(fn)
	pathNormalizer.Store(&n)
}

func isSkipPath(r *http.Request) bool {
	_, ok := skipPaths.Load(r.URL.Path)
	return ok
}

func normalizePath(r *http.Request) string {
	if fn := pathNormalizer.Load(); fn != nil {
		return (*fn)(r)
	}
	return r.URL.Path
}
