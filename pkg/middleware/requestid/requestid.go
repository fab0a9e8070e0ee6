// Package requestid tags each request with an id that is echoed to the
// client and forwarded to the backend as X-Request-ID.
package requestid

import (
	"context"
	"net/http"
	"strings"

	chimd "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const Header = "X-Request-ID"

const maxInboundLen = 128

// Middleware keeps a sane inbound X-Request-ID or mints a UUID. The id is
// stored under chi's RequestIDKey so chimd.GetReqID works everywhere.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(Header))
		if !acceptable(id) {
			id = uuid.NewString()
		}
		w.Header().Set(Header, id)
		ctx := context.WithValue(r.Context(), chimd.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func acceptable(id string) bool {
	if id == "" || len(id) > maxInboundLen {
		return false
	}
	for _, c := range id {
		if c < 0x21 || c > 0x7e {
			return false
		}
	}
	return true
}

// FromContext is chimd.GetReqID under a name that reads well at call sites.
func FromContext(ctx context.Context) string { return chimd.GetReqID(ctx) }
