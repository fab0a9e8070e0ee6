package logger

import (
	"bytes"
	"io"
	"net/http"
	"time"

	chimd "github.com/go-chi/chi/v5/middleware"
	"github.com/joeydtaylor/steeze-session/pkg/session"
	"go.uber.org/zap"
)

// Middleware writes one access line per request. It runs ahead of the
// session middleware and reads the resolved session through an Observer.
type Middleware struct {
	access *zap.Logger
}

func New(access *zap.Logger) *Middleware {
	if access == nil {
		access = zap.NewNop()
	}
	return &Middleware{access: access}
}

func (m *Middleware) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimd.NewWrapResponseWriter(w, r.ProtoMajor)

			var body []byte
			if wantsBody(r) {
				if b, err := io.ReadAll(r.Body); err == nil {
					body = b
				}
				r.Body.Close()
				r.Body = io.NopCloser(bytes.NewReader(body))
			}

			scheme := "http"
			if r.TLS != nil {
				scheme = "https"
			}

			ctx, obs := session.Observe(r.Context())
			start := time.Now()
			defer func() {
				lat := time.Since(start)
				st := obs.State()

				username := ""
				if st.Profile != nil {
					username = st.Profile.Username
				}

				log := m.access.With(
					zap.String("dateTime", start.UTC().Format(time.RFC1123)),
					zap.String("requestId", chimd.GetReqID(r.Context())),
					zap.String("httpScheme", scheme),
					zap.Bool("isAuthenticated", st.Authenticated),
					zap.String("username", username),
					zap.Bool("identityRateLimited", st.RateLimited),
					zap.String("httpProto", r.Proto),
					zap.String("httpMethod", r.Method),
					zap.String("remoteAddr", r.RemoteAddr),
					zap.String("uri", r.URL.Path),
					zap.Duration("lat", lat),
					zap.Int("responseSize", ww.BytesWritten()),
					zap.Int("status", ww.Status()),
				)

				if len(body) > 0 {
					log.Info("", zap.ByteString("requestData", body))
				} else {
					log.Info("")
				}
			}()

			next.ServeHTTP(ww, r.WithContext(ctx))
		})
	}
}
