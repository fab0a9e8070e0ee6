// Package ratelimit throttles clients per IP with token buckets. It guards
// the login and register routes against credential stuffing.
package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Config struct {
	RPS   float64
	Burst int
	// TrustForwardedFor keys on the first X-Forwarded-For hop instead of
	// RemoteAddr. Only enable behind a proxy that sets it.
	TrustForwardedFor bool
}

// KeyFunc extracts the bucket key from a request.
type KeyFunc func(*http.Request) string

func RemoteIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func ForwardedIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return RemoteIP(r)
}

type entry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// Limiter holds one bucket per key and drops buckets idle for longer than
// idleAfter.
type Limiter struct {
	mu        sync.Mutex
	buckets   map[string]*entry
	limit     rate.Limit
	burst     int
	key       KeyFunc
	idleAfter time.Duration
	lastSweep time.Time
	now       func() time.Time
	log       *zap.Logger
}

func New(cfg Config, log *zap.Logger) *Limiter {
	if log == nil {
		log = zap.NewNop()
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	key := RemoteIP
	if cfg.TrustForwardedFor {
		key = ForwardedIP
	}
	return &Limiter{
		buckets:   make(map[string]*entry),
		limit:     rate.Limit(cfg.RPS),
		burst:     burst,
		key:       key,
		idleAfter: 10 * time.Minute,
		now:       time.Now,
		log:       log,
	}
}

func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if now.Sub(l.lastSweep) > l.idleAfter {
		for k, e := range l.buckets {
			if now.Sub(e.lastSeen) > l.idleAfter {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}
	e, ok := l.buckets[key]
	if !ok {
		e = &entry{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = e
	}
	e.lastSeen = now
	return e.lim
}

// Allow reports whether key may proceed now, and if not, how long to wait.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	lim := l.get(key)
	now := l.now()
	if lim.AllowN(now, 1) {
		return true, 0
	}
	res := lim.ReserveN(now, 1)
	delay := res.DelayFrom(now)
	res.CancelAt(now)
	return false, delay
}

func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := l.key(r)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}
		ok, delay := l.Allow(key)
		if !ok {
			retry := int(delay.Seconds())
			if retry < 1 {
				retry = 1
			}
			l.log.Warn("rate limit exceeded",
				zap.String("key", key),
				zap.String("path", r.URL.Path),
				zap.Int("retryAfter", retry))
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"too many requests"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
