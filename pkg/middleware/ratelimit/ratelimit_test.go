package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func hit(h http.Handler, remote, xff string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = remote
	if xff != "" {
		req.Header.Set("X-Forwarded-For", xff)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestBurstThenThrottle(t *testing.T) {
	l := New(Config{RPS: 1, Burst: 2}, nil)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return base }
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	require.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1000", "").Code)
	require.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1001", "").Code)

	rec := hit(h, "10.0.0.1:1002", "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "1", rec.Header().Get("Retry-After"))
	require.JSONEq(t, `{"error":"too many requests"}`, rec.Body.String())

	// other clients have their own bucket
	require.Equal(t, http.StatusOK, hit(h, "10.0.0.2:1000", "").Code)

	l.now = func() time.Time { return base.Add(time.Second) }
	require.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1003", "").Code)
}

func TestForwardedForOnlyWhenTrusted(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	require.Equal(t, "192.0.2.1", RemoteIP(req))
	require.Equal(t, "203.0.113.9", ForwardedIP(req))

	l := New(Config{RPS: 1, Burst: 1, TrustForwardedFor: true}, nil)
	require.Equal(t, "203.0.113.9", l.key(req))
}

func TestIdleBucketsDropped(t *testing.T) {
	l := New(Config{RPS: 1, Burst: 1}, nil)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return base }
	l.Allow("a")
	l.Allow("b")
	require.Len(t, l.buckets, 2)

	l.now = func() time.Time { return base.Add(time.Hour) }
	l.Allow("c")
	require.Len(t, l.buckets, 1)
}
