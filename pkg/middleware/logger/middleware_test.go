package logger

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chimd "github.com/go-chi/chi/v5/middleware"
	"github.com/joeydtaylor/steeze-session/pkg/session"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved() (*Middleware, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.InfoLevel)
	return New(zap.New(core)), logs
}

func TestAccessLineCarriesSessionState(t *testing.T) {
	m, logs := newObserved()
	h := chimd.RequestID(m.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// what the session middleware does further down the chain
		_ = session.WithState(r.Context(), session.State{
			Authenticated: true,
			Profile:       &session.Profile{Username: "ada"},
		})
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short"))
	})))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/portfolio?x=1", nil))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	require.Equal(t, true, fields["isAuthenticated"])
	require.Equal(t, "ada", fields["username"])
	require.Equal(t, "/portfolio", fields["uri"])
	require.EqualValues(t, http.StatusTeapot, fields["status"])
	require.EqualValues(t, 5, fields["responseSize"])
	require.NotEmpty(t, fields["requestId"])
}

func TestBodyLoggedOnlyWhenAllowlisted(t *testing.T) {
	AddBodyLogPaths("/echo")
	m, logs := newObserved()

	var seen string
	h := m.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		seen = string(b)
	}))

	for _, path := range []string{"/echo", "/login"} {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"a":1}`))
		req.Header.Set("Content-Type", "application/json")
		h.ServeHTTP(httptest.NewRecorder(), req)
		require.Equal(t, `{"a":1}`, seen, "downstream must still read the body")
	}

	entries := logs.All()
	require.Len(t, entries, 2)
	require.Equal(t, `{"a":1}`, entries[0].ContextMap()["requestData"])
	require.NotContains(t, entries[1].ContextMap(), "requestData")
}

func TestUnknownLengthBodyNotBuffered(t *testing.T) {
	AddBodyLogPaths("/echo")
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = -1
	require.False(t, wantsBody(req))
}
