package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/joeydtaylor/steeze-session/pkg/transport/httpx"
	"github.com/stretchr/testify/require"
)

func TestChiRouterMethods(t *testing.T) {
	r := httpx.NewChi()
	var hits []string
	mark := func(name string) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits = append(hits, name)
			w.WriteHeader(http.StatusNoContent)
		})
	}
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("X-Seen", "1")
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/g", mark("get"))
	r.Post("/p", mark("post"))
	r.Handle(http.MethodPatch, "/x", mark("patch"))
	r.Any("/api/*", mark("any"))

	for _, tc := range []struct {
		method, path string
		code         int
	}{
		{http.MethodGet, "/g", http.StatusNoContent},
		{http.MethodPost, "/g", http.StatusMethodNotAllowed},
		{http.MethodPost, "/p", http.StatusNoContent},
		{http.MethodPatch, "/x", http.StatusNoContent},
		{http.MethodDelete, "/api/items/1", http.StatusNoContent},
		{http.MethodGet, "/nope", http.StatusNotFound},
	} {
		rec := httptest.NewRecorder()
		r.Mux().ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		require.Equal(t, tc.code, rec.Code, "%s %s", tc.method, tc.path)
		require.Equal(t, "1", rec.Header().Get("X-Seen"))
	}
	require.Equal(t, []string{"get", "post", "patch", "any"}, hits)
}

func TestChiRouterFallbacks(t *testing.T) {
	r := httpx.NewChi()
	r.Get("/only-get", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) { http.Error(w, "nf", http.StatusNotFound) })
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) { http.Error(w, "mna", http.StatusMethodNotAllowed) })

	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.Equal(t, "nf\n", rec.Body.String())

	rec = httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/only-get", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Equal(t, "mna\n", rec.Body.String())
}
