package core

import (
	"net/http"
	"slices"

	manifest "github.com/joeydtaylor/steeze-session/pkg/manifest"
	"github.com/joeydtaylor/steeze-session/pkg/middleware/auth"
)

func withGuard(next http.Handler, a *auth.Middleware, g manifest.Guard) http.Handler {
	if !g.RequireAuth && len(g.Users) == 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Without a session layer nothing can satisfy the guard.
		if a == nil || !a.IsAuthenticated(r.Context()) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if len(g.Users) > 0 {
			u := a.GetUser(r.Context()).Username
			if u == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if !slices.Contains(g.Users, u) {
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
