package auth

import (
	"net/http"

	"github.com/joeydtaylor/steeze-session/pkg/codec"
	"github.com/joeydtaylor/steeze-session/pkg/session"
)

// Middleware runs the session machine for every non-public path and applies
// its outcome. Public paths pass through with an unauthenticated state.
func (m *Middleware) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.IsPublic(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			o := m.Resolve(w, r)
			switch o.Kind {
			case OutcomeContinue:
				next.ServeHTTP(w, r.WithContext(session.WithState(r.Context(), o.State)))
			case OutcomeRedirect:
				http.Redirect(w, r, o.Location, http.StatusFound)
			default:
				writeError(w, o.Status, o.Message)
			}
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	b, err := codec.JSON.Marshal(map[string]string{"error": msg})
	if err != nil {
		http.Error(w, msg, status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
