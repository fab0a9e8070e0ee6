package auth

import (
	"net/http"
	"strings"

	"github.com/joeydtaylor/steeze-session/pkg/identity"
)

func (m *Middleware) secure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return m.cfg.TrustForwardedProto &&
		strings.EqualFold(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")), "https")
}

func (m *Middleware) newCookie(r *http.Request, name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure(r),
		SameSite: http.SameSiteLaxMode,
	}
}

func (m *Middleware) setAccessCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, m.newCookie(r, m.cfg.AccessCookie, token, int(m.cfg.AccessMaxAge.Seconds())))
}

func (m *Middleware) setRefreshCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, m.newCookie(r, m.cfg.RefreshCookie, token, int(m.cfg.RefreshMaxAge.Seconds())))
}

func (m *Middleware) clearCookies(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, m.newCookie(r, m.cfg.AccessCookie, "", -1))
	http.SetCookie(w, m.newCookie(r, m.cfg.RefreshCookie, "", -1))
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil || c == nil {
		return ""
	}
	return c.Value
}

// IssueSession writes both session cookies after a successful login.
func (m *Middleware) IssueSession(w http.ResponseWriter, r *http.Request, t identity.Tokens) {
	m.setAccessCookie(w, r, t.Access)
	if t.Refresh != "" {
		m.setRefreshCookie(w, r, t.Refresh)
	}
}

// EndSession clears both cookies and forgets everything cached for the
// request's access token.
func (m *Middleware) EndSession(w http.ResponseWriter, r *http.Request) {
	m.clearCookies(w, r)
	m.store.Evict(cookieValue(r, m.cfg.AccessCookie))
}
