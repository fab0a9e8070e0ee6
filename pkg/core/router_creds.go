package core

import (
	"net/http"
	"strings"

	manifest "github.com/joeydtaylor/steeze-session/pkg/manifest"
)

func issueCreds(d BuildDeps, r *http.Request, rt manifest.Route) (DownstreamCredentials, error) {
	if d.Creds != nil {
		return d.Creds.Issue(r.Context(), r, rt)
	}
	da := rt.Policy.DownAuth
	if da == nil {
		return NoAuthProvider{}.Issue(r.Context(), r, rt)
	}
	switch da.Type {
	case manifest.DownAuthSessionBearer:
		return SessionBearerProvider{Auth: d.Auth}.Issue(r.Context(), r, rt)
	case manifest.DownAuthStaticBearer:
		return StaticBearerProvider{HeaderName: da.Header}.Issue(r.Context(), r, rt)
	}
	return NoAuthProvider{}.Issue(r.Context(), r, rt)
}

// applyCreds splits creds into the forwarder's bearer token and extra
// headers set on a copy of r.
func applyCreds(r *http.Request, c DownstreamCredentials) (*http.Request, string) {
	token := ""
	extra := make(map[string]string, len(c.Extra)+1)
	for k, v := range c.Extra {
		extra[k] = v
	}
	switch {
	case c.HeaderName == "" || c.HeaderValue == "":
	case strings.EqualFold(c.HeaderName, "Authorization") && strings.HasPrefix(c.HeaderValue, "Bearer "):
		token = strings.TrimPrefix(c.HeaderValue, "Bearer ")
	default:
		extra[c.HeaderName] = c.HeaderValue
	}
	if len(extra) == 0 {
		return r, token
	}
	r2 := r.Clone(r.Context())
	for k, v := range extra {
		r2.Header.Set(k, v)
	}
	return r2, token
}
