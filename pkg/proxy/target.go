package proxy

import (
	"net/url"
	"strings"
)

// stripPrefix removes prefix from p only when it ends on a segment
// boundary: "/api/users" and "/api" lose "/api", "/apix" does not.
func stripPrefix(p, prefix string) string {
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		return p
	}
	switch {
	case p == prefix:
		return "/"
	case strings.HasPrefix(p, prefix+"/"):
		return p[len(prefix):]
	default:
		return p
	}
}

// Target maps an inbound URL onto the backend. Escaping, trailing slash and
// raw query are preserved.
func (f *Forwarder) Target(u *url.URL) string {
	rest := stripPrefix(u.EscapedPath(), f.cfg.Prefix)
	if !strings.HasPrefix(rest, "/") {
		rest = "/" + rest
	}
	t := f.base + rest
	if u.RawQuery != "" {
		t += "?" + u.RawQuery
	}
	return t
}
