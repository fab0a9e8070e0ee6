package proxy

import (
	"net/http"
	"net/textproto"
	"strings"
)

// hopByHop are meaningful for a single transport leg only.
var hopByHop = []string{
	"Connection",
	"Proxy-Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// removeHopByHop deletes the standard hop-by-hop headers and every header
// named in Connection.
func removeHopByHop(h http.Header) {
	for _, v := range h.Values("Connection") {
		for _, name := range strings.Split(v, ",") {
			if name = textproto.TrimString(name); name != "" {
				h.Del(name)
			}
		}
	}
	for _, name := range hopByHop {
		h.Del(name)
	}
}

// outboundHeaders clones in for the backend leg. Framing headers are left to
// the outbound request; token, when set, replaces any client Authorization.
func outboundHeaders(in http.Header, token string) http.Header {
	out := in.Clone()
	if out == nil {
		out = make(http.Header)
	}
	removeHopByHop(out)
	out.Del("Host")
	out.Del("Content-Length")
	if token != "" {
		out.Set("Authorization", "Bearer "+token)
	}
	return out
}

// copyResponseHeaders relays backend headers. Set-Cookie is appended so
// cookies the session layer already wrote survive; everything else replaces.
func copyResponseHeaders(dst, src http.Header) {
	tmp := src.Clone()
	removeHopByHop(tmp)
	for k, vv := range tmp {
		if k == "Set-Cookie" {
			dst[k] = append(dst[k], vv...)
			continue
		}
		dst[k] = vv
	}
}
