package core

import (
	"errors"
	"io"
	"net/http"

	manifest "github.com/joeydtaylor/steeze-session/pkg/manifest"
	"go.uber.org/zap"
)

// maxInprocBody caps request bodies handed to in-process handlers.
const maxInprocBody = 1 << 20

func wrapRoute(cfg manifest.Config, rt manifest.Route, d BuildDeps) http.HandlerFunc {
	switch rt.Handler.Type {
	case manifest.HandlerInproc:
		h, ok := Lookup(rt.Handler.Name)
		if !ok {
			d.Log.Error("inproc handler not registered", zap.String("name", rt.Handler.Name), zap.String("path", rt.Path))
			return func(w http.ResponseWriter, _ *http.Request) {
				writeError(w, http.StatusInternalServerError, "handler not found")
			}
		}
		c := codecFor(rt)
		return func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxInprocBody))
			if err != nil {
				var tooBig *http.MaxBytesError
				if errors.As(err, &tooBig) {
					writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
					return
				}
				writeError(w, http.StatusBadRequest, "unreadable request body")
				return
			}
			if len(body) > 0 {
				var probe any
				if err := c.Unmarshal(body, &probe); err != nil {
					writeError(w, http.StatusBadRequest, "invalid JSON body")
					return
				}
			}
			out, status, err := h(r.Context(), body)
			if err != nil {
				writeError(w, statusIf(status, http.StatusInternalServerError), err.Error())
				return
			}
			writeJSON(w, out, statusIf(status, http.StatusOK))
		}

	case manifest.HandlerProxy:
		fwd := d.Proxy
		if ps := rt.Handler.Proxy; fwd != nil && ps != nil && (ps.URL != "" || ps.Prefix != "") {
			derived, err := fwd.Derive(ps.URL, ps.Prefix)
			if err != nil {
				d.Log.Error("proxy route misconfigured", zap.String("path", rt.Path), zap.Error(err))
				return func(w http.ResponseWriter, _ *http.Request) {
					writeError(w, http.StatusInternalServerError, "proxy misconfigured")
				}
			}
			fwd = derived
		}
		return func(w http.ResponseWriter, r *http.Request) {
			if fwd == nil {
				writeError(w, http.StatusBadGateway, "upstream unavailable")
				return
			}
			creds, err := issueCreds(d, r, rt)
			if err != nil {
				d.Log.Error("downstream credentials unavailable", zap.String("path", rt.Path), zap.Error(err))
				writeError(w, http.StatusInternalServerError, "downstream credentials unavailable")
				return
			}
			r, token := applyCreds(r, creds)
			fwd.Forward(w, r, token)
		}

	case manifest.HandlerRedirect:
		to, status := rt.Handler.Redirect.To, rt.Handler.Redirect.Status
		return func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, to, status)
		}

	case manifest.HandlerLogin:
		return loginHandler(cfg, rt, d)
	case manifest.HandlerRegister:
		return registerHandler(cfg, rt, d)
	case manifest.HandlerLogout:
		return logoutHandler(cfg, d)
	case manifest.HandlerState:
		return stateHandler(d)

	default:
		return func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusInternalServerError, "unknown handler type")
		}
	}
}
