package core

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/joeydtaylor/steeze-session/pkg/codec"
	"github.com/joeydtaylor/steeze-session/pkg/identity"
	manifest "github.com/joeydtaylor/steeze-session/pkg/manifest"
	"github.com/joeydtaylor/steeze-session/pkg/middleware/requestid"
	"github.com/joeydtaylor/steeze-session/pkg/session"
	"go.uber.org/zap"
)

// maxFormBody caps login and register submissions.
const maxFormBody = 64 << 10

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && (mt == "application/json" || strings.HasSuffix(mt, "+json"))
}

// decodeForm fills v from a JSON body or, failing that, from url-encoded or
// multipart form fields via fill.
func decodeForm(w http.ResponseWriter, r *http.Request, c codec.Codec, v any, fill func(get func(string) string)) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBody)
	if isJSON(r) {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			return err
		}
		return c.Unmarshal(b, v)
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxFormBody); err != nil {
			return err
		}
	} else if err := r.ParseForm(); err != nil {
		return err
	}
	fill(func(k string) string { return r.PostFormValue(k) })
	return nil
}

func loginHandler(cfg manifest.Config, rt manifest.Route, d BuildDeps) http.HandlerFunc {
	c := codecFor(rt)
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Auth == nil || d.Accounts == nil {
			writeError(w, http.StatusInternalServerError, "session layer unavailable")
			return
		}
		var in credentials
		err := decodeForm(w, r, c, &in, func(get func(string) string) {
			in.Username, in.Password = get("username"), get("password")
		})
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid login request")
			return
		}
		in.Username = strings.TrimSpace(in.Username)
		if in.Username == "" || in.Password == "" {
			writeError(w, http.StatusBadRequest, "username and password are required")
			return
		}

		toks, err := d.Accounts.Login(r.Context(), in.Username, in.Password)
		if err != nil {
			status, msg := loginFailure(err)
			d.Log.Warn("login failed",
				zap.String("requestId", requestid.FromContext(r.Context())),
				zap.String("username", in.Username),
				zap.Int("status", status),
				zap.Error(err))
			writeError(w, status, msg)
			return
		}
		d.Auth.IssueSession(w, r, toks)
		http.Redirect(w, r, cfg.Session.AfterLoginPath, http.StatusSeeOther)
	}
}

func loginFailure(err error) (int, string) {
	switch {
	case errors.Is(err, identity.ErrRateLimited):
		return http.StatusTooManyRequests, "too many login attempts"
	case errors.Is(err, identity.ErrUnauthorized), errors.Is(err, identity.ErrRejected):
		return http.StatusUnauthorized, "invalid credentials"
	default:
		return http.StatusBadGateway, "login unavailable"
	}
}

func registerHandler(cfg manifest.Config, rt manifest.Route, d BuildDeps) http.HandlerFunc {
	c := codecFor(rt)
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Accounts == nil {
			writeError(w, http.StatusInternalServerError, "session layer unavailable")
			return
		}
		var reg identity.Registration
		err := decodeForm(w, r, c, &reg, func(get func(string) string) {
			reg.Email = get("email")
			reg.FirstName = get("first_name")
			reg.LastName = get("last_name")
			reg.Username = get("username")
			reg.Password = get("password")
		})
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid registration request")
			return
		}
		reg.Email = strings.TrimSpace(reg.Email)
		if reg.Email == "" || reg.Password == "" {
			writeError(w, http.StatusBadRequest, "email and password are required")
			return
		}
		if strings.TrimSpace(reg.Username) == "" {
			reg.Username = reg.Email
		}

		if err := d.Accounts.Register(r.Context(), reg); err != nil {
			status, msg := http.StatusBadGateway, "registration unavailable"
			switch {
			case errors.Is(err, identity.ErrRateLimited):
				status, msg = http.StatusTooManyRequests, "too many registration attempts"
			case errors.Is(err, identity.ErrRejected), errors.Is(err, identity.ErrUnauthorized):
				status, msg = http.StatusBadRequest, "registration rejected"
			}
			d.Log.Warn("registration failed",
				zap.String("requestId", requestid.FromContext(r.Context())),
				zap.String("email", reg.Email),
				zap.Int("status", status),
				zap.Error(err))
			writeError(w, status, msg)
			return
		}
		http.Redirect(w, r, cfg.Session.LoginPath, http.StatusSeeOther)
	}
}

func logoutHandler(cfg manifest.Config, d BuildDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Auth != nil {
			d.Auth.EndSession(w, r)
		}
		http.Redirect(w, r, cfg.Session.AfterLogoutPath, http.StatusFound)
	}
}

type stateView struct {
	Authed bool             `json:"authed"`
	User   *session.Profile `json:"user"`
}

func stateHandler(d BuildDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := session.FromContext(r.Context())
		b, err := codec.JSON.Marshal(stateView{Authed: st.Authenticated, User: st.Profile})
		if err != nil {
			d.Log.Error("session state encode failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, b, http.StatusOK)
	}
}
