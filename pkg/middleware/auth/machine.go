package auth

import (
	"errors"
	"net/http"

	"github.com/joeydtaylor/steeze-session/pkg/identity"
	"github.com/joeydtaylor/steeze-session/pkg/session"
	"go.uber.org/zap"
)

type phase int

const (
	phaseNoToken phase = iota
	phaseVerifying
	phaseAuthenticated
	phaseRefreshing
	phaseDenied
	phaseDone
)

func (p phase) String() string {
	switch p {
	case phaseNoToken:
		return "no_token"
	case phaseVerifying:
		return "verifying"
	case phaseAuthenticated:
		return "authenticated"
	case phaseRefreshing:
		return "refreshing"
	case phaseDenied:
		return "denied"
	default:
		return "done"
	}
}

type OutcomeKind int

const (
	OutcomeContinue OutcomeKind = iota
	OutcomeRedirect
	OutcomeFail
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeContinue:
		return "continue"
	case OutcomeRedirect:
		return "redirect"
	default:
		return "fail"
	}
}

// Outcome is what the session machine decided for one request.
type Outcome struct {
	Kind     OutcomeKind
	State    session.State // Continue
	Location string        // Redirect
	Status   int           // Fail
	Message  string        // Fail
}

func Continue(st session.State) Outcome { return Outcome{Kind: OutcomeContinue, State: st} }
func RedirectTo(path string) Outcome    { return Outcome{Kind: OutcomeRedirect, Location: path} }
func Fail(status int, msg string) Outcome {
	return Outcome{Kind: OutcomeFail, Status: status, Message: msg}
}

// run is the per-request memory of the machine.
type run struct {
	w http.ResponseWriter
	r *http.Request

	access  string
	refresh string

	refreshed   bool
	rateLimited bool
	outcome     Outcome
}

// Resolve drives one request through the session states. Cookie writes land
// on w before any cache eviction and before the caller runs the downstream
// handler.
func (m *Middleware) Resolve(w http.ResponseWriter, r *http.Request) Outcome {
	rn := &run{
		w:       w,
		r:       r,
		access:  cookieValue(r, m.cfg.AccessCookie),
		refresh: cookieValue(r, m.cfg.RefreshCookie),
	}

	p := phaseVerifying
	if rn.access == "" {
		p = phaseNoToken
	}
	for p != phaseDone {
		next := m.step(p, rn)
		if ce := m.log.Check(zap.DebugLevel, "session transition"); ce != nil {
			ce.Write(zap.Stringer("from", p), zap.Stringer("to", next))
		}
		p = next
	}
	outcomeTotal.WithLabelValues(rn.outcome.Kind.String()).Inc()
	return rn.outcome
}

func (m *Middleware) step(p phase, rn *run) phase {
	switch p {
	case phaseNoToken:
		return phaseDenied
	case phaseVerifying:
		return m.verifying(rn)
	case phaseRefreshing:
		return m.refreshing(rn)
	case phaseAuthenticated:
		return m.authenticated(rn)
	case phaseDenied:
		m.discard(rn)
		rn.outcome = RedirectTo(m.cfg.LoginPath)
		return phaseDone
	}
	return phaseDone
}

func (m *Middleware) verifying(rn *run) phase {
	v := m.verifier.EnsureValid(rn.r.Context(), rn.access)
	switch {
	case v.Valid:
		rn.rateLimited = v.RateLimited
		return phaseAuthenticated
	case rn.refresh != "":
		return phaseRefreshing
	default:
		return phaseDenied
	}
}

func (m *Middleware) refreshing(rn *run) phase {
	toks, err := m.refresher.Refresh(rn.r.Context(), rn.refresh)
	if err != nil {
		return phaseDenied
	}

	m.setAccessCookie(rn.w, rn.r, toks.Access)
	if toks.Refresh != "" && toks.Refresh != rn.refresh {
		m.setRefreshCookie(rn.w, rn.r, toks.Refresh)
		rn.refresh = toks.Refresh
	}

	old := rn.access
	if old != toks.Access {
		m.store.Evict(old)
	}
	m.store.PutVerification(toks.Access, m.now())

	rn.access = toks.Access
	rn.refreshed = true
	rn.rateLimited = false
	return phaseAuthenticated
}

func (m *Middleware) authenticated(rn *run) phase {
	prof, err := m.profiles.Get(rn.r.Context(), rn.access)
	if err == nil {
		rn.outcome = Continue(session.State{
			Authenticated: true,
			Profile:       &prof,
			AccessToken:   rn.access,
			RateLimited:   rn.rateLimited,
		})
		return phaseDone
	}

	if errors.Is(err, identity.ErrUnauthorized) && !rn.refreshed && rn.refresh != "" {
		return phaseRefreshing
	}

	m.log.Error("profile lookup failed", zap.Error(err), zap.Bool("afterRefresh", rn.refreshed))
	m.discard(rn)
	rn.outcome = Fail(http.StatusInternalServerError, "unable to load user profile")
	return phaseDone
}

// discard clears both cookies and evicts the token being given up.
func (m *Middleware) discard(rn *run) {
	m.clearCookies(rn.w, rn.r)
	m.store.Evict(rn.access)
}
