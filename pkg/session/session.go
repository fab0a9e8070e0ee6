// Package session defines the values the gateway passes between the
// session middleware, the credential cache, and the request handlers.
package session

import (
	"context"
	"sync"
)

// Profile is the user record the identity backend returns for a token.
// It is never mutated locally.
type Profile struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// State is the per-request authentication result. Only the session
// middleware writes it.
type State struct {
	Authenticated bool
	Profile       *Profile
	// AccessToken is the token resolved for this request, after any refresh.
	AccessToken string
	// RateLimited is set when the identity backend throttled verification
	// and a cached verification was trusted instead.
	RateLimited bool
}

type contextKey struct{ name string }

var stateCtxKey = &contextKey{"session-state"}

var observerCtxKey = &contextKey{"session-observer"}

// WithState stores st for downstream handlers and reports it to any
// Observer installed further up the chain.
func WithState(ctx context.Context, st State) context.Context {
	if o, ok := ctx.Value(observerCtxKey).(*Observer); ok {
		o.set(st)
	}
	return context.WithValue(ctx, stateCtxKey, st)
}

// FromContext returns the state stored by the session middleware, or the
// zero State for anonymous requests and public paths.
func FromContext(ctx context.Context) State {
	if st, ok := ctx.Value(stateCtxKey).(State); ok {
		return st
	}
	return State{}
}

// Observer lets middleware that runs before the session middleware (access
// log, metrics) see the state it resolved once the request is done.
type Observer struct {
	mu sync.Mutex
	st State
}

// Observe installs an Observer in ctx, reusing one already present so every
// layer sees the same state.
func Observe(ctx context.Context) (context.Context, *Observer) {
	if o, ok := ctx.Value(observerCtxKey).(*Observer); ok {
		return ctx, o
	}
	o := &Observer{}
	return context.WithValue(ctx, observerCtxKey, o), o
}

func (o *Observer) set(st State) {
	o.mu.Lock()
	o.st = st
	o.mu.Unlock()
}

// State returns the last state reported, or the zero State.
func (o *Observer) State() State {
	if o == nil {
		return State{}
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.st
}
