package auth

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/joeydtaylor/steeze-session/pkg/identity"
	"github.com/joeydtaylor/steeze-session/pkg/session"
	"github.com/joeydtaylor/steeze-session/pkg/session/cache"
)

type fakeIdentity struct {
	mu sync.Mutex

	verifyFn  func(token string) error
	refreshFn func(refresh string) (identity.Tokens, error)
	profileFn func(token string) (session.Profile, error)

	verifyCalls  []string
	refreshCalls []string
	profileCalls []string
}

func (f *fakeIdentity) Verify(_ context.Context, token string) error {
	f.mu.Lock()
	f.verifyCalls = append(f.verifyCalls, token)
	fn := f.verifyFn
	f.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(token)
}

func (f *fakeIdentity) Refresh(_ context.Context, refresh string) (identity.Tokens, error) {
	f.mu.Lock()
	f.refreshCalls = append(f.refreshCalls, refresh)
	fn := f.refreshFn
	f.mu.Unlock()
	if fn == nil {
		return identity.Tokens{}, identity.ErrRefreshDenied
	}
	return fn(refresh)
}

func (f *fakeIdentity) Profile(_ context.Context, token string) (session.Profile, error) {
	f.mu.Lock()
	f.profileCalls = append(f.profileCalls, token)
	fn := f.profileFn
	f.mu.Unlock()
	if fn == nil {
		return session.Profile{ID: 1, Username: "user-" + token}, nil
	}
	return fn(token)
}

func (f *fakeIdentity) calls() (verify, refresh, profile []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.verifyCalls...),
		append([]string(nil), f.refreshCalls...),
		append([]string(nil), f.profileCalls...)
}

func statusErr(code int) error {
	return &identity.StatusError{Op: "test", Status: code}
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestMiddleware(fi *fakeIdentity) (*Middleware, *cache.Store, *clock) {
	store := cache.New()
	m := New(fi, store, DefaultConfig(), nil)
	c := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	m.setClock(c.now)
	return m, store, c
}

func cookieByName(cs []*http.Cookie, name string) *http.Cookie {
	var last *http.Cookie
	for _, c := range cs {
		if c.Name == name {
			last = c
		}
	}
	return last
}
