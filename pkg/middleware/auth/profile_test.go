package auth

import (
	"context"
	"testing"
	"time"

	"github.com/joeydtaylor/steeze-session/pkg/session"
	"github.com/joeydtaylor/steeze-session/pkg/session/cache"
	"github.com/stretchr/testify/require"
)

func newTestProfiles(fi *fakeIdentity) (*Profiles, *cache.Store, *clock) {
	store := cache.New()
	p := NewProfiles(fi, store, 6*time.Hour)
	c := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	p.now = c.now
	return p, store, c
}

func TestProfilesServeFreshVerifiedEntry(t *testing.T) {
	fi := &fakeIdentity{}
	p, store, c := newTestProfiles(fi)
	store.PutVerification("tok", c.now())
	store.PutProfile("tok", session.Profile{ID: 9, Username: "cached"}, c.now())

	c.advance(5 * time.Hour)
	got, err := p.Get(context.Background(), "tok")
	require.NoError(t, err)
	require.Equal(t, "cached", got.Username)
	_, _, calls := fi.calls()
	require.Empty(t, calls)
}

func TestProfilesRefetchWhenStaleOrUnverified(t *testing.T) {
	fi := &fakeIdentity{}
	p, store, c := newTestProfiles(fi)

	store.PutProfile("unverified", session.Profile{Username: "cached"}, c.now())
	got, err := p.Get(context.Background(), "unverified")
	require.NoError(t, err)
	require.Equal(t, "user-unverified", got.Username)

	store.PutVerification("stale", c.now())
	store.PutProfile("stale", session.Profile{Username: "cached"}, c.now().Add(-7*time.Hour))
	got, err = p.Get(context.Background(), "stale")
	require.NoError(t, err)
	require.Equal(t, "user-stale", got.Username)

	_, fetchedAt, ok := store.GetProfile("stale")
	require.True(t, ok)
	require.Equal(t, c.now(), fetchedAt)
}
