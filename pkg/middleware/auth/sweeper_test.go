package auth

import (
	"testing"
	"time"

	"github.com/joeydtaylor/steeze-session/pkg/session"
	"github.com/stretchr/testify/require"
)

func TestSweepDropsOnlyExpiredTokens(t *testing.T) {
	m, store, c := newTestMiddleware(&fakeIdentity{})
	now := c.now()

	store.PutVerification("old", now.Add(-7*time.Hour))
	store.PutProfile("old", session.Profile{ID: 1}, now.Add(-7*time.Hour))
	store.PutVerification("recent-profile", now.Add(-7*time.Hour))
	store.PutProfile("recent-profile", session.Profile{ID: 2}, now.Add(-time.Hour))
	store.PutVerification("fresh", now)

	require.Equal(t, 1, m.Sweep())
	require.Equal(t, 2, store.Len())
	_, ok := store.GetVerification("old")
	require.False(t, ok)
}
