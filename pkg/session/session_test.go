package session_test

import (
	"context"
	"testing"

	"github.com/joeydtaylor/steeze-session/pkg/session"
	"github.com/stretchr/testify/require"
)

func TestFromContextDefaultsToAnonymous(t *testing.T) {
	require.Equal(t, session.State{}, session.FromContext(context.Background()))
}

func TestObserverSeesDownstreamState(t *testing.T) {
	ctx, obs := session.Observe(context.Background())
	st := session.State{Authenticated: true, Profile: &session.Profile{Username: "ada"}, AccessToken: "A"}

	inner := session.WithState(ctx, st)

	require.Equal(t, st, session.FromContext(inner))
	require.Equal(t, st, obs.State())
	// the outer context itself is unchanged
	require.False(t, session.FromContext(ctx).Authenticated)
}

func TestNilObserver(t *testing.T) {
	var obs *session.Observer
	require.Equal(t, session.State{}, obs.State())
}

func TestObserveReusesExisting(t *testing.T) {
	ctx, outer := session.Observe(context.Background())
	ctx, inner := session.Observe(ctx)
	require.Same(t, outer, inner)

	session.WithState(ctx, session.State{Authenticated: true})
	require.True(t, outer.State().Authenticated)
}
