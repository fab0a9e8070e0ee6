package auth

import (
	"context"

	"github.com/joeydtaylor/steeze-session/pkg/session"
)

func (m *Middleware) GetUser(ctx context.Context) session.Profile {
	if st := session.FromContext(ctx); st.Profile != nil {
		return *st.Profile
	}
	return session.Profile{}
}

func (m *Middleware) IsUser(ctx context.Context, username string) bool {
	st := session.FromContext(ctx)
	return st.Profile != nil && st.Profile.Username == username
}

func (m *Middleware) IsAuthenticated(ctx context.Context) bool {
	return session.FromContext(ctx).Authenticated
}

// AccessToken is the token downstream calls should carry; after a refresh it
// is the new token, not the one the client sent.
func (m *Middleware) AccessToken(ctx context.Context) string {
	return session.FromContext(ctx).AccessToken
}
