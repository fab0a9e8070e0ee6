package auth

import (
	"context"

	"github.com/joeydtaylor/steeze-session/pkg/identity"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Refresher exchanges refresh tokens for new access tokens. Concurrent
// calls with the same refresh token share one backend round trip.
type Refresher struct {
	client IdentityClient
	group  singleflight.Group
	log    *zap.Logger
}

func NewRefresher(client IdentityClient, log *zap.Logger) *Refresher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Refresher{client: client, log: log}
}

// Refresh never retries. Every failure wraps identity.ErrRefreshDenied.
func (f *Refresher) Refresh(ctx context.Context, refreshToken string) (identity.Tokens, error) {
	if refreshToken == "" {
		return identity.Tokens{}, identity.ErrRefreshDenied
	}

	// The shared call must outlive whichever caller started it; the
	// identity client still bounds it with its own timeout.
	shared := context.WithoutCancel(ctx)
	ch := f.group.DoChan(refreshToken, func() (any, error) {
		return f.client.Refresh(shared, refreshToken)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			refreshTotal.WithLabelValues("denied").Inc()
			f.log.Info("token refresh denied", zap.Error(res.Err), zap.Bool("shared", res.Shared))
			return identity.Tokens{}, res.Err
		}
		refreshTotal.WithLabelValues("ok").Inc()
		return res.Val.(identity.Tokens), nil
	case <-ctx.Done():
		return identity.Tokens{}, ctx.Err()
	}
}
