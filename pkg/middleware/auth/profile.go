package auth

import (
	"context"
	"time"

	"github.com/joeydtaylor/steeze-session/pkg/session"
	"github.com/joeydtaylor/steeze-session/pkg/session/cache"
)

// Profiles serves user profiles from the cache, falling back to the backend.
type Profiles struct {
	client IdentityClient
	store  *cache.Store
	ttl    time.Duration
	now    func() time.Time
}

func NewProfiles(client IdentityClient, store *cache.Store, ttl time.Duration) *Profiles {
	return &Profiles{client: client, store: store, ttl: ttl, now: time.Now}
}

// Get trusts a cached profile only while it is fresh and its token still has
// a verification entry.
func (p *Profiles) Get(ctx context.Context, token string) (session.Profile, error) {
	now := p.now()
	if prof, fetchedAt, ok := p.store.GetProfile(token); ok && now.Sub(fetchedAt) < p.ttl {
		if _, verified := p.store.GetVerification(token); verified {
			profileTotal.WithLabelValues("cache").Inc()
			return prof, nil
		}
	}

	prof, err := p.client.Profile(ctx, token)
	if err != nil {
		profileTotal.WithLabelValues("error").Inc()
		return session.Profile{}, err
	}
	p.store.PutProfile(token, prof, now)
	profileTotal.WithLabelValues("backend").Inc()
	return prof, nil
}
