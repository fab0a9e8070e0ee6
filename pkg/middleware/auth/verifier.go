package auth

import (
	"context"
	"errors"
	"time"

	"github.com/joeydtaylor/steeze-session/pkg/identity"
	"github.com/joeydtaylor/steeze-session/pkg/session/cache"
	"go.uber.org/zap"
)

// Verdict is the answer of Verifier.EnsureValid. RateLimited is set when the
// backend throttled the check and a previous verification was trusted instead.
type Verdict struct {
	Valid       bool
	RateLimited bool
}

type Verifier struct {
	client IdentityClient
	store  *cache.Store
	ttl    time.Duration
	now    func() time.Time
	log    *zap.Logger
}

func NewVerifier(client IdentityClient, store *cache.Store, ttl time.Duration, log *zap.Logger) *Verifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Verifier{client: client, store: store, ttl: ttl, now: time.Now, log: log}
}

// EnsureValid answers from the cache while the last verification is younger
// than the TTL, and asks the backend otherwise. Network failures count as
// invalid.
func (v *Verifier) EnsureValid(ctx context.Context, token string) Verdict {
	if token == "" {
		return Verdict{}
	}
	now := v.now()
	at, seen := v.store.GetVerification(token)
	if seen && now.Sub(at) < v.ttl {
		verifyTotal.WithLabelValues("cached").Inc()
		return Verdict{Valid: true}
	}

	err := v.client.Verify(ctx, token)
	switch {
	case err == nil:
		v.store.PutVerification(token, now)
		verifyTotal.WithLabelValues("valid").Inc()
		return Verdict{Valid: true}
	case errors.Is(err, identity.ErrRateLimited) && seen:
		verifyTotal.WithLabelValues("rate_limited").Inc()
		v.log.Warn("token verify throttled; trusting previous verification",
			zap.Time("verifiedAt", at))
		return Verdict{Valid: true, RateLimited: true}
	default:
		verifyTotal.WithLabelValues("invalid").Inc()
		if !errors.Is(err, identity.ErrUnauthorized) {
			v.log.Warn("token verify failed", zap.Error(err))
		}
		return Verdict{}
	}
}
