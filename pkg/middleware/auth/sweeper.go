package auth

import (
	"context"
	"time"

	"github.com/joeydtaylor/steeze-session/pkg/session/cache"
	"go.uber.org/zap"
)

// retention is how long an entry may sit untouched before the sweeper drops
// it. Stale-but-present verifications still matter for the 429 fallback, so
// this is the longer of the two TTLs rather than the verify TTL.
func (m *Middleware) retention() time.Duration {
	if m.cfg.ProfileTTL > m.cfg.VerifyTTL {
		return m.cfg.ProfileTTL
	}
	return m.cfg.VerifyTTL
}

// Sweep evicts tokens whose newest cache entry is older than the retention
// window and returns how many were dropped.
func (m *Middleware) Sweep() int {
	cutoff := m.now().Add(-m.retention())
	n := 0
	m.store.Range(func(e cache.Entry) bool {
		newest := e.VerifiedAt
		if e.FetchedAt.After(newest) {
			newest = e.FetchedAt
		}
		if newest.Before(cutoff) {
			m.store.Evict(e.Token)
			n++
		}
		return true
	})
	cacheEntries.Set(float64(m.store.Len()))
	return n
}

func (m *Middleware) backgroundSweep(ctx context.Context) {
	interval := m.cfg.SweepInterval
	if interval < 5*time.Second {
		interval = 5 * time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := m.Sweep(); n > 0 {
				m.log.Info("credential cache swept", zap.Int("evicted", n), zap.Int("remaining", m.store.Len()))
			}
		}
	}
}
