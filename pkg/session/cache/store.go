// Package cache holds the process-local credential cache shared by every
// request: when an access token was last verified, and the profile fetched
// for it. It never consults the clock; callers decide what is stale.
package cache

import (
	"sync"
	"time"

	"github.com/joeydtaylor/steeze-session/pkg/session"
)

type profileEntry struct {
	profile   session.Profile
	fetchedAt time.Time
}

// Store is a mutex-guarded pair of maps keyed by the exact token string.
// Each method is an independent atomic operation; composite check-then-act
// sequences are not atomic across calls.
type Store struct {
	mu       sync.RWMutex
	verified map[string]time.Time
	profiles map[string]profileEntry
}

func New() *Store {
	return &Store{
		verified: make(map[string]time.Time),
		profiles: make(map[string]profileEntry),
	}
}

func (s *Store) GetVerification(token string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.verified[token]
	return t, ok
}

// PutVerification is last-writer-wins.
func (s *Store) PutVerification(token string, at time.Time) {
	if token == "" {
		return
	}
	s.mu.Lock()
	s.verified[token] = at
	s.mu.Unlock()
}

func (s *Store) GetProfile(token string) (session.Profile, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.profiles[token]
	if !ok {
		return session.Profile{}, time.Time{}, false
	}
	return e.profile, e.fetchedAt, true
}

func (s *Store) PutProfile(token string, p session.Profile, at time.Time) {
	if token == "" {
		return
	}
	s.mu.Lock()
	s.profiles[token] = profileEntry{profile: p, fetchedAt: at}
	s.mu.Unlock()
}

// Evict drops both entries for token. Evicting an unknown token is a no-op.
func (s *Store) Evict(token string) {
	s.mu.Lock()
	delete(s.verified, token)
	delete(s.profiles, token)
	s.mu.Unlock()
}

// Len reports the number of distinct tokens with any entry.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.verified)
	for tok := range s.profiles {
		if _, ok := s.verified[tok]; !ok {
			n++
		}
	}
	return n
}

// Entry is a point-in-time copy of what the store knows about one token.
// Zero times mean the corresponding entry is absent.
type Entry struct {
	Token      string
	VerifiedAt time.Time
	FetchedAt  time.Time
}

// Range calls fn for a snapshot of every token. fn runs without the lock
// held, so it may call Evict.
func (s *Store) Range(fn func(Entry) bool) {
	s.mu.RLock()
	snap := make([]Entry, 0, len(s.verified)+len(s.profiles))
	for tok, at := range s.verified {
		e := Entry{Token: tok, VerifiedAt: at}
		if p, ok := s.profiles[tok]; ok {
			e.FetchedAt = p.fetchedAt
		}
		snap = append(snap, e)
	}
	for tok, p := range s.profiles {
		if _, ok := s.verified[tok]; !ok {
			snap = append(snap, Entry{Token: tok, FetchedAt: p.fetchedAt})
		}
	}
	s.mu.RUnlock()

	for _, e := range snap {
		if !fn(e) {
			return
		}
	}
}
