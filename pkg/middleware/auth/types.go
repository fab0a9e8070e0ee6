package auth

import (
	"context"
	"time"

	"github.com/joeydtaylor/steeze-session/pkg/identity"
	"github.com/joeydtaylor/steeze-session/pkg/session"
)

// IdentityClient is the subset of *identity.Client the session layer uses.
type IdentityClient interface {
	Verify(ctx context.Context, token string) error
	Refresh(ctx context.Context, refreshToken string) (identity.Tokens, error)
	Profile(ctx context.Context, accessToken string) (session.Profile, error)
}

type Config struct {
	AccessCookie  string
	RefreshCookie string
	AccessMaxAge  time.Duration
	RefreshMaxAge time.Duration

	VerifyTTL     time.Duration
	ProfileTTL    time.Duration
	SweepInterval time.Duration

	LoginPath   string
	PublicPaths []string

	// TrustForwardedProto lets X-Forwarded-Proto: https mark cookies Secure
	// when TLS terminates in front of the gateway.
	TrustForwardedProto bool
}

func DefaultConfig() Config {
	return Config{
		AccessCookie:  "accessToken",
		RefreshCookie: "refreshToken",
		AccessMaxAge:  time.Hour,
		RefreshMaxAge: 7 * 24 * time.Hour,
		VerifyTTL:     15 * time.Minute,
		ProfileTTL:    6 * time.Hour,
		SweepInterval: 10 * time.Minute,
		LoginPath:     "/login",
		PublicPaths:   []string{"/", "/login", "/register", "/login-oauth", "/oauth-google"},
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.AccessCookie == "" {
		c.AccessCookie = d.AccessCookie
	}
	if c.RefreshCookie == "" {
		c.RefreshCookie = d.RefreshCookie
	}
	if c.AccessMaxAge <= 0 {
		c.AccessMaxAge = d.AccessMaxAge
	}
	if c.RefreshMaxAge <= 0 {
		c.RefreshMaxAge = d.RefreshMaxAge
	}
	if c.VerifyTTL <= 0 {
		c.VerifyTTL = d.VerifyTTL
	}
	if c.ProfileTTL <= 0 {
		c.ProfileTTL = d.ProfileTTL
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = d.SweepInterval
	}
	if c.LoginPath == "" {
		c.LoginPath = d.LoginPath
	}
	if c.PublicPaths == nil {
		c.PublicPaths = d.PublicPaths
	}
	return c
}
