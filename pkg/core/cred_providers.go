// pkg/core/cred_providers.go
package core

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"

	manifest "github.com/joeydtaylor/steeze-session/pkg/manifest"
	"github.com/joeydtaylor/steeze-session/pkg/middleware/auth"
)

// StaticBearerEnv holds the service token for static-bearer routes.
const StaticBearerEnv = "STATIC_BEARER_TOKEN"

var errNoStaticBearer = errors.New("static bearer token not configured")

// DownstreamCredentials is what a proxied request carries to the backend.
// An Authorization bearer value becomes the forwarder's token; any other
// header is set on the outbound request as is.
type DownstreamCredentials struct {
	HeaderName  string
	HeaderValue string
	Extra       map[string]string
}

type CredentialsProvider interface {
	Issue(ctx context.Context, r *http.Request, route manifest.Route) (DownstreamCredentials, error)
}

type NoAuthProvider struct{}

func (NoAuthProvider) Issue(context.Context, *http.Request, manifest.Route) (DownstreamCredentials, error) {
	return DownstreamCredentials{}, nil
}

// SessionBearerProvider forwards the session's current access token, which
// after a refresh is the new token rather than the cookie the client sent.
type SessionBearerProvider struct {
	Auth *auth.Middleware
}

func (p SessionBearerProvider) Issue(ctx context.Context, _ *http.Request, _ manifest.Route) (DownstreamCredentials, error) {
	if p.Auth == nil {
		return DownstreamCredentials{}, nil
	}
	tok := p.Auth.AccessToken(ctx)
	if tok == "" {
		return DownstreamCredentials{}, nil
	}
	return DownstreamCredentials{HeaderName: "Authorization", HeaderValue: "Bearer " + tok}, nil
}

type StaticBearerProvider struct {
	HeaderName string // default: "Authorization"
	EnvVar     string // default: STATIC_BEARER_TOKEN
}

func (p StaticBearerProvider) Issue(_ context.Context, _ *http.Request, _ manifest.Route) (DownstreamCredentials, error) {
	h := p.HeaderName
	if h == "" {
		h = "Authorization"
	}
	env := p.EnvVar
	if env == "" {
		env = StaticBearerEnv
	}
	val := strings.TrimSpace(os.Getenv(env))
	if val == "" {
		return DownstreamCredentials{}, errNoStaticBearer
	}
	if strings.EqualFold(h, "Authorization") && !strings.HasPrefix(val, "Bearer ") {
		val = "Bearer " + val
	}
	return DownstreamCredentials{HeaderName: h, HeaderValue: val}, nil
}
