package manifest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joeydtaylor/steeze-session/pkg/manifest"
	"github.com/stretchr/testify/require"
)

const minimal = `
[backend]
url = "http://backend:8000/api"

[[route]]
path = "/api/*"
[route.handler]
type = "proxy"
`

func TestParseAppliesDefaults(t *testing.T) {
	t.Setenv(manifest.BackendURLEnv, "")
	cfg, err := manifest.Parse([]byte(minimal))
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Backend.TimeoutMS)
	require.Equal(t, "accessToken", cfg.Session.AccessCookie)
	require.Equal(t, "refreshToken", cfg.Session.RefreshCookie)
	require.Equal(t, 3600, cfg.Session.AccessMaxAgeSeconds)
	require.Equal(t, 604800, cfg.Session.RefreshMaxAgeSeconds)
	require.Equal(t, 900, cfg.Session.VerifyTTLSeconds)
	require.Equal(t, 21600, cfg.Session.ProfileTTLSeconds)
	require.Equal(t, "/login", cfg.Session.LoginPath)
	require.Contains(t, cfg.Session.PublicPaths, "/register")
	require.Equal(t, "/api", cfg.Proxy.Prefix)
	require.True(t, cfg.Proxy.Streaming())
	require.True(t, cfg.Proxy.Follow())
	require.EqualValues(t, 10<<20, cfg.Proxy.BufferLimitBytes)

	r := cfg.Routes[0]
	require.Equal(t, "*", r.Method)
	require.Equal(t, manifest.CodecJSON, r.Codec)
	require.NotNil(t, r.Policy.DownAuth)
	require.Equal(t, manifest.DownAuthSessionBearer, r.Policy.DownAuth.Type)
}

func TestParseBackendEnvOverride(t *testing.T) {
	t.Setenv(manifest.BackendURLEnv, "https://override.internal/api")
	cfg, err := manifest.Parse([]byte(minimal))
	require.NoError(t, err)
	require.Equal(t, "https://override.internal/api", cfg.Backend.URL)
}

func TestParseExplicitFalseBools(t *testing.T) {
	t.Setenv(manifest.BackendURLEnv, "")
	cfg, err := manifest.Parse([]byte(minimal + `
[proxy]
stream_bodies = false
follow_redirects = false
`))
	require.NoError(t, err)
	require.False(t, cfg.Proxy.Streaming())
	require.False(t, cfg.Proxy.Follow())
}

func TestParseSessionRoutes(t *testing.T) {
	t.Setenv(manifest.BackendURLEnv, "")
	cfg, err := manifest.Parse([]byte(minimal + `
[[route]]
path = "login"
[route.handler]
type = "session.login"
[route.policy.rate_limit]
rps = 1
burst = 5

[[route]]
path = "/home"
[route.handler]
type = "redirect"
[route.handler.redirect]
to = "/login"
`))
	require.NoError(t, err)
	require.Len(t, cfg.Routes, 3)

	login := cfg.Routes[1]
	require.Equal(t, "/login", login.Path)
	require.Equal(t, "POST", login.Method)
	require.Equal(t, 5, login.Policy.RateLimit.Burst)

	home := cfg.Routes[2]
	require.Equal(t, "GET", home.Method)
	require.Equal(t, 302, home.Handler.Redirect.Status)
}

func TestParseRejects(t *testing.T) {
	t.Setenv(manifest.BackendURLEnv, "")
	cases := map[string]string{
		"missing backend": `
[[route]]
path = "/x"
[route.handler]
type = "session.state"
`,
		"bad scheme": `
[backend]
url = "ftp://backend"
[[route]]
path = "/x"
[route.handler]
type = "session.state"
`,
		"no routes": `
[backend]
url = "http://backend"
`,
		"unknown handler": minimal + `
[[route]]
path = "/x"
[route.handler]
type = "grpc"
`,
		"inproc without name": minimal + `
[[route]]
path = "/x"
[route.handler]
type = "inproc"
`,
		"login via GET": minimal + `
[[route]]
path = "/login"
method = "GET"
[route.handler]
type = "session.login"
`,
		"redirect without target": minimal + `
[[route]]
path = "/home"
[route.handler]
type = "redirect"
`,
		"bad downstream auth": minimal + `
[[route]]
path = "/x"
[route.handler]
type = "session.state"
[route.policy.downstream_auth]
type = "mtls"
`,
		"bad rate limit": minimal + `
[[route]]
path = "/x"
[route.handler]
type = "session.state"
[route.policy.rate_limit]
rps = 0
`,
		"duplicate route": minimal + `
[[route]]
path = "/api/*"
[route.handler]
type = "proxy"
`,
		"unknown field": minimal + `
[session]
acces_cookie = "typo"
`,
		"same cookie names": minimal + `
[session]
access_cookie = "tok"
refresh_cookie = "tok"
`,
		"relative login path": minimal + `
[session]
login_path = "login"
`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := manifest.Parse([]byte(doc))
			require.Error(t, err)
		})
	}
}

func TestLoadReadsFile(t *testing.T) {
	t.Setenv(manifest.BackendURLEnv, "")
	p := filepath.Join(t.TempDir(), "manifest.toml")
	require.NoError(t, os.WriteFile(p, []byte(minimal), 0o600))

	cfg, err := manifest.Load(p)
	require.NoError(t, err)
	require.Equal(t, "http://backend:8000/api", cfg.Backend.URL)

	_, err = manifest.Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestShippedManifestIsValid(t *testing.T) {
	t.Setenv(manifest.BackendURLEnv, "")
	cfg, err := manifest.Load(filepath.Join("..", "..", "manifest.toml"))
	require.NoError(t, err)
	require.Equal(t, "/main", cfg.Session.AfterLoginPath)
	require.NotEmpty(t, cfg.Routes)
}
