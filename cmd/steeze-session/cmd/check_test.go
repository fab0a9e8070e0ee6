package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() { manifestPath, envFile = "", ".env" })
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCheckValidManifest(t *testing.T) {
	t.Setenv("BACKEND_URL", "")
	dir := t.TempDir()
	p := filepath.Join(dir, "manifest.toml")
	require.NoError(t, os.WriteFile(p, []byte(`
[backend]
url = "http://backend:8000/api"

[[route]]
path = "/api/*"
[route.handler]
type = "proxy"

[[route]]
path = "/login"
[route.handler]
type = "session.login"
`), 0o600))

	out, err := runCLI(t, "check", "--manifest", p, "--env-file", filepath.Join(dir, "absent.env"))
	require.NoError(t, err)
	require.Contains(t, out, "ok")
	require.Contains(t, out, "http://backend:8000/api")
	require.Contains(t, out, "session.login")
	require.Contains(t, out, "POST")
}

func TestCheckLoadsEnvFile(t *testing.T) {
	t.Setenv("BACKEND_URL", "")
	os.Unsetenv("BACKEND_URL")
	dir := t.TempDir()
	p := filepath.Join(dir, "manifest.toml")
	require.NoError(t, os.WriteFile(p, []byte(`
[[route]]
path = "/session"
[route.handler]
type = "session.state"
`), 0o600))
	env := filepath.Join(dir, "gateway.env")
	require.NoError(t, os.WriteFile(env, []byte("BACKEND_URL=https://from-env.internal/api\n"), 0o600))

	out, err := runCLI(t, "check", "--manifest", p, "--env-file", env)
	require.NoError(t, err)
	require.Contains(t, out, "https://from-env.internal/api")
}

func TestCheckInvalidManifest(t *testing.T) {
	t.Setenv("BACKEND_URL", "")
	p := filepath.Join(t.TempDir(), "manifest.toml")
	require.NoError(t, os.WriteFile(p, []byte("[backend]\nurl = \"nope\"\n"), 0o600))

	_, err := runCLI(t, "check", "--manifest", p, "--env-file", "")
	require.Error(t, err)
}
