package serverfx

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/joeydtaylor/steeze-session/pkg/bundlefx"
	"github.com/joeydtaylor/steeze-session/pkg/core"
	"github.com/joeydtaylor/steeze-session/pkg/identity"
	"github.com/joeydtaylor/steeze-session/pkg/manifest"
	"github.com/joeydtaylor/steeze-session/pkg/middleware/auth"
	"github.com/joeydtaylor/steeze-session/pkg/middleware/logger"
	"github.com/joeydtaylor/steeze-session/pkg/proxy"
	"github.com/joeydtaylor/steeze-session/pkg/session/cache"
	"github.com/joeydtaylor/steeze-session/pkg/transport/httpx"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Options allow env keys/defaults to be overridden per deployment.
type Options struct {
	Service         string // for logs only
	ManifestEnv     string // e.g. "GATEWAY_MANIFEST"
	DefaultManifest string // e.g. "manifest.toml"
	ListenAddrEnv   string // e.g. "SERVER_LISTEN_ADDRESS"
	DefaultListen   string // e.g. ":4000"
	TLSCertEnv      string // e.g. "SSL_SERVER_CERTIFICATE"
	TLSKeyEnv       string // e.g. "SSL_SERVER_KEY"
}

func DefaultOptions() Options {
	return Options{
		Service:         "steeze-session",
		ManifestEnv:     "GATEWAY_MANIFEST",
		DefaultManifest: "manifest.toml",
		ListenAddrEnv:   "SERVER_LISTEN_ADDRESS",
		DefaultListen:   ":4000",
		TLSCertEnv:      "SSL_SERVER_CERTIFICATE",
		TLSKeyEnv:       "SSL_SERVER_KEY",
	}
}

// ManifestPath resolves the manifest location from the environment.
func (o Options) ManifestPath() string { return envOr(o.ManifestEnv, o.DefaultManifest) }

// ---- Providers ----

func provideManifest(opts Options) (manifest.Config, error) {
	return manifest.Load(opts.ManifestPath())
}

func provideIdentity(cfg manifest.Config) *identity.Client {
	return identity.New(cfg.Backend.URL, nil, time.Duration(cfg.Backend.TimeoutMS)*time.Millisecond)
}

func provideSessionConfig(cfg manifest.Config) auth.Config {
	s := cfg.Session
	return auth.Config{
		AccessCookie:        s.AccessCookie,
		RefreshCookie:       s.RefreshCookie,
		AccessMaxAge:        time.Duration(s.AccessMaxAgeSeconds) * time.Second,
		RefreshMaxAge:       time.Duration(s.RefreshMaxAgeSeconds) * time.Second,
		VerifyTTL:           time.Duration(s.VerifyTTLSeconds) * time.Second,
		ProfileTTL:          time.Duration(s.ProfileTTLSeconds) * time.Second,
		SweepInterval:       time.Duration(s.SweepIntervalSeconds) * time.Second,
		LoginPath:           s.LoginPath,
		PublicPaths:         s.PublicPaths,
		TrustForwardedProto: s.TrustForwardedProto,
	}
}

func provideForwarder(cfg manifest.Config, log *zap.Logger) (*proxy.Forwarder, error) {
	p := cfg.Proxy
	return proxy.New(proxy.Config{
		BaseURL:               cfg.Backend.URL,
		Prefix:                p.Prefix,
		StreamBodies:          p.Streaming(),
		BufferLimit:           p.BufferLimitBytes,
		MultipartMemory:       p.MultipartMemoryBytes,
		FollowRedirects:       p.Follow(),
		ResponseHeaderTimeout: time.Duration(p.ResponseHeaderTimeoutMS) * time.Millisecond,
	}, log.Named("proxy"))
}

// ---- Router ----

type routerDeps struct {
	fx.In

	Manifest manifest.Config
	AuthMW   *auth.Middleware
	Accounts core.Accounts
	LogMW    *logger.Middleware
	Proxy    *proxy.Forwarder

	Metrics http.Handler `name:"metrics"`

	R   httpx.Router
	Log *zap.Logger
}

func provideRouter(d routerDeps) http.Handler {
	return core.BuildRouter(d.Manifest, core.BuildDeps{
		Auth:     d.AuthMW,
		Accounts: d.Accounts,
		LogMW:    d.LogMW,
		Metrics:  d.Metrics,
		Proxy:    d.Proxy,
		Router:   d.R,
		Log:      d.Log,
	})
}

// ---- Server lifecycle ----

type serverDeps struct {
	fx.In
	Opts   Options
	Logger *zap.Logger
	App    http.Handler `name:"app"`
}

func registerHooks(lc fx.Lifecycle, d serverDeps) {
	addr := envOr(d.Opts.ListenAddrEnv, d.Opts.DefaultListen)
	cert := os.Getenv(d.Opts.TLSCertEnv)
	key := os.Getenv(d.Opts.TLSKeyEnv)

	// WriteTimeout stays unset: proxied downloads stream for as long as the
	// backend sends.
	srv := &http.Server{
		Addr:              addr,
		Handler:           d.App,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS13, MaxVersion: tls.VersionTLS13},
	}
	useTLS := fileExists(cert) && fileExists(key)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			if useTLS {
				d.Logger.Info("server starting (TLS)",
					zap.String("service", d.Opts.Service),
					zap.String("addr", ln.Addr().String()),
					zap.String("cert", cert),
				)
				go func() {
					if err := srv.ServeTLS(ln, cert, key); err != nil && !errors.Is(err, http.ErrServerClosed) {
						d.Logger.Fatal("server failed", zap.Error(err))
					}
				}()
				return nil
			}
			d.Logger.Info("server starting (PLAINTEXT)",
				zap.String("service", d.Opts.Service),
				zap.String("addr", ln.Addr().String()),
			)
			srv.TLSConfig = nil
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					d.Logger.Fatal("server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			d.Logger.Info("server stopping", zap.String("service", d.Opts.Service))
			return srv.Shutdown(ctx)
		},
	})
}

// ---- Public Fx module ----

func Module(opts Options) fx.Option {
	return fx.Options(
		fx.Supply(opts),
		fx.Provide(provideManifest),

		// Session state and the identity backend
		fx.Provide(cache.New),
		fx.Provide(provideIdentity),
		fx.Provide(
			func(c *identity.Client) auth.IdentityClient { return c },
			func(c *identity.Client) core.Accounts { return c },
		),
		fx.Provide(provideSessionConfig),

		// Middleware + metrics handler
		bundlefx.Module,

		fx.Provide(provideForwarder),
		fx.Provide(httpx.NewChi),

		// Router (named "app")
		fx.Provide(
			fx.Annotate(
				provideRouter,
				fx.ResultTags(`name:"app"`),
			),
		),

		fx.Invoke(registerHooks),
	)
}

// ---- helpers ----

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
