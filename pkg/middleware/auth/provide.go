package auth

import (
	"context"

	"github.com/joeydtaylor/steeze-session/pkg/session/cache"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type params struct {
	fx.In

	Client IdentityClient
	Store  *cache.Store
	Config Config
	Log    *zap.Logger
}

// ProvideAuthentication builds the session middleware from DI.
func ProvideAuthentication(p params) *Middleware {
	return New(p.Client, p.Store, p.Config, p.Log.Named("session"))
}

func registerSweeper(lc fx.Lifecycle, m *Middleware) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go m.backgroundSweep(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

var Module = fx.Options(
	fx.Provide(ProvideAuthentication),
	fx.Invoke(registerSweeper),
)
