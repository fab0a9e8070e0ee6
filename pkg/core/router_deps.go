package core

import (
	"context"
	"net/http"

	"github.com/joeydtaylor/steeze-session/pkg/identity"
	"github.com/joeydtaylor/steeze-session/pkg/middleware/auth"
	"github.com/joeydtaylor/steeze-session/pkg/middleware/logger"
	"github.com/joeydtaylor/steeze-session/pkg/proxy"
	httpx "github.com/joeydtaylor/steeze-session/pkg/transport/httpx"
	"go.uber.org/zap"
)

// Accounts is the part of the identity client the session routes call.
type Accounts interface {
	Login(ctx context.Context, username, password string) (identity.Tokens, error)
	Register(ctx context.Context, reg identity.Registration) error
}

type BuildDeps struct {
	Auth     *auth.Middleware
	Accounts Accounts
	LogMW    *logger.Middleware
	Metrics  http.Handler
	Proxy    *proxy.Forwarder
	Router   httpx.Router
	Creds    CredentialsProvider
	Log      *zap.Logger
}
