// bundlefx/bundlefx.go
package bundlefx

import (
	"github.com/joeydtaylor/steeze-session/pkg/middleware/auth"
	"github.com/joeydtaylor/steeze-session/pkg/middleware/logger"
	"github.com/joeydtaylor/steeze-session/pkg/middleware/metrics"
	"go.uber.org/fx"
)

// Module provided to fx: the session middleware (with its cache sweeper),
// loggers, and the /metrics handler tagged name:"metrics".
var Module = fx.Options(
	auth.Module,
	logger.Module,
	fx.Provide(fx.Annotate(metrics.ProvideMetrics, fx.ResultTags(`name:"metrics"`))),
)
