package logger

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	systemLogFile = "system.log"
	accessLogFile = "http-access.log"
)

// ProvideLoggerMiddleware builds the access-log middleware on its own file.
func ProvideLoggerMiddleware() *Middleware { return New(newAccessLog(accessLogFile)) }

// ProvideLogger is the process-wide logger every component receives.
func ProvideLogger() *zap.Logger { return NewLog(systemLogFile) }

// flushOnStop syncs both loggers so buffered lines reach lumberjack before
// exit.
func flushOnStop(lc fx.Lifecycle, log *zap.Logger, m *Middleware) {
	lc.Append(fx.StopHook(func() {
		_ = log.Sync()
		_ = m.access.Sync()
	}))
}

var Module = fx.Options(
	fx.Provide(ProvideLoggerMiddleware),
	fx.Provide(ProvideLogger),
	fx.Invoke(flushOnStop),
)
