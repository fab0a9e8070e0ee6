package logger

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// logDir honours LOG_DIR and falls back to ./log.
func logDir() string {
	dir := strings.TrimSpace(os.Getenv("LOG_DIR"))
	if dir == "" {
		dir = "log"
	}
	_ = os.MkdirAll(dir, 0o755)
	return dir
}

// NewLog tees JSON output to stdout and a rotating file named n under the
// log directory.
func NewLog(n string) *zap.Logger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return tee(n, cfg)
}

// newAccessLog omits the message key; access lines are all fields.
func newAccessLog(n string) *zap.Logger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.MessageKey = zapcore.OmitKey
	return tee(n, cfg)
}

func tee(n string, cfg zapcore.EncoderConfig) *zap.Logger {
	w := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(logDir(), n),
		MaxSize:    50, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
	})
	enc := zapcore.NewJSONEncoder(cfg)
	core := zapcore.NewTee(
		zapcore.NewCore(enc, w, zap.InfoLevel),
		zapcore.NewCore(enc.Clone(), zapcore.Lock(os.Stdout), zap.InfoLevel),
	)
	return zap.New(core)
}
