package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Init builds a logger on stderr and installs it as the zap global.
// When outputIsStdout is true, logs are JSON so they never mix with the
// artifact document on stdout. Otherwise the console encoder is used.
func Init(outputIsStdout bool, level zapcore.Level) *zap.Logger {
	logger := New(zapcore.Lock(os.Stderr), outputIsStdout, level)
	zap.ReplaceGlobals(logger)
	return logger
}

// New builds a logger writing to w.
func New(w zapcore.WriteSyncer, json bool, level zapcore.Level) *zap.Logger {
	var enc zapcore.Encoder
	if json {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(cfg)
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		enc = zapcore.NewConsoleEncoder(cfg)
	}
	return zap.New(zapcore.NewCore(enc, w, level))
}

// ParseLevel converts a string ("debug", "info", "warn", "error") to a zap
// level. Unknown strings default to info.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
