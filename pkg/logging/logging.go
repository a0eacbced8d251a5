package logging

import (
	"strings"

	"racing-career/server/pkg/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a zap.Logger from the logging section of the config.
// Encoding "console" selects the development encoder with coloured levels;
// anything else produces production JSON with ISO8601 timestamps.
// Unknown levels fall back to info.
func NewLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zc zap.Config
	if strings.EqualFold(cfg.Encoding, "console") {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zc = zap.NewProductionConfig()
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(parseLevel(cfg.Level))

	return zc.Build()
}

// MustNewLogger creates a logger and panics if initialization fails.
func MustNewLogger(cfg config.LogConfig) *zap.Logger {
	logger, err := NewLogger(cfg)
	if err != nil {
		panic(err)
	}
	return logger
}

func parseLevel(level string) zapcore.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		return zapcore.InfoLevel
	}
	var zl zapcore.Level
	if err := zl.Set(level); err != nil {
		return zapcore.InfoLevel
	}
	return zl
}
