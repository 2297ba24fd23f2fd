// Package logging builds the service logger from the logging section of the
// configuration record.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eugenenazirov/relay-service/internal/config"
)

// FileName is the log file created inside the configured log directory.
const FileName = "relay-service.log"

// New creates a JSON logger writing to stdout and, when the log directory
// can be created, to FileName inside it. debug forces the debug level.
func New(cfg config.LoggingConfig, debug bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.Encoding = "json"
	zcfg.EncoderConfig.TimeKey = "timestamp"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.EncoderConfig.StacktraceKey = "stacktrace"
	zcfg.DisableStacktrace = false
	zcfg.Level = zap.NewAtomicLevelAt(ParseLevel(cfg.Level, debug))

	var dirErr error
	if cfg.Dirname != "" {
		if dirErr = os.MkdirAll(cfg.Dirname, 0o755); dirErr == nil {
			zcfg.OutputPaths = append(zcfg.OutputPaths, filepath.Join(cfg.Dirname, FileName))
		}
	}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	if dirErr != nil {
		logger.Warn("file logging disabled", zap.String("dirname", cfg.Dirname), zap.Error(dirErr))
	}
	return logger, nil
}

// ParseLevel maps a configured level name onto a zap level. Unknown names
// yield info.
func ParseLevel(name string, debug bool) zapcore.Level {
	if debug {
		return zapcore.DebugLevel
	}

	switch strings.ToLower(strings.TrimSpace(name)) {
	case "silly", "verbose", "debug":
		return zapcore.DebugLevel
	case "http", "info":
		return zapcore.InfoLevel
	}

	level, err := zapcore.ParseLevel(name)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}
