// Package logging builds the zap.Logger every goldrelayd command uses,
// mirroring the shape of the teacher's cli/options.HandleLoggingParams:
// console encoding, ISO8601 timestamps on a terminal and no timestamps
// otherwise, plus a file sink whenever LogPath is set.
package logging

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/goldrelay/goldrelay/config"
)

// New builds a production-style logger configured from cfg, optionally
// forced to debug level.
func New(cfg config.ApplicationConfig, debug bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.LogLevel != "" {
		var err error
		level, err = zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("logging: parse level: %w", err)
		}
	}
	if debug {
		level = zapcore.DebugLevel
	}

	cc := zap.NewProductionConfig()
	cc.DisableCaller = true
	cc.DisableStacktrace = true
	cc.Encoding = "console"
	cc.Level = zap.NewAtomicLevelAt(level)
	cc.Sampling = nil
	cc.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	cc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if term.IsTerminal(int(os.Stdout.Fd())) {
		cc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cc.EncoderConfig.EncodeTime = func(_ time.Time, _ zapcore.PrimitiveArrayEncoder) {}
	}

	if cfg.LogPath != "" {
		cc.OutputPaths = append(cc.OutputPaths, cfg.LogPath)
	}

	return cc.Build()
}
