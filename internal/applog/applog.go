// Package applog centralizes zap logger construction so every command in
// cmd/gitgov and every adapter shares one configuration: human-readable
// console output by default, JSON when --output json is in effect, level
// driven by config.LogLevel / GITGOV_LOG_LEVEL.
package applog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a *zap.Logger. jsonOutput selects the JSON encoder (used
// when the CLI's --output flag is "json", so log lines and command
// output are both machine-parseable); level is one of "debug", "info",
// "warn", "error" and defaults to info on anything else.
func New(level string, jsonOutput bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if !jsonOutput {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.TimeKey = "" // terse console output; timestamps add noise to interactive CLI use
	}
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	return cfg.Build()
}

func parseLevel(level string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel
	}
	return l
}

// Nop returns a logger that discards everything, for tests and for
// commands run with no logger explicitly wired.
func Nop() *zap.Logger {
	return zap.NewNop()
}
