// Package logging builds the process-wide structured logger, grounded on
// _examples/2lar-b2/backend's zap.Config-based initializer.
package logging

import (
	"strings"

	"go.uber.org/zap"
)

// New builds a zap.Logger for level and environment. level is one of
// "debug", "info", "warn", "error" (case-insensitive; unrecognized values
// fall back to "info"). A production environment uses zap's JSON encoder
// config; any other environment uses the human-readable development one.
func New(level string, environment string) (*zap.Logger, error) {
	var cfg zap.Config
	if environment == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	switch strings.ToLower(level) {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	return cfg.Build()
}
