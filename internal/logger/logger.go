package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// Log is the process-wide logger. It stays a no-op until Init runs so that
// packages may log unconditionally.
var Log = zap.NewNop()

// Init builds the global logger for the given level and environment
// ("development" uses the human-readable config, anything else production).
func Init(level, env string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}

	var cfg zap.Config
	if env == "development" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = lvl

	log, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	Log = log
	return nil
}
