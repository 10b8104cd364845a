package app

import (
	"github.com/guttosm/casebreak-service/config"
	"github.com/guttosm/casebreak-service/internal/logger"
	"github.com/guttosm/casebreak-service/internal/middleware"
)

// InitializeLogger sets up the global logger. It runs before anything else so
// startup failures are logged in the configured format.
func InitializeLogger(cfg config.LogConfig) {
	logger.Init(cfg.Level, cfg.Pretty)
}

// asyncLoggerConfig sizes the log persistence workers. Unset values keep the
// middleware defaults.
func asyncLoggerConfig(cfg config.LogConfig) middleware.AsyncLoggerConfig {
	out := middleware.DefaultAsyncLoggerConfig()
	if cfg.BufferSize > 0 {
		out.BufferSize = cfg.BufferSize
	}
	if cfg.Workers > 0 {
		out.NumWorkers = cfg.Workers
	}
	if cfg.BatchSize > 0 {
		out.BatchSize = cfg.BatchSize
	}
	if cfg.FlushInterval > 0 {
		out.FlushInterval = cfg.FlushInterval
	}
	return out
}
