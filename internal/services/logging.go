package services

import (
	"context"
	"log/slog"
	"time"
)

// ServiceLogger provides structured logging for service layer operations
type ServiceLogger struct {
	logger *slog.Logger
	config LogConfig
}

type LogConfig struct {
	Service   string
	Component string
}

func NewServiceLogger(logger *slog.Logger, config LogConfig) *ServiceLogger {
	return &ServiceLogger{
		logger: logger.With("service", config.Service, "component", config.Component),
		config: config,
	}
}

// LogOperation records one completed operation with its outcome and timing.
func (l *ServiceLogger) LogOperation(ctx context.Context, operation, runID string, duration time.Duration, err error) {
	level := slog.LevelInfo
	status := "success"

	if err != nil {
		status = "error"
		level = slog.LevelError
		if IsTaskCodeError(err) {
			// Resolution failures are expected operator input errors
			status = "validation_error"
			level = slog.LevelWarn
		}
	}

	attrs := []any{
		"operation", operation,
		"run_id", runID,
		"status", status,
		"duration_ms", duration.Milliseconds(),
	}
	if err != nil {
		attrs = append(attrs, "error", err.Error())
	}

	l.logger.Log(ctx, level, "service operation", attrs...)
}
