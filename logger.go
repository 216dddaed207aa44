package docbolt

import (
	"context"
	"io"
	"log/slog"
	"math"
	"os"
)

// Logger wraps slog.Logger with adapter-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)})),
	}
}

// WithType adds a record type field to the logger.
func (l *Logger) WithType(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("type", name),
	}
}

// LogFind logs a find operation.
func (l *Logger) LogFind(ctx context.Context, typeName string, matched int, count int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "find failed",
			"type", typeName,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "find",
		"type", typeName,
		"matched", matched,
		"count", count,
	)
}

// LogCreate logs a create operation.
func (l *Logger) LogCreate(ctx context.Context, typeName string, n int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "create failed",
			"type", typeName,
			"records", n,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "create",
		"type", typeName,
		"records", n,
	)
}

// LogUpdate logs an update operation.
func (l *Logger) LogUpdate(ctx context.Context, typeName string, items int, affected int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "update failed",
			"type", typeName,
			"items", items,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "update",
		"type", typeName,
		"items", items,
		"affected", affected,
	)
}

// LogDelete logs a delete operation.
func (l *Logger) LogDelete(ctx context.Context, typeName string, affected int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "delete failed",
			"type", typeName,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "delete",
		"type", typeName,
		"affected", affected,
	)
}
