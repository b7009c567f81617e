package core

import (
	"log/slog"
	"os"
)

// Logger provides structured logging for newsdeck components
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new logger instance
func NewLogger() *Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})

	return &Logger{Logger: slog.New(handler)}
}

// NewLoggerWith wraps an existing slog logger
func NewLoggerWith(logger *slog.Logger) *Logger {
	return &Logger{Logger: logger}
}

// ForComponent returns a logger tagged with a component name
func (l *Logger) ForComponent(name string) *Logger {
	return &Logger{Logger: l.Logger.With("component", name)}
}

// WithUser returns a logger with user context
func (l *Logger) WithUser(userID int, email string) *Logger {
	return &Logger{Logger: l.Logger.With("user_id", userID, "user_email", email)}
}
