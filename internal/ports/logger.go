package ports

import (
	"context"
	"log/slog"
)

// Logger is the structured logger used by the application layer and the
// logging observer. Arguments are slog key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// Log writes an entry at an explicit level.
	Log(ctx context.Context, level slog.Level, msg string, args ...any)

	// With returns a logger that adds args to every entry.
	With(args ...any) Logger

	// LogError writes err under the "error" key at error level.
	LogError(err error, msg string, args ...any)
}
