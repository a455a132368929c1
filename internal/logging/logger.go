// Package logging defines the structured-logging interface used across the
// client. Diagnostics never go to stdout, which belongs to the terminal UI;
// they are written to a rotating file (zap) or to stderr (slog).
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "list fetched", "resource", "staff", "page", 2)
type Logger interface {
	// Debug logs verbose diagnostics.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// Options selects and tunes the logger built by New.
type Options struct {
	Level string // debug / info / warn / error
	File  string // rotating log file; empty means stderr via slog
	JSON  bool
}

// New builds a Logger and a cleanup func that flushes buffered entries.
func New(opt Options) (Logger, func()) {
	if opt.File == "" {
		return NewStderrSlogLogger(opt.Level), func() {}
	}
	return NewZapLogger(opt)
}
