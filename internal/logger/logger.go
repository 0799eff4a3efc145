package logger

import (
	"io"
	"log/slog"
)

var Logger = slog.Default()

// InitWithWriter configures the process-wide slog logger on w. The CLI passes
// stderr so stdout stays clean for results.
func InitWithWriter(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	Logger = slog.New(slog.NewTextHandler(w, opts))
	slog.SetDefault(Logger)
	return Logger
}
