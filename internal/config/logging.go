package config

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// SetupLogging configures the global slog logger based on args.
// Returns the log file handle (caller must close it) or nil if logging to stderr.
func SetupLogging(args Args) (*os.File, error) {
	var output io.Writer = os.Stderr
	var logFile *os.File
	json := !term.IsTerminal(int(os.Stderr.Fd()))

	if args.Log != "" {
		f, err := os.OpenFile(args.Log, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, err
		}
		logFile = f
		output = f
		json = true
	}

	slog.SetDefault(slog.New(newHandler(output, json, parseLogLevel(args.LogLevel))))

	return logFile, nil
}

// newHandler builds a JSON handler for files and pipes, text for a terminal.
func newHandler(w io.Writer, json bool, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}
	if json {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// parseLogLevel converts string to slog.Level
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
