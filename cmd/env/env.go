// Package env holds the environment and flag wiring shared by the commands
package env

import (
	"flag"
	"log/slog"
	"os"
	"strings"
)

// Prefix is the environment variable prefix of the pipeline and server flags
const Prefix = "FXWATCH_"

// ParseLevel converts a level name (debug|info|warn|error) to a slog level.
// Unknown names map to info
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates the stdout text logger at the given level
func NewLogger(level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: ParseLevel(level),
	}))
}

// RegisterLogLevel registers the log level flag
func RegisterLogLevel(fs *flag.FlagSet, level *string) {
	fs.StringVar(
		level,
		"log-level",
		"info",
		"the log level (debug, info, warn, error)",
	)
}

// PrefixedOr returns the value of the prefixed environment variable (Prefix + name),
// or the fallback when it is unset or empty
func PrefixedOr(name, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(Prefix + name)); v != "" {
		return v
	}

	return fallback
}
