// Package logging configures the process-wide slog default for the
// billsync binaries (sessiond, sessionctl): colored tint output on stderr
// with source locations, leveled through the LOG_LEVEL environment
// variable (debug, info, warn, error; default info).
package logging

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup installs the default logger at the level named by LOG_LEVEL.
func Setup() {
	SetupWithLevel(parseLevel(os.Getenv("LOG_LEVEL")))
}

// SetupWithLevel installs the default logger at an explicit level,
// bypassing the environment.
func SetupWithLevel(level slog.Level) {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}),
	))
}

// parseLevel maps a level name to its slog level. Unknown names and the
// empty string fall back to info.
func parseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
