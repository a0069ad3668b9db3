// Package logging configures colored structured logging with tint.
//
// Usage:
//
//	logging.Setup(os.Stderr, "debug")   // explicit level
//	logging.Setup(os.Stderr, "")        // level from TIPSPLIT_LOG_LEVEL, default info
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// LevelEnv is consulted when Setup is given an empty level.
const LevelEnv = "TIPSPLIT_LOG_LEVEL"

// Setup installs a tint handler writing to w as the default slog logger.
// Unknown level names fall back to info.
func Setup(w io.Writer, level string) {
	if level == "" {
		level = os.Getenv(LevelEnv)
	}
	lvl, err := ParseLevel(level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(New(w, lvl))
}

// New returns a tint-backed logger at the given level.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(
		tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			AddSource:  level <= slog.LevelDebug,
		}),
	)
}

// ParseLevel maps debug, info, warn and error (any case) to a slog level.
// An empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
