package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var logLevelMapping = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// ParseLevel maps a LOG_LEVEL value to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	logLevel, ok := logLevelMapping[strings.ToLower(strings.TrimSpace(level))]
	if !ok {
		return slog.LevelInfo
	}
	return logLevel
}

// New returns a JSON logger writing to w and tagged with runID.
func New(w io.Writer, level slog.Level, runID string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})).With("run_id", runID)
}

// InitDefault installs the process logger. Logs go to stderr so benchmark
// results on stdout stay machine-readable.
func InitDefault(runID string) {
	slog.SetDefault(New(os.Stderr, ParseLevel(os.Getenv("LOG_LEVEL")), runID))
}
