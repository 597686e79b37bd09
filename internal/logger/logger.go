// Package logger holds the process-wide structured logger used by the store
// to report degraded reads and failed saves.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu  sync.RWMutex
	log = slog.New(slog.NewTextHandler(os.Stderr, nil))
)

// Init configures the global logger. Level and sink may be overridden via
// MENTORHUB_LOG_LEVEL (debug|info|warn|error) and MENTORHUB_LOG_SINK
// ("file:/path/to/log"); both default to info on stderr.
func Init() {
	var level slog.Level
	switch strings.ToLower(strings.TrimSpace(os.Getenv("MENTORHUB_LOG_LEVEL"))) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var w io.Writer = os.Stderr
	if sink := os.Getenv("MENTORHUB_LOG_SINK"); strings.HasPrefix(sink, "file:") {
		path := strings.TrimPrefix(sink, "file:")
		if f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640); err == nil {
			w = f
		}
	}

	mu.Lock()
	log = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	mu.Unlock()
}

// Log returns the global logger.
func Log() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// SetLogger swaps the global logger; tests use it to capture output.
func SetLogger(l *slog.Logger) {
	mu.Lock()
	log = l
	mu.Unlock()
}
