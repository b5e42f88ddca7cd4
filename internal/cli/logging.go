package cli

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"tray-kanban/internal/store"
)

func debugEnabled() bool {
	v := strings.TrimSpace(os.Getenv("KANBAN_DEBUG"))
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	return err != nil || b
}

// newServeLogger logs to w (stderr for serve), at debug when KANBAN_DEBUG
// is set.
func newServeLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if debugEnabled() {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newSurfaceLogger keeps the terminal clean: surfaces only log when
// KANBAN_DEBUG is set, and then to <config dir>/<name>.log.
func newSurfaceLogger(name string) (*slog.Logger, func()) {
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	if !debugEnabled() {
		return discard, func() {}
	}
	dir, err := store.ConfigDir()
	if err != nil {
		return discard, func() {}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return discard, func() {}
	}
	f, err := os.OpenFile(filepath.Join(dir, name+".log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return discard, func() {}
	}
	log := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return log, func() { _ = f.Close() }
}
