package main

import (
	"io"
	"log/slog"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"jobscanner/config"
)

// newLogger writes to out and, when a log file is configured, to a
// size-rotated file. The returned func closes the file.
func newLogger(cfg config.LogConfig, out io.Writer) (*slog.Logger, func()) {
	w := out
	closeFn := func() {}

	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		}
		w = io.MultiWriter(out, rotator)
		closeFn = func() { _ = rotator.Close() }
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: true,
	})
	return slog.New(handler), closeFn
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
