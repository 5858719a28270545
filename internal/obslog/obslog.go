// Package obslog configures the process-wide slog default logger, the
// way samirrijal-bilbopass/internal/pkg/logging configures its global
// handler. The core packages (netmodel, weights, cost, labeler,
// enumerator, finalizer) take no logger dependency of their own — they
// return errors and diagnostics instead; only CoreDispatcher and the demo
// cmd/fasttripsd binary log through here.
package obslog

import (
	"log/slog"
	"os"
	"strings"
)

// Setup installs slog.Default with the given level ("debug"|"info"|"warn"
// |"error", default "info") and format ("json"|"text", default "json").
func Setup(level, format string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if strings.ToLower(format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
