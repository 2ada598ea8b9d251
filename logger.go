package ebb

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var nopLogger = slog.New(nopHandler{})

// loggerPtr stores the active logger; nil means nopLogger.
var loggerPtr atomic.Pointer[slog.Logger]

// SetLogger configures the logger used by ebb. By default ebb produces no
// log output. Pass nil to restore the silent default.
//
// Log levels used by ebb:
//   - [slog.LevelDebug]: per-node persistence traces, type registration
//   - [slog.LevelInfo]: scene lifecycle (setup, load, save)
//   - [slog.LevelWarn]: debug-mode tree shape warnings
//
// Example:
//
//	ebb.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	loggerPtr.Store(l)
}

// Logger returns the current logger used by ebb.
func Logger() *slog.Logger {
	if l := loggerPtr.Load(); l != nil {
		return l
	}
	return nopLogger
}
