package swarmstep

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message
// formatting entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := newNopLogger()
	loggerPtr.Store(l)
}

// SetLogger configures the logger for swarmstep and its backends.
// By default, swarmstep produces no log output. Pass nil to restore
// the default silent behavior.
//
// SetLogger is safe for concurrent use: it stores the new logger
// atomically and propagates it to the registered stepper if that
// stepper accepts one.
//
// Log levels used:
//   - [slog.LevelDebug]: internal diagnostics (buffer sizes, dispatch counts)
//   - [slog.LevelInfo]: lifecycle events (stepper registered, device selected)
//   - [slog.LevelWarn]: non-fatal issues (GPU unavailable, CPU fallback)
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	stepperMu.RLock()
	s := stepper
	stepperMu.RUnlock()
	if s != nil {
		propagateLogger(s, l)
	}
}

// Logger returns the current logger. Backend packages call this to
// share the same logger configuration without import cycles.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// loggerSetter is implemented by steppers that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// propagateLogger passes the logger to a stepper if it implements
// loggerSetter. Called from both SetLogger and RegisterStepper so the
// stepper always holds the current logger.
func propagateLogger(s Stepper, l *slog.Logger) {
	if ls, ok := s.(loggerSetter); ok {
		ls.SetLogger(l)
	}
}
