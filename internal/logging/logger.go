// Package logging defines the minimal structured-logging capability shared
// by every component in the daemon. Components accept a Logger through
// their constructor; nothing in this module reaches for a package-global
// logger.
package logging

import (
	"os"

	charm "github.com/charmbracelet/log"
)

// Logger is the capability every component depends on. It intentionally
// mirrors the shape of a structured logger's leveled methods so any
// backend (charmbracelet/log, slog, a test spy) can implement it.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// NoOpLogger discards everything. Useful as a safe default and in tests
// that don't care about log output.
type NoOpLogger struct{}

func (NoOpLogger) Debug(string, ...interface{}) {}
func (NoOpLogger) Info(string, ...interface{})  {}
func (NoOpLogger) Warn(string, ...interface{})  {}
func (NoOpLogger) Error(string, ...interface{}) {}

// charmLogger adapts charmbracelet/log's Logger to our Logger interface.
type charmLogger struct {
	l *charm.Logger
}

// New returns the default Logger, a charmbracelet/log logger writing to
// stderr at the given level ("debug", "info", "warn", "error").
func New(level string) Logger {
	l := charm.NewWithOptions(os.Stderr, charm.Options{
		ReportTimestamp: true,
		ReportCaller:    false,
	})
	l.SetLevel(parseLevel(level))
	return &charmLogger{l: l}
}

func parseLevel(level string) charm.Level {
	switch level {
	case "debug":
		return charm.DebugLevel
	case "warn", "warning":
		return charm.WarnLevel
	case "error":
		return charm.ErrorLevel
	default:
		return charm.InfoLevel
	}
}

func (c *charmLogger) Debug(msg string, args ...interface{}) { c.l.Debug(msg, args...) }
func (c *charmLogger) Info(msg string, args ...interface{})  { c.l.Info(msg, args...) }
func (c *charmLogger) Warn(msg string, args ...interface{})  { c.l.Warn(msg, args...) }
func (c *charmLogger) Error(msg string, args ...interface{}) { c.l.Error(msg, args...) }

// With returns a Logger that prefixes every record with the given
// key/value pairs, when the underlying backend supports it.
func With(log Logger, keyvals ...interface{}) Logger {
	if c, ok := log.(*charmLogger); ok {
		return &charmLogger{l: c.l.With(keyvals...)}
	}
	return log
}
