package logging

import (
	"go.uber.org/zap"

	wailslogger "github.com/wailsapp/wails/v2/pkg/logger"
)

// Wails forwards the toolkit's log output to zap.
type Wails struct {
	l *zap.Logger
}

var _ wailslogger.Logger = (*Wails)(nil)

// NewWails returns an adapter logging under the "wails" name.
func NewWails(l *zap.Logger) *Wails {
	return &Wails{l: l.Named("wails").WithOptions(zap.AddCallerSkip(1))}
}

func (w *Wails) Print(message string) { w.l.Info(message) }
func (w *Wails) Trace(message string) { w.l.Debug(message) }
func (w *Wails) Debug(message string) { w.l.Debug(message) }
func (w *Wails) Info(message string) { w.l.Info(message) }
func (w *Wails) Warning(message string) { w.l.Warn(message) }
func (w *Wails) Error(message string) { w.l.Error(message) }

// Fatal is logged at error level; the toolkit terminates on its own.
func (w *Wails) Fatal(message string) { w.l.Error(message) }

// Level maps a zap level onto the toolkit's level so both filter alike.
func Level(l *zap.Logger) wailslogger.LogLevel {
	switch {
	case l.Core().Enabled(zap.DebugLevel):
		return wailslogger.DEBUG
	case l.Core().Enabled(zap.InfoLevel):
		return wailslogger.INFO
	case l.Core().Enabled(zap.WarnLevel):
		return wailslogger.WARNING
	}
	return wailslogger.ERROR
}
