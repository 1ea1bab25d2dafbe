package desktop

import (
	"go.uber.org/zap"
)

// darwinBackend leaves the tray out: both the webview and the status item
// need the AppKit main loop, and the webview runs it. The application menu
// carries the tray actions instead.
type darwinBackend struct {
	logger *zap.Logger
}

// NewTrayBackend returns the platform tray backend.
func NewTrayBackend(logger *zap.Logger) TrayBackend {
	return &darwinBackend{logger: logger.Named("systray")}
}

func (b *darwinBackend) Run(onReady, onClick func()) {
	b.logger.Info("system tray disabled on macOS, using the application menu")
	onReady()
}

func (b *darwinBackend) Apply(state TrayState, _ func(Action)) error {
	b.logger.Debug("tray state", zap.String("tooltip", state.Tooltip))
	return nil
}

func (b *darwinBackend) Quit() {}
