package desktop

import (
	"context"
	"sync/atomic"

	"github.com/wailsapp/wails/v2/pkg/runtime"
	"go.uber.org/zap"
)

// wailsWindow drives the Wails main window through the runtime package.
type wailsWindow struct {
	ctx       context.Context
	logger    *zap.Logger
	visible   atomic.Bool
	frameless bool
}

// newWailsWindow wraps the window created with the given Frameless option.
func newWailsWindow(ctx context.Context, frameless bool, logger *zap.Logger) *wailsWindow {
	w := &wailsWindow{ctx: ctx, frameless: frameless, logger: logger.Named("wails")}
	w.visible.Store(true)
	return w
}

func (w *wailsWindow) Show() {
	runtime.WindowShow(w.ctx)
	if runtime.WindowIsMinimised(w.ctx) {
		runtime.WindowUnminimise(w.ctx)
	}
	w.visible.Store(true)
}

func (w *wailsWindow) Hide() {
	runtime.WindowHide(w.ctx)
	w.visible.Store(false)
}

// IsVisible is tracked locally; the runtime only reports minimised state.
func (w *wailsWindow) IsVisible() bool {
	return w.visible.Load() && !runtime.WindowIsMinimised(w.ctx)
}

// Focus brings the window to the front.
func (w *wailsWindow) Focus() {
	runtime.WindowSetAlwaysOnTop(w.ctx, true)
	runtime.WindowSetAlwaysOnTop(w.ctx, false)
}

// SetDecorations can only be honoured when the window is created (see
// App.Options); the runtime has no call to add or remove a frame later.
func (w *wailsWindow) SetDecorations(visible bool) bool {
	if visible != w.frameless {
		return true
	}
	w.logger.Info("window decorations take effect on next launch", zap.Bool("visible", visible))
	return false
}

func (w *wailsWindow) Eval(js string) {
	runtime.WindowExecJS(w.ctx, js)
}

func (w *wailsWindow) OpenExternal(url string) {
	runtime.BrowserOpenURL(w.ctx, url)
}

func (w *wailsWindow) Quit() {
	runtime.Quit(w.ctx)
}

// menuUpdater pushes application menu changes to the running window.
func menuUpdater(ctx context.Context) func() {
	return func() { runtime.MenuUpdateApplicationMenu(ctx) }
}
