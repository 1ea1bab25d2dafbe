package desktop

import (
	"errors"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/chatgpt-desktop/chatgpt-desktop/internal/policy"
	"github.com/chatgpt-desktop/chatgpt-desktop/internal/settings"
)

// MainWindowName is the logical name of the single main window.
const MainWindowName = "main"

// ErrNoWindow is returned by operations that need the main window before it
// was created.
var ErrNoWindow = errors.New("main window not created")

// Window is the native window hosting the web content.
type Window interface {
	Show()
	Hide()
	IsVisible() bool
	Focus()
	// SetDecorations reports whether the live frame now matches visible. A
	// false return means the change waits for the next launch.
	SetDecorations(visible bool) bool
	Eval(js string)
	OpenExternal(url string)
	Quit()
}

// SettingsStore is the settings service injected into the window, tray and
// command layers.
type SettingsStore interface {
	settings.Loader
	Save(settings.Settings) error
	Toggle(settings.Field) (bool, error)
}

// WindowManager owns the lifecycle of the main window: it is attached once,
// hidden and shown for the rest of the process, and closed only on Quit or
// when close-to-tray is off.
type WindowManager struct {
	settings settings.Loader
	script   string
	logger   *zap.Logger

	window   atomic.Pointer[windowRef]
	quitting atomic.Bool

	// frame is what the live window shows: frameUnknown until Attach.
	frame atomic.Int32
}

const (
	frameUnknown int32 = iota
	frameDecorated
	frameFrameless
)

func frameFor(hideDecorations bool) int32 {
	if hideDecorations {
		return frameFrameless
	}
	return frameDecorated
}

type windowRef struct{ Window }

// NewWindowManager returns a manager; script is evaluated on every page load.
func NewWindowManager(loader settings.Loader, script string, logger *zap.Logger) *WindowManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WindowManager{
		settings: loader,
		script:   script,
		logger:   logger.Named("window"),
	}
}

// Attach registers the native window once it exists and applies the
// decoration preference, which the toolkit cannot do earlier. Later calls
// are ignored: the main window is never recreated.
func (m *WindowManager) Attach(w Window) {
	if !m.window.CompareAndSwap(nil, &windowRef{w}) {
		m.logger.Warn("main window already attached, ignoring")
		return
	}
	m.logger.Info("main window attached", zap.String("name", MainWindowName))
	m.ApplyDecorations()
}

func (m *WindowManager) current() (Window, bool) {
	ref := m.window.Load()
	if ref == nil {
		return nil, false
	}
	return ref.Window, true
}

// BeforeClose is the close-intent handler. The preference is re-read on
// every request so a tray toggle applies without recreating the window.
// It returns true to cancel the close.
func (m *WindowManager) BeforeClose() bool {
	if m.quitting.Load() {
		return false
	}
	if !m.settings.Load().CloseToTray {
		m.logger.Info("close requested, exiting")
		return false
	}

	w, ok := m.current()
	if !ok {
		return false
	}
	m.logger.Info("close requested, hiding to tray")
	w.Hide()
	return true
}

// ApplyDecorations pushes hideDecorations from the current settings to the
// live window.
func (m *WindowManager) ApplyDecorations() {
	w, ok := m.current()
	if !ok {
		return
	}
	hide := m.settings.Load().HideDecorations
	if !w.SetDecorations(!hide) {
		m.logger.Info("window decorations change applies after restart", zap.Bool("hide", hide))
		m.frame.Store(frameFor(!hide))
		return
	}
	m.frame.Store(frameFor(hide))
}

// DecorationsPending reports whether s asks for a frame the live window
// does not show yet.
func (m *WindowManager) DecorationsPending(s settings.Settings) bool {
	frame := m.frame.Load()
	return frame != frameUnknown && frame != frameFor(s.HideDecorations)
}

// ToggleVisibility hides a visible window, or shows and focuses a hidden one.
func (m *WindowManager) ToggleVisibility() {
	w, ok := m.current()
	if !ok {
		return
	}
	if w.IsVisible() {
		w.Hide()
		return
	}
	w.Show()
	w.Focus()
}

// InjectScript evaluates the page bootstrap script in the current document.
func (m *WindowManager) InjectScript() {
	w, ok := m.current()
	if !ok || m.script == "" {
		return
	}
	w.Eval(m.script)
}

// Reload forces a full reload of the hosted page.
func (m *WindowManager) Reload() error {
	w, ok := m.current()
	if !ok {
		return ErrNoWindow
	}
	w.Eval("window.location.reload();")
	return nil
}

// OpenWindow applies the new-window policy to url. It returns true when the
// target may render in-app; otherwise url has been handed to the OS browser,
// unless it is a page-generated blob:/data: document, which is dropped.
func (m *WindowManager) OpenWindow(url string) bool {
	if policy.ClassifyNewWindow(url) == policy.Allow {
		return true
	}
	if policy.Generated(url) {
		m.logger.Warn("new window with generated document denied")
		return false
	}
	m.logger.Info("new window denied, opening in browser", zap.String("url", url))
	if w, ok := m.current(); ok {
		w.OpenExternal(url)
	}
	return false
}

// OpenLink applies the link-click rule to a click on target made while the
// page shows current. It returns true when target went to the OS browser and
// the page must not navigate.
func (m *WindowManager) OpenLink(target, current string) bool {
	if !policy.ShouldOpenExternally(target, current) {
		return false
	}
	w, ok := m.current()
	if !ok {
		return false
	}
	m.logger.Info("link leaves the allow-list, opening in browser", zap.String("url", target))
	w.OpenExternal(target)
	return true
}

// Quit terminates the application, bypassing close-to-tray.
func (m *WindowManager) Quit() {
	m.quitting.Store(true)
	if w, ok := m.current(); ok {
		w.Quit()
	}
}
