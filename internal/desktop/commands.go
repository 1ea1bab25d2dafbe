package desktop

import (
	"encoding/base64"
	"fmt"

	"go.uber.org/zap"

	"github.com/chatgpt-desktop/chatgpt-desktop/internal/download"
	"github.com/chatgpt-desktop/chatgpt-desktop/internal/settings"
)

// Refresher rebuilds presentation derived from settings.
type Refresher interface {
	Refresh()
}

// Commands is bound into the page as window.go.desktop.Commands. Errors
// reach the page as rejected promises.
type Commands struct {
	store     SettingsStore
	window    *WindowManager
	tray      Refresher
	downloads *download.Interceptor
	logger    *zap.Logger
}

// NewCommands returns the command surface. tray may be nil when no tray runs.
func NewCommands(store SettingsStore, window *WindowManager, tray Refresher, downloads *download.Interceptor, logger *zap.Logger) *Commands {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Commands{
		store:     store,
		window:    window,
		tray:      tray,
		downloads: downloads,
		logger:    logger.Named("commands"),
	}
}

// ReloadWebview forces a full page reload.
func (c *Commands) ReloadWebview() error {
	return c.window.Reload()
}

// GetSettings returns the current settings.
func (c *Commands) GetSettings() settings.Settings {
	return c.store.Load()
}

// SaveSettings persists a full record and re-applies window decorations.
func (c *Commands) SaveSettings(s settings.Settings) error {
	if err := c.store.Save(s); err != nil {
		return err
	}
	c.window.ApplyDecorations()
	c.refreshTray()
	return nil
}

// ToggleNotifications flips notificationsEnabled and returns the new value.
func (c *Commands) ToggleNotifications() (bool, error) {
	return c.toggle(settings.FieldNotifications, nil)
}

// ToggleDecorations flips hideDecorations, applies it to the window and
// returns the new value.
func (c *Commands) ToggleDecorations() (bool, error) {
	return c.toggle(settings.FieldDecorations, c.window.ApplyDecorations)
}

// ToggleCloseToTray flips closeToTray and returns the new value.
func (c *Commands) ToggleCloseToTray() (bool, error) {
	return c.toggle(settings.FieldCloseToTray, nil)
}

// ToggleTrayIcon flips trayIconLight and returns the new value.
func (c *Commands) ToggleTrayIcon() (bool, error) {
	return c.toggle(settings.FieldTrayIconLight, nil)
}

// OpenWindow routes a page window.open call through the new-window policy.
// true means the page may navigate to url itself.
func (c *Commands) OpenWindow(url string) bool {
	return c.window.OpenWindow(url)
}

// OpenLink hands an off-list link click to the OS browser. false means the
// page should follow the link itself.
func (c *Commands) OpenLink(target, current string) bool {
	return c.window.OpenLink(target, current)
}

// SaveDownload stores base64 content captured by the page under the
// Downloads folder and returns the final path.
func (c *Commands) SaveDownload(name string, data string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", fmt.Errorf("decode download %q: %w", name, err)
	}
	return c.downloads.Save(name, raw)
}

func (c *Commands) toggle(f settings.Field, apply func()) (bool, error) {
	v, err := c.store.Toggle(f)
	if err != nil {
		c.logger.Warn("toggle failed", zap.Stringer("field", f), zap.Error(err))
		return v, err
	}
	if apply != nil {
		apply()
	}
	c.refreshTray()
	return v, nil
}

func (c *Commands) refreshTray() {
	if c.tray != nil {
		c.tray.Refresh()
	}
}
