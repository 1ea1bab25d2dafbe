package desktop

import (
	goruntime "runtime"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/menu/keys"

	"github.com/chatgpt-desktop/chatgpt-desktop/internal/settings"
)

// AppMenu is the menu bar carrying the tray actions. It stands in for the
// tray where the status item is unavailable, and follows the settings on
// every Refresh.
type AppMenu struct {
	store settings.Loader
	menu  *menu.Menu

	notifications *menu.MenuItem
	decorations   *menu.MenuItem
	closeToTray   *menu.MenuItem

	mu     sync.Mutex
	update func()
}

// NewAppMenu builds the menu from the current settings; clicks go to dispatch.
func NewAppMenu(store settings.Loader, dispatch func(Action)) *AppMenu {
	on := func(a Action) menu.Callback {
		return func(*menu.CallbackData) { dispatch(a) }
	}

	m := menu.NewMenu()
	m.Append(menu.AppMenu())
	m.Append(menu.EditMenu())

	am := &AppMenu{store: store, menu: m}
	view := m.AddSubmenu("View")
	view.AddText("Show/Hide", keys.CmdOrCtrl("h"), on(ActionShowHide))
	view.AddSeparator()
	am.notifications = view.AddCheckbox("Notifications", false, nil, on(ActionToggleNotifications))
	am.decorations = view.AddCheckbox("Hide Window Decorations", false, nil, on(ActionToggleDecorations))
	am.closeToTray = view.AddCheckbox("Close to Tray", false, nil, on(ActionToggleCloseToTray))
	view.AddSeparator()
	view.AddText("Quit", keys.CmdOrCtrl("q"), on(ActionQuit))

	am.sync(store.Load())
	return am
}

// Menu is the menu handed to the window options.
func (m *AppMenu) Menu() *menu.Menu {
	return m.menu
}

// SetUpdater installs the call that pushes a changed menu to the live
// window. Until then Refresh only updates the model.
func (m *AppMenu) SetUpdater(update func()) {
	m.mu.Lock()
	m.update = update
	m.mu.Unlock()
}

// Refresh re-reads the settings into the checkboxes.
func (m *AppMenu) Refresh() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sync(m.store.Load())
	if m.update != nil {
		m.update()
	}
}

func (m *AppMenu) sync(s settings.Settings) {
	m.notifications.Checked = s.NotificationsEnabled
	m.decorations.Checked = s.HideDecorations
	m.closeToTray.Checked = s.CloseToTray
}

// useAppMenu reports whether this platform shows the tray actions in the
// menu bar.
func useAppMenu() bool {
	return goruntime.GOOS == "darwin"
}
