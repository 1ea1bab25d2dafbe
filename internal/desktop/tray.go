package desktop

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/chatgpt-desktop/chatgpt-desktop/internal/settings"
)

// ErrTrayNotReady is returned by a backend asked to render before the OS
// tray is available.
var ErrTrayNotReady = errors.New("tray not ready")

// TrayTitle is the base tooltip text.
const TrayTitle = "ChatGPT Desktop"

// RestartSuffix marks a menu label whose state the live window will only
// show after a restart.
const RestartSuffix = " (restart to apply)"

// Action is a tray menu command. The set is closed; Dispatch rejects any
// value outside it.
type Action int

const (
	ActionShowHide Action = iota
	ActionToggleNotifications
	ActionToggleDecorations
	ActionToggleCloseToTray
	ActionQuit
)

func (a Action) String() string {
	switch a {
	case ActionShowHide:
		return "show_hide"
	case ActionToggleNotifications:
		return "toggle_notifications"
	case ActionToggleDecorations:
		return "toggle_decorations"
	case ActionToggleCloseToTray:
		return "toggle_close_to_tray"
	case ActionQuit:
		return "quit"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// MenuEntry is one tray menu item.
type MenuEntry struct {
	Action Action
	Label  string
}

// TrayState is everything the tray shows, derived from Settings.
type TrayState struct {
	Icon    []byte
	Tooltip string
	Menu    []MenuEntry
}

// TrayBackend renders TrayState with the platform tray.
type TrayBackend interface {
	// Run blocks until Quit. onReady runs once the tray exists; onClick runs
	// on a primary click of the icon itself.
	Run(onReady, onClick func())
	// Apply replaces icon, tooltip and menu. onAction receives menu clicks.
	Apply(state TrayState, onAction func(Action)) error
	Quit()
}

// Tooltip is the tray tooltip for s.
func Tooltip(s settings.Settings) string {
	parts := []string{TrayTitle}
	if s.CloseToTray {
		parts = append(parts, "(Close to Tray)")
	}
	if !s.NotificationsEnabled {
		parts = append(parts, "(Notifications Off)")
	}
	return strings.Join(parts, " ")
}

// Menu is the fixed five-item tray menu for s.
func Menu(s settings.Settings) []MenuEntry {
	notifications := "Enable Notifications"
	if s.NotificationsEnabled {
		notifications = "Disable Notifications"
	}
	decorations := "Hide Window Decorations"
	if s.HideDecorations {
		decorations = "Show Window Decorations"
	}
	closeToTray := "Close to Tray"
	if s.CloseToTray {
		closeToTray = "✓ Close to Tray"
	}
	return []MenuEntry{
		{ActionShowHide, "Show/Hide"},
		{ActionToggleNotifications, notifications},
		{ActionToggleDecorations, decorations},
		{ActionToggleCloseToTray, closeToTray},
		{ActionQuit, "Quit"},
	}
}

// TrayController keeps the tray in sync with settings and routes its
// events.
type TrayController struct {
	store   SettingsStore
	window  *WindowManager
	icons   *IconLoader
	backend TrayBackend
	logger  *zap.Logger

	mu        sync.Mutex
	stopOnce  sync.Once
	observers []Refresher
}

// NewTrayController wires a controller; call Run to create the tray.
func NewTrayController(store SettingsStore, window *WindowManager, icons *IconLoader, backend TrayBackend, logger *zap.Logger) *TrayController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrayController{
		store:   store,
		window:  window,
		icons:   icons,
		backend: backend,
		logger:  logger.Named("tray"),
	}
}

// Run starts the platform tray and blocks until it exits.
func (c *TrayController) Run() {
	c.logger.Info("initializing system tray")
	c.backend.Run(c.Refresh, func() {
		c.logger.Debug("tray icon clicked")
		c.dispatchLogged(ActionShowHide)
	})
	c.logger.Info("system tray exited")
}

// State derives the full tray presentation from s.
func (c *TrayController) State(s settings.Settings) TrayState {
	menu := Menu(s)
	if c.window.DecorationsPending(s) {
		for k := range menu {
			if menu[k].Action == ActionToggleDecorations {
				menu[k].Label += RestartSuffix
			}
		}
	}
	return TrayState{
		Icon:    c.icons.Load(s.TrayIconLight),
		Tooltip: Tooltip(s),
		Menu:    menu,
	}
}

// Observe registers r to be refreshed after every tray rebuild, whether or
// not the tray itself could be built. Call it before Run.
func (c *TrayController) Observe(r Refresher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, r)
}

// Refresh rebuilds icon, tooltip and menu from the current settings. A
// failed build is logged and skipped for this cycle.
func (c *TrayController) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() {
		for _, o := range c.observers {
			o.Refresh()
		}
	}()

	state := c.State(c.store.Load())
	if err := c.backend.Apply(state, c.dispatchLogged); err != nil {
		c.logger.Warn("tray build failed", zap.Error(err))
		return
	}
	c.logger.Debug("tray rebuilt", zap.String("tooltip", state.Tooltip))
}

func (c *TrayController) dispatchLogged(a Action) {
	if err := c.Dispatch(a); err != nil {
		c.logger.Warn("tray action failed", zap.Stringer("action", a), zap.Error(err))
	}
}

// Dispatch executes a. Every toggle is followed by a full tray rebuild.
func (c *TrayController) Dispatch(a Action) error {
	c.logger.Info("tray action", zap.Stringer("action", a))

	switch a {
	case ActionShowHide:
		c.window.ToggleVisibility()
		return nil
	case ActionToggleNotifications:
		return c.toggle(settings.FieldNotifications, nil)
	case ActionToggleDecorations:
		return c.toggle(settings.FieldDecorations, c.window.ApplyDecorations)
	case ActionToggleCloseToTray:
		return c.toggle(settings.FieldCloseToTray, nil)
	case ActionQuit:
		c.Stop()
		c.window.Quit()
		return nil
	}
	return fmt.Errorf("unknown tray action %v", a)
}

// toggle flips f, runs apply on success and rebuilds the tray last so the
// menu reflects what apply achieved.
func (c *TrayController) toggle(f settings.Field, apply func()) error {
	_, err := c.store.Toggle(f)
	if err == nil && apply != nil {
		apply()
	}
	c.Refresh()
	return err
}

// Stop removes the tray. It is safe to call more than once.
func (c *TrayController) Stop() {
	c.stopOnce.Do(c.backend.Quit)
}
