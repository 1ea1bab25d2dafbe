// Package desktop hosts the web application in the main window and keeps
// the tray, the window and the persisted settings in step.
package desktop

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/linux"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
	"github.com/wailsapp/wails/v2/pkg/options/windows"
	"go.uber.org/zap"

	"github.com/chatgpt-desktop/chatgpt-desktop/internal/config"
	"github.com/chatgpt-desktop/chatgpt-desktop/internal/core"
	"github.com/chatgpt-desktop/chatgpt-desktop/internal/download"
	"github.com/chatgpt-desktop/chatgpt-desktop/internal/logging"
	"github.com/chatgpt-desktop/chatgpt-desktop/internal/policy"
)

// shutdownTimeout bounds how long pending notifications may delay exit.
const shutdownTimeout = 3 * time.Second

// Deps are the collaborators App is built from.
type Deps struct {
	Config     *config.Config
	Store      SettingsStore
	Downloads  *download.Interceptor
	Dispatcher *core.Dispatcher
	Icons      *IconLoader
	Tray       TrayBackend
	CacheDir   string
	Logger     *zap.Logger
}

// App is the Wails application: lifecycle callbacks plus the bound command
// surface.
type App struct {
	cfg        *config.Config
	store      SettingsStore
	dispatcher *core.Dispatcher
	cacheDir   string
	logger     *zap.Logger

	// frameless is the frame the window was created with
	frameless atomic.Bool

	Window   *WindowManager
	Tray     *TrayController
	AppMenu  *AppMenu
	Commands *Commands
}

// NewApp wires the window manager, tray controller and commands.
func NewApp(deps Deps) (*App, error) {
	script, err := RenderInitScript()
	if err != nil {
		return nil, err
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	window := NewWindowManager(deps.Store, script, logger)
	a := &App{
		cfg:        deps.Config,
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		cacheDir:   deps.CacheDir,
		logger:     logger.Named("app"),
		Window:     window,
	}

	if deps.Config != nil && policy.Classify(deps.Config.URL) == policy.Deny {
		a.logger.Warn("start url is off the allow-list, its links will open in the browser",
			zap.String("url", deps.Config.URL))
	}

	var refresher Refresher
	if deps.Tray != nil {
		a.Tray = NewTrayController(deps.Store, window, deps.Icons, deps.Tray, logger)
		refresher = a.Tray
		if useAppMenu() {
			a.AppMenu = NewAppMenu(deps.Store, a.Tray.dispatchLogged)
			a.Tray.Observe(a.AppMenu)
		}
	}
	a.Commands = NewCommands(deps.Store, window, refresher, deps.Downloads, logger)
	return a, nil
}

// Startup is called when the app starts. The context is saved
// so we can call the runtime methods.
func (a *App) Startup(ctx context.Context) {
	a.Window.Attach(newWailsWindow(ctx, a.frameless.Load(), a.logger))
	if a.AppMenu != nil {
		a.AppMenu.SetUpdater(menuUpdater(ctx))
	}
	if a.Tray != nil {
		go a.Tray.Run()
	}
	a.logger.Info("application started")
}

// DomReady injects the page script into every loaded document.
func (a *App) DomReady(ctx context.Context) {
	a.Window.InjectScript()
}

// BeforeClose returns true to keep the process alive with the window hidden.
func (a *App) BeforeClose(ctx context.Context) bool {
	return a.Window.BeforeClose()
}

// Shutdown removes the tray and drains background notifications.
func (a *App) Shutdown(ctx context.Context) {
	if a.Tray != nil {
		a.Tray.Stop()
	}
	if a.dispatcher != nil {
		waitCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.dispatcher.Shutdown(waitCtx)
	}
	a.logger.Info("application stopped")
}

// Options describes the main window to Wails. Decorations are taken from the
// settings at creation, since the frame cannot change afterwards.
func (a *App) Options() *options.App {
	s := a.store.Load()
	a.frameless.Store(s.HideDecorations)

	return &options.App{
		Title:            a.cfg.Title,
		Width:            a.cfg.Window.Width,
		Height:           a.cfg.Window.Height,
		MinWidth:         a.cfg.Window.MinWidth,
		MinHeight:        a.cfg.Window.MinHeight,
		Frameless:        s.HideDecorations,
		BackgroundColour: &options.RGBA{R: 33, G: 33, B: 33, A: 255},
		AssetServer: &assetserver.Options{
			Handler: StartPage(a.cfg.URL),
		},
		OnStartup:                a.Startup,
		OnDomReady:               a.DomReady,
		OnBeforeClose:            a.BeforeClose,
		OnShutdown:               a.Shutdown,
		Menu:                     a.applicationMenu(),
		Bind:                     []interface{}{a.Commands},
		BindingsAllowedOrigins:   BindingOrigins(),
		EnableDefaultContextMenu: true,
		Logger:                   logging.NewWails(a.logger),
		LogLevel:                 logging.Level(a.logger),
		Windows: &windows.Options{
			Theme:                windows.Dark,
			WebviewUserDataPath:  a.cacheDir,
			WebviewGpuIsDisabled: false,
		},
		Mac: &mac.Options{
			Appearance: mac.NSAppearanceNameDarkAqua,
			About: &mac.AboutInfo{
				Title:   a.cfg.Title,
				Message: "Desktop shell for ChatGPT",
				Icon:    AppIcon(),
			},
		},
		Linux: &linux.Options{
			Icon:             AppIcon(),
			WebviewGpuPolicy: linux.WebviewGpuPolicyAlways,
			ProgramName:      "chatgpt-desktop",
		},
	}
}

func (a *App) applicationMenu() *menu.Menu {
	if a.AppMenu == nil {
		return nil
	}
	return a.AppMenu.Menu()
}

// BindingOrigins lists the remote origins allowed to call Commands.
func BindingOrigins() string {
	return strings.Join([]string{
		"https://chatgpt.com",
		"https://*.chatgpt.com",
		"https://chat.openai.com",
	}, ",")
}

// StartPage serves the local document the window opens with; it sends the
// webview on to target.
func StartPage(target string) http.Handler {
	quoted := strconv.Quote(target)
	page := fmt.Sprintf(`<!doctype html>
<html><head><meta charset="utf-8">
<meta http-equiv="refresh" content="0; url=%s">
<style>html,body{background:#212121;margin:0;height:100%%}</style>
</head><body><script>window.location.replace(%s);</script></body></html>`,
		html.EscapeString(target), quoted)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write([]byte(page))
	})
}

// webview2ArgsEnv is read by the WebView2 runtime on Windows.
const webview2ArgsEnv = "WEBVIEW2_ADDITIONAL_BROWSER_ARGUMENTS"

// ExportBrowserArgs hands the user agent and GPU flags to the webview
// process. An existing environment value wins.
func ExportBrowserArgs(cfg *config.Config) error {
	if _, ok := os.LookupEnv(webview2ArgsEnv); ok {
		return nil
	}
	args := BrowserArgs(cfg)
	if args == "" {
		return nil
	}
	return os.Setenv(webview2ArgsEnv, args)
}

// BrowserArgs is the Chromium argument string for cfg.
func BrowserArgs(cfg *config.Config) string {
	var parts []string
	if cfg.BrowserArgs != "" {
		parts = append(parts, cfg.BrowserArgs)
	}
	if cfg.UserAgent != "" {
		parts = append(parts, "--user-agent="+strconv.Quote(cfg.UserAgent))
	}
	return strings.Join(parts, " ")
}
