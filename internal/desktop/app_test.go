package desktop

import (
	"io"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/chatgpt-desktop/chatgpt-desktop/internal/config"
	"github.com/chatgpt-desktop/chatgpt-desktop/internal/settings"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(config.New(), "")
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestStartPage(t *testing.T) {
	rec := httptest.NewRecorder()
	StartPage("https://chatgpt.com/?a=1&b=2").ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	resp := rec.Result()
	body, _ := io.ReadAll(resp.Body)
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	page := string(body)
	if !strings.Contains(page, `url=https://chatgpt.com/?a=1&amp;b=2`) {
		t.Errorf("meta refresh target not escaped: %s", page)
	}
	if !strings.Contains(page, `window.location.replace("https://chatgpt.com/?a=1&b=2")`) {
		t.Errorf("script redirect missing: %s", page)
	}
}

func TestBrowserArgs(t *testing.T) {
	tests := []struct {
		name      string
		args      string
		userAgent string
		want      string
	}{
		{"both", "--enable-zero-copy", "UA/1.0", `--enable-zero-copy --user-agent="UA/1.0"`},
		{"agent only", "", "UA/1.0", `--user-agent="UA/1.0"`},
		{"none", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{BrowserArgs: tt.args, UserAgent: tt.userAgent}
			if got := BrowserArgs(cfg); got != tt.want {
				t.Errorf("BrowserArgs() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExportBrowserArgsKeepsExisting(t *testing.T) {
	t.Setenv(webview2ArgsEnv, "--custom")
	if err := ExportBrowserArgs(testConfig(t)); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv(webview2ArgsEnv); got != "--custom" {
		t.Errorf("%s = %q, want the pre-set value", webview2ArgsEnv, got)
	}
}

func TestAppOptions(t *testing.T) {
	s := settings.Default()
	s.HideDecorations = true
	store := newMemStore(s)

	app, err := NewApp(Deps{Config: testConfig(t), Store: store, CacheDir: "/cache"})
	if err != nil {
		t.Fatal(err)
	}
	if app.Tray != nil {
		t.Error("tray controller built without a backend")
	}

	opts := app.Options()
	if !opts.Frameless {
		t.Error("Frameless = false with hideDecorations=true")
	}
	if opts.Width != 1200 || opts.Height != 800 || opts.MinWidth != 400 || opts.MinHeight != 300 {
		t.Errorf("geometry = %dx%d min %dx%d", opts.Width, opts.Height, opts.MinWidth, opts.MinHeight)
	}
	if opts.Title != "ChatGPT Desktop" {
		t.Errorf("Title = %q", opts.Title)
	}
	if len(opts.Bind) != 1 || opts.Bind[0] != app.Commands {
		t.Error("Commands not bound")
	}
	if opts.Windows.WebviewUserDataPath != "/cache" {
		t.Errorf("WebviewUserDataPath = %q", opts.Windows.WebviewUserDataPath)
	}
	if !strings.Contains(opts.BindingsAllowedOrigins, "https://chatgpt.com") {
		t.Errorf("BindingsAllowedOrigins = %q", opts.BindingsAllowedOrigins)
	}
}

func TestNewAppWarnsOnOffListStartURL(t *testing.T) {
	obs, logs := observer.New(zap.WarnLevel)
	cfg := testConfig(t)
	cfg.URL = "https://example.org/"

	if _, err := NewApp(Deps{Config: cfg, Store: newMemStore(settings.Default()), Logger: zap.New(obs)}); err != nil {
		t.Fatal(err)
	}
	if logs.FilterMessageSnippet("off the allow-list").Len() != 1 {
		t.Errorf("warnings = %v, want one about the start url", logs.All())
	}

	obs, logs = observer.New(zap.WarnLevel)
	if _, err := NewApp(Deps{Config: testConfig(t), Store: newMemStore(settings.Default()), Logger: zap.New(obs)}); err != nil {
		t.Fatal(err)
	}
	if logs.Len() != 0 {
		t.Errorf("unexpected warnings for the default url: %v", logs.All())
	}
}
