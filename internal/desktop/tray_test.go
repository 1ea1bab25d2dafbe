package desktop

import (
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/chatgpt-desktop/chatgpt-desktop/internal/settings"
)

func TestTooltip(t *testing.T) {
	tests := []struct {
		closeToTray   bool
		notifications bool
		want          string
	}{
		{true, false, "ChatGPT Desktop (Close to Tray) (Notifications Off)"},
		{false, true, "ChatGPT Desktop"},
		{true, true, "ChatGPT Desktop (Close to Tray)"},
		{false, false, "ChatGPT Desktop (Notifications Off)"},
	}
	for _, tt := range tests {
		s := settings.Default()
		s.CloseToTray = tt.closeToTray
		s.NotificationsEnabled = tt.notifications
		if got := Tooltip(s); got != tt.want {
			t.Errorf("Tooltip(closeToTray=%v, notifications=%v) = %q, want %q", tt.closeToTray, tt.notifications, got, tt.want)
		}
	}
}

func TestMenu(t *testing.T) {
	labels := func(entries []MenuEntry) []string {
		var out []string
		for _, e := range entries {
			out = append(out, e.Label)
		}
		return out
	}

	tests := []struct {
		name string
		s    settings.Settings
		want []string
	}{
		{
			"defaults",
			settings.Default(),
			[]string{"Show/Hide", "Disable Notifications", "Hide Window Decorations", "Close to Tray", "Quit"},
		},
		{
			"all flipped",
			settings.Settings{NotificationsEnabled: false, HideDecorations: true, CloseToTray: true},
			[]string{"Show/Hide", "Enable Notifications", "Show Window Decorations", "✓ Close to Tray", "Quit"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := Menu(tt.s)
			got := labels(entries)
			if len(got) != len(tt.want) {
				t.Fatalf("Menu() = %q, want %q", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("Menu()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
			order := []Action{ActionShowHide, ActionToggleNotifications, ActionToggleDecorations, ActionToggleCloseToTray, ActionQuit}
			for i, a := range order {
				if entries[i].Action != a {
					t.Errorf("Menu()[%d].Action = %v, want %v", i, entries[i].Action, a)
				}
			}
		})
	}
}

func newTestTray(s settings.Settings) (*TrayController, *settings.Store, *fakeWindow, *fakeBackend) {
	store := newMemStore(s)
	window := NewWindowManager(store, "", nil)
	w := newFakeWindow()
	window.Attach(w)
	icons := NewIconLoader(afero.NewMemMapFs(), nil, AppIcon(), nil)
	backend := &fakeBackend{}
	return NewTrayController(store, window, icons, backend, nil), store, w, backend
}

func TestTrayRunBuildsFromSettings(t *testing.T) {
	s := settings.Default()
	s.CloseToTray = true
	c, _, _, backend := newTestTray(s)

	c.Run()
	if len(backend.applied) != 1 {
		t.Fatalf("applied %d states, want 1", len(backend.applied))
	}
	if got := backend.last().Tooltip; got != "ChatGPT Desktop (Close to Tray)" {
		t.Errorf("tooltip = %q", got)
	}
	if len(backend.last().Icon) == 0 {
		t.Error("tray icon empty")
	}
}

func TestTrayToggleRebuildsAndPersists(t *testing.T) {
	tests := []struct {
		action Action
		field  settings.Field
	}{
		{ActionToggleNotifications, settings.FieldNotifications},
		{ActionToggleDecorations, settings.FieldDecorations},
		{ActionToggleCloseToTray, settings.FieldCloseToTray},
	}

	for _, tt := range tests {
		t.Run(tt.action.String(), func(t *testing.T) {
			c, store, _, backend := newTestTray(settings.Default())
			c.Refresh()

			// menu clicks arrive through the callback handed to the backend
			backend.onAction(tt.action)

			want, _ := settings.Default().Flip(tt.field)
			if got := store.Load(); got != want {
				t.Errorf("settings after %v = %+v, want %+v", tt.action, got, want)
			}
			if len(backend.applied) != 2 {
				t.Fatalf("applied %d states, want 2", len(backend.applied))
			}
			if got, wantTip := backend.last().Tooltip, Tooltip(want); got != wantTip {
				t.Errorf("tooltip = %q, want %q", got, wantTip)
			}
		})
	}
}

func TestTrayToggleDecorationsAppliesToWindow(t *testing.T) {
	c, _, w, _ := newTestTray(settings.Default())
	if err := c.Dispatch(ActionToggleDecorations); err != nil {
		t.Fatal(err)
	}
	if w.decorations {
		t.Error("window decorations still visible after toggle")
	}
}

func TestTrayShowHideAndIconClickConverge(t *testing.T) {
	c, _, w, _ := newTestTray(settings.Default())

	if err := c.Dispatch(ActionShowHide); err != nil {
		t.Fatal(err)
	}
	if w.IsVisible() {
		t.Fatal("menu Show/Hide did not hide the window")
	}

	clickBackend := &clickingBackend{}
	c.backend = clickBackend
	c.Run()
	if !w.IsVisible() || w.focused != 1 {
		t.Errorf("icon click: visible=%v focused=%d, want shown and focused", w.IsVisible(), w.focused)
	}
}

// clickingBackend simulates a primary click on the icon as soon as it runs.
type clickingBackend struct{ fakeBackend }

func (b *clickingBackend) Run(onReady, onClick func()) {
	onReady()
	onClick()
}

func TestTrayQuit(t *testing.T) {
	c, _, w, backend := newTestTray(settings.Default())
	if err := c.Dispatch(ActionQuit); err != nil {
		t.Fatal(err)
	}
	c.Stop()
	if !w.quit {
		t.Error("Quit did not terminate the window")
	}
	if backend.quits != 1 {
		t.Errorf("backend quit %d times, want 1", backend.quits)
	}
}

func TestTrayUnknownAction(t *testing.T) {
	c, _, _, _ := newTestTray(settings.Default())
	if err := c.Dispatch(Action(99)); err == nil {
		t.Error("Dispatch(99) returned nil error")
	}
}

func TestTrayBuildFailureIsSwallowed(t *testing.T) {
	c, store, _, backend := newTestTray(settings.Default())
	backend.failWith = errors.New("no tray")

	if err := c.Dispatch(ActionToggleNotifications); err != nil {
		t.Fatalf("Dispatch() error = %v, want nil when only the tray build fails", err)
	}
	if store.Load().NotificationsEnabled {
		t.Error("toggle not persisted when tray build failed")
	}
	if len(backend.applied) != 0 {
		t.Errorf("partial tray applied: %v", backend.applied)
	}
}

func TestTrayMarksDecorationsRestart(t *testing.T) {
	store := newMemStore(settings.Default())
	window := NewWindowManager(store, "", nil)
	w := newFakeWindow()
	w.fixedFrame = true
	window.Attach(w)
	backend := &fakeBackend{}
	c := NewTrayController(store, window, NewIconLoader(afero.NewMemMapFs(), nil, AppIcon(), nil), backend, nil)

	decorationsLabel := func() string {
		for _, e := range backend.last().Menu {
			if e.Action == ActionToggleDecorations {
				return e.Label
			}
		}
		return ""
	}

	if err := c.Dispatch(ActionToggleDecorations); err != nil {
		t.Fatal(err)
	}
	if got, want := decorationsLabel(), "Show Window Decorations"+RestartSuffix; got != want {
		t.Errorf("label after toggle = %q, want %q", got, want)
	}

	if err := c.Dispatch(ActionToggleDecorations); err != nil {
		t.Fatal(err)
	}
	if got, want := decorationsLabel(), "Hide Window Decorations"; got != want {
		t.Errorf("label after toggling back = %q, want %q", got, want)
	}
}

func TestTrayLiveDecorationsHaveNoRestartMark(t *testing.T) {
	c, _, _, backend := newTestTray(settings.Default())
	if err := c.Dispatch(ActionToggleDecorations); err != nil {
		t.Fatal(err)
	}
	for _, e := range backend.last().Menu {
		if strings.HasSuffix(e.Label, RestartSuffix) {
			t.Errorf("label %q marked for restart although the frame changed live", e.Label)
		}
	}
}

func TestTrayRefreshNotifiesObservers(t *testing.T) {
	c, _, _, backend := newTestTray(settings.Default())
	obs := &countingRefresher{}
	c.Observe(obs)

	c.Refresh()
	backend.failWith = errors.New("no tray")
	c.Refresh()

	if obs.n != 2 {
		t.Errorf("observer refreshed %d times, want 2 including the failed build", obs.n)
	}
}
