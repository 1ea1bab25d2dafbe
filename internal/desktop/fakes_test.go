package desktop

import (
	"sync"

	"github.com/spf13/afero"

	"github.com/chatgpt-desktop/chatgpt-desktop/internal/settings"
)

type fakeWindow struct {
	mu          sync.Mutex
	visible     bool
	decorations bool
	fixedFrame  bool
	focused     int
	evals       []string
	external    []string
	quit        bool
}

func newFakeWindow() *fakeWindow {
	return &fakeWindow{visible: true, decorations: true}
}

func (w *fakeWindow) Show() { w.mu.Lock(); w.visible = true; w.mu.Unlock() }
func (w *fakeWindow) Hide() { w.mu.Lock(); w.visible = false; w.mu.Unlock() }
func (w *fakeWindow) IsVisible() bool { w.mu.Lock(); defer w.mu.Unlock(); return w.visible }
func (w *fakeWindow) Focus() { w.mu.Lock(); w.focused++; w.mu.Unlock() }

// SetDecorations keeps the frame when fixedFrame is set, like a toolkit that
// only takes the frame at creation.
func (w *fakeWindow) SetDecorations(visible bool) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fixedFrame {
		return visible == w.decorations
	}
	w.decorations = visible
	return true
}

func (w *fakeWindow) Eval(js string) { w.mu.Lock(); w.evals = append(w.evals, js); w.mu.Unlock() }
func (w *fakeWindow) OpenExternal(url string) { w.mu.Lock(); w.external = append(w.external, url); w.mu.Unlock() }
func (w *fakeWindow) Quit() { w.mu.Lock(); w.quit = true; w.mu.Unlock() }

type fakeBackend struct {
	applied  []TrayState
	onAction func(Action)
	failWith error
	quits    int
}

func (b *fakeBackend) Run(onReady, onClick func()) { onReady() }

func (b *fakeBackend) Apply(state TrayState, onAction func(Action)) error {
	if b.failWith != nil {
		return b.failWith
	}
	b.applied = append(b.applied, state)
	b.onAction = onAction
	return nil
}

func (b *fakeBackend) Quit() { b.quits++ }

func (b *fakeBackend) last() TrayState {
	return b.applied[len(b.applied)-1]
}

func newMemStore(s settings.Settings) *settings.Store {
	store := settings.NewStore(afero.NewMemMapFs(), "/cfg/settings.json", nil)
	if err := store.Save(s); err != nil {
		panic(err)
	}
	return store
}
