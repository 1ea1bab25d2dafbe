//go:build !darwin

package desktop

import (
	"bytes"
	"encoding/binary"
	"image"
	goruntime "runtime"
	"sync/atomic"

	"github.com/energye/systray"
	"go.uber.org/zap"
)

// systrayBackend renders the tray with energye/systray, which reports
// clicks on the icon separately from menu activation.
type systrayBackend struct {
	ready  atomic.Bool
	logger *zap.Logger
}

// NewTrayBackend returns the platform tray backend.
func NewTrayBackend(logger *zap.Logger) TrayBackend {
	return &systrayBackend{logger: logger.Named("systray")}
}

func (b *systrayBackend) Run(onReady, onClick func()) {
	systray.Run(func() {
		systray.SetOnClick(func(menu systray.IMenu) {
			onClick()
		})
		systray.SetOnRClick(func(menu systray.IMenu) {
			if menu == nil {
				return
			}
			if err := menu.ShowMenu(); err != nil {
				b.logger.Warn("show tray menu failed", zap.Error(err))
			}
		})
		b.ready.Store(true)
		onReady()
	}, func() {
		b.ready.Store(false)
	})
}

func (b *systrayBackend) Apply(state TrayState, onAction func(Action)) error {
	if !b.ready.Load() {
		return ErrTrayNotReady
	}

	systray.SetIcon(platformIcon(state.Icon))
	systray.SetTooltip(state.Tooltip)
	systray.ResetMenu()
	for _, entry := range state.Menu {
		action := entry.Action
		item := systray.AddMenuItem(entry.Label, entry.Label)
		item.Click(func() {
			onAction(action)
		})
	}
	return nil
}

func (b *systrayBackend) Quit() {
	systray.Quit()
}

// platformIcon converts PNG data for the Windows notification area, which
// only loads ICO resources.
func platformIcon(data []byte) []byte {
	if goruntime.GOOS != "windows" {
		return data
	}
	return pngToICO(data)
}

// pngToICO wraps a PNG image in a single-entry ICO container.
func pngToICO(data []byte) []byte {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return data
	}
	dim := func(v int) byte {
		if v >= 256 {
			return 0
		}
		return byte(v)
	}

	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, struct {
		Reserved, Type, Count uint16
	}{0, 1, 1})
	binary.Write(&buf, binary.LittleEndian, struct {
		Width, Height, Colors, Reserved byte
		Planes, BitCount                uint16
		Size, Offset                    uint32
	}{dim(cfg.Width), dim(cfg.Height), 0, 0, 1, 32, uint32(len(data)), 6 + 16})
	buf.Write(data)
	return buf.Bytes()
}
