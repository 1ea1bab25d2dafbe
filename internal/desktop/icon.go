package desktop

import (
	"bytes"
	_ "embed"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/chatgpt-desktop/chatgpt-desktop/internal/platform"
)

// LightIconName is the light tray icon variant shipped for dark panels.
const LightIconName = "icon-light-32x32.png"

//go:embed icons/appicon.png
var appIcon []byte

// AppIcon returns the default application icon.
func AppIcon() []byte {
	return appIcon
}

// transparentPixel is the last-resort icon: a 1x1 fully transparent PNG.
var transparentPixel = func() []byte {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, color.NRGBA{})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}()

// IconLoader picks the tray icon. The light variant is looked up in the
// candidate paths in order; the default icon and then a transparent pixel
// back it up, so Load always returns a usable image.
type IconLoader struct {
	fs         afero.Fs
	candidates []string
	fallback   []byte
	logger     *zap.Logger
}

// NewIconLoader returns a loader reading candidates from fs.
func NewIconLoader(fs afero.Fs, candidates []string, fallback []byte, logger *zap.Logger) *IconLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IconLoader{
		fs:         fs,
		candidates: candidates,
		fallback:   fallback,
		logger:     logger.Named("icon"),
	}
}

// LightIconCandidates are the packaged resource location followed by the
// development tree.
func LightIconCandidates() []string {
	var out []string
	if dir, err := platform.ResourceDir(); err == nil {
		out = append(out, filepath.Join(dir, "icons", LightIconName))
	}
	if cwd, err := os.Getwd(); err == nil {
		out = append(out, filepath.Join(cwd, "build", "icons", LightIconName))
	}
	return out
}

// Load returns the icon for the requested variant.
func (l *IconLoader) Load(light bool) []byte {
	if light {
		for _, path := range l.candidates {
			data, err := afero.ReadFile(l.fs, path)
			if err != nil {
				continue
			}
			if !isImage(data) {
				l.logger.Warn("light tray icon is not a decodable image", zap.String("path", path))
				continue
			}
			return data
		}
		l.logger.Debug("light tray icon not found, using default")
	}
	if isImage(l.fallback) {
		return l.fallback
	}
	return transparentPixel
}

func isImage(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	_, _, err := image.DecodeConfig(bytes.NewReader(data))
	return err == nil
}
