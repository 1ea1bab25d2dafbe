// Package platform resolves the per-user directories the shell writes to.
package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"go.uber.org/zap"
)

// AppID names the per-user config and data directories.
const AppID = "chatgpt-desktop"

// ErrNoDownloadsDir is returned when the platform has no Downloads folder.
var ErrNoDownloadsDir = errors.New("downloads directory not available")

// Dirs resolves config, data and Downloads locations. A non-empty Root
// relocates config and data under a single directory.
type Dirs struct {
	Root   string
	logger *zap.Logger
}

// NewDirs returns resolvers rooted at root, or at the XDG/known-folder
// locations when root is empty.
func NewDirs(root string, logger *zap.Logger) *Dirs {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dirs{Root: root, logger: logger.Named("platform")}
}

// ConfigDir holds settings.json.
func (d *Dirs) ConfigDir() string {
	if d.Root != "" {
		return filepath.Join(d.Root, "config")
	}
	return filepath.Join(xdg.ConfigHome, AppID)
}

// DataDir holds webview state.
func (d *Dirs) DataDir() string {
	if d.Root != "" {
		return filepath.Join(d.Root, "data")
	}
	return filepath.Join(xdg.DataHome, AppID)
}

// DownloadsDir returns the user's Downloads folder.
func (d *Dirs) DownloadsDir() (string, error) {
	dir := xdg.UserDirs.Download
	if dir == "" {
		return "", ErrNoDownloadsDir
	}
	return dir, nil
}

// WebviewCacheDir creates and returns the webview data directory, or "" when
// it cannot be created; the webview then uses its own default location.
func (d *Dirs) WebviewCacheDir() string {
	dir := filepath.Join(d.DataDir(), "webview-cache")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		d.logger.Warn("create webview cache dir failed", zap.String("dir", dir), zap.Error(err))
		return ""
	}
	return dir
}

// ResourceDir is the directory packaged resources ship next to the binary.
func ResourceDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	return resourceDirFor(exe), nil
}
