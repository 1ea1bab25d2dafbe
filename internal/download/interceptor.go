// Package download redirects webview downloads into the user's Downloads
// folder and reports their progress as desktop notifications.
package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/chatgpt-desktop/chatgpt-desktop/internal/core"
	"github.com/chatgpt-desktop/chatgpt-desktop/internal/notify"
)

// ErrNotHandled means the interceptor declined the download and the toolkit
// should apply its default behaviour.
var ErrNotHandled = errors.New("download not handled")

// DirResolver locates the Downloads folder.
type DirResolver interface {
	DownloadsDir() (string, error)
}

// Runner schedules background work without blocking the caller.
type Runner interface {
	Go(name string, fn core.Task) bool
}

type pending struct {
	id   string
	path string
}

// Interceptor is attached once per window. It tracks a single in-flight
// toolkit download: a second Requested before the first Finished replaces it.
// Save runs carry their own entry and are not affected.
type Interceptor struct {
	dirs     DirResolver
	notifier notify.Notifier
	runner   Runner
	fs       afero.Fs
	logger   *zap.Logger

	mu       sync.Mutex
	current  *pending
	reserved map[string]struct{}
}

// New returns an interceptor. notifier is expected to apply the user's
// notification preference itself (see notify.Gated).
func New(dirs DirResolver, notifier notify.Notifier, runner Runner, fs afero.Fs, logger *zap.Logger) *Interceptor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interceptor{
		dirs:     dirs,
		notifier: notifier,
		runner:   runner,
		fs:       fs,
		logger:   logger.Named("download"),
		reserved: make(map[string]struct{}),
	}
}

// Requested rewrites *dest to <Downloads>/<base name of *dest> and records it
// as the pending download. An existing file is never targeted: the name gets
// a " (n)" suffix instead. It returns false, leaving *dest untouched, when the
// Downloads folder cannot be resolved.
func (i *Interceptor) Requested(dest *string) bool {
	p, ok := i.request(*dest)
	if !ok {
		return false
	}

	i.mu.Lock()
	if i.current != nil {
		delete(i.reserved, i.current.path)
	}
	i.current = p
	i.mu.Unlock()

	*dest = p.path
	return true
}

func (i *Interceptor) request(suggested string) (*pending, bool) {
	dir, err := i.dirs.DownloadsDir()
	if err != nil {
		i.logger.Warn("downloads dir unavailable, leaving download to the webview", zap.Error(err))
		return nil, false
	}

	i.mu.Lock()
	path := i.freePath(dir, fileName(suggested))
	i.reserved[path] = struct{}{}
	i.mu.Unlock()

	p := &pending{id: uuid.NewString(), path: path}
	i.logger.Info("download requested", zap.String("id", p.id), zap.String("path", p.path))
	i.notify(p.id, "Downloading file", "Saving: "+filepath.Base(path))
	return p, true
}

// freePath picks dir/name, or "name (n).ext" when that is taken on disk or by
// another download in flight. Callers hold i.mu.
func (i *Interceptor) freePath(dir, name string) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	candidate := filepath.Join(dir, name)
	for n := 1; i.taken(candidate); n++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, n, ext))
	}
	return candidate
}

func (i *Interceptor) taken(path string) bool {
	if _, ok := i.reserved[path]; ok {
		return true
	}
	exists, err := afero.Exists(i.fs, path)
	return err == nil && exists
}

// Finished reports the outcome of the pending download. It is always
// handled; without a pending download nothing is reported.
func (i *Interceptor) Finished(success bool) bool {
	i.mu.Lock()
	p := i.current
	i.current = nil
	i.mu.Unlock()

	if p == nil {
		i.logger.Debug("download finished without a pending request", zap.Bool("success", success))
		return true
	}
	i.complete(p, success)
	return true
}

func (i *Interceptor) complete(p *pending, success bool) {
	i.mu.Lock()
	delete(i.reserved, p.path)
	i.mu.Unlock()

	i.logger.Info("download finished", zap.String("id", p.id), zap.String("path", p.path), zap.Bool("success", success))
	if success {
		i.notify(p.id, "Download completed", "Saved to: "+p.path)
	} else {
		i.notify(p.id, "Download failed", "Could not complete the download")
	}
}

// Pending returns the destination of the in-flight toolkit download, if any.
func (i *Interceptor) Pending() (string, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.current == nil {
		return "", false
	}
	return i.current.path, true
}

// Save writes a download whose bytes are already in memory and reports it
// like a toolkit download. Concurrent calls each finish their own entry. It
// returns the final path.
func (i *Interceptor) Save(name string, data []byte) (string, error) {
	p, ok := i.request(name)
	if !ok {
		return "", ErrNotHandled
	}

	err := i.write(p.path, data)
	i.complete(p, err == nil)
	if err != nil {
		return "", err
	}
	return p.path, nil
}

func (i *Interceptor) write(path string, data []byte) error {
	if err := i.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create downloads dir: %w", err)
	}
	f, err := i.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create download: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write download: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write download: %w", err)
	}
	return nil
}

func (i *Interceptor) notify(id, title, body string) {
	i.runner.Go("notify:"+id, func(ctx context.Context) error {
		return i.notifier.Notify(title, body)
	})
}

// fileName keeps only the last path element of a suggested destination.
func fileName(suggested string) string {
	name := filepath.Base(strings.ReplaceAll(suggested, "\\", "/"))
	switch name {
	case "", ".", "/", "..":
		return "download"
	}
	return name
}
