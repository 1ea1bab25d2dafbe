package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// FileName is the name of the settings file inside the config directory.
const FileName = "settings.json"

// ErrUnknownField is returned for a Field outside the declared set.
var ErrUnknownField = errors.New("settings: unknown field")

// Loader is the read side of Store, enough for components that only observe
// preferences.
type Loader interface {
	Load() Settings
}

// Store reads and writes Settings at a fixed path.
type Store struct {
	fs     afero.Fs
	path   string
	logger *zap.Logger
}

// NewStore returns a store backed by fs at path.
func NewStore(fs afero.Fs, path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		fs:     fs,
		path:   path,
		logger: logger.Named("settings"),
	}
}

// NewOSStore is NewStore on the real filesystem with the file placed in dir.
func NewOSStore(dir string, logger *zap.Logger) *Store {
	return NewStore(afero.NewOsFs(), filepath.Join(dir, FileName), logger)
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Load never fails: a missing, unreadable or malformed file yields Default.
// Keys absent from an otherwise valid file keep their default value.
func (s *Store) Load() Settings {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("read settings failed, using defaults", zap.String("path", s.path), zap.Error(err))
		}
		return Default()
	}

	out := Default()
	if err := sonic.ConfigStd.Unmarshal(data, &out); err != nil {
		s.logger.Warn("malformed settings file, using defaults", zap.String("path", s.path), zap.Error(err))
		return Default()
	}
	return out
}

// Save replaces the file atomically: the record is written to a temp file in
// the same directory and renamed over the target.
func (s *Store) Save(st Settings) error {
	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	data, err := sonic.ConfigStd.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	tmp, err := afero.TempFile(s.fs, dir, FileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp settings file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("write settings: %w", err)
	}
	if err := s.fs.Chmod(tmpName, 0o644); err != nil {
		s.logger.Debug("chmod temp settings file failed", zap.Error(err))
	}
	if err := s.fs.Rename(tmpName, s.path); err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("replace settings file: %w", err)
	}
	return nil
}

// Toggle flips exactly one field, persists the record and returns the new
// value of that field. Nothing is written when f is unknown.
func (s *Store) Toggle(f Field) (bool, error) {
	next, err := s.Load().Flip(f)
	if err != nil {
		return false, err
	}
	if err := s.Save(next); err != nil {
		return false, err
	}
	v, _ := next.Get(f)
	s.logger.Info("setting toggled", zap.Stringer("field", f), zap.Bool("value", v))
	return v, nil
}
