// Package notify delivers desktop notifications.
package notify

import (
	"fmt"

	"github.com/gen2brain/beeep"
	"go.uber.org/zap"

	"github.com/chatgpt-desktop/chatgpt-desktop/internal/settings"
)

// Notifier shows a title/body notification to the user.
type Notifier interface {
	Notify(title, body string) error
}

// Desktop uses the platform notification service.
type Desktop struct {
	// IconPath is optional; an empty path lets the platform pick its default.
	IconPath string
}

// Notify implements Notifier.
func (d Desktop) Notify(title, body string) error {
	if err := beeep.Notify(title, body, d.IconPath); err != nil {
		return fmt.Errorf("desktop notification: %w", err)
	}
	return nil
}

// Gated drops notifications while the user has them disabled. Settings are
// read at send time so a toggle applies to messages already queued.
type Gated struct {
	next     Notifier
	settings settings.Loader
	logger   *zap.Logger
}

// NewGated wraps next.
func NewGated(next Notifier, loader settings.Loader, logger *zap.Logger) *Gated {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gated{next: next, settings: loader, logger: logger.Named("notify")}
}

// Enabled reports the current notificationsEnabled preference.
func (g *Gated) Enabled() bool {
	return g.settings.Load().NotificationsEnabled
}

// Notify implements Notifier.
func (g *Gated) Notify(title, body string) error {
	if !g.Enabled() {
		g.logger.Debug("notification suppressed", zap.String("title", title))
		return nil
	}
	return g.next.Notify(title, body)
}
