// Package settings persists the user's shell preferences as a small JSON file.
//
// The file is re-read on every Load so that menu handlers, the window close
// handler and the download interceptor always observe the latest record
// without sharing in-process state.
package settings

// Settings is the only persisted record. Every combination of the five
// booleans is valid.
type Settings struct {
	NotificationsEnabled bool `json:"notifications_enabled"`
	HideDecorations      bool `json:"hide_decorations"`
	ShowTray             bool `json:"show_tray"`
	CloseToTray          bool `json:"close_to_tray"`
	TrayIconLight        bool `json:"tray_icon_light"`
}

// Default returns the record used when nothing valid is on disk.
func Default() Settings {
	return Settings{
		NotificationsEnabled: true,
		HideDecorations:      false,
		ShowTray:             true,
		CloseToTray:          false,
		TrayIconLight:        false,
	}
}

// Field identifies one toggleable boolean of Settings.
type Field int

const (
	FieldNotifications Field = iota
	FieldDecorations
	FieldShowTray
	FieldCloseToTray
	FieldTrayIconLight
)

var fieldNames = map[Field]string{
	FieldNotifications: "notifications_enabled",
	FieldDecorations:   "hide_decorations",
	FieldShowTray:      "show_tray",
	FieldCloseToTray:   "close_to_tray",
	FieldTrayIconLight: "tray_icon_light",
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return "unknown"
}

// Get returns the value of field f.
func (s Settings) Get(f Field) (bool, error) {
	switch f {
	case FieldNotifications:
		return s.NotificationsEnabled, nil
	case FieldDecorations:
		return s.HideDecorations, nil
	case FieldShowTray:
		return s.ShowTray, nil
	case FieldCloseToTray:
		return s.CloseToTray, nil
	case FieldTrayIconLight:
		return s.TrayIconLight, nil
	}
	return false, ErrUnknownField
}

// Flip returns a copy of s with exactly field f inverted.
func (s Settings) Flip(f Field) (Settings, error) {
	switch f {
	case FieldNotifications:
		s.NotificationsEnabled = !s.NotificationsEnabled
	case FieldDecorations:
		s.HideDecorations = !s.HideDecorations
	case FieldShowTray:
		s.ShowTray = !s.ShowTray
	case FieldCloseToTray:
		s.CloseToTray = !s.CloseToTray
	case FieldTrayIconLight:
		s.TrayIconLight = !s.TrayIconLight
	default:
		return s, ErrUnknownField
	}
	return s, nil
}
