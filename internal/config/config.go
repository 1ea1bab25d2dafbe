// Package config loads the launch-time application configuration. User
// preferences toggled at runtime live in package settings instead.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// DefaultUserAgent is a current desktop Chrome string; the hosted site
// degrades for unknown webview agents.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// DefaultBrowserArgs are the GPU acceleration hints passed to the webview.
const DefaultBrowserArgs = "--enable-features=WebRTCPipeWireCapturer,VaapiVideoDecodeLinuxGL --enable-gpu-rasterization --enable-zero-copy --disable-software-rasterizer --enable-accelerated-video-decode"

// EnvPrefix is the prefix of environment overrides, e.g. CHATGPT_DESKTOP_LOG_LEVEL.
const EnvPrefix = "CHATGPT_DESKTOP"

// Config represents application configuration
type Config struct {
	URL           string              `mapstructure:"url"`
	Title         string              `mapstructure:"title"`
	UserAgent     string              `mapstructure:"user_agent"`
	BrowserArgs   string              `mapstructure:"browser_args"`
	DataDir       string              `mapstructure:"data_dir"`
	Window        WindowConfig        `mapstructure:"window"`
	Log           LogConfig           `mapstructure:"log"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
}

// WindowConfig is the initial geometry of the main window.
type WindowConfig struct {
	Width     int `mapstructure:"width"`
	Height    int `mapstructure:"height"`
	MinWidth  int `mapstructure:"min_width"`
	MinHeight int `mapstructure:"min_height"`
}

// LogConfig represents logger configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// NotificationsConfig bounds the background notification workers.
type NotificationsConfig struct {
	Workers int `mapstructure:"workers"`
}

// SetDefaults registers every key so that env overrides and Unmarshal see it.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("url", "https://chatgpt.com")
	v.SetDefault("title", "ChatGPT Desktop")
	v.SetDefault("user_agent", DefaultUserAgent)
	v.SetDefault("browser_args", DefaultBrowserArgs)
	v.SetDefault("data_dir", "")
	v.SetDefault("window.width", 1200)
	v.SetDefault("window.height", 800)
	v.SetDefault("window.min_width", 400)
	v.SetDefault("window.min_height", 300)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("notifications.workers", 4)
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file at path into v and decodes it.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration
func (c *Config) Validate() error {
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", c.URL, err)
	}
	if (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return fmt.Errorf("url must be an absolute http(s) URL, got %q", c.URL)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return errors.New("window width and height must be positive")
	}
	if c.Window.MinWidth <= 0 || c.Window.MinHeight <= 0 {
		return errors.New("window min_width and min_height must be positive")
	}
	if c.Window.MinWidth > c.Window.Width || c.Window.MinHeight > c.Window.Height {
		return errors.New("window minimum size exceeds initial size")
	}
	if c.Notifications.Workers < 0 {
		return errors.New("notifications.workers must not be negative")
	}
	return nil
}
