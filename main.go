package main

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/wailsapp/wails/v2"
	"go.uber.org/zap"

	"github.com/chatgpt-desktop/chatgpt-desktop/internal/config"
	"github.com/chatgpt-desktop/chatgpt-desktop/internal/core"
	"github.com/chatgpt-desktop/chatgpt-desktop/internal/desktop"
	"github.com/chatgpt-desktop/chatgpt-desktop/internal/download"
	"github.com/chatgpt-desktop/chatgpt-desktop/internal/logging"
	"github.com/chatgpt-desktop/chatgpt-desktop/internal/notify"
	"github.com/chatgpt-desktop/chatgpt-desktop/internal/platform"
	"github.com/chatgpt-desktop/chatgpt-desktop/internal/settings"
	"github.com/chatgpt-desktop/chatgpt-desktop/internal/version"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	v := config.New()
	var (
		configPath  string
		showVersion bool
	)

	cmd := &cobra.Command{
		Use:           "chatgpt-desktop",
		Short:         "ChatGPT in a native desktop window",
		Long:          "Hosts chatgpt.com in a desktop window with a system tray, close-to-tray and native downloads",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Println(version.Full())
				return nil
			}
			cfg, err := config.Load(v, configPath)
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "Config file path")
	flags.BoolVar(&showVersion, "version", false, "Show version information and exit")
	flags.String("url", "", "Page to host (default https://chatgpt.com)")
	flags.String("data-dir", "", "Keep settings, cache and logs under this directory instead of the XDG locations")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("log-file", "", "Write JSON logs to this file instead of the console")
	bindFlags(v, cmd, map[string]string{
		"url":       "url",
		"data-dir":  "data_dir",
		"log-level": "log.level",
		"log-file":  "log.file",
	})
	return cmd
}

func bindFlags(v *viper.Viper, cmd *cobra.Command, keys map[string]string) {
	for flag, key := range keys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

func run(cfg *config.Config) error {
	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting",
		zap.String("version", version.Short()),
		zap.Bool("dev", version.IsDev()),
		zap.String("url", cfg.URL))

	dirs := platform.NewDirs(cfg.DataDir, logger)
	store := settings.NewOSStore(dirs.ConfigDir(), logger)
	logger.Info("settings", zap.String("path", store.Path()))

	dispatcher := core.NewDispatcher(cfg.Notifications.Workers, logger)
	notifier := notify.NewGated(notify.Desktop{}, store, logger)
	downloads := download.New(dirs, notifier, dispatcher, afero.NewOsFs(), logger)
	icons := desktop.NewIconLoader(afero.NewOsFs(), desktop.LightIconCandidates(), desktop.AppIcon(), logger)

	app, err := desktop.NewApp(desktop.Deps{
		Config:     cfg,
		Store:      store,
		Downloads:  downloads,
		Dispatcher: dispatcher,
		Icons:      icons,
		Tray:       desktop.NewTrayBackend(logger),
		CacheDir:   dirs.WebviewCacheDir(),
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("failed to init app: %w", err)
	}

	if err := desktop.ExportBrowserArgs(cfg); err != nil {
		logger.Warn("failed to export webview arguments", zap.Error(err))
	}

	if err := wails.Run(app.Options()); err != nil {
		logger.Error("window exited with error", zap.Error(err))
		return err
	}
	return nil
}
