package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"portfolio_scraper/internal/app/port"
	"portfolio_scraper/internal/app/service"
	"portfolio_scraper/internal/client"
	"portfolio_scraper/internal/infrastructure/browser"
	"portfolio_scraper/internal/infrastructure/configloader"
	"portfolio_scraper/internal/infrastructure/htmldoc"
	"portfolio_scraper/internal/infrastructure/snapshotcache"
	"portfolio_scraper/internal/pkg/logger"
	"portfolio_scraper/internal/pkg/metrics"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "scraper",
	Short:         "scraper extracts per-chain wallet and protocol positions from DeBank profile pages.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the YAML config (default $CONFIG_PATH or "+configloader.DefaultPath+").")
}

// ExecuteContext runs the CLI.
func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is the wiring shared by every command.
type app struct {
	cfg    *configloader.Config
	zap    *zap.Logger
	logger port.Logger
	layout service.Layout
}

func bootstrap() (*app, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = configloader.DefaultPath
	}
	cfg, err := configloader.Load(path)
	if err != nil {
		return nil, err
	}

	zapLogger := logger.InitZap(cfg.Logging.Level, cfg.Logging.Development)
	zapLogger.Info("Configuration loaded", zap.String("path", path))

	layout, err := service.DefaultLayout().WithOverrides(cfg.Layout.Overrides)
	if err != nil {
		return nil, fmt.Errorf("invalid layout overrides: %w", err)
	}

	metrics.MustRegisterMetrics()

	return &app{
		cfg:    cfg,
		zap:    zapLogger,
		logger: logger.NewComponentAdapter("scraper"),
		layout: layout,
	}, nil
}

// sessionFactory picks live browser, replay, and optional recording. The
// returned closer releases the browser.
func (a *app) sessionFactory(recordDir, replayDir string) (port.SessionFactory, func()) {
	if replayDir != "" {
		a.logger.Info("Replaying recorded session", "dir", replayDir)
		return htmldoc.NewReplayFactory(replayDir, a.logger), func() {}
	}

	var devtools client.DevToolsClient
	if a.cfg.Browser.DevToolsURL != "" {
		devtools = client.NewDevToolsClient(a.cfg.Browser.DevToolsURL, 10*time.Second, a.zap)
	}
	launcher := browser.NewLauncher(a.cfg.Browser, devtools, a.logger)
	closer := func() {
		if err := launcher.Close(); err != nil {
			a.logger.Warn("Failed to close browser", "error", err)
		}
	}

	var factory port.SessionFactory = launcher
	if recordDir != "" {
		factory = htmldoc.NewRecordingFactory(launcher, recordDir, a.logger)
	}
	return factory, closer
}

func (a *app) profileService(sessions port.SessionFactory) port.ProfileService {
	cache := snapshotcache.NewGoCache(
		time.Duration(a.cfg.Cache.DefaultExpirationMinutes)*time.Minute,
		time.Duration(a.cfg.Cache.CleanupIntervalMinutes)*time.Minute,
	)
	return service.NewProfileService(sessions, cache, a.layout, a.cfg, a.logger)
}
