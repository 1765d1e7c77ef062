package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fathomarr/fathomarr/internal/api"
	"github.com/fathomarr/fathomarr/internal/api/handlers"
	"github.com/fathomarr/fathomarr/internal/browser"
	"github.com/fathomarr/fathomarr/internal/config"
	"github.com/fathomarr/fathomarr/internal/controllers"
	"github.com/fathomarr/fathomarr/internal/downloader"
	"github.com/fathomarr/fathomarr/internal/progress"
	"github.com/fathomarr/fathomarr/internal/services/fathom"
	"github.com/fathomarr/fathomarr/internal/settings"
	"github.com/fathomarr/fathomarr/internal/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Setup logger
	logger := utils.NewLogger(cfg.LogLevel)
	logger.Info("Starting Fathomarr")
	logger.WithField("config_dir", filepath.Dir(cfg.SettingsFile)).Info("Configuration loaded")

	// 3. Initialize settings and session stores
	defaultDownloadDir := cfg.DownloadDir
	if defaultDownloadDir == "" {
		defaultDownloadDir = cfg.DefaultDownloadDir()
	}
	store := settings.NewStore(cfg.SettingsFile, defaultDownloadDir)

	sessions := browser.NewSessionStore(cfg.SessionDir)

	// 4. Initialize browser driver and video downloader
	driver := browser.NewDriver(sessions, browser.DefaultProfile, cfg.Headless, logger)
	defer driver.Close()

	videoDownloader := downloader.New(driver, cfg.FFmpegPath, logger)
	logger.Info("Browser driver initialized")

	// 5. Initialize progress hub and export controller
	hub := progress.NewHub()

	newAPI := func(apiKey string) controllers.MeetingAPI {
		return fathom.NewClient(apiKey, logger)
	}

	exportCtrl := controllers.NewExportController(
		store,
		hub,
		newAPI,
		videoDownloader,
		driver.HasStoredSession,
		driver.Close,
		time.Duration(cfg.ItemDelaySeconds)*time.Second,
		time.Duration(cfg.VideoDelaySeconds)*time.Second,
		logger,
	)
	logger.Info("Export controller initialized")

	// 6. Initialize HTTP server
	newLister := func(apiKey string) handlers.MeetingLister {
		return fathom.NewClient(apiKey, logger)
	}
	validateKey := func(r *http.Request, apiKey string) error {
		return fathom.NewClient(apiKey, logger).ValidateKey(r.Context())
	}

	server := api.NewServer(cfg, store, driver, exportCtrl, hub, newLister, validateKey, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErrChan <- err
		}
	}()

	// 7. Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("Fathomarr is running")

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Error("Error during server shutdown")
		}
	}

	logger.Info("Fathomarr stopped")
	return nil
}
