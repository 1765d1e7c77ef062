package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fathomarr/fathomarr/internal/api/handlers"
	"github.com/fathomarr/fathomarr/internal/api/middleware"
	"github.com/fathomarr/fathomarr/internal/browser"
	"github.com/fathomarr/fathomarr/internal/config"
	"github.com/fathomarr/fathomarr/internal/controllers"
	"github.com/fathomarr/fathomarr/internal/progress"
	"github.com/fathomarr/fathomarr/internal/settings"
)

// Server represents the HTTP server
type Server struct {
	server     *http.Server
	settings   *settings.Store
	driver     *browser.Driver
	exportCtrl *controllers.ExportController
	hub        *progress.Hub
	newLister  func(apiKey string) handlers.MeetingLister
	validate   func(r *http.Request, apiKey string) error
	logger     *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(
	cfg *config.Config,
	store *settings.Store,
	driver *browser.Driver,
	exportCtrl *controllers.ExportController,
	hub *progress.Hub,
	newLister func(apiKey string) handlers.MeetingLister,
	validate func(r *http.Request, apiKey string) error,
	logger *logrus.Logger,
) *Server {
	s := &Server{
		settings:   store,
		driver:     driver,
		exportCtrl: exportCtrl,
		hub:        hub,
		newLister:  newLister,
		validate:   validate,
		logger:     logger,
	}

	mux := http.NewServeMux()
	s.setupRoutes(mux)

	s.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      middleware.Logging(mux, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // progress streams and sign-in can stay open for minutes
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(mux *http.ServeMux) {
	sessionAvailable := s.driver.HasStoredSession

	indexHandler := handlers.NewIndexHandler()
	mux.HandleFunc("/", indexHandler.ServeHTTP)

	healthHandler := handlers.NewHealthHandler(s.logger)
	mux.HandleFunc("/health", healthHandler.ServeHTTP)

	statusHandler := handlers.NewStatusHandler(s.settings, sessionAvailable, s.logger)
	mux.HandleFunc("/status", statusHandler.ServeHTTP)

	configHandler := handlers.NewConfigHandler(s.settings, s.validate, sessionAvailable, s.logger)
	mux.HandleFunc("/api/config", configHandler.ServeHTTP)

	authHandler := handlers.NewAuthHandler(s.driver, s.logger)
	mux.HandleFunc("/api/auth/google", authHandler.ServeHTTP)

	meetingsHandler := handlers.NewMeetingsHandler(s.settings, s.newLister, s.logger)
	mux.HandleFunc("/api/meetings", meetingsHandler.ServeHTTP)

	exportHandler := handlers.NewExportHandler(s.exportCtrl, s.logger)
	mux.HandleFunc("/api/export", exportHandler.ServeHTTP)

	progressHandler := handlers.NewProgressHandler(s.hub, s.logger)
	mux.HandleFunc("/api/progress/", progressHandler.ServeHTTP)
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("port", s.server.Addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
