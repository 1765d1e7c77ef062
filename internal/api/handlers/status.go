package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/fathomarr/fathomarr/internal/settings"
)

// StatusHandler reports what the app still needs before exports can run
type StatusHandler struct {
	settings         *settings.Store
	sessionAvailable func() bool
	logger           *logrus.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(store *settings.Store, sessionAvailable func() bool, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{
		settings:         store,
		sessionAvailable: sessionAvailable,
		logger:           logger,
	}
}

// ServeHTTP handles the status endpoint
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cfg, err := h.settings.Load()
	if err != nil {
		h.logger.WithError(err).Error("Failed to load settings")
		http.Error(w, "Failed to load settings", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"api_key_configured":   cfg.APIKey != "",
		"google_authenticated": h.sessionAvailable(),
		"download_dir":         h.settings.DownloadDir(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
