package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/fathomarr/fathomarr/internal/settings"
)

// apiKeyMask replaces the stored key in responses; the UI sends it back
// unchanged when the user did not type a new key.
const apiKeyMask = "••••••••"

// ConfigHandler reads and updates the user settings
type ConfigHandler struct {
	settings         *settings.Store
	validate         func(r *http.Request, apiKey string) error
	sessionAvailable func() bool
	logger           *logrus.Logger
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(store *settings.Store, validate func(r *http.Request, apiKey string) error, sessionAvailable func() bool, logger *logrus.Logger) *ConfigHandler {
	return &ConfigHandler{
		settings:         store,
		validate:         validate,
		sessionAvailable: sessionAvailable,
		logger:           logger,
	}
}

// ServeHTTP handles the config endpoint
func (h *ConfigHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPost:
		h.post(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ConfigHandler) get(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.settings.Load()
	if err != nil {
		h.logger.WithError(err).Error("Failed to load settings")
		http.Error(w, "Failed to load settings", http.StatusInternalServerError)
		return
	}

	apiKey := ""
	if cfg.APIKey != "" {
		apiKey = apiKeyMask
	}

	response := map[string]interface{}{
		"api_key":              apiKey,
		"download_dir":         cfg.DownloadDir,
		"google_authenticated": h.sessionAvailable(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (h *ConfigHandler) post(w http.ResponseWriter, r *http.Request) {
	var req struct {
		APIKey      string `json:"api_key"`
		DownloadDir string `json:"download_dir"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	current, err := h.settings.Load()
	if err != nil {
		h.logger.WithError(err).Error("Failed to load settings")
		writeJSONError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}

	// The mask means the user left the stored key untouched
	if req.APIKey == apiKeyMask {
		req.APIKey = current.APIKey
	}

	if req.APIKey != "" && req.APIKey != current.APIKey {
		if err := h.validate(r, req.APIKey); err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	updated := settings.Settings{
		APIKey:      req.APIKey,
		DownloadDir: req.DownloadDir,
	}
	if err := h.settings.Save(updated); err != nil {
		h.logger.WithError(err).Error("Failed to save settings")
		writeJSONError(w, http.StatusInternalServerError, "Failed to save settings")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
