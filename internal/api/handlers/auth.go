package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Authenticator runs an interactive browser sign-in
type Authenticator interface {
	AuthenticateInteractively() error
	Close() error
}

// AuthHandler triggers the interactive Google sign-in flow
type AuthHandler struct {
	driver Authenticator
	logger *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(driver Authenticator, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{driver: driver, logger: logger}
}

// ServeHTTP handles the sign-in endpoint. The request blocks until the user
// finishes signing in or the flow times out.
func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	err := h.driver.AuthenticateInteractively()

	// The visible sign-in window is no longer needed either way
	if closeErr := h.driver.Close(); closeErr != nil {
		h.logger.WithError(closeErr).Warn("Failed to close browser after sign-in")
	}

	if err != nil {
		h.logger.WithError(err).Error("Interactive sign-in failed")
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "Signed in successfully",
	})
}
