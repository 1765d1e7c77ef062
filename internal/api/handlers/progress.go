package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fathomarr/fathomarr/internal/progress"
)

// keepaliveInterval bounds how long an SSE connection stays silent
const keepaliveInterval = 30 * time.Second

// ProgressHandler streams export progress over Server-Sent Events
type ProgressHandler struct {
	hub    *progress.Hub
	logger *logrus.Logger
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(hub *progress.Hub, logger *logrus.Logger) *ProgressHandler {
	return &ProgressHandler{hub: hub, logger: logger}
}

// ServeHTTP handles the progress streaming endpoint
func (h *ProgressHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	jobID := strings.TrimPrefix(r.URL.Path, "/api/progress/")
	if jobID == "" {
		http.Error(w, "Missing job id", http.StatusBadRequest)
		return
	}

	events, ok := h.hub.Get(jobID)
	if !ok {
		http.Error(w, "Unknown job", http.StatusNotFound)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case event := <-events:
			if err := writeEvent(w, event); err != nil {
				h.logger.WithError(err).Debug("Progress stream client went away")
				return
			}
			flusher.Flush()

			if event.Terminal() {
				h.hub.Remove(jobID)
				return
			}

		case <-keepalive.C:
			if err := writeEvent(w, progress.Event{Type: progress.TypeKeepalive}); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, event progress.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}
