package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/fathomarr/fathomarr/internal/controllers"
	"github.com/fathomarr/fathomarr/internal/models"
)

// ExportHandler starts export jobs
type ExportHandler struct {
	exportCtrl *controllers.ExportController
	logger     *logrus.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(exportCtrl *controllers.ExportController, logger *logrus.Logger) *ExportHandler {
	return &ExportHandler{exportCtrl: exportCtrl, logger: logger}
}

// ServeHTTP handles the export endpoint
func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	jobID, err := h.exportCtrl.Start(req)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.WithFields(logrus.Fields{
		"job_id":   jobID,
		"meetings": len(req.MeetingIDs),
	}).Info("Export job started")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"job_id": jobID})
}
