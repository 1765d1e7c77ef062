package handlers

import (
	"net/http"

	"github.com/fathomarr/fathomarr/internal/web"
)

// IndexHandler serves the embedded UI
type IndexHandler struct{}

// NewIndexHandler creates a new index handler
func NewIndexHandler() *IndexHandler {
	return &IndexHandler{}
}

// ServeHTTP serves the UI page
func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(web.IndexHTML())
}
