package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/fathomarr/fathomarr/internal/models"
	"github.com/fathomarr/fathomarr/internal/settings"
)

const meetingsCacheKey = "meetings"

// MeetingLister fetches the full meetings listing
type MeetingLister interface {
	ListMeetings(ctx context.Context) ([]models.Meeting, error)
}

// MeetingsHandler serves the meeting listing for the UI, caching it briefly
// so repeated page loads do not hammer the API.
type MeetingsHandler struct {
	settings *settings.Store
	newAPI   func(apiKey string) MeetingLister
	cache    *cache.Cache
	logger   *logrus.Logger
}

// NewMeetingsHandler creates a new meetings handler
func NewMeetingsHandler(store *settings.Store, newAPI func(apiKey string) MeetingLister, logger *logrus.Logger) *MeetingsHandler {
	return &MeetingsHandler{
		settings: store,
		newAPI:   newAPI,
		cache:    cache.New(60*time.Second, 5*time.Minute),
		logger:   logger,
	}
}

// ServeHTTP handles the meetings listing endpoint
func (h *MeetingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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
	if cfg.APIKey == "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "API key not configured"})
		return
	}

	refresh := r.URL.Query().Get("refresh") == "1"

	var meetings []models.Meeting
	if !refresh {
		if cached, ok := h.cache.Get(meetingsCacheKey); ok {
			meetings = cached.([]models.Meeting)
		}
	}

	if meetings == nil {
		meetings, err = h.newAPI(cfg.APIKey).ListMeetings(r.Context())
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadGateway)
			json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		h.cache.Set(meetingsCacheKey, meetings, cache.DefaultExpiration)
	}

	items := make([]map[string]interface{}, 0, len(meetings))
	for i := range meetings {
		m := &meetings[i]

		recordedBy := ""
		if m.RecordedBy != nil {
			recordedBy = m.RecordedBy.Name
		}

		invitees := make([]string, 0, len(m.CalendarInvitees))
		for _, c := range m.CalendarInvitees {
			invitees = append(invitees, c.Name)
		}

		items = append(items, map[string]interface{}{
			"id":                   m.RecordingID,
			"title":                m.DisplayTitle(),
			"meeting_title":        m.MeetingTitle,
			"date":                 m.CreatedAt,
			"url":                  m.URL,
			"share_url":            m.ShareURL,
			"recording_start_time": m.RecordingStartTime,
			"recording_end_time":   m.RecordingEndTime,
			"recorded_by":          recordedBy,
			"calendar_invitees":    invitees,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"meetings": items})
}
